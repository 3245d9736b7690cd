package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableofjustice/liga/pkg/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.EnabledSources = []string{"soccerway"}
	require.NoError(t, cfg.EnsureDirectories())

	seasonCSV := "Team,spieltag-1,spieltag-2,Total_xP\n" +
		"Dynamo Dresden,1.65,2.38,4.03\n" +
		"SC Verl,1.092,,1.092\n"
	path := filepath.Join(cfg.SourceDir("soccerway"), "season_xp.csv")
	require.NoError(t, os.WriteFile(path, []byte(seasonCSV), 0o644))

	return NewServer(cfg)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSourcesEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/sources", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sources []struct {
			Name    string   `json:"name"`
			Metrics []string `json:"metrics"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "soccerway", body.Sources[0].Name)
	assert.Equal(t, []string{"xP"}, body.Sources[0].Metrics, "only tables present on disk are listed")
}

func TestSeasonEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/season/soccerway/xp", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body seasonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "soccerway", body.Source)
	assert.Equal(t, "xP", body.Metric)
	assert.Equal(t, []string{"Team", "spieltag-1", "spieltag-2", "Total_xP"}, body.Columns)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "Dynamo Dresden", body.Rows[0]["Team"])
	assert.Equal(t, "", body.Rows[1]["spieltag-2"], "missing matchday stays an empty cell")
}

func TestSeasonEndpointErrors(t *testing.T) {
	srv := testServer(t)

	cases := []struct {
		name string
		url  string
		code int
	}{
		{"unknown metric", "/api/season/soccerway/goals", http.StatusBadRequest},
		{"unknown source", "/api/season/kicker/xp", http.StatusNotFound},
		{"table not built yet", "/api/season/soccerway/points", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", tc.url, nil))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestIndexServed(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Saison-Tabellen")
}
