package scrape

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/liga"
)

func TestFilenames(t *testing.T) {
	assert.Equal(t, "spieltag-7_fixtures.csv", FixturesFilename(7))
	assert.Equal(t, "spieltag-7_xg.csv", XGFilename(7))

	// The names must round trip through the matchday parser used during
	// aggregation
	n, ok := liga.ParseMatchdayNumber(XGFilename(23))
	require.True(t, ok)
	assert.Equal(t, 23, n)
}

func TestWriteXGCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, XGFilename(4))

	fixtures := []Fixture{
		{
			Spieltag: 4, HomeTeam: "Dynamo Dresden", AwayTeam: "SC Verl",
			HomeGoals: "2", AwayGoals: "1", HomeXG: "1.82", AwayXG: "0.64",
			URL: "https://example.org/match/1",
		},
		{
			Spieltag: 4, HomeTeam: "Energie Cottbus", AwayTeam: "Hansa Rostock",
		},
	}
	require.NoError(t, WriteXGCSV(path, fixtures))

	rows, header, err := liga.ReadRows(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"spieltag", "home_team", "away_team", "home_goals", "away_goals", "home_xG", "away_xG", "url"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.82", rows[0]["home_xG"])
	assert.Equal(t, "", rows[1]["home_xG"], "unscraped xG stays an empty cell")

	// The written file must feed straight into the xG aggregation
	table, _, err := liga.AggregateDirectory(dir, liga.MetricXG)
	require.NoError(t, err)
	dresden := table.Team("Dynamo Dresden")
	require.NotNil(t, dresden)
	assert.InDelta(t, 1.82, dresden.Total, 1e-9)
}

func TestNewScraper(t *testing.T) {
	cfg := config.Default()

	fs, err := New("footystats", cfg)
	require.NoError(t, err)
	assert.Equal(t, "footystats", fs.Name())

	sw, err := New("soccerway", cfg)
	require.NoError(t, err)
	assert.Equal(t, "soccerway", sw.Name())

	_, err = New("kicker", cfg)
	assert.Error(t, err)
}

func TestNewRunnerRequiresSources(t *testing.T) {
	cfg := config.Default()
	cfg.EnabledSources = nil
	_, err := NewRunner(cfg)
	assert.Error(t, err)

	cfg.EnabledSources = []string{"unknown"}
	_, err = NewRunner(cfg)
	assert.Error(t, err)
}

func TestFutureSpieltag(t *testing.T) {
	cfg := config.Default()
	cfg.SpieltagMap = map[int]string{
		1: "2020-01-01 15:00:00",
		2: "2099-01-01 15:00:00",
	}
	b := base{name: "test", cfg: cfg}

	assert.False(t, b.futureSpieltag(1), "past kickoff")
	assert.True(t, b.futureSpieltag(2), "future kickoff")
	assert.False(t, b.futureSpieltag(3), "unmapped matchday is never skipped")
}
