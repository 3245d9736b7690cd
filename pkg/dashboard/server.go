package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tableofjustice/liga/internal/logger"
	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/liga"
)

// Server exposes the season tables over HTTP so they can be browsed without
// opening the CSV files. All data is read from disk per request, making the
// dashboard a pure view over whatever the pipeline last wrote.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
}

func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start builds the routes and blocks serving until Stop or a listener error
func (s *Server) Start() error {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	s.httpServer = &http.Server{
		Addr:         s.cfg.Dashboard.Addr(),
		Handler:      c.Handler(s.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Highlight("Dashboard listening on", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Dashboard shutdown error:", err)
	}
}

// Handler builds the routed handler; exposed so tests can drive the routes
// without a listener
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/sources", s.handleSources).Methods("GET")
	api.HandleFunc("/season/{source}/{metric}", s.handleSeason).Methods("GET")
	router.HandleFunc("/", s.handleIndex).Methods("GET")
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// sourceInfo describes one data source and which season tables it has
type sourceInfo struct {
	Name    string   `json:"name"`
	Metrics []string `json:"metrics"`
}

// handleSources lists the enabled sources and the metrics for which a
// season table file exists on disk
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	var sources []sourceInfo
	for _, name := range s.cfg.EnabledSources {
		info := sourceInfo{Name: name, Metrics: []string{}}
		for _, metric := range []string{liga.MetricXP, liga.MetricXG, liga.MetricPoints} {
			path := filepath.Join(s.cfg.SourceDir(name), liga.SeasonTableFilename(metric))
			if _, err := os.Stat(path); err == nil {
				info.Metrics = append(info.Metrics, metric)
			}
		}
		sources = append(sources, info)
	}
	writeJSON(w, map[string]any{"sources": sources})
}

// seasonResponse carries one season table with cell values as strings,
// empty string meaning no match played at that matchday
type seasonResponse struct {
	Source  string              `json:"source"`
	Metric  string              `json:"metric"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	source := vars["source"]
	metric, ok := canonicalMetric(vars["metric"])
	if !ok {
		http.Error(w, fmt.Sprintf("unknown metric %q", vars["metric"]), http.StatusBadRequest)
		return
	}
	if !s.knownSource(source) {
		http.Error(w, fmt.Sprintf("unknown source %q", source), http.StatusNotFound)
		return
	}

	path := filepath.Join(s.cfg.SourceDir(source), liga.SeasonTableFilename(metric))
	rows, header, err := liga.ReadRows(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, fmt.Sprintf("no %s season table for %s", metric, source), http.StatusNotFound)
			return
		}
		logger.Error("Failed to read season table:", err)
		http.Error(w, "failed to read season table", http.StatusInternalServerError)
		return
	}

	writeJSON(w, seasonResponse{
		Source:  source,
		Metric:  metric,
		Columns: header,
		Rows:    rows,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) knownSource(name string) bool {
	for _, src := range s.cfg.EnabledSources {
		if src == name {
			return true
		}
	}
	return false
}

// canonicalMetric maps a case-insensitive path segment onto the metric
// constants used in file names
func canonicalMetric(raw string) (string, bool) {
	switch strings.ToLower(raw) {
	case "xp":
		return liga.MetricXP, true
	case "xg":
		return liga.MetricXG, true
	case "points":
		return liga.MetricPoints, true
	default:
		return "", false
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response:", err)
	}
}
