package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/tableofjustice/liga/internal/logger"
	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/liga"
)

// Fixture is one match row scraped from a source site. Goals and xG are kept
// as strings: an empty value means the site had nothing yet, and the CSV
// layer treats empty as missing.
type Fixture struct {
	Spieltag  int
	HomeTeam  string
	AwayTeam  string
	HomeGoals string
	AwayGoals string
	HomeXG    string
	AwayXG    string
	URL       string
}

// Scraper is one fixture source. ScrapeMatchXG fills in the xG pair for a
// single match page found by ScrapeFixtures.
type Scraper interface {
	Name() string
	ScrapeFixtures(ctx context.Context, spieltag int) ([]Fixture, error)
	ScrapeMatchXG(ctx context.Context, matchURL string) (homeXG, awayXG string, err error)
}

// New builds the scraper registered under the given source name
func New(name string, cfg *config.Config) (Scraper, error) {
	switch name {
	case "footystats":
		return NewFootyStats(cfg), nil
	case "soccerway":
		return NewSoccerway(cfg), nil
	default:
		return nil, fmt.Errorf("unknown scrape source %q", name)
	}
}

// base carries the rate limiting shared by all scrapers
type base struct {
	name string
	cfg  *config.Config
}

// wait sleeps between requests. Attempt zero gets a random delay inside the
// configured range, retries get exponential backoff capped at five minutes.
// Returns early when the context is cancelled.
func (b *base) wait(ctx context.Context, attempt int) error {
	var delay time.Duration
	if attempt == 0 {
		min := time.Duration(b.cfg.Scraping.DelayMinSeconds) * time.Second
		max := time.Duration(b.cfg.Scraping.DelayMaxSeconds) * time.Second
		if max <= min {
			delay = min
		} else {
			delay = min + time.Duration(rand.Int63n(int64(max-min)))
		}
	} else {
		delay = time.Duration(b.cfg.Scraping.DelayMaxSeconds) * time.Second << uint(attempt)
		if delay > 5*time.Minute {
			delay = 5 * time.Minute
		}
	}

	logger.Debug("Waiting", delay.Seconds(), "seconds before next request")
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// futureSpieltag reports whether the matchday has not kicked off yet
func (b *base) futureSpieltag(spieltag int) bool {
	kickoff, ok := b.cfg.SpieltagKickoff(spieltag)
	if !ok {
		return false
	}
	return kickoff.After(time.Now())
}

// FixturesFilename names the raw fixtures output for one matchday
func FixturesFilename(spieltag int) string {
	return fmt.Sprintf("spieltag-%d_fixtures.csv", spieltag)
}

// XGFilename names the per-match xG output for one matchday
func XGFilename(spieltag int) string {
	return fmt.Sprintf("spieltag-%d_xg.csv", spieltag)
}

var fixtureHeader = []string{"spieltag", "home_team", "away_team", "home_goals", "away_goals", "url"}
var xgHeader = []string{"spieltag", "home_team", "away_team", "home_goals", "away_goals", "home_xG", "away_xG", "url"}

func fixtureRow(f Fixture, withXG bool) map[string]string {
	row := map[string]string{
		"spieltag":   fmt.Sprintf("%d", f.Spieltag),
		"home_team":  f.HomeTeam,
		"away_team":  f.AwayTeam,
		"home_goals": f.HomeGoals,
		"away_goals": f.AwayGoals,
		"url":        f.URL,
	}
	if withXG {
		row["home_xG"] = f.HomeXG
		row["away_xG"] = f.AwayXG
	}
	return row
}

// WriteFixturesCSV writes the raw fixture rows for one matchday
func WriteFixturesCSV(path string, fixtures []Fixture) error {
	rows := make([]map[string]string, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, fixtureRow(f, false))
	}
	return liga.WriteRows(path, fixtureHeader, rows)
}

// WriteXGCSV writes the fixture rows including the scraped xG pair
func WriteXGCSV(path string, fixtures []Fixture) error {
	rows := make([]map[string]string, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, fixtureRow(f, true))
	}
	return liga.WriteRows(path, xgHeader, rows)
}

// Runner drives all enabled scrapers over a range of matchdays
type Runner struct {
	cfg      *config.Config
	scrapers []Scraper
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	var scrapers []Scraper
	for _, name := range cfg.EnabledSources {
		s, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, s)
	}
	if len(scrapers) == 0 {
		return nil, fmt.Errorf("no scrape sources enabled")
	}
	return &Runner{cfg: cfg, scrapers: scrapers}, nil
}

// ScrapeSpieltag scrapes one matchday from every enabled source. A matchday
// that already has its xG file, or has not kicked off yet, is skipped.
// Per-source failures are logged and do not stop the other sources.
func (r *Runner) ScrapeSpieltag(ctx context.Context, spieltag int) {
	for _, s := range r.scrapers {
		if err := r.scrapeOne(ctx, s, spieltag); err != nil {
			logger.Error("Scrape of", s.Name(), "spieltag", spieltag, "failed:", err)
		}
	}
}

// ScrapeRange scrapes matchdays from through to inclusive
func (r *Runner) ScrapeRange(ctx context.Context, from, to int) {
	for spieltag := from; spieltag <= to; spieltag++ {
		if ctx.Err() != nil {
			return
		}
		r.ScrapeSpieltag(ctx, spieltag)
	}
}

func (r *Runner) scrapeOne(ctx context.Context, s Scraper, spieltag int) error {
	sourceDir := r.cfg.SourceDir(s.Name())
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	xgPath := filepath.Join(sourceDir, XGFilename(spieltag))
	if _, err := os.Stat(xgPath); err == nil {
		logger.Info("Skipping", s.Name(), "spieltag", spieltag, "- data already present")
		return nil
	}

	logger.Highlight("Scraping", s.Name(), "spieltag", spieltag)
	fixtures, err := s.ScrapeFixtures(ctx, spieltag)
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		logger.Warn("No fixtures found for", s.Name(), "spieltag", spieltag)
		return nil
	}

	fixturesPath := filepath.Join(sourceDir, FixturesFilename(spieltag))
	if err := WriteFixturesCSV(fixturesPath, fixtures); err != nil {
		return err
	}
	logger.Info("Saved", len(fixtures), "fixtures:", fixturesPath)

	for i := range fixtures {
		f := &fixtures[i]
		if f.URL == "" {
			continue
		}
		homeXG, awayXG, err := s.ScrapeMatchXG(ctx, f.URL)
		if err != nil {
			logger.Warn("Could not extract xG for", f.HomeTeam, "vs", f.AwayTeam, err)
			continue
		}
		f.HomeXG = homeXG
		f.AwayXG = awayXG
	}

	if err := WriteXGCSV(xgPath, fixtures); err != nil {
		return err
	}
	logger.Info("Saved xG data:", xgPath)
	return nil
}
