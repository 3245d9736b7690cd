package scrape

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tableofjustice/liga/internal/logger"
	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/transport"
)

// totalSpieltags is the number of matchdays in a 3. Liga season.
// FootyStats numbers its game weeks in reverse, so Spieltag n appears
// under data-game-week 38-n.
const totalSpieltags = 38

var numericRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// FootyStats scrapes fixtures and per-match xG from footystats.org.
// The fixtures page is server rendered, so a plain HTTP fetch is enough.
type FootyStats struct {
	base
	client *transport.Client
}

func NewFootyStats(cfg *config.Config) *FootyStats {
	return &FootyStats{
		base:   base{name: "footystats", cfg: cfg},
		client: transport.NewClient(cfg.Scraping.Timeout()),
	}
}

func (f *FootyStats) Name() string { return f.name }

// ScrapeFixtures pulls the fixture list for one Spieltag from the league
// fixtures page
func (f *FootyStats) ScrapeFixtures(ctx context.Context, spieltag int) ([]Fixture, error) {
	src, ok := f.cfg.Sources[f.name]
	if !ok || src.FixturesURL == "" {
		return nil, fmt.Errorf("no fixtures URL configured for %s", f.name)
	}

	if f.futureSpieltag(spieltag) {
		logger.Info("Skipping spieltag", spieltag, "- kickoff is in the future")
		return nil, nil
	}

	if err := f.wait(ctx, 0); err != nil {
		return nil, err
	}

	body, err := f.fetchWithRetry(ctx, src.FixturesURL)
	if err != nil {
		return nil, err
	}
	return f.parseFixturesPage(body, spieltag, src.BaseURL)
}

// parseFixturesPage extracts the fixtures of one Spieltag from the rendered
// fixtures page
func (f *FootyStats) parseFixturesPage(body []byte, spieltag int, baseURL string) ([]Fixture, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixtures page: %w", err)
	}

	gameWeek := totalSpieltags - spieltag
	week := doc.Find(fmt.Sprintf("div[data-game-week='%d']", gameWeek))
	if week.Length() == 0 {
		logger.Warn("No game week", gameWeek, "found on fixtures page")
		return nil, nil
	}

	var fixtures []Fixture
	week.Find("ul.match.row").Each(func(i int, match *goquery.Selection) {
		fixture := Fixture{Spieltag: spieltag}

		fixture.HomeTeam = f.cfg.NormalizeTeamName(
			strings.TrimSpace(match.Find("a.team.home span.hover-modal-parent").First().Text()))
		fixture.AwayTeam = f.cfg.NormalizeTeamName(
			strings.TrimSpace(match.Find("a.team.away span.hover-modal-parent").First().Text()))
		if fixture.HomeTeam == "" || fixture.AwayTeam == "" {
			logger.Warn("Skipping match", i+1, "with missing team names")
			return
		}

		h2h := match.Find("a.h2h-link").First()
		score := strings.TrimSpace(h2h.Find("span.ft-score").First().Text())
		if parts := strings.SplitN(score, "-", 2); len(parts) == 2 {
			fixture.HomeGoals = strings.TrimSpace(parts[0])
			fixture.AwayGoals = strings.TrimSpace(parts[1])
		}
		if href, ok := h2h.Attr("href"); ok && href != "" {
			fixture.URL = baseURL + href
		}

		fixtures = append(fixtures, fixture)
	})

	logger.Info("Found", len(fixtures), "matches for game week", gameWeek)
	return fixtures, nil
}

// ScrapeMatchXG extracts the xG pair from a match stats page. The value
// lives in the stats table in a row labelled xG.
func (f *FootyStats) ScrapeMatchXG(ctx context.Context, matchURL string) (string, string, error) {
	if err := f.wait(ctx, 0); err != nil {
		return "", "", err
	}

	body, err := f.fetchWithRetry(ctx, matchURL)
	if err != nil {
		return "", "", err
	}
	return parseMatchXG(body, matchURL)
}

// parseMatchXG pulls the two xG averages out of the match stats table
func parseMatchXG(body []byte, matchURL string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse match page %s: %w", matchURL, err)
	}

	var values []string
	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		label := false
		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			if strings.Contains(strings.ToLower(cell.Text()), "xg") {
				label = true
			}
		})
		if !label {
			return true
		}
		row.Find("td.item.stat.average").Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if numericRe.MatchString(text) {
				values = append(values, text)
			}
		})
		return len(values) < 2
	})

	if len(values) < 2 {
		return "", "", fmt.Errorf("no xG row found on %s", matchURL)
	}
	return values[0], values[1], nil
}

// fetchWithRetry fetches a page, retrying with backoff on transient errors
func (f *FootyStats) fetchWithRetry(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < f.cfg.Scraping.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Info("Retrying", pageURL, "attempt", attempt+1, "of", f.cfg.Scraping.MaxRetries)
			if err := f.wait(ctx, attempt); err != nil {
				return nil, err
			}
		}
		body, err := f.client.GetHTML(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		logger.Warn("Fetch failed:", err)
	}
	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w",
		pageURL, f.cfg.Scraping.MaxRetries, lastErr)
}

var _ Scraper = (*FootyStats)(nil)
