package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/tableofjustice/liga/internal/logger"
	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/transport"
)

// Soccerway selectors. The site is a React app with generated class names,
// so these track the deployed bundle and break when soccerway redeploys.
const (
	consentButtonSel    = "button.fc-button.fc-cta-consent.fc-primary-button"
	weekDropdownSel     = "#unique_flyout_transfer_custom_week_button"
	fixtureContainerSel = "div.sc-f6b773a5-3"
	scoreLabelSel       = "span.label.score"
)

// Soccerway scrapes fixtures and xG from int.soccerway.com. The site renders
// everything client side, so pages go through a headless browser and the
// rendered DOM is handed to goquery.
type Soccerway struct {
	base
}

func NewSoccerway(cfg *config.Config) *Soccerway {
	return &Soccerway{base: base{name: "soccerway", cfg: cfg}}
}

func (s *Soccerway) Name() string { return s.name }

// browserContext builds a headless Chrome allocator and tab. The returned
// cancel func tears both down.
func (s *Soccerway) browserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(transport.RandomUserAgent()),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	return tabCtx, func() {
		cancelTab()
		cancelAlloc()
	}
}

// dismissConsent clicks the cookie consent button when the popup shows up.
// Its absence is not an error.
func dismissConsent(ctx context.Context) {
	clickCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err := chromedp.Run(clickCtx,
		chromedp.WaitVisible(consentButtonSel, chromedp.ByQuery),
		chromedp.Click(consentButtonSel, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		logger.Debug("No consent popup found")
		return
	}
	logger.Debug("Clicked consent button")
}

// ScrapeFixtures renders the league fixtures page, selects the requested
// game week from the Spielwoche dropdown and extracts the fixture rows.
func (s *Soccerway) ScrapeFixtures(ctx context.Context, spieltag int) ([]Fixture, error) {
	src, ok := s.cfg.Sources[s.name]
	if !ok || src.FixturesURL == "" {
		return nil, fmt.Errorf("no fixtures URL configured for %s", s.name)
	}

	if s.futureSpieltag(spieltag) {
		logger.Info("Skipping spieltag", spieltag, "- kickoff is in the future")
		return nil, nil
	}

	if err := s.wait(ctx, 0); err != nil {
		return nil, err
	}

	browserCtx, cancel := s.browserContext(ctx)
	defer cancel()

	logger.Debug("Loading:", src.FixturesURL)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(src.FixturesURL),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures page: %w", err)
	}

	dismissConsent(browserCtx)

	if err := s.selectGameWeek(browserCtx, spieltag); err != nil {
		logger.Warn("Could not select game week:", err)
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to capture page source: %w", err)
	}

	fixtures, err := s.parseFixtures(html, spieltag, src.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Scraped", len(fixtures), "fixtures for spieltag", spieltag)
	return fixtures, nil
}

// selectGameWeek opens the game week picker and clicks the entry for the
// requested spieltag, then waits for the fixture list to rerender
func (s *Soccerway) selectGameWeek(ctx context.Context, spieltag int) error {
	optionXPath := fmt.Sprintf(
		"//div[@id='dropdown_picker_unique_flyout_transfer_custom_week_button']//div[span//span[contains(text(), 'Game week %d')]]",
		spieltag)

	selectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := chromedp.Run(selectCtx,
		chromedp.WaitVisible(weekDropdownSel, chromedp.ByQuery),
		chromedp.Click(weekDropdownSel, chromedp.ByQuery),
		chromedp.WaitVisible(optionXPath, chromedp.BySearch),
		chromedp.Click(optionXPath, chromedp.BySearch),
		chromedp.Sleep(6*time.Second),
	)
	if err != nil {
		return fmt.Errorf("game week %d selection failed: %w", spieltag, err)
	}
	logger.Debug("Selected game week", spieltag)
	return nil
}

// parseFixtures extracts fixture rows from the rendered fixtures page.
// Containers without both team names or without a match URL are skipped.
func (s *Soccerway) parseFixtures(html string, spieltag int, baseURL string) ([]Fixture, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixtures page: %w", err)
	}

	var fixtures []Fixture
	doc.Find(fixtureContainerSel).Each(func(i int, container *goquery.Selection) {
		fixture := Fixture{Spieltag: spieltag}

		var teams []string
		container.Find("span[class*='sc-1718759c-3']").Each(func(j int, span *goquery.Selection) {
			if name := strings.TrimSpace(span.Text()); name != "" {
				teams = append(teams, name)
			}
		})
		if len(teams) < 2 {
			return
		}
		fixture.HomeTeam = s.cfg.NormalizeTeamName(teams[0])
		fixture.AwayTeam = s.cfg.NormalizeTeamName(teams[1])

		var scores []string
		container.Find(scoreLabelSel).Each(func(j int, span *goquery.Selection) {
			scores = append(scores, strings.TrimSpace(span.Text()))
		})
		// Unplayed matches carry no score labels, goals stay empty
		if len(scores) >= 2 && numericRe.MatchString(scores[0]) && numericRe.MatchString(scores[1]) {
			fixture.HomeGoals = scores[0]
			fixture.AwayGoals = scores[1]
		}

		href, ok := container.Find("a[href*='/matches/']").First().Attr("href")
		if !ok || href == "" {
			return
		}
		fixture.URL = baseURL + href

		fixtures = append(fixtures, fixture)
	})
	return fixtures, nil
}

// ScrapeMatchXG renders a match page and reads the xG pair from the
// statistics block labelled "Expected goals"
func (s *Soccerway) ScrapeMatchXG(ctx context.Context, matchURL string) (string, string, error) {
	if err := s.wait(ctx, 0); err != nil {
		return "", "", err
	}

	browserCtx, cancel := s.browserContext(ctx)
	defer cancel()

	logger.Debug("Loading match page:", matchURL)
	xpathLabel := "//span[contains(text(),'Expected goals')]"
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(matchURL),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to load match page: %w", err)
	}

	dismissConsent(browserCtx)

	waitCtx, cancelWait := context.WithTimeout(browserCtx, 12*time.Second)
	defer cancelWait()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(xpathLabel, chromedp.BySearch)); err != nil {
		return "", "", fmt.Errorf("no expected goals section on %s: %w", matchURL, err)
	}

	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", "", fmt.Errorf("failed to capture match page: %w", err)
	}

	return extractExpectedGoals(html, matchURL)
}

// extractExpectedGoals walks up from the Expected goals label until an
// ancestor yields at least two numeric descendants, then takes the first
// value of each half as home and away.
func extractExpectedGoals(html, matchURL string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse match page %s: %w", matchURL, err)
	}

	var labels []*goquery.Selection
	doc.Find("span").Each(func(i int, span *goquery.Selection) {
		if strings.Contains(span.Text(), "Expected goals") && span.Children().Length() == 0 {
			labels = append(labels, span)
		}
	})
	if len(labels) == 0 {
		return "", "", fmt.Errorf("no Expected goals label on %s", matchURL)
	}

	// The second occurrence is the per-match block when both exist
	order := make([]*goquery.Selection, 0, len(labels))
	if len(labels) >= 2 {
		order = append(order, labels[1])
	}
	for i, label := range labels {
		if len(labels) >= 2 && i == 1 {
			continue
		}
		order = append(order, label)
	}

	for _, label := range order {
		container := label.Parent()
		for level := 0; level < 6 && container.Length() > 0; level++ {
			values := numericDescendants(container)
			if len(values) >= 2 {
				half := len(values) / 2
				return values[0], values[half], nil
			}
			container = container.Parent()
		}
	}
	return "", "", fmt.Errorf("no numeric xG values on %s", matchURL)
}

// numericDescendants collects numeric leaf texts under a node in document
// order, normalising decimal commas
func numericDescendants(container *goquery.Selection) []string {
	var values []string
	container.Find("*").Each(func(i int, elem *goquery.Selection) {
		if elem.Children().Length() > 0 {
			return
		}
		text := strings.ReplaceAll(strings.TrimSpace(elem.Text()), ",", ".")
		if text != "" && numericRe.MatchString(text) {
			values = append(values, text)
		}
	})
	return values
}

var _ Scraper = (*Soccerway)(nil)
