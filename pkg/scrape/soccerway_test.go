package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableofjustice/liga/pkg/config"
)

const soccerwayFixturesHTML = `
<html><body>
<div class="sc-f6b773a5-3">
  <a class="sc-22ef6ec-0" href="/matches/2025/08/09/germany/3-liga/dresden/verl/12345/">
    <span class="sc-1718759c-5">
      <span class="sc-1718759c-0"><span class="sc-1718759c-3 abCde">Dynamo Dresden</span></span>
      <span class="sc-1718759c-0"><span class="sc-1718759c-3 abCde">SC Verl</span></span>
    </span>
    <span class="sc-cc2791f0-1">
      <div class="sc-cc2791f0-0 default"><span class="sc-4e4c9eab-2 label score">2</span></div>
      <div class="sc-cc2791f0-0 default"><span class="sc-4e4c9eab-2 label score">1</span></div>
    </span>
  </a>
</div>
<div class="sc-f6b773a5-3">
  <a class="sc-22ef6ec-0" href="/matches/2025/08/09/germany/3-liga/cottbus/rostock/12346/">
    <span class="sc-1718759c-5">
      <span class="sc-1718759c-0"><span class="sc-1718759c-3 abCde">Energie Cottbus</span></span>
      <span class="sc-1718759c-0"><span class="sc-1718759c-3 abCde">Hansa Rostock</span></span>
    </span>
  </a>
</div>
<div class="sc-f6b773a5-3">
  <span class="sc-1718759c-3 abCde">Lonely Team</span>
</div>
</body></html>`

func TestSoccerwayParseFixtures(t *testing.T) {
	s := NewSoccerway(config.Default())

	fixtures, err := s.parseFixtures(soccerwayFixturesHTML, 1, "https://int.soccerway.com")
	require.NoError(t, err)
	require.Len(t, fixtures, 2, "container without two teams is dropped")

	first := fixtures[0]
	assert.Equal(t, 1, first.Spieltag)
	assert.Equal(t, "Dynamo Dresden", first.HomeTeam)
	assert.Equal(t, "SC Verl", first.AwayTeam)
	assert.Equal(t, "2", first.HomeGoals)
	assert.Equal(t, "1", first.AwayGoals)
	assert.Equal(t, "https://int.soccerway.com/matches/2025/08/09/germany/3-liga/dresden/verl/12345/", first.URL)

	// Match without score labels has not been played
	second := fixtures[1]
	assert.Equal(t, "Energie Cottbus", second.HomeTeam)
	assert.Empty(t, second.HomeGoals)
	assert.Empty(t, second.AwayGoals)
}

const soccerwayMatchHTML = `
<html><body>
<div class="stats">
  <div class="stat-row">
    <div><span>1.74</span></div>
    <span>Expected goals</span>
    <div><span>0,92</span></div>
  </div>
</div>
</body></html>`

func TestExtractExpectedGoals(t *testing.T) {
	home, away, err := extractExpectedGoals(soccerwayMatchHTML, "https://int.soccerway.com/matches/x")
	require.NoError(t, err)
	assert.Equal(t, "1.74", home)
	assert.Equal(t, "0.92", away, "decimal comma is normalised")
}

func TestExtractExpectedGoalsPrefersSecondBlock(t *testing.T) {
	html := `
<html><body>
<div><div>
  <span>Expected goals</span>
  <div><span>9.99</span></div>
</div></div>
<div><div>
  <div><span>1.50</span></div>
  <span>Expected goals</span>
  <div><span>1.10</span></div>
</div></div>
</body></html>`
	home, away, err := extractExpectedGoals(html, "https://int.soccerway.com/matches/x")
	require.NoError(t, err)
	assert.Equal(t, "1.50", home)
	assert.Equal(t, "1.10", away)
}

func TestExtractExpectedGoalsMissing(t *testing.T) {
	_, _, err := extractExpectedGoals("<html><body><p>nothing here</p></body></html>",
		"https://int.soccerway.com/matches/x")
	assert.Error(t, err)
}
