package liga

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeasonTableTotalsAndRanking(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "Dynamo Dresden", Matchday: 1, Value: 2.1},
		{Team: "Dynamo Dresden", Matchday: 2, Value: 1.4},
		{Team: "Energie Cottbus", Matchday: 1, Value: 0.9},
		{Team: "Energie Cottbus", Matchday: 2, Value: 2.6},
		{Team: "Hansa Rostock", Matchday: 2, Value: 1.0},
	}

	table, err := BuildSeasonTable(records, MetricXP)
	require.NoError(t, err)
	assert.Equal(t, MetricXP, table.Metric)
	assert.Equal(t, []int{1, 2}, table.Matchdays)
	require.Len(t, table.Rows, 3)

	// Dresden and Cottbus tie on 3.5, name ascending breaks the tie
	assert.Equal(t, "Dynamo Dresden", table.Rows[0].Team)
	assert.InDelta(t, 3.5, table.Rows[0].Total, 1e-9)
	assert.Equal(t, "Energie Cottbus", table.Rows[1].Team)
	assert.InDelta(t, 3.5, table.Rows[1].Total, 1e-9)
	assert.Equal(t, "Hansa Rostock", table.Rows[2].Team)
	assert.InDelta(t, 1.0, table.Rows[2].Total, 1e-9)
}

// A team that missed a matchday has no cell there, and its total must sum
// only the matchdays it played. Missing is not zero.
func TestBuildSeasonTableSparseRows(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "Alemannia Aachen", Matchday: 1, Value: 1.2},
		{Team: "Alemannia Aachen", Matchday: 3, Value: 0.8},
		{Team: "Viktoria Köln", Matchday: 2, Value: 2.0},
	}

	table, err := BuildSeasonTable(records, MetricXG)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, table.Matchdays)

	aachen := table.Team("Alemannia Aachen")
	require.NotNil(t, aachen)
	assert.InDelta(t, 2.0, aachen.Total, 1e-9)
	assert.True(t, math.IsNaN(aachen.Value(2)), "missed matchday must read as missing")
	assert.InDelta(t, 1.2, aachen.Value(1), 1e-9)
}

// Matchday columns must come out numerically ascending even when the input
// arrives in string-ish order (1, 10, 2).
func TestBuildSeasonTableMatchdayOrder(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "1860 München", Matchday: 10, Value: 1.0},
		{Team: "1860 München", Matchday: 2, Value: 1.0},
		{Team: "1860 München", Matchday: 1, Value: 1.0},
	}

	table, err := BuildSeasonTable(records, MetricXP)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 10}, table.Matchdays)
}

func TestBuildSeasonTableTieBreakByName(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "Waldhof Mannheim", Matchday: 1, Value: 3},
		{Team: "Arminia Bielefeld", Matchday: 1, Value: 3},
		{Team: "Rot-Weiss Essen", Matchday: 1, Value: 3},
	}

	table, err := BuildSeasonTable(records, MetricPoints)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Arminia Bielefeld", table.Rows[0].Team)
	assert.Equal(t, "Rot-Weiss Essen", table.Rows[1].Team)
	assert.Equal(t, "Waldhof Mannheim", table.Rows[2].Team)
}

func TestBuildSeasonTableSkipsUnusableRecords(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "", Matchday: 1, Value: 2.0},
		{Team: "SC Verl", Matchday: 0, Value: 2.0},
		{Team: "SC Verl", Matchday: 2, Value: math.NaN()},
		{Team: "SC Verl", Matchday: 2, Value: 1.5},
	}

	table, err := BuildSeasonTable(records, MetricXP)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 1.5, table.Rows[0].Total, 1e-9)
	assert.Equal(t, []int{2}, table.Matchdays)
}

func TestBuildSeasonTableLaterRecordWins(t *testing.T) {
	records := []TeamMatchdayRecord{
		{Team: "SC Verl", Matchday: 4, Value: 1.1},
		{Team: "SC Verl", Matchday: 4, Value: 2.2},
	}

	table, err := BuildSeasonTable(records, MetricXP)
	require.NoError(t, err)
	assert.InDelta(t, 2.2, table.Rows[0].Value(4), 1e-9, "a rescrape replaces the earlier cell")
}

func TestBuildSeasonTableNoData(t *testing.T) {
	_, err := BuildSeasonTable(nil, MetricXP)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = BuildSeasonTable([]TeamMatchdayRecord{
		{Team: "", Matchday: 1, Value: 1.0},
	}, MetricXP)
	assert.ErrorIs(t, err, ErrNoData, "all-unusable input is indistinguishable from empty")
}

func TestSeasonTableTeamLookup(t *testing.T) {
	table, err := BuildSeasonTable([]TeamMatchdayRecord{
		{Team: "VfL Osnabrück", Matchday: 1, Value: 1.0},
	}, MetricXP)
	require.NoError(t, err)
	assert.NotNil(t, table.Team("VfL Osnabrück"))
	assert.Nil(t, table.Team("FC Ingolstadt"))
}
