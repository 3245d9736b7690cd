package liga

import (
	"math"
	"strconv"
	"strings"
)

// Metric names understood by the aggregation pipeline. MetricXP and MetricXG
// are read straight from per-match columns; MetricPoints is derived from the
// final score with the 3-1-0 scheme. All three feed the same table builder so
// the ranking and tie-break semantics are identical across tables.
const (
	MetricXP     = "xP"
	MetricXG     = "xG"
	MetricPoints = "Points"
)

// ScoringRule turns one per-match row into up to two records, one per side.
// It is the only thing that differs between the xP/xG season tables and the
// classic standings table.
type ScoringRule func(row map[string]string, matchday int) []TeamMatchdayRecord

// RuleForMetric returns the scoring rule for a metric name
func RuleForMetric(metric string) ScoringRule {
	if strings.EqualFold(metric, MetricPoints) {
		return PointsRule
	}
	return MetricColumnRule(metric)
}

// MetricColumnRule reads the home_<metric>/away_<metric> column pair.
// A side missing its team name or value is dropped for that side only;
// partial rows are valid.
func MetricColumnRule(metric string) ScoringRule {
	homeCol := "home_" + metric
	awayCol := "away_" + metric
	return func(row map[string]string, matchday int) []TeamMatchdayRecord {
		var records []TeamMatchdayRecord
		if team := strings.TrimSpace(row["home_team"]); team != "" {
			if v := parseCell(row[homeCol]); !math.IsNaN(v) {
				records = append(records, TeamMatchdayRecord{Team: team, Matchday: matchday, Value: v})
			}
		}
		if team := strings.TrimSpace(row["away_team"]); team != "" {
			if v := parseCell(row[awayCol]); !math.IsNaN(v) {
				records = append(records, TeamMatchdayRecord{Team: team, Matchday: matchday, Value: v})
			}
		}
		return records
	}
}

// PointsRule awards league points from the final score: 3 for a win, 1 each
// for a draw. A result is inherently two-sided, so a row missing either team
// or either goal count contributes nothing.
func PointsRule(row map[string]string, matchday int) []TeamMatchdayRecord {
	home := strings.TrimSpace(row["home_team"])
	away := strings.TrimSpace(row["away_team"])
	if home == "" || away == "" {
		return nil
	}

	homeGoals, err1 := strconv.Atoi(strings.TrimSpace(row["home_goals"]))
	awayGoals, err2 := strconv.Atoi(strings.TrimSpace(row["away_goals"]))
	if err1 != nil || err2 != nil {
		return nil
	}

	var homePoints, awayPoints float64
	switch {
	case homeGoals > awayGoals:
		homePoints = 3
	case homeGoals < awayGoals:
		awayPoints = 3
	default:
		homePoints, awayPoints = 1, 1
	}

	return []TeamMatchdayRecord{
		{Team: home, Matchday: matchday, Value: homePoints},
		{Team: away, Matchday: matchday, Value: awayPoints},
	}
}

// ExtractRecords applies a scoring rule to every row of one matchday source
func ExtractRecords(rows []map[string]string, matchday int, rule ScoringRule) []TeamMatchdayRecord {
	var records []TeamMatchdayRecord
	for _, row := range rows {
		records = append(records, rule(row, matchday)...)
	}
	return records
}

// parseCell parses a numeric CSV cell; empty or malformed cells are NaN
func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
