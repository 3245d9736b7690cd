package liga

import (
	"errors"
	"math"
	"sort"
)

// ErrNoData is returned when an aggregation run finds no usable records at
// all. Callers must be able to tell "found nothing" apart from a sparse but
// valid table.
var ErrNoData = errors.New("no usable matchday data")

// TeamMatchdayRecord is one team's metric value on one matchday. A missing
// value is represented by the absence of a record, never by a zero.
type TeamMatchdayRecord struct {
	Team     string
	Matchday int
	Value    float64
}

// SeasonRow is one ranked team in a season table. Values holds only the
// matchdays the team has a value for; the total sums exactly those.
type SeasonRow struct {
	Team   string
	Values map[int]float64
	Total  float64
}

// SeasonTable is a team-by-matchday matrix of one metric plus totals,
// ranked by total. It is rebuilt from scratch on every aggregation run.
type SeasonTable struct {
	Metric    string
	Matchdays []int
	Rows      []SeasonRow
}

// BuildSeasonTable assembles the season table for one metric from per-team,
// per-matchday records. Returns ErrNoData when no record is usable.
//
// Ranking is total descending with ties broken by team name ascending, so
// the result is deterministic regardless of input discovery order.
func BuildSeasonTable(records []TeamMatchdayRecord, metric string) (*SeasonTable, error) {
	cells := make(map[string]map[int]float64)
	matchdaySet := make(map[int]bool)

	for _, rec := range records {
		if rec.Team == "" || rec.Matchday < 1 || math.IsNaN(rec.Value) {
			continue
		}
		if cells[rec.Team] == nil {
			cells[rec.Team] = make(map[int]float64)
		}
		cells[rec.Team][rec.Matchday] = rec.Value
		matchdaySet[rec.Matchday] = true
	}

	if len(cells) == 0 {
		return nil, ErrNoData
	}

	matchdays := make([]int, 0, len(matchdaySet))
	for md := range matchdaySet {
		matchdays = append(matchdays, md)
	}
	sort.Ints(matchdays)

	rows := make([]SeasonRow, 0, len(cells))
	for team, values := range cells {
		total := 0.0
		for _, v := range values {
			total += v
		}
		rows = append(rows, SeasonRow{Team: team, Values: values, Total: total})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Team < rows[j].Team
	})

	return &SeasonTable{Metric: metric, Matchdays: matchdays, Rows: rows}, nil
}

// Value returns the cell for one team and matchday; NaN when missing
func (r SeasonRow) Value(matchday int) float64 {
	if v, ok := r.Values[matchday]; ok {
		return v
	}
	return math.NaN()
}

// Team returns the ranked row for a team, or nil when the team never
// appeared in any matchday
func (t *SeasonTable) Team(name string) *SeasonRow {
	for i := range t.Rows {
		if t.Rows[i].Team == name {
			return &t.Rows[i]
		}
	}
	return nil
}
