package liga

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tableofjustice/liga/internal/logger"
)

// SourceStatus classifies what happened to one matchday source file during a
// batch run, so callers and tests can assert on which condition occurred
// instead of grepping logs.
type SourceStatus int

const (
	SourceProcessed SourceStatus = iota
	SourceSkipped
	SourceFailed
)

func (s SourceStatus) String() string {
	switch s {
	case SourceProcessed:
		return "processed"
	case SourceSkipped:
		return "skipped"
	case SourceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SourceResult is the typed outcome of handling one source file. Err explains
// a skip or failure; it is nil for processed files.
type SourceResult struct {
	Path     string
	Matchday int
	Status   SourceStatus
	Err      error
}

// ReadRows reads a CSV file with a header row into map-rows keyed by column
// name, preserving the header order for later rewriting
func ReadRows(path string) ([]map[string]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV file %s", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []map[string]string
	for i, record := range records[1:] {
		if len(record) < len(header) {
			logger.Warn("Skipping incomplete record at row", i+2, "in", path)
			continue
		}
		row := make(map[string]string, len(header))
		for j, value := range record {
			if j < len(header) {
				row[header[j]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// WriteRows writes map-rows back out under the given header order
func WriteRows(path string, header []string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// outcomeColumns are appended to a per-match source row by augmentation;
// the results stay alongside the inputs rather than in a separate file
var outcomeColumns = []string{"home_xP", "away_xP", "home_win_prob", "draw_prob", "away_win_prob"}

// AugmentMatchFile reads one per-match CSV carrying home_xG/away_xG columns,
// computes the match outcome model for every row and writes a copy with the
// xP and probability columns appended, named <stem>_xp.csv.
//
// Files without xG columns and files already carrying xP columns are
// skipped, not failed.
func AugmentMatchFile(path string, maxGoals int) SourceResult {
	rows, header, err := ReadRows(path)
	if err != nil {
		return SourceResult{Path: path, Status: SourceFailed, Err: err}
	}

	cols := make(map[string]bool, len(header))
	for _, c := range header {
		cols[c] = true
	}
	if !cols["home_xG"] || !cols["away_xG"] {
		return SourceResult{Path: path, Status: SourceSkipped,
			Err: fmt.Errorf("%s has no home_xG/away_xG columns", filepath.Base(path))}
	}
	if cols["home_xP"] && cols["away_xP"] {
		return SourceResult{Path: path, Status: SourceSkipped,
			Err: fmt.Errorf("%s already has xP columns", filepath.Base(path))}
	}

	for _, row := range rows {
		outcome := ComputeMatchOutcome(parseCell(row["home_xG"]), parseCell(row["away_xG"]), maxGoals).Rounded()
		row["home_xP"] = formatCell(outcome.HomeXP)
		row["away_xP"] = formatCell(outcome.AwayXP)
		row["home_win_prob"] = formatCell(outcome.HomeWinProb)
		row["draw_prob"] = formatCell(outcome.DrawProb)
		row["away_win_prob"] = formatCell(outcome.AwayWinProb)
	}

	outPath := augmentedPath(path)
	outHeader := append(append([]string{}, header...), outcomeColumns...)
	if err := WriteRows(outPath, outHeader, rows); err != nil {
		return SourceResult{Path: path, Status: SourceFailed, Err: err}
	}

	logger.Info("Added xP calculations for", len(rows), "matches:", filepath.Base(outPath))
	return SourceResult{Path: path, Status: SourceProcessed}
}

// AugmentDirectory runs AugmentMatchFile over every xG file in a source
// directory. Individual failures are logged and reported, never fatal.
func AugmentDirectory(dir string, maxGoals int) ([]SourceResult, error) {
	files, err := listSourceFiles(dir, "_xg.csv")
	if err != nil {
		return nil, err
	}

	var results []SourceResult
	for _, path := range files {
		res := AugmentMatchFile(path, maxGoals)
		switch res.Status {
		case SourceSkipped:
			logger.Debug("Skipping", res.Err)
		case SourceFailed:
			logger.Error("Failed to augment", res.Err)
		}
		results = append(results, res)
	}
	return results, nil
}

// AggregateDirectory builds the season table for one metric from the matchday
// files in a source directory. A file whose name yields no matchday number is
// skipped with a warning; a corrupt file is skipped with an error; both are
// reported in the results. ErrNoData is returned when nothing usable remains.
func AggregateDirectory(dir, metric string) (*SeasonTable, []SourceResult, error) {
	files, err := listSourceFiles(dir, metricFileSuffix(metric))
	if err != nil {
		return nil, nil, err
	}

	rule := RuleForMetric(metric)

	var records []TeamMatchdayRecord
	var results []SourceResult
	for _, path := range files {
		name := filepath.Base(path)

		matchday, ok := ParseMatchdayNumber(name)
		if !ok {
			logger.Warn("Cannot determine matchday number, skipping", name)
			results = append(results, SourceResult{Path: path, Status: SourceSkipped,
				Err: fmt.Errorf("no matchday number in %s", name)})
			continue
		}

		rows, _, err := ReadRows(path)
		if err != nil {
			logger.Error("Failed to read matchday source, skipping", name, err)
			results = append(results, SourceResult{Path: path, Matchday: matchday, Status: SourceFailed, Err: err})
			continue
		}

		extracted := ExtractRecords(rows, matchday, rule)
		logger.Debug("Extracted", len(extracted), metric, "records from", name)
		records = append(records, extracted...)
		results = append(results, SourceResult{Path: path, Matchday: matchday, Status: SourceProcessed})
	}

	table, err := BuildSeasonTable(records, metric)
	if err != nil {
		return nil, results, err
	}
	logger.Info("Created season", metric, "table:", len(table.Rows), "teams,", len(table.Matchdays), "matchdays")
	return table, results, nil
}

// WriteSeasonTable renders a season table to CSV: one row per team, matchday
// columns ascending, a trailing total column, missing cells left empty.
// An existing file is fully overwritten.
func WriteSeasonTable(table *SeasonTable, path string) error {
	header := []string{"Team"}
	for _, md := range table.Matchdays {
		header = append(header, fmt.Sprintf("spieltag-%d", md))
	}
	header = append(header, "Total_"+table.Metric)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Team)
		for _, md := range table.Matchdays {
			record = append(record, formatCell(row.Value(md)))
		}
		record = append(record, formatCell(row.Total))
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	logger.Info("Saved season", table.Metric, "table:", path)
	return nil
}

// SeasonTableFilename names the season table output for a metric
func SeasonTableFilename(metric string) string {
	return fmt.Sprintf("season_%s.csv", strings.ToLower(metric))
}

// metricFileSuffix maps a metric onto the matchday files that carry it
func metricFileSuffix(metric string) string {
	if strings.EqualFold(metric, MetricPoints) {
		return "_fixtures.csv"
	}
	return "_" + strings.ToLower(metric) + ".csv"
}

// listSourceFiles returns the matchday files in a directory with the given
// suffix, sorted by name. Season table outputs are never inputs.
func listSourceFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) || strings.HasPrefix(name, "season_") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// augmentedPath derives the xP output path from an xG source path
func augmentedPath(path string) string {
	if strings.HasSuffix(path, "_xg.csv") {
		return strings.TrimSuffix(path, "_xg.csv") + "_xp.csv"
	}
	return strings.TrimSuffix(path, ".csv") + "_xp.csv"
}

// formatCell renders a numeric cell rounded to three decimals; NaN renders
// as an empty cell, which reads back as missing
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(RoundTo(v, 3), 'f', -1, 64)
}
