package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tableofjustice/liga/internal/logger"
	"github.com/tableofjustice/liga/pkg/config"
	"github.com/tableofjustice/liga/pkg/dashboard"
	"github.com/tableofjustice/liga/pkg/liga"
	"github.com/tableofjustice/liga/pkg/scrape"
)

const lastSpieltag = 38

func usage() {
	fmt.Fprintf(os.Stderr, `3. Liga Table of Justice - xG/xP analytics

Usage: liga <command> [flags]

Commands:
  setup       Create directories and a default config file
  scrape      Scrape fixtures and xG for matchdays
  calculate   Compute xP values and season tables
  standings   Compute the classic points table
  run         Full pipeline: scrape, calculate, standings
  dashboard   Serve the season tables over HTTP

Run 'liga <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "setup":
		err = runSetup(args)
	case "scrape":
		err = runScrape(args)
	case "calculate":
		err = runCalculate(args)
	case "standings":
		err = runStandings(args)
	case "run":
		err = runPipeline(args)
	case "dashboard":
		err = runDashboard(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// addCommonFlags registers the flags every command shares
func addCommonFlags(fs *flag.FlagSet) (configPath, logLevel *string) {
	configPath = fs.String("config", "", "path to config file (default config/config.yaml)")
	logLevel = fs.String("log-level", "", "override log level (debug, info, warn, error)")
	return configPath, logLevel
}

// loadConfig builds the configuration and wires the logger accordingly
func loadConfig(configPath, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.SetShowDateTime(true)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := os.MkdirAll(cfg.LogsDir, 0o755); err == nil {
		if err := logger.SetLogFile(filepath.Join(cfg.LogsDir, "liga.log")); err != nil {
			logger.Warn("Could not open log file:", err)
		}
	}
	return cfg, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	force := fs.Bool("force", false, "overwrite an existing config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger.Info("Created data directories under", cfg.DataDir)

	target := *configPath
	if target == "" {
		target = "config/config.yaml"
	}
	if err := config.WriteDefault(target, *force); err != nil {
		logger.Warn(err.Error())
	} else {
		logger.Info("Wrote default config:", target)
	}

	logger.Highlight("Setup complete")
	return nil
}

func runScrape(args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	spieltag := fs.Int("spieltag", 0, "matchday to scrape (0 scrapes the whole season)")
	source := fs.String("source", "", "restrict to one source (footystats or soccerway)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}
	if *source != "" {
		cfg.EnabledSources = []string{*source}
	}

	runner, err := scrape.NewRunner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if *spieltag > 0 {
		runner.ScrapeSpieltag(ctx, *spieltag)
	} else {
		runner.ScrapeRange(ctx, 1, lastSpieltag)
	}
	return ctx.Err()
}

func runCalculate(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	what := fs.String("type", "all", "what to calculate: xp, season or all")
	source := fs.String("source", "", "restrict to one source")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	sources := cfg.EnabledSources
	if *source != "" {
		sources = []string{*source}
	}

	for _, name := range sources {
		dir := cfg.SourceDir(name)

		if *what == "xp" || *what == "all" {
			logger.Highlight("Calculating xP for", name)
			if err := calculateXP(dir, cfg.MaxGoals); err != nil {
				return err
			}
		}

		if *what == "season" || *what == "all" {
			logger.Highlight("Building season tables for", name)
			for _, metric := range []string{liga.MetricXP, liga.MetricXG} {
				if err := buildSeasonTable(dir, metric); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func runStandings(args []string) error {
	fs := flag.NewFlagSet("standings", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	source := fs.String("source", "soccerway", "source whose fixtures carry final scores")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	logger.Highlight("Calculating classic standings from", *source)
	return buildSeasonTable(cfg.SourceDir(*source), liga.MetricPoints)
}

func runPipeline(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	spieltag := fs.Int("spieltag", 0, "process a single matchday (0 processes the whole season)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runner, err := scrape.NewRunner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if *spieltag > 0 {
		runner.ScrapeSpieltag(ctx, *spieltag)
	} else {
		runner.ScrapeRange(ctx, 1, lastSpieltag)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, name := range cfg.EnabledSources {
		dir := cfg.SourceDir(name)

		logger.Highlight("Calculating xP for", name)
		if err := calculateXP(dir, cfg.MaxGoals); err != nil {
			return err
		}
		for _, metric := range []string{liga.MetricXP, liga.MetricXG} {
			if err := buildSeasonTable(dir, metric); err != nil {
				return err
			}
		}
	}

	if err := buildSeasonTable(cfg.SourceDir("soccerway"), liga.MetricPoints); err != nil {
		logger.Warn("Classic standings not built:", err)
	}

	logger.Highlight("Pipeline complete")
	return nil
}

func runDashboard(args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	configPath, logLevel := addCommonFlags(fs)
	host := fs.String("host", "", "listen host override")
	port := fs.Int("port", 0, "listen port override")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}
	if *host != "" {
		cfg.Dashboard.Host = *host
	}
	if *port > 0 {
		cfg.Dashboard.Port = *port
	}

	srv := dashboard.NewServer(cfg)

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down dashboard")
		srv.Stop()
	}()

	return srv.Start()
}

// calculateXP augments every xG file in a source directory with the outcome
// model columns. Individual file failures are reported but do not abort the
// batch.
func calculateXP(dir string, maxGoals int) error {
	results, err := liga.AugmentDirectory(dir, maxGoals)
	if err != nil {
		return err
	}
	var processed, skipped, failed int
	for _, res := range results {
		switch res.Status {
		case liga.SourceProcessed:
			processed++
		case liga.SourceSkipped:
			skipped++
		case liga.SourceFailed:
			failed++
		}
	}
	logger.Info("xP calculation:", processed, "processed,", skipped, "skipped,", failed, "failed")
	return nil
}

// buildSeasonTable aggregates one metric across the matchday files of a
// source directory and writes the season table CSV next to them. A source
// with no usable data yet is not an error.
func buildSeasonTable(dir, metric string) error {
	table, _, err := liga.AggregateDirectory(dir, metric)
	if errors.Is(err, liga.ErrNoData) {
		logger.Warn("No", metric, "data found in", dir)
		return nil
	}
	if err != nil {
		return err
	}
	return liga.WriteSeasonTable(table, filepath.Join(dir, liga.SeasonTableFilename(metric)))
}
