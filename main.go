package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/echoflaresat/eclipses/config"
	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/ephem"
	"github.com/echoflaresat/eclipses/reference"
	"github.com/echoflaresat/eclipses/report"
	"github.com/echoflaresat/eclipses/search"
)

type options struct {
	configPath *string
	start, end *string
	states     *string
	dumpStates *string
	workers    *int
	bracket    *float64
	logLevel   *string
	jsonOut    *bool
	all        *bool
	check      *bool
	showHelp   *bool
}

func defineFlags(fs *flag.FlagSet) options {
	return options{
		configPath: fs.String("config", "", "TOML configuration file"),
		start:      fs.String("start", "", "Start of the search range, RFC3339 or YYYY-MM-DD (TT)"),
		end:        fs.String("end", "", "End of the search range, RFC3339 or YYYY-MM-DD (TT)"),

		states:     fs.String("states", "", "Evaluate the body states in this table instead of searching"),
		dumpStates: fs.String("dump-states", "", "Write the states of every candidate instant to this table"),

		workers:  fs.Int("workers", 0, "Parallel evaluations (0 means one per CPU)"),
		bracket:  fs.Float64("bracket", 0, "Half-width in days of the window searched around each new moon"),
		logLevel: fs.String("log-level", "", "Log level: debug, info, warn or error"),

		jsonOut: fs.Bool("json", false, "Write JSON instead of a table"),
		all:     fs.Bool("all", false, "Also list candidates that are not eclipses in the table"),
		check:   fs.Bool("check", false, "Compare classifications with the reference predictor"),

		showHelp: fs.Bool("h", false, "Show this help message"),
	}
}

func printHelp(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, `Eclipses - Solar Eclipse Classifier

Usage:
  %[1]s [options]

`, fs.Name())

	printGroup(fs, "Range", []string{"start", "end", "bracket"})
	printGroup(fs, "Ephemeris", []string{"states", "dump-states"})
	printGroup(fs, "Output", []string{"json", "all", "check"})
	printGroup(fs, "Misc", []string{"config", "workers", "log-level", "h"})
}

func printGroup(fs *flag.FlagSet, title string, keys []string) {
	w := fs.Output()
	fmt.Fprintf(w, "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(w, "  -%-12s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(w)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eclipses", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := defineFlags(fs)
	fs.Usage = func() { printHelp(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *opts.showHelp {
		printHelp(fs)
		return flag.ErrHelp
	}

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	engine, err := eclipse.NewEngine(cfg.Radii, cfg.Workers, logger)
	if err != nil {
		return err
	}

	var (
		src      eclipse.Source
		instants []time.Time
		table    *ephem.Table
	)
	if *opts.states != "" {
		table, err = ephem.LoadTable(*opts.states)
		if err != nil {
			return fmt.Errorf("load states: %w", err)
		}
		src, instants = table, table.Instants()
		logger.Info("loaded states", "path", *opts.states, "rows", table.Len())
	} else {
		src, instants, err = searchCandidates(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}

	if *opts.dumpStates != "" {
		if err := dumpStates(*opts.dumpStates, src, instants); err != nil {
			return err
		}
	}

	started := time.Now()
	var results []eclipse.Result
	if table != nil {
		results = engine.RunSets(table.Sets())
	} else {
		results = engine.Run(src, instants)
	}
	summary := eclipse.Summarize(results)
	logger.Info("run complete",
		"candidates", summary.Total,
		"eclipses", summary.Eclipses(),
		"errors", summary.Errors,
		"elapsed", time.Since(started).Round(time.Millisecond))

	if cfg.CrossCheck || *opts.check {
		mismatches := reference.CheckAll(results, logger)
		logger.Info("cross-check complete", "disagreements", len(mismatches))
	}

	if *opts.jsonOut {
		return report.NewExport(results, time.Now().UTC()).WriteJSON(stdout)
	}
	listed := results
	if !*opts.all {
		listed = eclipse.Filter(results)
	}
	if err := report.WriteTable(stdout, listed); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	return report.WriteSummary(stdout, summary)
}

// loadConfig layers the TOML file and explicitly set flags over the defaults.
func loadConfig(fs *flag.FlagSet, opts options) (config.Config, error) {
	cfg := config.Default()
	if *opts.configPath != "" {
		var err error
		if cfg, err = config.Load(*opts.configPath); err != nil {
			return config.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start":
			cfg.Start = *opts.start
		case "end":
			cfg.End = *opts.end
		case "workers":
			cfg.Workers = *opts.workers
		case "bracket":
			cfg.BracketDays = *opts.bracket
		case "log-level":
			cfg.LogLevel = *opts.logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func searchCandidates(ctx context.Context, cfg config.Config, logger *slog.Logger) (eclipse.Source, []time.Time, error) {
	start, end, err := cfg.Range()
	if err != nil {
		return nil, nil, err
	}
	provider, err := ephem.NewCached(ephem.NewMeeus(), cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}

	searchOpts := search.DefaultOptions()
	searchOpts.Bracket = cfg.Bracket()
	searchOpts.Workers = cfg.Workers

	instants, err := search.Candidates(ctx, provider, start, end, searchOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate search: %w", err)
	}
	logger.Info("candidates found",
		"provider", provider.Name(),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"count", len(instants),
		"cached_states", provider.Len())
	return provider, instants, nil
}

func dumpStates(path string, src eclipse.Source, instants []time.Time) error {
	sets := make([]eclipse.BodySet, 0, len(instants))
	for _, t := range instants {
		set, err := src.State(t)
		if err != nil {
			return fmt.Errorf("state at %s: %w", t.Format(time.RFC3339), err)
		}
		sets = append(sets, set)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ephem.WriteTable(f, sets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
