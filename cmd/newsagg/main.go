package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsagg/pkg/aggregator"
	"github.com/umputun/newsagg/pkg/cache"
	"github.com/umputun/newsagg/pkg/config"
	"github.com/umputun/newsagg/pkg/content"
	"github.com/umputun/newsagg/pkg/feed"
	"github.com/umputun/newsagg/pkg/scheduler"
	"github.com/umputun/newsagg/pkg/source"
	"github.com/umputun/newsagg/server"
)

const defaultConfig = "newsagg.yml"

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"newsagg.yml" description:"configuration file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	SetupLog(opts.Debug)

	log.Printf("[INFO] starting newsagg version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires config, registry, cache, fetcher, aggregator, scheduler and server, and blocks until ctx is done
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	registry := source.NewRegistry(cfg.GetFeeds())
	for _, src := range registry.List() {
		log.Printf("[INFO] source %s (%s): %s", src.ID, src.Category, src.URL)
	}

	fetcher := feed.NewHTTPFetcher(feed.FetcherOpts{
		Timeout:     cfg.Fetch.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
		ProxyPrefix: cfg.Fetch.ProxyPrefix,
		Retries:     cfg.Fetch.Retries,
		RetryDelay:  cfg.Fetch.RetryDelay,
	})
	agg := aggregator.New(registry, cache.New(cfg.Cache.MaxAge), fetcher, aggregator.WithMaxWorkers(cfg.Fetch.MaxWorkers))

	sched := scheduler.NewScheduler(agg, cfg.Schedule.RefreshInterval)
	sched.Start(ctx)
	defer sched.Stop()

	var extractor server.Extractor
	if cfg.Extraction.Enabled {
		extractor = content.NewHTTPExtractor(cfg.Extraction.Timeout, content.WithUserAgent(cfg.Extraction.UserAgent))
	}

	srv := server.New(server.Params{
		Config:     cfg,
		Aggregator: agg,
		Registry:   registry,
		Extractor:  extractor,
		Scheduler:  sched,
		Version:    revision,
		Debug:      opts.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file. A missing default file is not an error, built-in defaults are used instead.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfig && errors.Is(err, fs.ErrNotExist) {
		log.Printf("[INFO] no %s found, using default configuration", defaultConfig)
		return config.Parse(nil)
	}
	return cfg, err
}

// SetupLog configures lgr and the standard logger, debug adds caller info and millisecond timestamps
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
