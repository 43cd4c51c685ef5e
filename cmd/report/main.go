// Package main computes the order summary once and prints it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"order-ledger/internal/config"
	"order-ledger/internal/logger"
	"order-ledger/internal/notify"
	"order-ledger/internal/pipeline"
	"order-ledger/internal/reporting"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the command-line flags. Flags left unset keep the value from
// the config file or environment.
type options struct {
	configPath string
	envFile    string
	sourceKind string
	ordersURL  string
	ordersFile string
	format     string
	sortOrder  string
	width      int
	compact    bool
	output     string
	notify     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	fs.StringVar(&o.envFile, "env-file", ".env", "Path to .env file (ignored if missing)")
	fs.StringVar(&o.sourceKind, "source", "", "Order source: http, file, postgres, clickhouse or fixtures")
	fs.StringVar(&o.ordersURL, "url", "", "Orders JSON URL (http source)")
	fs.StringVar(&o.ordersFile, "file", "", "Orders JSON file (file source)")
	fs.StringVar(&o.format, "format", "", "Output format: markdown, csv or json")
	fs.StringVar(&o.sortOrder, "sort", "", "Order listing sort: id_asc or buy_date_desc")
	fs.IntVar(&o.width, "width", 0, "Viewport width; compact display when at or below the configured threshold")
	fs.BoolVar(&o.compact, "compact", false, "Force compact display precision")
	fs.StringVar(&o.output, "output", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&o.notify, "notify", false, "Raise a desktop alert when the summary cannot be computed")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs, nil
}

// loadConfig loads the config and applies explicitly set flags on top.
func loadConfig(o *options, fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source.Kind = o.sourceKind
		case "url":
			cfg.Source.URL = o.ordersURL
		case "file":
			cfg.Source.Path = o.ordersFile
		case "format":
			cfg.Display.Format = o.format
		case "sort":
			cfg.Display.SortOrder = o.sortOrder
		case "compact":
			cfg.Display.Compact = o.compact
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg, err := loadConfig(o, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Logs go to stderr so stdout carries only the report.
	setup, err := logger.Init(cfg.Logger(), stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: init logger: %v\n", err)
		return 1
	}
	defer setup.Shutdown(context.Background())
	notifier := notify.New(o.notify)

	p, closeSource, err := pipeline.FromConfig(ctx, cfg, setup.Logger)
	defer closeSource()
	if err != nil {
		fail(stderr, notifier, cfg.Source.Kind, err)
		return 1
	}

	compact := cfg.Display.Compact
	if o.width > 0 {
		compact = reporting.IsCompact(o.width, cfg.Display.CompactWidth)
	}

	res, err := p.Recompute(ctx, pipeline.Request{
		Compact:   compact,
		SortOrder: cfg.SortOrder(),
		Trigger:   pipeline.TriggerCLI,
	})
	if err != nil {
		fail(stderr, notifier, p.SourceName(), err)
		return 1
	}

	body, err := reporting.Render(res.View, cfg.Format())
	if err != nil {
		fmt.Fprintf(stderr, "Error: render report: %v\n", err)
		return 1
	}

	if o.output != "" {
		if err := os.WriteFile(o.output, body, 0o644); err != nil {
			fmt.Fprintf(stderr, "Error: write %s: %v\n", o.output, err)
			return 1
		}
		setup.Logger.Info("Report written", "path", o.output, "orders", len(res.Orders), "format", string(cfg.Format()))
		return 0
	}

	if _, err := stdout.Write(body); err != nil {
		return 1
	}
	return 0
}

// fail reports err as one line on stderr and, if enabled, as a desktop alert.
func fail(stderr io.Writer, n *notify.Notifier, source string, err error) {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if alertErr := n.RecomputeFailed(source, err); alertErr != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", alertErr)
	}
}
