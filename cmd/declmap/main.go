package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"declmap/internal/core/app"
	"declmap/internal/core/config"
	"declmap/internal/core/errors"
	"declmap/internal/data/query"
	"declmap/internal/shared/observability"
	"declmap/internal/ui/cli"
)

var (
	configPath = flag.String("config", "./declmap.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	queryExpr  = flag.String("query", "", "Run a DQL query against the index and exit")
	check      = flag.Bool("check", false, "Run a consistency check after the scan and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("declmap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath != "./declmap.toml" {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		// No config file next to the binary: scan the working directory.
		cfg = config.Default()
	}

	if flag.NArg() > 0 {
		cfg.Paths.ProjectRoot = flag.Arg(0)
		cfg.ScanPaths = []string{flag.Arg(0)}
	}

	cfg.Index.Mode = effectiveMode(cfg.Index.Mode, *check)

	ctx := context.Background()

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, "declmap")
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() { _ = shutdown(ctx) }()
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close(ctx) }()

	result, err := a.RunScan(ctx, "scan")
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}
	for _, warning := range result.Warnings {
		slog.Warn(warning)
	}

	if *queryExpr != "" {
		qr, err := a.QueryService().Execute(ctx, *queryExpr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(formatQueryResult(qr))
		os.Exit(0)
	}

	if *check {
		report, err := a.CheckConsistency()
		if err != nil {
			fmt.Fprintln(os.Stderr, report.String())
			if errors.IsCode(err, errors.CodeInconsistent) {
				os.Exit(2)
			}
			os.Exit(1)
		}
		fmt.Println(report.String())
		os.Exit(0)
	}

	var obsServer *cli.ObservabilityServer
	if cfg.Observability.Enabled {
		obsServer = cli.NewObservabilityServer(
			fmt.Sprintf(":%d", cfg.Observability.Port),
			app.NewHealthService(a),
		)
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
		}
		defer func() { _ = obsServer.Stop(ctx) }()
	}

	if !*ui {
		printSummary(result)
	}

	if *once {
		return
	}

	if err := a.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := runUI(a); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	// Watch until interrupted.
	select {}
}

// effectiveMode forces strict mode for one-shot verification runs. A -check
// invocation that self-heals would swallow the drift it exists to report.
func effectiveMode(configured string, check bool) string {
	if check {
		return "strict"
	}
	return configured
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "declmap", "declmap.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "declmap", "declmap.log")
	}

	return "declmap.log"
}

func printSummary(result app.ScanResult) {
	fmt.Printf("Indexed %d files: %d packages, %d classifiers, %d callables (%d synthesized) in %v\n",
		result.FilesScanned,
		result.Stats.Packages,
		result.Stats.Classifiers,
		result.Stats.Callables,
		result.Synthesized,
		result.Duration.Round(time.Millisecond),
	)
	if len(result.Warnings) > 0 {
		fmt.Printf("%d files failed to parse (see log)\n", len(result.Warnings))
	}
}

func formatQueryResult(result query.Result) string {
	var b strings.Builder
	switch result.Target {
	case "packages":
		for _, row := range result.Packages {
			fmt.Fprintf(&b, "%s\t%d files\t%d classes\n", row.Name, row.FileCount, row.ClassCount)
		}
	case "classes":
		for _, row := range result.Classes {
			fmt.Fprintf(&b, "%s/%s\t%s\n", row.Package, row.Name, row.File)
		}
	case "files":
		for _, row := range result.Files {
			fmt.Fprintf(&b, "%s\t%s\t%d decls\n", row.Path, row.Language, row.DeclCount)
		}
	case "callables":
		for _, row := range result.Callables {
			owner := row.Owner
			if owner == "" {
				owner = "<top-level>"
			}
			marker := ""
			if row.Synthetic {
				marker = "\t(synthetic)"
			}
			fmt.Fprintf(&b, "%s/%s.%s\t%s%s\n", row.Package, owner, row.Name, row.Kind, marker)
		}
	}
	fmt.Fprintf(&b, "%d rows\n", result.Len())
	return b.String()
}
