package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/calumari/shim/internal/check"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		var revision string
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
				break
			}
		}
		if len(revision) >= 12 {
			return revision[:12]
		}
		if revision != "" {
			return revision
		}
	}
	return "devel"
}

func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var requestPath, tablesCSV, dir, packagesCSV, format string
	var jobs int
	var watch, verbose bool
	flag.StringVar(&requestPath, "request", "", "Adapter request file (YAML) to check (required)")
	flag.StringVar(&tablesCSV, "types", "", "Comma-separated list of type table files (YAML), consulted in order")
	flag.StringVar(&dir, "dir", "", "Directory to load Go packages from for type information")
	flag.StringVar(&packagesCSV, "packages", "", "Comma-separated package patterns to load in -dir (default ./)")
	flag.StringVar(&format, "format", check.FormatText, "Report format: text, yaml or json")
	flag.IntVar(&jobs, "jobs", 0, "Maximum adapters validated concurrently (0 = one per CPU)")
	flag.BoolVar(&watch, "watch", false, "Re-run the check whenever the request or type files change")
	flag.BoolVar(&verbose, "v", false, "Verbose (debug) logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nShimcheck validates adapter definitions against type information.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -request=adapters.yaml -types=jdk.yaml,shapes.yaml\n", os.Args[0])
	}
	flag.Parse()

	if requestPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -request is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	tables := splitCSV(tablesCSV)
	patterns := splitCSV(packagesCSV)

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cmdParts := []string{"shimcheck", "-request=" + requestPath}
	if len(tables) > 0 {
		cmdParts = append(cmdParts, "-types="+strings.Join(tables, ","))
	}
	if dir != "" {
		cmdParts = append(cmdParts, "-dir="+dir)
	}
	if len(patterns) > 0 {
		cmdParts = append(cmdParts, "-packages="+strings.Join(patterns, ","))
	}
	cfg := check.Config{
		Request:  requestPath,
		Tables:   tables,
		Dir:      dir,
		Packages: patterns,
		Format:   format,
		Jobs:     jobs,
		Logger:   logger,
		Command:  strings.Join(cmdParts, " "),
		Version:  deriveVersion(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if watch {
		err := check.Watch(ctx, cfg, func(report *check.Report, err error) {
			if err != nil {
				logger.Error("check failed", "err", err)
				return
			}
			if err := report.Render(os.Stdout, cfg.Format); err != nil {
				logger.Error("render report", "err", err)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "shimcheck: %v\n", err)
			os.Exit(1)
		}
		return
	}

	report, err := check.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shimcheck: %v\n", err)
		os.Exit(1)
	}
	if err := report.Render(os.Stdout, cfg.Format); err != nil {
		fmt.Fprintf(os.Stderr, "shimcheck: %v\n", err)
		os.Exit(1)
	}
	if report.Failed() > 0 {
		os.Exit(1)
	}
}
