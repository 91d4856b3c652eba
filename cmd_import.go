package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/importers"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
	"github.com/ekaya-inc/heritage-importer/pkg/orchestrator"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

type importOptions struct {
	dryRun        bool
	listImporters bool
	verbose       bool
	selection     orchestrator.Selection
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run the import",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Simulate the import without writing data")
	cmd.Flags().StringVar(&opts.selection.StartAt, "start-at", "", "Start from the given importer")
	cmd.Flags().StringVar(&opts.selection.StopAt, "stop-at", "", "Stop after the given importer")
	cmd.Flags().StringVar(&opts.selection.Only, "only", "", "Run only the given importer")
	cmd.Flags().BoolVar(&opts.listImporters, "list-importers", false, "List the available importers and exit")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to the console")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) (err error) {
	entries := importers.Registry()
	if opts.listImporters {
		orchestrator.WriteImporterList(os.Stdout, entries)
		return nil
	}
	if err := importers.ValidateDependencies(entries); err != nil {
		return err
	}
	// Reject unknown keys before connecting anywhere.
	if _, err := orchestrator.Select(entries, opts.selection); err != nil {
		return err
	}

	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}
	runLog, err := logging.NewRunLogger(cfg.Import.LogDir, "import", opts.verbose)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runLog.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()
	logger := runLog.Logger

	printBanner(cfg, opts, runLog.Path)

	color.New(color.FgCyan).Println("Connecting to databases...")
	legacy, err := connectLegacy(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer legacy.Disconnect()
	color.New(color.FgGreen).Println("ok Legacy database connected")

	tgt, err := connectTarget(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer tgt.conn.Close()
	color.New(color.FgGreen).Printf("ok Target database connected (%s)\n", tgt.dialect.Type())

	tr := tracker.New()
	ic := &importers.Context{
		Reader:   legacy,
		Strategy: strategy.NewSQLStrategy(tgt.conn, tgt.dialect, tr, logger),
		Tracker:  tr,
		Logger:   logger,
		DryRun:   opts.dryRun,
	}

	summary, runErr := orchestrator.New(entries, ic, logger, os.Stdout).Run(ctx, opts.selection)
	if summary != nil {
		orchestrator.WriteSummary(os.Stdout, summary)
		logTrackerStats(logger, tr)
	}
	if runErr != nil {
		return runErr
	}
	fmt.Printf("Log file: %s\n", runLog.Path)
	if code := summary.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func printBanner(cfg *config.Config, opts importOptions, logPath string) {
	bold := color.New(color.Bold)
	bold.Println(strings.Repeat("=", 80))
	color.New(color.Bold, color.FgCyan).Println("LEGACY HERITAGE IMPORT")
	bold.Println(strings.Repeat("=", 80))

	gray := color.New(color.FgHiBlack)
	gray.Printf("Version:    %s\n", cfg.Version)
	gray.Printf("Start time: %s\n", time.Now().Format(time.RFC3339))
	gray.Printf("Dry-run:    %t\n", opts.dryRun)
	if opts.selection.Only != "" {
		gray.Printf("Only:       %s\n", opts.selection.Only)
	}
	if opts.selection.StartAt != "" {
		gray.Printf("Start at:   %s\n", opts.selection.StartAt)
	}
	if opts.selection.StopAt != "" {
		gray.Printf("Stop at:    %s\n", opts.selection.StopAt)
	}
	gray.Printf("Log file:   %s\n\n", logPath)
}

func logTrackerStats(logger *zap.Logger, tr *tracker.Tracker) {
	stats := tr.Stats()
	fields := make([]zap.Field, 0, len(stats))
	for _, et := range tracker.SortedTypes(stats) {
		fields = append(fields, zap.Int(string(et), stats[et]))
	}
	logger.Info("Tracked entities", fields...)
}
