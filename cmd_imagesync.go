package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/imagesync"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
)

type imageSyncOptions struct {
	symlink bool
	dryRun  bool
	verbose bool
}

func newImageSyncCmd() *cobra.Command {
	var opts imageSyncOptions

	cmd := &cobra.Command{
		Use:   "image-sync",
		Short: "Copy or link legacy image files and update the placeholder image rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImageSync(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.symlink, "symlink", false, "Create symbolic links instead of copying files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Log what would be synchronized without touching files or rows")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to the console")

	return cmd
}

func runImageSync(ctx context.Context, opts imageSyncOptions) (err error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}
	runLog, err := logging.NewRunLogger(cfg.Import.LogDir, "image-sync", opts.verbose)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runLog.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()
	logger := runLog.Logger
	color.New(color.FgHiBlack).Printf("Log file: %s\n", runLog.Path)

	tgt, err := connectTarget(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer tgt.conn.Close()

	syncer := imagesync.New(imagesync.NewSQLStore(tgt.conn, tgt.dialect), imagesync.Options{
		LegacyRoot: cfg.Images.LegacyRoot,
		ImagesDir:  cfg.Images.Dir,
		Symlink:    opts.symlink,
		DryRun:     opts.dryRun,
	}, logger)
	result := syncer.Run(ctx)

	color.New(color.FgGreen).Printf("Synced:  %d\n", result.Imported)
	color.New(color.FgHiBlack).Printf("Skipped: %d\n", result.Skipped)
	if n := len(result.Errors); n > 0 {
		red := color.New(color.FgRed)
		red.Printf("Errors:  %d\n", n)
		for _, msg := range result.Errors[:min(n, 10)] {
			red.Fprintf(os.Stdout, "  - %s\n", msg)
		}
		return &exitError{code: 1}
	}
	return nil
}
