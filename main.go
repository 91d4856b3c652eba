package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	// Register target dialects
	_ "github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/mysql"
	_ "github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/postgres"
)

// Version is set at build time via ldflags
var Version = "dev"

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "heritage-importer",
		Short:         "Import the legacy heritage databases into the inventory schema",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newValidateCmd(), newImageSyncCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "\nFatal error: %v\n", err)
	os.Exit(1)
}
