package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/importers"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check both database connections and the importer registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context())
		},
	}
}

func runValidate(ctx context.Context) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	color.New(color.FgCyan).Println("Validating connections...")
	var result *multierror.Error

	if err := importers.ValidateDependencies(importers.Registry()); err != nil {
		result = multierror.Append(result, err)
		red.Printf("x Importer registry: %v\n", err)
	} else {
		green.Println("ok Importer registry is ordered")
	}

	legacy, err := connectLegacy(ctx, cfg, logger)
	if err != nil {
		result = multierror.Append(result, err)
		red.Printf("x Legacy database connection failed: %s\n", logging.SanitizeError(err))
	} else {
		green.Println("ok Legacy database connection successful")
		_ = legacy.Disconnect()
	}

	tgt, err := connectTarget(ctx, cfg, logger)
	if err != nil {
		result = multierror.Append(result, err)
		red.Printf("x Target database connection failed: %s\n", logging.SanitizeError(err))
	} else {
		var version string
		if err := tgt.conn.QueryValue(ctx, &version, versionQuery(tgt.dialect.Type())); err == nil {
			green.Printf("ok Target database connection successful (%s)\n", version)
		} else {
			green.Println("ok Target database connection successful")
		}
		_ = tgt.conn.Close()
	}

	if err := result.ErrorOrNil(); err != nil {
		red.Println("\nValidation failed. Fix the errors above before importing.")
		return &exitError{code: 1}
	}
	green.Println("\nAll connections validated successfully.")
	return nil
}

func versionQuery(dialectType string) string {
	if dialectType == "sqlserver" {
		return "SELECT @@VERSION"
	}
	return "SELECT VERSION()"
}
