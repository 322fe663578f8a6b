package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the ledger schema to the latest version.

Every other command migrates on startup as well; this one just does it
explicitly and reports where the database lives.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("Database migrations completed",
		"database", store.Path(),
		"schema_version", storage.ExpectedSchemaVersion)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Ledger ready at %s (schema v%d)", store.Path(), storage.ExpectedSchemaVersion)))
	return err
}
