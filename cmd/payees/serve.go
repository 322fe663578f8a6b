package main

import (
	"log/slog"

	"github.com/Veraticus/payee-flow/internal/config"
	"github.com/Veraticus/payee-flow/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Long: `Start an HTTP server exposing the payee report as JSON.

  GET /api/v1/reports/payees?period=last-month&sort=expense
  GET /api/v1/reports/payees?from=2024-01-01&to=2024-01-31&ignore_future=false

Query parameters default to the report.* configuration.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "127.0.0.1:8484", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	api := server.NewWebAPI(slog.Default(), server.Config{
		Addr: viper.GetString("server.addr"),
		Dependencies: server.Dependencies{
			Ledger:   store,
			Defaults: config.LoadReportSettings(viper.GetViper()),
		},
	})

	return api.Start(ctx)
}
