package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/config"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/Veraticus/payee-flow/internal/sheets"
	"github.com/Veraticus/payee-flow/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports",
	}
	cmd.AddCommand(reportPayeesCmd())
	return cmd
}

func reportPayeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payees",
		Short: "Income and expense per payee for a period",
		Long: `Show, for every payee, the income received from and the expense paid to it
within the period, converted to the base currency.

Voided transactions and transfers are left out. Split transactions count each
split: positive parts as income and negative parts as expense. Periods:
all, current-month, last-month, last-30-days, last-90-days, last-12-months,
current-year, last-year. --from and --to override the period bounds.`,
		Example: `  payees report payees --period last-month
  payees report payees --from 2024-01-01 --to 2024-03-31 --sort expense
  payees report payees --format json > payees.json
  payees report payees --export sheets
  payees report payees --interactive`,
		Args: cobra.NoArgs,
		RunE: runReportPayees,
	}

	flags := cmd.Flags()
	flags.String("period", model.PeriodAllTime, "named period")
	flags.String("from", "", "first date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	flags.String("to", "", "last date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	flags.String("sort", "difference", "sort by name, income, expense or difference")
	flags.Bool("ignore-future", true, "leave out transactions dated after today")
	flags.Bool("with-time", false, "compare and show times of day, not just dates")
	flags.String("title", "Payees", "report title")
	flags.String("chart", "", "chart reference shown with the expense chart")
	flags.String("format", "table", "output format (table, json)")
	flags.String("export", "", "also export to a sink (sheets)")
	flags.BoolP("interactive", "i", false, "open the interactive viewer")

	for key, flag := range map[string]string{
		"report.period":        "period",
		"report.from":          "from",
		"report.to":            "to",
		"report.sort":          "sort",
		"report.ignore_future": "ignore-future",
		"report.with_time":     "with-time",
		"report.title":         "title",
		"report.chart_output":  "chart",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func runReportPayees(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	export, _ := cmd.Flags().GetString("export")
	interactive, _ := cmd.Flags().GetBool("interactive")

	format = strings.ToLower(format)
	if format != "table" && format != "json" {
		return common.NewUserError(fmt.Sprintf("unknown format %q (use table or json)", format), common.ErrInvalidConfig)
	}
	if export != "" && export != "sheets" {
		return common.NewUserError(fmt.Sprintf("unknown export target %q (use sheets)", export), common.ErrInvalidConfig)
	}

	settings := config.LoadReportSettings(viper.GetViper())
	key := settings.SortKey()
	if key == model.SortByDifference && settings.Sort != "" && !strings.EqualFold(strings.TrimSpace(settings.Sort), key.String()) {
		slog.Warn("Unknown sort key, sorting by difference", "sort", settings.Sort)
	}

	window, err := settings.Window(time.Now())
	if err != nil {
		return common.NewUserError("invalid report period", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.WarmPayeeCache(ctx); err != nil {
		slog.Debug("Failed to warm payee cache", "error", err)
	}

	rep := report.New(store)
	if err := rep.Refresh(ctx, window, settings.IgnoreFuture); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	doc := rep.Document(key, settings.Title, settings.ChartOutput)

	if export == "sheets" {
		if err := exportToSheets(cmd, doc); err != nil {
			return err
		}
	}

	if interactive {
		return tui.Run(ctx,
			tui.WithSource(rep),
			tui.WithWindow(window, settings.IgnoreFuture),
			tui.WithTitle(settings.Title, settings.ChartOutput),
			tui.WithSortKey(key),
		)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return cli.WriteJSON(out, doc)
	}
	return cli.RenderReport(out, doc)
}

func exportToSheets(cmd *cobra.Command, doc report.Document) error {
	ctx := cmd.Context()

	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured; run 'payees auth sheets' or set sheets.service_account_path", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default().With("component", "sheets"))
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}
	if err := writer.Write(ctx, doc); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	_, err = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Exported report to Google Sheets ("+cfg.SpreadsheetName+")"))
	return err
}
