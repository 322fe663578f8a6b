package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/config"
	"github.com/Veraticus/payee-flow/internal/importer"
	"github.com/Veraticus/payee-flow/internal/ofx"
	"github.com/Veraticus/payee-flow/internal/plaid"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/Veraticus/payee-flow/internal/simplefin"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions into the ledger",
	}
	cmd.AddCommand(importOFXCmd(), importPlaidCmd(), importSimpleFINCmd())
	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Accounts and payees found in the statements are created as needed. Importing the
same statement twice is safe: transactions already in the ledger are skipped.`,
		Example: `  # Import single file
  payees import ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  payees import ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Parse files without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)

	var store service.LedgerWriter
	if !dryRun {
		s, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	parser := ofx.NewParser()
	progress := cli.NewImportProgress(cmd.ErrOrStderr(), len(files))
	failed := 0

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		batch, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			failed++
			progress.FileDone(0, 0)
			continue
		}

		if dryRun {
			progress.FileDone(len(batch.Transactions), 0)
			continue
		}

		res, err := importer.Save(ctx, store, batch)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
		}
		progress.FileDone(res.Inserted, res.Duplicates)
	}

	progress.Finish()

	if interrupts.WasInterrupted() {
		return ctx.Err()
	}
	if failed > 0 {
		_, err = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d file(s) could not be parsed", failed)))
		return err
	}
	return nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) (*importer.Batch, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Pull recent transactions from Plaid",
		Long: `Fetch accounts and posted transactions from Plaid and store them in the ledger.

Credentials come from plaid.client_id, plaid.secret, plaid.environment and
plaid.access_token (or PLAID_CLIENT_ID, PLAID_SECRET, PLAID_ENV, PLAID_ACCESS_TOKEN).`,
		Args: cobra.NoArgs,
		RunE: runImportPlaid,
	}

	cmd.Flags().String("from", "", "first day to fetch (default 30 days ago)")
	cmd.Flags().String("to", "", "last day to fetch (default today)")

	return cmd
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	now := time.Now()

	fromText, _ := cmd.Flags().GetString("from")
	toText, _ := cmd.Flags().GetString("to")
	start, err := parseDateFlag(fromText, now.AddDate(0, 0, -30))
	if err != nil {
		return err
	}
	end, err := parseDateFlag(toText, now)
	if err != nil {
		return err
	}

	cfg, err := config.LoadPlaidConfig()
	if err != nil {
		return fmt.Errorf("plaid is not configured: %w", err)
	}
	client, err := plaid.NewClient(*cfg)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := syncFrom(ctx, "plaid", store, client, start, end)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Plaid Import Complete",
		fmt.Sprintf("  • Accounts: %d\n  • Transactions fetched: %d\n  • Imported: %d\n  • Duplicates skipped: %d",
			res.Accounts, res.Fetched, res.Inserted, res.Duplicates)))
	return err
}

func importSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplefin",
		Short: "Pull recent transactions from a SimpleFIN bridge",
		Long: `Fetch accounts and posted transactions from SimpleFIN and store them in the ledger.

The first run claims the setup token from simplefin.token (or SIMPLEFIN_TOKEN) and
saves the resulting access URL to simplefin.state_file. Later runs reuse it.`,
		Args: cobra.NoArgs,
		RunE: runImportSimpleFIN,
	}

	cmd.Flags().String("from", "", "first day to fetch (default 30 days ago)")
	cmd.Flags().String("to", "", "last day to fetch (default today)")

	return cmd
}

func runImportSimpleFIN(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	now := time.Now()

	fromText, _ := cmd.Flags().GetString("from")
	toText, _ := cmd.Flags().GetString("to")
	start, err := parseDateFlag(fromText, now.AddDate(0, 0, -30))
	if err != nil {
		return err
	}
	end, err := parseDateFlag(toText, now)
	if err != nil {
		return err
	}

	cfg, err := config.LoadSimpleFINConfig()
	if err != nil {
		return fmt.Errorf("simplefin is not configured: %w", err)
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	accessURL := cfg.AccessURL
	if accessURL == "" {
		auth, err := simplefin.LoadOrClaimAuth(ctx, hc, cfg.Token, cfg.StateFile)
		if err != nil {
			return err
		}
		accessURL = auth.AccessURL
	}

	client, err := simplefin.NewClient(accessURL, simplefin.WithHTTPClient(hc))
	if err != nil {
		return fmt.Errorf("failed to create SimpleFIN client: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := syncFrom(ctx, "simplefin", store, client, start, end)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("SimpleFIN Import Complete",
		fmt.Sprintf("  • Accounts: %d\n  • Transactions fetched: %d\n  • Imported: %d\n  • Duplicates skipped: %d",
			res.Accounts, res.Fetched, res.Inserted, res.Duplicates)))
	return err
}

// syncFrom fetches a batch from a remote source and saves it.
func syncFrom(ctx context.Context, source string, w service.LedgerWriter, fetcher service.TransactionFetcher, start, end time.Time) (importer.Result, error) {
	batch, err := importer.FromFetcher(ctx, source, fetcher, start, end)
	if err != nil {
		return importer.Result{}, err
	}
	return importer.Save(ctx, w, batch)
}
