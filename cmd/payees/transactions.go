package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "txns"},
		Short:   "Record and inspect ledger transactions",
	}
	cmd.AddCommand(transactionsAddCmd(), transactionsListCmd(), transactionsVoidCmd())
	return cmd
}

func transactionsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a deposit, withdrawal or transfer.

Amounts are always positive; --type carries the direction. A transaction can be
split: every --split takes a signed amount in the account's currency and an
optional note, e.g. --split 80:rent --split=-5:fee. Positive split amounts count
as income and negative ones as expense.`,
		Example: `  payees transactions add --account chk --payee "ACME Corp" --type deposit --amount 2500
  payees transactions add --account chk --payee Landlord --type withdrawal --amount 1000 --date 2024-01-03`,
		Args: cobra.NoArgs,
		RunE: runTransactionsAdd,
	}

	cmd.Flags().String("id", "", "transaction id (generated when empty)")
	cmd.Flags().String("account", "", "account id")
	cmd.Flags().String("payee", "", "payee name")
	cmd.Flags().String("type", "withdrawal", "deposit, withdrawal or transfer")
	cmd.Flags().String("amount", "", "amount in the account currency")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD or YYYY-MM-DD HH:MM (default now)")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().StringArray("split", nil, "split entry AMOUNT[:NOTES], repeatable")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runTransactionsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	id, _ := flags.GetString("id")
	accountID, _ := flags.GetString("account")
	payeeName, _ := flags.GetString("payee")
	typeText, _ := flags.GetString("type")
	amountText, _ := flags.GetString("amount")
	dateText, _ := flags.GetString("date")
	notes, _ := flags.GetString("notes")
	splitTexts, _ := flags.GetStringArray("split")

	txnType, err := model.ParseTransactionType(typeText)
	if err != nil {
		return common.NewUserError("invalid --type", err)
	}
	amount, err := parseAmount(amountText)
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return common.NewUserError("amount must not be negative; use --type to set the direction", nil)
	}
	date, err := parseDateFlag(dateText, time.Now())
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}

	txn := model.Transaction{
		ID:        id,
		AccountID: accountID,
		Date:      date,
		Amount:    amount,
		Type:      txnType,
		Notes:     notes,
	}

	splits, err := parseSplits(id, splitTexts)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if payeeName != "" {
		payee := model.Payee{ID: model.PayeeIDFromName(payeeName), Name: strings.TrimSpace(payeeName)}
		if err := store.SavePayee(ctx, &payee); err != nil {
			return fmt.Errorf("failed to save payee: %w", err)
		}
		txn.PayeeID = payee.ID
	}

	inserted, err := store.SaveTransactions(ctx, []model.Transaction{txn}, splits)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	out := cmd.OutOrStdout()
	if inserted == 0 {
		_, err = fmt.Fprintln(out, cli.FormatWarning("Transaction "+id+" already exists"))
		return err
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %s %s %s on %s (%s)",
		strings.ToLower(string(txnType)), cli.FormatAmount(amount), accountID, date.Format("2006-01-02"), id)))
	return err
}

// parseSplits turns AMOUNT[:NOTES] flags into split entries for txnID.
func parseSplits(txnID string, texts []string) (map[string][]model.SplitEntry, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	entries := make([]model.SplitEntry, 0, len(texts))
	for _, text := range texts {
		amountText, notes, _ := strings.Cut(text, ":")
		amount, err := parseAmount(strings.TrimSpace(amountText))
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.SplitEntry{
			TransactionID: txnID,
			Amount:        amount,
			Notes:         strings.TrimSpace(notes),
		})
	}
	return map[string][]model.SplitEntry{txnID: entries}, nil
}

func transactionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			var filter service.TransactionFilter
			filter.AccountID, _ = flags.GetString("account")
			filter.Limit, _ = flags.GetInt("limit")
			if payee, _ := flags.GetString("payee"); payee != "" {
				filter.PayeeID = model.PayeeIDFromName(payee)
			}
			for name, target := range map[string]**time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
				text, _ := flags.GetString(name)
				if text == "" {
					continue
				}
				t, err := parseDateFlag(text, time.Time{})
				if err != nil {
					return err
				}
				*target = &t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return err
			}
			payees, err := store.GetPayees(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(payees))
			for _, p := range payees {
				names[p.ID] = p.Name
			}
			return printTransactions(cmd.OutOrStdout(), txns, names)
		},
	}

	cmd.Flags().String("account", "", "only this account")
	cmd.Flags().String("payee", "", "only this payee name")
	cmd.Flags().String("from", "", "earliest date")
	cmd.Flags().String("to", "", "latest date")
	cmd.Flags().Int("limit", 50, "maximum rows (0 for all)")

	return cmd
}

func printTransactions(w io.Writer, txns []model.Transaction, names map[string]string) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No transactions"))
		return err
	}
	for _, t := range txns {
		payee := names[t.PayeeID]
		if payee == "" {
			payee = "-"
		}
		status := ""
		if t.IsVoid() {
			status = cli.SubtleStyle.Render(" (void)")
		}
		if _, err := fmt.Fprintf(w, "%s  %-12s %-10s %12s  %-24s %s%s\n",
			t.Date.Format("2006-01-02"), t.AccountID, strings.ToLower(string(t.Type)),
			cli.FormatAmount(t.Amount), payee, t.ID, status); err != nil {
			return err
		}
	}
	return nil
}

func transactionsVoidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "void ID",
		Short: "Void a transaction so reports ignore it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yes, _ := cmd.Flags().GetBool("yes")

			if !yes {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := reader.Confirm(ctx, cmd.OutOrStdout(), "Void transaction "+args[0]+"?")
				if err != nil {
					return err
				}
				if !ok {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Left unchanged"))
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetTransactionStatus(ctx, args[0], model.StatusVoid); err != nil {
				return fmt.Errorf("failed to void transaction: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Voided "+args[0]))
			return err
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}
