package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/spf13/cobra"
)

func currenciesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "currencies",
		Aliases: []string{"currency"},
		Short:   "Manage currencies and their base rates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			currencies, err := store.GetCurrencies(cmd.Context())
			if err != nil {
				return err
			}
			return printCurrencies(cmd.OutOrStdout(), currencies)
		},
	}

	add := &cobra.Command{
		Use:   "add SYMBOL",
		Short: "Add a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			rateText, _ := cmd.Flags().GetString("rate")

			currency := model.Currency{Symbol: strings.ToUpper(args[0]), Name: name}
			if rateText != "" {
				rate, err := parseAmount(rateText)
				if err != nil {
					return err
				}
				currency.BaseRate = &rate
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveCurrency(cmd.Context(), &currency); err != nil {
				return fmt.Errorf("failed to save currency: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Saved currency "+currency.Symbol))
			return err
		},
	}
	add.Flags().String("name", "", "display name")
	add.Flags().String("rate", "", "value of one unit in the base currency")

	setRate := &cobra.Command{
		Use:   "set-rate SYMBOL RATE",
		Short: "Set the base-currency rate of a currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if !rate.IsPositive() {
				return common.NewUserError("rate must be positive", common.ErrInvalidConfig)
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetCurrencyRate(cmd.Context(), args[0], rate); err != nil {
				return fmt.Errorf("failed to set rate: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("1 %s = %s base", strings.ToUpper(args[0]), rate.String())))
			return err
		},
	}

	cmd.AddCommand(list, add, setRate)
	return cmd
}

func printCurrencies(w io.Writer, currencies []model.Currency) error {
	if len(currencies) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No currencies yet"))
		return err
	}
	for _, c := range currencies {
		rate := cli.WarningStyle.Render("no rate")
		if c.BaseRate != nil {
			rate = c.BaseRate.String()
		}
		if _, err := fmt.Fprintf(w, "%-6s %-24s %s\n", c.Symbol, c.Name, rate); err != nil {
			return err
		}
	}
	return nil
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage ledger accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				_, err = fmt.Fprintln(out, cli.FormatInfo("No accounts yet"))
				return err
			}
			for _, a := range accounts {
				if _, err := fmt.Fprintf(out, "%-20s %-30s %s\n", a.ID, a.Name, a.CurrencySymbol); err != nil {
					return err
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add ID",
		Short: "Add or rename an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			currency, _ := cmd.Flags().GetString("currency")
			if name == "" {
				name = args[0]
			}

			account := model.Account{ID: args[0], Name: name, CurrencySymbol: strings.ToUpper(currency)}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveAccount(cmd.Context(), &account); err != nil {
				return fmt.Errorf("failed to save account: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved account %s (%s)", account.ID, account.CurrencySymbol)))
			return err
		},
	}
	add.Flags().String("name", "", "display name (defaults to the id)")
	add.Flags().String("currency", "USD", "currency symbol")

	cmd.AddCommand(list, add)
	return cmd
}

func payeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payees",
		Aliases: []string{"payee"},
		Short:   "Manage payees",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List payees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			payees, err := store.GetPayees(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(payees) == 0 {
				_, err = fmt.Fprintln(out, cli.FormatInfo("No payees yet"))
				return err
			}
			for _, p := range payees {
				if _, err := fmt.Fprintf(out, "%-36s %s\n", p.ID, p.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a payee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payee := model.Payee{ID: model.PayeeIDFromName(args[0]), Name: strings.TrimSpace(args[0])}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SavePayee(cmd.Context(), &payee); err != nil {
				return fmt.Errorf("failed to save payee: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved payee %s (%s)", payee.Name, payee.ID)))
			return err
		},
	}

	cmd.AddCommand(list, add)
	return cmd
}
