// Package plaid provides a client for interacting with the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

var validEnvs = map[string]bool{
	"sandbox":     true,
	"development": true,
	"production":  true,
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox, development or production", common.ErrInvalidConfig)
	}
	return nil
}

// Client fetches accounts and transactions from Plaid.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	if cfg.Environment == "production" {
		configuration.UseEnvironment(plaid.Production)
	} else {
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches posted transactions from Plaid within the date range.
// Payees are derived from merchant names.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, []model.Payee, error) {
	if ctx == nil {
		return nil, nil, errors.New("context cannot be nil")
	}

	if startDate.After(endDate) {
		return nil, nil, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidDateRange)
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"))

	var allTransactions []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var page []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format("2006-01-02"),
				endDate.Format("2006-01-02"),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classifyError(err, "failed to fetch transactions")
			}

			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, *c.retryOpts)

		if retryErr != nil {
			return nil, nil, retryErr
		}

		allTransactions = append(allTransactions, page...)

		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(allTransactions))

	transactions := make([]model.Transaction, 0, len(allTransactions))
	payees := make([]model.Payee, 0)
	seen := make(map[string]bool)
	for _, pt := range allTransactions {
		if pt.GetPending() {
			continue
		}
		txn, payee, err := mapPlaidTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping Plaid transaction", "transaction_id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, txn)
		if !seen[payee.ID] {
			seen[payee.ID] = true
			payees = append(payees, payee)
		}
	}

	return transactions, payees, nil
}

// GetAccounts fetches the accounts linked to the access token.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	c.logger.Info("Fetching accounts from Plaid")

	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classifyError(err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, *c.retryOpts)

	if retryErr != nil {
		return nil, retryErr
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))

	out := make([]model.Account, 0, len(accounts))
	for _, account := range accounts {
		balances := account.GetBalances()
		out = append(out, mapAccount(account.GetAccountId(), account.GetName(), account.GetMask(), balances.GetIsoCurrencyCode()))
	}
	return out, nil
}

// classifyError turns rate limits into retryable errors.
func (c *Client) classifyError(err error, action string) error {
	if plaidError := extractPlaidError(err); plaidError != nil {
		if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
			c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
			return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidError.ErrorMessage), Retryable: true}
		}
		return fmt.Errorf("%w: %s - %s", common.ErrPlaidConnection, plaidError.ErrorCode, plaidError.ErrorMessage)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func mapAccount(id, name, mask, currency string) model.Account {
	if currency == "" {
		currency = "USD"
	}
	if name == "" {
		name = "Plaid " + id
	}
	if mask != "" {
		name = fmt.Sprintf("%s %s", name, mask)
	}
	return model.Account{ID: id, Name: name, CurrencySymbol: strings.ToUpper(currency)}
}

// mapPlaidTransaction converts a Plaid transaction to our model. Plaid
// amounts are positive for money leaving the account.
func mapPlaidTransaction(pt plaid.Transaction) (model.Transaction, model.Payee, error) {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		return model.Transaction{}, model.Payee{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}

	merchantName := pt.GetMerchantName()
	if merchantName == "" {
		merchantName = pt.GetName()
	}
	merchantName = cleanMerchantName(merchantName)
	if merchantName == "" {
		merchantName = "Unknown"
	}
	payee := model.Payee{ID: model.PayeeIDFromName(merchantName), Name: merchantName}

	amount := decimal.NewFromFloat(pt.GetAmount())

	txnType := model.TypeDeposit
	switch {
	case isTransfer(pt.GetCategory()):
		txnType = model.TypeTransfer
	case amount.IsPositive():
		txnType = model.TypeWithdrawal
	}

	txn := model.Transaction{
		Date:      date,
		ID:        pt.GetTransactionId(),
		AccountID: pt.GetAccountId(),
		PayeeID:   payee.ID,
		Amount:    amount.Abs(),
		Type:      txnType,
	}
	if num := pt.GetCheckNumber(); num != "" {
		txn.Notes = "check " + num
	}

	txn.Hash = txn.GenerateHash()
	return txn, payee, nil
}

func isTransfer(categories []string) bool {
	return len(categories) > 0 && strings.EqualFold(categories[0], "Transfer")
}

// cleanMerchantName standardizes merchant names by removing common suffixes and normalizing format.
func cleanMerchantName(name string) string {
	// Convert to title case manually to avoid deprecated strings.Title
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		if word != "" {
			// Handle special cases
			runes := []rune(word)
			for j := 0; j < len(runes); j++ {
				if j == 0 || (j > 0 && !isLetter(runes[j-1])) {
					runes[j] = toUpper(runes[j])
				}
			}
			words[i] = string(runes)
		}
	}
	name = strings.Join(words, " ")

	// Handle common patterns like "MERCHANT 123456789" first
	// Use strings.Fields to split by any whitespace and rejoin with single spaces
	parts := strings.Fields(name)
	if len(parts) > 1 {
		lastPart := parts[len(parts)-1]
		// If the last part is all digits and longer than 5 chars, it's probably a transaction ID
		if len(lastPart) > 5 && isAllDigits(lastPart) {
			parts = parts[:len(parts)-1]
		}
	}

	// Reconstruct name without transaction ID
	name = strings.Join(parts, " ")

	// Remove common payment processor suffixes
	suffixes := []string{
		" Llc",
		" Inc",
		" Corp",
		" Corporation",
		" Company",
		" Co",
		" Ltd",
		" Limited",
	}

	// Keep removing suffixes until none are found (handles multiple suffixes)
	changed := true
	for changed {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	// Final trim
	return strings.TrimSpace(name)
}

// isAllDigits checks if a string contains only digits.
func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isLetter checks if a rune is a letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// toUpper converts a rune to uppercase.
func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

// Ensure Client implements the fetcher interface.
var _ service.TransactionFetcher = (*Client)(nil)
