// Package simplefin fetches accounts and transactions from a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrSimpleFIN is wrapped by every error returned by the bridge.
var ErrSimpleFIN = errors.New("simplefin request failed")

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// Client implements service.TransactionFetcher against a SimpleFIN access URL.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	retryOpts  service.RetryOptions
	accessURL  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryOptions replaces the default retry policy.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(c *Client) {
		c.retryOpts = opts
	}
}

// NewClient creates a client for an already claimed access URL.
func NewClient(accessURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(accessURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid SimpleFIN access URL", common.ErrInvalidConfig)
	}

	c := &Client{
		accessURL:  strings.TrimSuffix(u.String(), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "simplefin"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetAccounts returns the accounts visible through the access URL.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	set, err := c.fetch(ctx, url.Values{"balances-only": {"1"}})
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(set.Accounts))
	for _, a := range set.Accounts {
		accounts = append(accounts, mapAccount(a))
	}
	c.logger.Info("Fetched accounts", "count", len(accounts))
	return accounts, nil
}

// GetTransactions fetches posted transactions between startDate and endDate, both days included.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, []model.Payee, error) {
	if startDate.After(endDate) {
		return nil, nil, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidDateRange)
	}

	// end-date is exclusive on the bridge side
	last := model.CalendarDay(endDate).AddDate(0, 0, 1)
	first := model.CalendarDay(startDate)
	set, err := c.fetch(ctx, url.Values{
		"start-date": {strconv.FormatInt(first.Unix(), 10)},
		"end-date":   {strconv.FormatInt(last.Unix(), 10)},
	})
	if err != nil {
		return nil, nil, err
	}

	var transactions []model.Transaction
	payees := make([]model.Payee, 0)
	seen := make(map[string]bool)
	for _, a := range set.Accounts {
		for _, tx := range a.Transactions {
			if tx.Pending {
				continue
			}
			txn, payee, err := mapTransaction(a.ID, tx)
			if err != nil {
				c.logger.Warn("Skipping SimpleFIN transaction", "transaction_id", tx.ID, "error", err)
				continue
			}
			day := model.CalendarDay(txn.Date)
			if day.Before(first) || !day.Before(last) {
				continue
			}
			transactions = append(transactions, txn)
			if !seen[payee.ID] {
				seen[payee.ID] = true
				payees = append(payees, payee)
			}
		}
	}

	c.logger.Info("Fetched transactions", "count", len(transactions))
	return transactions, payees, nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = params.Encode()

	c.logger.Debug("Requesting SimpleFIN accounts", "params", u.RawQuery)

	var set accountSet
	err = common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err), Retryable: false}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("%w: %w", ErrSimpleFIN, err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			statusErr := fmt.Errorf("%w: status %d: %s", ErrSimpleFIN, resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return &common.RetryableError{Err: statusErr, Retryable: true}
			}
			return &common.RetryableError{Err: statusErr, Retryable: false}
		}

		set = accountSet{}
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return &common.RetryableError{Err: fmt.Errorf("%w: failed to decode response: %w", ErrSimpleFIN, err), Retryable: false}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFIN bridge reported a problem", "message", msg)
	}
	return &set, nil
}

func mapAccount(a account) model.Account {
	currency := strings.ToUpper(strings.TrimSpace(a.Currency))
	// custom currencies are URLs; keep the ledger on a plain symbol
	if currency == "" || strings.Contains(currency, "://") {
		currency = "USD"
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = "SimpleFIN " + a.ID
	}
	return model.Account{ID: a.ID, Name: name, CurrencySymbol: currency}
}

// mapTransaction converts a bridge transaction. Negative amounts leave the account.
func mapTransaction(accountID string, tx transaction) (model.Transaction, model.Payee, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
	if err != nil {
		return model.Transaction{}, model.Payee{}, fmt.Errorf("invalid amount %q: %w", tx.Amount, err)
	}
	if tx.Posted <= 0 {
		return model.Transaction{}, model.Payee{}, fmt.Errorf("missing posted date")
	}

	name := tx.Payee
	if strings.TrimSpace(name) == "" {
		name = tx.Description
	}
	name = normalizeMerchant(name)
	if name == "" {
		name = "Unknown"
	}
	payee := model.Payee{ID: model.PayeeIDFromName(name), Name: name}

	txnType := model.TypeDeposit
	if amount.IsNegative() {
		txnType = model.TypeWithdrawal
	}

	txn := model.Transaction{
		Date:      time.Unix(tx.Posted, 0).UTC(),
		ID:        accountID + "_" + tx.ID,
		AccountID: accountID,
		PayeeID:   payee.ID,
		Notes:     strings.TrimSpace(tx.Memo),
		Amount:    amount.Abs(),
		Type:      txnType,
	}
	txn.Hash = txn.GenerateHash()
	return txn, payee, nil
}

var titleCaser = cases.Title(language.English)

// normalizeMerchant trims corporate suffixes and title-cases the name.
func normalizeMerchant(raw string) string {
	merchant := strings.Join(strings.Fields(raw), " ")
	for _, suffix := range []string{" LLC", " INC", " CORP"} {
		if len(merchant) > len(suffix) && strings.EqualFold(merchant[len(merchant)-len(suffix):], suffix) {
			merchant = merchant[:len(merchant)-len(suffix)]
		}
	}
	return titleCaser.String(strings.ToLower(merchant))
}
