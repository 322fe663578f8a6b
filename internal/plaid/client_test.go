package plaid

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/importer"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/testutil"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "missing client ID",
			config: Config{
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid client ID is required",
		},
		{
			name: "missing secret",
			config: Config{
				ClientID:    "test-client-id",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid secret is required",
		},
		{
			name: "missing access token",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
			},
			wantErr: true,
			errMsg:  "plaid access token is required",
		},
		{
			name: "missing environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid environment is required",
		},
		{
			name: "invalid environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "invalid",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "invalid Plaid environment",
		},
		{
			name: "valid development environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "development",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "valid production environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "production",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateSentinels(t *testing.T) {
	missing := Config{ClientID: "id", Secret: "s", Environment: "sandbox"}
	assert.ErrorIs(t, missing.Validate(), common.ErrMissingConfig)

	invalid := Config{ClientID: "id", Secret: "s", Environment: "staging", AccessToken: "t"}
	assert.ErrorIs(t, invalid.Validate(), common.ErrInvalidConfig)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		wantErr bool
	}{
		{
			name: "valid config creates client",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "invalid config returns error",
			config: Config{
				ClientID: "test-client-id",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
				assert.NotNil(t, client.client)
				assert.Equal(t, tt.config.AccessToken, client.accessToken)
				assert.NotNil(t, client.logger)
				assert.NotNil(t, client.retryOpts)
			}
		})
	}
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}

	tests := []struct {
		startDate time.Time
		endDate   time.Time
		ctx       context.Context
		name      string
		errMsg    string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			startDate: time.Now().AddDate(0, -1, 0),
			endDate:   time.Now(),
			errMsg:    "context cannot be nil",
		},
		{
			name:      "start date after end date",
			ctx:       context.Background(),
			startDate: time.Now(),
			endDate:   time.Now().AddDate(0, -1, 0),
			errMsg:    "start date must be before end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := client.GetTransactions(tt.ctx, tt.startDate, tt.endDate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "basic name",
			input:    "Starbucks",
			expected: "Starbucks",
		},
		{
			name:     "lowercase to title case",
			input:    "starbucks coffee",
			expected: "Starbucks Coffee",
		},
		{
			name:     "remove LLC suffix",
			input:    "Amazon LLC",
			expected: "Amazon",
		},
		{
			name:     "remove Inc suffix",
			input:    "Apple Inc",
			expected: "Apple",
		},
		{
			name:     "remove Corp suffix",
			input:    "Microsoft Corp",
			expected: "Microsoft",
		},
		{
			name:     "remove transaction ID",
			input:    "PAYPAL 123456789",
			expected: "Paypal",
		},
		{
			name:     "preserve short numbers",
			input:    "7-ELEVEN 2345",
			expected: "7-Eleven 2345",
		},
		{
			name:     "multiple cleanups",
			input:    "amazon.com llc 987654321",
			expected: "Amazon.Com",
		},
		{
			name:     "extra spaces",
			input:    "  Google   Cloud   ",
			expected: "Google Cloud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanMerchantName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"123456", true},
		{"000000", true},
		{"12a456", false},
		{"", true}, // edge case: empty string
		{"ABC123", false},
		{"12.34", false},
		{"12 34", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := isAllDigits(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func plaidTransaction(id, date, merchant string, amount float64, category ...string) plaid.Transaction {
	pt := plaid.Transaction{}
	pt.SetTransactionId(id)
	pt.SetAccountId("acc-1")
	pt.SetDate(date)
	pt.SetName(merchant)
	pt.SetAmount(amount)
	if len(category) > 0 {
		pt.SetCategory(category)
	}
	return pt
}

func TestMapPlaidTransaction(t *testing.T) {
	tests := []struct {
		name       string
		wantPayee  string
		wantAmount string
		wantType   model.TransactionType
		pt         plaid.Transaction
	}{
		{
			name:       "positive amount is a withdrawal",
			pt:         plaidTransaction("t1", "2024-01-15", "STARBUCKS", 5.5),
			wantPayee:  "Starbucks",
			wantAmount: "5.5",
			wantType:   model.TypeWithdrawal,
		},
		{
			name:       "negative amount is a deposit",
			pt:         plaidTransaction("t2", "2024-01-31", "ACME PAYROLL LLC", -2500),
			wantPayee:  "Acme Payroll",
			wantAmount: "2500",
			wantType:   model.TypeDeposit,
		},
		{
			name:       "transfer category",
			pt:         plaidTransaction("t3", "2024-01-20", "Savings", 200, "Transfer", "Internal"),
			wantPayee:  "Savings",
			wantAmount: "200",
			wantType:   model.TypeTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, payee, err := mapPlaidTransaction(tt.pt)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPayee, payee.Name)
			assert.Equal(t, model.PayeeIDFromName(tt.wantPayee), txn.PayeeID)
			assert.True(t, testutil.Dec(tt.wantAmount).Equal(txn.Amount), "amount %s", txn.Amount)
			assert.Equal(t, tt.wantType, txn.Type)
			assert.Equal(t, "acc-1", txn.AccountID)
			assert.NotEmpty(t, txn.Hash)
		})
	}
}

func TestMapPlaidTransaction_InvalidDate(t *testing.T) {
	_, _, err := mapPlaidTransaction(plaidTransaction("t1", "15/01/2024", "Shop", 1))
	assert.Error(t, err)
}

func TestMapAccount(t *testing.T) {
	acct := mapAccount("acc-1", "Everyday Checking", "0042", "eur")
	assert.Equal(t, model.Account{ID: "acc-1", Name: "Everyday Checking 0042", CurrencySymbol: "EUR"}, acct)

	acct = mapAccount("acc-2", "", "", "")
	assert.Equal(t, "Plaid acc-2", acct.Name)
	assert.Equal(t, "USD", acct.CurrencySymbol)
}

func TestMockClientImport(t *testing.T) {
	mock := NewMockClient()
	startDate := testutil.Day(2024, 1, 1)
	endDate := testutil.Day(2024, 1, 31)

	mock.GetAccountsFn = func(_ context.Context) ([]model.Account, error) {
		return []model.Account{{ID: "acc-1", Name: "Checking", CurrencySymbol: "USD"}}, nil
	}
	mock.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, []model.Payee, error) {
		payee := model.Payee{ID: model.PayeeIDFromName("Cafe"), Name: "Cafe"}
		return []model.Transaction{{
			ID:        "tx1",
			AccountID: "acc-1",
			PayeeID:   payee.ID,
			Date:      testutil.Day(2024, 1, 10),
			Amount:    testutil.Dec("10.50"),
			Type:      model.TypeWithdrawal,
		}}, []model.Payee{payee}, nil
	}

	batch, err := importer.FromFetcher(context.Background(), "plaid", mock, startDate, endDate)
	require.NoError(t, err)

	require.Len(t, mock.GetTransactionsCalls, 1)
	assert.Equal(t, startDate, mock.GetTransactionsCalls[0].StartDate)
	assert.Equal(t, endDate, mock.GetTransactionsCalls[0].EndDate)
	assert.Equal(t, 1, mock.GetAccountsCalls)

	db := testutil.SetupTestDB(t, testutil.NewLedger().WithCurrency("USD", "1"))
	res, err := importer.Save(context.Background(), db.Storage, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	name, err := db.Storage.PayeeName(context.Background(), model.PayeeIDFromName("Cafe"))
	require.NoError(t, err)
	assert.Equal(t, "Cafe", name)

	mock.Reset()
	assert.Empty(t, mock.GetTransactionsCalls)
	assert.Equal(t, 0, mock.GetAccountsCalls)
}
