// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the nominal direction of a transaction.
type TransactionType string

const (
	// TypeDeposit is money coming into an account.
	TypeDeposit TransactionType = "DEPOSIT"
	// TypeWithdrawal is money leaving an account.
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	// TypeTransfer moves money between two accounts and never counts towards a payee.
	TypeTransfer TransactionType = "TRANSFER"
)

// ParseTransactionType converts user or file input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEPOSIT", "CREDIT", "INCOME":
		return TypeDeposit, nil
	case "WITHDRAWAL", "DEBIT", "EXPENSE":
		return TypeWithdrawal, nil
	case "TRANSFER":
		return TypeTransfer, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// TransactionStatus is the reconciliation state of a transaction.
type TransactionStatus string

// Transaction status constants.
const (
	StatusNone       TransactionStatus = ""
	StatusReconciled TransactionStatus = "R"
	StatusVoid       TransactionStatus = "V"
	StatusFollowUp   TransactionStatus = "F"
	StatusDuplicate  TransactionStatus = "D"
)

// Transaction represents a single financial transaction in an account's native currency.
type Transaction struct {
	Date      time.Time
	ID        string
	AccountID string
	PayeeID   string
	Notes     string
	Hash      string
	Type      TransactionType
	Status    TransactionStatus
	Amount    decimal.Decimal // always non-negative; Type carries the direction
}

// IsVoid reports whether the transaction has been voided.
func (t *Transaction) IsVoid() bool {
	return t.Status == StatusVoid
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.PayeeID,
		t.AccountID,
		t.Type)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// SplitEntry is one signed sub-entry of a split transaction.
type SplitEntry struct {
	TransactionID string
	Notes         string
	Amount        decimal.Decimal
	ID            int64
}
