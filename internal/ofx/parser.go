// Package ofx reads OFX/QFX statement downloads into ledger batches.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/payee-flow/internal/importer"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a statement carries no valid CURDEF.
const DefaultCurrency = "USD"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into accounts, payees and transactions.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) (*importer.Batch, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	batch := &importer.Batch{Source: "ofx"}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		account := model.Account{
			ID:             string(stmt.BankAcctFrom.AcctID),
			Name:           accountName(stmt.BankAcctFrom.AcctType.String(), string(stmt.BankAcctFrom.AcctID)),
			CurrencySymbol: currencySymbol(stmt.CurDef),
		}
		p.processTransactions(batch, account, stmt.BankTranList)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		account := model.Account{
			ID:             string(stmt.CCAcctFrom.AcctID),
			Name:           accountName("CREDITCARD", string(stmt.CCAcctFrom.AcctID)),
			CurrencySymbol: currencySymbol(stmt.CurDef),
		}
		p.processTransactions(batch, account, stmt.BankTranList)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(batch.Transactions),
		"payees", len(batch.Payees),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return batch, nil
}

func (p *Parser) processTransactions(batch *importer.Batch, account model.Account, list *ofxgo.TransactionList) {
	if account.ID == "" {
		slog.Warn("Skipping OFX statement without account ID")
		return
	}
	batch.AddAccount(account)

	if list == nil {
		return
	}

	for _, ofxTx := range list.Transactions {
		txn, err := p.convertTransaction(batch, ofxTx, account.ID)
		if err != nil {
			slog.Warn("Skipping OFX transaction",
				"account", account.ID,
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		batch.Transactions = append(batch.Transactions, txn)
	}
}

// convertTransaction converts an OFX transaction to our model. OFX signs
// amounts (negative for debits); the ledger stores the magnitude and keeps
// the direction in the transaction type.
func (p *Parser) convertTransaction(batch *importer.Batch, ofxTx ofxgo.Transaction, accountID string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(4))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	txnType := model.TypeDeposit
	switch {
	case ofxTx.TrnType == ofxgo.TrnTypeXfer:
		txnType = model.TypeTransfer
	case amount.IsNegative():
		txnType = model.TypeWithdrawal
	}

	merchant := p.extractMerchantName(ofxTx)
	if merchant == "" {
		merchant = "Unknown"
	}

	txn := model.Transaction{
		ID:        accountID + ":" + string(ofxTx.FiTID),
		Date:      ofxTx.DtPosted.Time,
		AccountID: accountID,
		PayeeID:   batch.AddPayee(merchant),
		Amount:    amount.Abs(),
		Type:      txnType,
		Notes:     strings.TrimSpace(string(ofxTx.Memo)),
	}
	if ofxTx.CheckNum != "" {
		txn.Notes = strings.TrimSpace("check " + string(ofxTx.CheckNum) + " " + txn.Notes)
	}

	txn.Hash = txn.GenerateHash()
	return txn, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually cleaner than NAME
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"ACH CREDIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date prefix
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

func currencySymbol(c ofxgo.CurrSymbol) string {
	if ok, _ := c.Valid(); !ok {
		return DefaultCurrency
	}
	return c.String()
}

func accountName(kind, id string) string {
	suffix := id
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return "Account " + suffix
	}
	return fmt.Sprintf("%s %s", kind, suffix)
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}
