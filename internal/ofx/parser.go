// Package ofx reads OFX/QFX bank statement files into new transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/aclindsa/ofxgo"
)

// ErrMissingAccount is returned when no destination account is given.
var ErrMissingAccount = errors.New("import needs a destination account")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at the end of a line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// ImportOptions says where parsed transactions will be stored.
type ImportOptions struct {
	AccountID string
	Currency  string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
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

// ParseFile parses an OFX/QFX file into transactions for opts.AccountID.
// Amounts are absolute cents; the posted date becomes the transaction date.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, opts ImportOptions) ([]model.NewTransaction, error) {
	if strings.TrimSpace(opts.AccountID) == "" {
		return nil, ErrMissingAccount
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.NewTransaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			txns, err := p.convertAll(stmt.BankTranList.Transactions, opts)
			if err != nil {
				return nil, fmt.Errorf("bank account %s: %w", stmt.BankAcctFrom.AcctID, err)
			}
			transactions = append(transactions, txns...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			txns, err := p.convertAll(stmt.BankTranList.Transactions, opts)
			if err != nil {
				return nil, fmt.Errorf("card account %s: %w", stmt.CCAcctFrom.AcctID, err)
			}
			transactions = append(transactions, txns...)
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertAll(list []ofxgo.Transaction, opts ImportOptions) ([]model.NewTransaction, error) {
	out := make([]model.NewTransaction, 0, len(list))
	for _, ofxTx := range list {
		txn, err := p.convertTransaction(ofxTx, opts)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
		}
		out = append(out, txn)
	}
	return out, nil
}

// convertTransaction converts an OFX transaction to our model.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, opts ImportOptions) (model.NewTransaction, error) {
	cents, err := ratToCents(&ofxTx.TrnAmt.Rat)
	if err != nil {
		return model.NewTransaction{}, err
	}

	payee := p.extractMerchantName(ofxTx)

	var note string
	memo := strings.TrimSpace(string(ofxTx.Memo))
	switch {
	case memo != "" && !strings.EqualFold(memo, payee):
		note = memo
	case ofxTx.CheckNum != "":
		note = "Check " + string(ofxTx.CheckNum)
	}

	return model.NewTransaction{
		AccountID:   opts.AccountID,
		AmountCents: cents,
		Currency:    opts.Currency,
		Date:        model.FormatDate(ofxTx.DtPosted.Time),
		Payee:       model.StringPtr(payee),
		Note:        model.StringPtr(note),
	}, nil
}

// ratToCents converts an exact decimal amount to absolute cents, rounding
// half away from zero past the second decimal place.
func ratToCents(r *big.Rat) (int64, error) {
	scaled := new(big.Rat).Mul(r, big.NewRat(100, 1))
	scaled.Abs(scaled)

	q, rem := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(scaled.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", r.FloatString(2))
	}
	return q.Int64(), nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually the cleanest merchant name.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " date stamps.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	return genericDescriptions[strings.ToUpper(strings.TrimSpace(name))]
}

// GetAccounts returns the sorted, unique account numbers in an OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
