// Package ofx imports OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spice-insights/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML opening tags at end of line missing their closing bracket.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Prefixes banks add in front of the merchant in NAME.
var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Categories inferred from the OFX transaction type.
var typeCategories = map[string]string{
	"INT":    "Interest",
	"DIV":    "Interest",
	"FEE":    "Bank Fees",
	"SRVCHG": "Bank Fees",
	"ATM":    "Cash & ATM",
}

// Statement is the content of one OFX file.
type Statement struct {
	Accounts     []model.Account
	Transactions []model.Transaction
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
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmt, err := p.ParseStatement(ctx, reader)
	if err != nil {
		return nil, err
	}
	return stmt.Transactions, nil
}

// ParseStatement parses an OFX/QFX file into accounts and transactions.
func (p *Parser) ParseStatement(ctx context.Context, reader io.Reader) (*Statement, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	out := &Statement{}
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		accountID := string(stmt.BankAcctFrom.AcctID)
		out.Accounts = append(out.Accounts, model.Account{
			ID:   accountID,
			Name: fmt.Sprintf("%v", stmt.BankAcctFrom.AcctType),
		})
		if stmt.BankTranList != nil {
			out.Transactions = append(out.Transactions, p.convertAll(stmt.BankTranList.Transactions, accountID)...)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		accountID := string(stmt.CCAcctFrom.AcctID)
		out.Accounts = append(out.Accounts, model.Account{ID: accountID, Name: "CREDITCARD"})
		if stmt.BankTranList != nil {
			out.Transactions = append(out.Transactions, p.convertAll(stmt.BankTranList.Transactions, accountID)...)
		}
	}

	slog.Info("Parsed OFX file",
		"accounts", len(out.Accounts),
		"transactions", len(out.Transactions))

	return out, nil
}

// GetAccounts extracts the sorted unique account IDs from an OFX file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	stmt, err := p.ParseStatement(ctx, reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	for _, a := range stmt.Accounts {
		if a.ID != "" && !seen[a.ID] {
			seen[a.ID] = true
			accounts = append(accounts, a.ID)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

func (p *Parser) convertAll(txns []ofxgo.Transaction, accountID string) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, p.convertTransaction(t, accountID))
	}
	return out
}

// convertTransaction converts an OFX transaction to our model. OFX amounts
// are signed with debits negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	signed, _ := ofxTx.TrnAmt.Float64()
	in, out := model.SplitAmount(signed)

	tx := model.Transaction{
		ID:          accountID + ":" + string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Description: p.extractDescription(ofxTx),
		AccountID:   accountID,
		AmountIn:    in,
		AmountOut:   out,
		Type:        fmt.Sprintf("%v", ofxTx.TrnType), // e.g., DEBIT, CHECK, PAYMENT, ATM
	}

	if category, ok := typeCategories[tx.Type]; ok {
		tx.Category = &category
	}

	tx.Hash = tx.GenerateHash()
	return tx
}

// extractDescription returns the cleanest merchant text available.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
