// Package ofx turns deposits in OFX/QFX bank statements into contributions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// SourcePrefix marks contributions imported from OFX files.
const SourcePrefix = "ofx:"

// ErrNoStatements is returned when a file holds no bank statements.
var ErrNoStatements = errors.New("no bank statements in OFX file")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser reads OFX/QFX statements.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Close SGML tags that end a line without '>'.
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

// ParseContributions returns one contribution toward goalID for every
// credit in the file's bank statements. Debits are skipped. When account is
// set, only that account's statements are read.
func (p *Parser) ParseContributions(ctx context.Context, reader io.Reader, goalID int64, account string) ([]model.Contribution, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var contributions []model.Contribution
	statements, skipped := 0, 0

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		accountID := string(stmt.BankAcctFrom.AcctID)
		if account != "" && accountID != account {
			continue
		}
		statements++
		if stmt.BankTranList == nil {
			continue
		}

		for _, ofxTx := range stmt.BankTranList.Transactions {
			c, ok := p.convertTransaction(ofxTx, accountID, goalID)
			if !ok {
				skipped++
				continue
			}
			contributions = append(contributions, c)
		}
	}

	if len(resp.CreditCard) > 0 {
		slog.Debug("ignoring credit card statements", "count", len(resp.CreditCard))
	}
	if statements == 0 {
		return nil, ErrNoStatements
	}

	slog.Debug("parsed OFX file",
		"contributions", len(contributions),
		"skipped_debits", skipped,
		"bank_statements", statements)

	return contributions, nil
}

// convertTransaction maps a credit to a contribution; ok is false for debits.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string, goalID int64) (model.Contribution, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(4))
	if err != nil || !amount.IsPositive() {
		return model.Contribution{}, false
	}

	return model.Contribution{
		GoalID:      goalID,
		Amount:      amount,
		Type:        fmt.Sprintf("%v", ofxTx.TrnType),
		Description: p.extractDescription(ofxTx),
		Source:      Source(accountID, string(ofxTx.FiTID)),
		Date:        ofxTx.DtPosted.Time,
	}, true
}

// Source identifies an imported transaction so re-imports can be detected.
func Source(accountID, fitID string) string {
	return SourcePrefix + accountID + ":" + fitID
}

// extractDescription tries to get a clean payer name from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"ACH CREDIT ",
		"DIRECT DEPOSIT ",
		"DIRECT DEP ",
		"TRANSFER FROM ",
		"ONLINE TRANSFER FROM ",
		"MOBILE DEPOSIT ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"CREDIT",
		"DEPOSIT",
		"TRANSFER",
		"DIRECT DEPOSIT",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts returns the sorted bank account IDs in the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
