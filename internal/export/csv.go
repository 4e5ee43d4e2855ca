// Package export writes and reads the two-section CSV backup of all goals
// and contributions.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ndalama/internal/format"
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
)

// Section markers and column headers.
const (
	GoalsSection         = "GOALS DATA"
	ContributionsSection = "CONTRIBUTIONS DATA"
	GoalsHeader          = "ID,Name,Description,Target,Date,IsPriority,IsPrivate,Frequency,TargetDate,Status,Type,Purpose"
	ContributionsHeader  = "ID,Amount,Type,Description,Date,GoalID,Source"
)

// Parse errors.
var (
	ErrMissingSection = errors.New("missing section")
	ErrBadHeader      = errors.New("unexpected header")
	ErrBadRow         = errors.New("malformed row")
)

// Document is the parsed content of an export file.
type Document struct {
	Goals         []model.Goal
	Contributions []model.Contribution
}

// Write renders goals and contributions as one CSV document and writes it
// to w in a single call.
func Write(w io.Writer, goals []model.Goal, contributions []model.Contribution) error {
	var buf bytes.Buffer

	buf.WriteString(GoalsSection + "\n")
	buf.WriteString(GoalsHeader + "\n")
	for _, g := range goals {
		fields := []string{
			strconv.FormatInt(g.ID, 10),
			quoted(g.Name),
			quoted(g.Description),
			g.Target.String(),
			millis(g.CreatedAt),
			strconv.FormatBool(g.IsPriority),
			strconv.FormatBool(g.IsPrivate),
			plain(format.Frequency(g.Frequency)),
			millis(g.TargetDate),
			plain(string(g.Status)),
			plain(string(g.Type)),
			plain(g.Purpose),
		}
		buf.WriteString(strings.Join(fields, ",") + "\n")
	}

	buf.WriteString("\n")
	buf.WriteString(ContributionsSection + "\n")
	buf.WriteString(ContributionsHeader + "\n")
	for _, c := range contributions {
		fields := []string{
			strconv.FormatInt(c.ID, 10),
			c.Amount.String(),
			plain(c.Type),
			quoted(c.Description),
			millis(c.Date),
			strconv.FormatInt(c.GoalID, 10),
			plain(c.Source),
		}
		buf.WriteString(strings.Join(fields, ",") + "\n")
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// quoted always wraps s in double quotes.
func quoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// plain quotes s only when it would otherwise break the row.
func plain(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoted(s)
	}
	return s
}

func millis(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Parse reads a document produced by Write.
func Parse(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	goalRows, rest, err := section(records, GoalsSection, GoalsHeader)
	if err != nil {
		return nil, err
	}
	contributionRows, _, err := section(rest, ContributionsSection, ContributionsHeader)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Goals:         make([]model.Goal, 0, len(goalRows)),
		Contributions: make([]model.Contribution, 0, len(contributionRows)),
	}
	for i, row := range goalRows {
		goal, err := parseGoal(row)
		if err != nil {
			return nil, fmt.Errorf("goal row %d: %w", i+1, err)
		}
		doc.Goals = append(doc.Goals, goal)
	}
	for i, row := range contributionRows {
		c, err := parseContribution(row)
		if err != nil {
			return nil, fmt.Errorf("contribution row %d: %w", i+1, err)
		}
		doc.Contributions = append(doc.Contributions, c)
	}
	return doc, nil
}

// section returns the data rows following marker and header, up to the
// next single-field marker row, along with the remaining records.
func section(records [][]string, marker, header string) ([][]string, [][]string, error) {
	if len(records) == 0 || len(records[0]) != 1 || records[0][0] != marker {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingSection, marker)
	}
	if len(records) < 2 || strings.Join(records[1], ",") != header {
		return nil, nil, fmt.Errorf("%w: %s", ErrBadHeader, marker)
	}

	rows := records[2:]
	for i, row := range rows {
		if len(row) == 1 && row[0] == ContributionsSection {
			return rows[:i], rows[i:], nil
		}
	}
	return rows, nil, nil
}

func parseGoal(row []string) (model.Goal, error) {
	if len(row) != 12 {
		return model.Goal{}, fmt.Errorf("%w: want 12 fields, got %d", ErrBadRow, len(row))
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Goal{}, fmt.Errorf("%w: id: %w", ErrBadRow, err)
	}
	target, err := decimal.NewFromString(row[3])
	if err != nil {
		return model.Goal{}, fmt.Errorf("%w: target: %w", ErrBadRow, err)
	}
	created, err := parseMillis(row[4])
	if err != nil {
		return model.Goal{}, err
	}
	due, err := parseMillis(row[8])
	if err != nil {
		return model.Goal{}, err
	}
	priority, err := strconv.ParseBool(row[5])
	if err != nil {
		return model.Goal{}, fmt.Errorf("%w: priority: %w", ErrBadRow, err)
	}
	private, err := strconv.ParseBool(row[6])
	if err != nil {
		return model.Goal{}, fmt.Errorf("%w: private: %w", ErrBadRow, err)
	}

	return model.Goal{
		ID:          id,
		Name:        row[1],
		Description: row[2],
		Target:      target,
		CreatedAt:   created,
		IsPriority:  priority,
		IsPrivate:   private,
		Frequency:   model.ParseFrequency(row[7]),
		TargetDate:  due,
		Status:      model.GoalStatus(row[9]),
		Type:        model.GoalType(row[10]),
		Purpose:     row[11],
	}, nil
}

func parseContribution(row []string) (model.Contribution, error) {
	if len(row) != 7 {
		return model.Contribution{}, fmt.Errorf("%w: want 7 fields, got %d", ErrBadRow, len(row))
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Contribution{}, fmt.Errorf("%w: id: %w", ErrBadRow, err)
	}
	amount, err := decimal.NewFromString(row[1])
	if err != nil {
		return model.Contribution{}, fmt.Errorf("%w: amount: %w", ErrBadRow, err)
	}
	date, err := parseMillis(row[4])
	if err != nil {
		return model.Contribution{}, err
	}
	goalID, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return model.Contribution{}, fmt.Errorf("%w: goal id: %w", ErrBadRow, err)
	}

	return model.Contribution{
		ID:          id,
		Amount:      amount,
		Type:        row[2],
		Description: row[3],
		Date:        date,
		GoalID:      goalID,
		Source:      row[6],
	}, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp: %w", ErrBadRow, err)
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms).UTC(), nil
}
