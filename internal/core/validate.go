package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/drygas/internal/table"
)

// ValidationIssue is one rule failure for one cell.
type ValidationIssue struct {
	// Row is the zero-based position of the row in the validated table.
	Row int `json:"row"`

	// RowKey identifies the row for reports: the value of the key column
	// when one was given and present, otherwise Row as text.
	RowKey string `json:"row_key"`

	Column  string     `json:"column"`
	Value   table.Cell `json:"value"`
	Kind    IssueKind  `json:"issue"`
	Rule    string     `json:"rule,omitempty"`
	Message string     `json:"message"`
}

// ValidateOptions tunes a validation pass.
type ValidateOptions struct {
	// KeyColumn names the column whose value labels each row in issues.
	// Empty or missing from the table labels rows by position.
	KeyColumn string

	// MaxRows caps the rows checked. 0 means no cap.
	MaxRows int

	// Workers is the number of goroutines sharing rows. Values below 2 run
	// sequentially.
	Workers int
}

// ValidationResult is the output of Validate.
type ValidationResult struct {
	Issues      []ValidationIssue `json:"issues"`
	RowsChecked int               `json:"rows_checked"`
	Truncated   bool              `json:"truncated"`
}

// Validate applies rs to every row of t.
//
// Rows are visited in table order and rules in rule set order. A rule
// selects columns by name among the table's columns and skips null cells.
// A numeric rule reports OnParseFail for a value that does not parse and
// stops there; otherwise a parsed value outside the range reports
// OnRangeFail. A broken rule set fails with *ConfigurationError before any
// row is read.
func Validate(t *table.Table, rs RuleSet, opts ValidateOptions) (*ValidationResult, error) {
	rules, err := rs.compile()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNoTable
	}

	t, cut := t.Head(opts.MaxRows)
	plan := planColumns(t.Columns(), rules)

	keyCol := ""
	if opts.KeyColumn != "" && t.HasColumn(opts.KeyColumn) {
		keyCol = opts.KeyColumn
	}

	issues := mapChunks(t.Len(), opts.Workers, func(lo, hi int) []ValidationIssue {
		var out []ValidationIssue
		for i := lo; i < hi; i++ {
			row := t.Row(i)
			rowKey := strconv.Itoa(i)
			if keyCol != "" {
				rowKey = row.Get(keyCol).String()
			}
			for _, p := range plan {
				for _, col := range p.columns {
					cell := row.Get(col)
					if cell.IsNull() {
						continue
					}
					kind, msg, ok := p.rule.check(col, cell.String())
					if ok {
						continue
					}
					out = append(out, ValidationIssue{
						Row:     i,
						RowKey:  rowKey,
						Column:  col,
						Value:   cell,
						Kind:    kind,
						Rule:    p.rule.Name,
						Message: msg,
					})
				}
			}
		}
		return out
	})
	if issues == nil {
		issues = []ValidationIssue{}
	}

	return &ValidationResult{
		Issues:      issues,
		RowsChecked: t.Len(),
		Truncated:   cut,
	}, nil
}

// rulePlan is a rule with the table columns it selects, in table order.
type rulePlan struct {
	rule    compiledRule
	columns []string
}

func planColumns(columns []string, rules []compiledRule) []rulePlan {
	plan := make([]rulePlan, 0, len(rules))
	for _, r := range rules {
		var cols []string
		for _, c := range columns {
			if r.matches(c) {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			plan = append(plan, rulePlan{rule: r, columns: cols})
		}
	}
	return plan
}

// check evaluates one non-null value. ok is false when an issue applies.
func (c compiledRule) check(col, value string) (kind IssueKind, msg string, ok bool) {
	// Overflow is still a number: ParseFloat returns ±Inf with ErrRange.
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		if c.NumericRequired {
			return c.OnParseFail, c.message(c.ParseMessage, col, "Non-numeric "+col), false
		}
		return "", "", true
	}
	if c.Range.bounded() && !c.Range.Contains(v) {
		msg := c.message(c.RangeMessage, col, col+" out of range ("+c.Range.String()+")")
		if math.IsNaN(v) {
			msg += " (value is NaN)"
		}
		return c.OnRangeFail, msg, false
	}
	return "", "", true
}

func (c compiledRule) message(tmpl, col, fallback string) string {
	if tmpl == "" {
		return fallback
	}
	return strings.ReplaceAll(tmpl, "{column}", col)
}
