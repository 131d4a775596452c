package core

import "github.com/JonMunkholm/drygas/internal/table"

// Export column names. The shapes are readable by the same table loaders
// used for input.
var (
	DiffColumns  = []string{"Key", "Column", "Master", "Test"}
	IssueColumns = []string{"Row", "Column", "Value", "Issue"}
)

// DiffTable returns diff records as a table with DiffColumns. Null cells
// stay null.
func DiffTable(records []DiffRecord) *table.Table {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{
			"Key":    table.Value(r.Key.String()),
			"Column": table.Value(r.Column),
			"Master": r.Master,
			"Test":   r.Test,
		}
	}
	return table.MustNew(DiffColumns, rows)
}

// IssueTable returns validation issues as a table with IssueColumns. The
// Row column carries each issue's RowKey.
func IssueTable(issues []ValidationIssue) *table.Table {
	rows := make([]table.Row, len(issues))
	for i, is := range issues {
		rows[i] = table.Row{
			"Row":    table.Value(is.RowKey),
			"Column": table.Value(is.Column),
			"Value":  is.Value,
			"Issue":  table.Value(string(is.Kind)),
		}
	}
	return table.MustNew(IssueColumns, rows)
}
