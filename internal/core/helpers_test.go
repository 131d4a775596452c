package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/drygas/internal/table"
)

// mkTable builds a table from positional rows. A nil entry is a null cell.
func mkTable(t *testing.T, cols []string, rows ...[]any) *table.Table {
	t.Helper()
	out := make([]table.Row, len(rows))
	for i, vals := range rows {
		require.Len(t, vals, len(cols), "row %d", i)
		r := make(table.Row, len(cols))
		for j, v := range vals {
			r[cols[j]] = table.FromAny(v)
		}
		out[i] = r
	}
	tbl, err := table.New(cols, out)
	require.NoError(t, err)
	return tbl
}

// reversed returns t with its rows in reverse order.
func reversed(t *testing.T, tbl *table.Table) *table.Table {
	t.Helper()
	rows := make([]table.Row, tbl.Len())
	for i := range tbl.Len() {
		rows[tbl.Len()-1-i] = tbl.Row(i)
	}
	out, err := table.New(tbl.Columns(), rows)
	require.NoError(t, err)
	return out
}

func keySet(records []DiffRecord) map[string]bool {
	set := make(map[string]bool)
	for _, r := range records {
		set[r.Key.String()] = true
	}
	return set
}
