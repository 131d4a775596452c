package tableio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/drygas/internal/table"
)

// Querier is the read side of a PostgreSQL connection.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QueryTable runs sql and collects the result set into a table. Column
// order follows the select list; SQL NULL becomes a null cell.
func QueryTable(ctx context.Context, db Querier, sql string, args ...any) (*table.Table, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var out []table.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		row := make(table.Row, len(columns))
		for i, v := range values {
			if c := cellFromPG(v); !c.IsNull() {
				row[columns[i]] = c
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}

	return table.New(columns, out)
}

// LoadPGTable reads every row of the named relation. name may be
// schema-qualified ("lab.master_runs"); each part is quoted as an identifier.
// Rows are sorted by the orderBy columns, or by the first column when none
// are given, so positional alignment sees the same order on every run.
func LoadPGTable(ctx context.Context, db Querier, name string, orderBy ...string) (*table.Table, error) {
	ident, err := parseIdentifier(name)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(orderBy)
	if err != nil {
		return nil, err
	}
	return QueryTable(ctx, db, "SELECT * FROM "+ident.Sanitize()+" ORDER BY "+order)
}

// orderClause quotes each column; an empty list orders by ordinal 1.
func orderClause(columns []string) (string, error) {
	if len(columns) == 0 {
		return "1", nil
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			return "", fmt.Errorf("invalid order column in %q", strings.Join(columns, ","))
		}
		parts[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(parts, ", "), nil
}

func parseIdentifier(name string) (pgx.Identifier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("table not found: empty table name")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("table not found: invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("table not found: invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// cellFromPG converts a value decoded by pgx into a cell, keeping numerics
// in their exact decimal form.
func cellFromPG(v any) table.Cell {
	switch x := v.(type) {
	case pgtype.Numeric:
		s, ok := numericText(x)
		if !ok {
			return table.Null()
		}
		return table.Value(s)
	case [16]byte:
		return table.Value(uuid.UUID(x).String())
	default:
		return table.FromAny(v)
	}
}

// numericText renders a numeric as plain decimal text ("12.50", "-3", "0.007").
func numericText(n pgtype.Numeric) (string, bool) {
	if !n.Valid {
		return "", false
	}
	if n.NaN {
		return "NaN", true
	}
	switch n.InfinityModifier {
	case pgtype.Infinity:
		return "Infinity", true
	case pgtype.NegativeInfinity:
		return "-Infinity", true
	}
	if n.Int == nil {
		return "0", true
	}

	digits := n.Int.String()
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	exp := int(n.Exp)
	switch {
	case exp > 0:
		digits += strings.Repeat("0", exp)
	case exp < 0:
		scale := -exp
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if neg {
		digits = "-" + digits
	}
	return digits, true
}
