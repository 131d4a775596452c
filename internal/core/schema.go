package core

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/drygas/internal/table"
)

// UnionColumns returns the sorted, deduplicated union of both tables'
// column names. The result does not depend on input column order.
func UnionColumns(a, b *table.Table) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range []*table.Table{a, b} {
		for _, c := range t.Columns() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Unify reindexes both tables onto their union schema. Columns absent from
// a table are all-null in its reindexed copy. Two empty tables give an
// empty schema.
func Unify(a, b *table.Table) (schema []string, a2, b2 *table.Table, err error) {
	schema = UnionColumns(a, b)

	a2, err = a.Reindex(schema)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reindex master: %w", err)
	}
	b2, err = b.Reindex(schema)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reindex test: %w", err)
	}
	return schema, a2, b2, nil
}
