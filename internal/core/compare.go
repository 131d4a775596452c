package core

import "github.com/JonMunkholm/drygas/internal/table"

// Comparator decides whether two cells are equivalent.
type Comparator func(a, b table.Cell) bool

// Equal is the default comparator: null equals null, null never equals a
// value, and values are equal only if their canonical strings match
// exactly. There is no numeric normalization.
func Equal(a, b table.Cell) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return a.String() == b.String()
}
