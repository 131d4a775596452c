package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/drygas/internal/table"
)

// IndexLabel is the selector text that asks for positional alignment.
const IndexLabel = "(Index)"

// KeyMode is how rows are paired across two tables.
type KeyMode int

const (
	// ModeIndex pairs rows by zero-based position.
	ModeIndex KeyMode = iota
	// ModeColumn pairs rows by the value of a key column.
	ModeColumn
)

// String returns "index" or "column".
func (m KeyMode) String() string {
	if m == ModeColumn {
		return "column"
	}
	return "index"
}

// MarshalJSON encodes the mode as its name.
func (m KeyMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// KeySelector chooses the alignment mode. The zero value aligns by index.
type KeySelector struct {
	Column string
}

// IndexKey selects positional alignment.
func IndexKey() KeySelector {
	return KeySelector{}
}

// ColumnKey selects alignment on the named column.
func ColumnKey(column string) KeySelector {
	return KeySelector{Column: column}
}

// ParseKeySelector reads a selector as typed by a user: "", "(Index)" and
// "index" (any case) mean positional, anything else names a column.
func ParseKeySelector(s string) KeySelector {
	s = strings.TrimSpace(s)
	if s == "" || s == IndexLabel || strings.EqualFold(s, "index") {
		return IndexKey()
	}
	return ColumnKey(s)
}

// IsIndex reports whether the selector aligns by position.
func (k KeySelector) IsIndex() bool {
	return k.Column == ""
}

func (k KeySelector) String() string {
	if k.IsIndex() {
		return IndexLabel
	}
	return k.Column
}

// AlignmentKey identifies one aligned row pair: a position under index
// alignment, or the canonical key string under column alignment.
type AlignmentKey struct {
	Mode     KeyMode
	Position int
	Value    string
}

func (k AlignmentKey) String() string {
	if k.Mode == ModeColumn {
		return k.Value
	}
	return strconv.Itoa(k.Position)
}

// MarshalJSON encodes positions as numbers and key values as strings.
func (k AlignmentKey) MarshalJSON() ([]byte, error) {
	if k.Mode == ModeColumn {
		return json.Marshal(k.Value)
	}
	return json.Marshal(k.Position)
}

// Side names one of the two tables being aligned.
type Side int

const (
	Master Side = iota
	Test
)

func (s Side) String() string {
	if s == Test {
		return "test"
	}
	return "master"
}

// Fallback explains why a requested key column could not be used.
type Fallback struct {
	RequestedKey string   `json:"requested_key"`
	MissingIn    []string `json:"missing_in"`
	Reason       string   `json:"reason"`
}

// Alignment is the ordered set of row keys for two tables together with
// per-side lookups.
type Alignment struct {
	Mode      KeyMode
	KeyColumn string
	Keys      []AlignmentKey

	// Fallback is set when a key column was requested but alignment
	// degraded to positional.
	Fallback *Fallback

	// DuplicateKeys counts, per side, rows whose key repeated an earlier
	// row. The last occurrence is the one looked up.
	DuplicateKeys [2]int

	tables [2]*table.Table
	byKey  [2]map[string]int
}

// Align pairs the rows of master and test according to sel.
//
// Positional keys run 0..max(len)-1. Column keys are the canonical string of
// the key cell (null keys read as ""), emitted in first-seen order scanning
// master then test; a repeated key within one table resolves to its last
// occurrence. If the key column is missing from either table, alignment is
// positional and Fallback says why.
func Align(master, test *table.Table, sel KeySelector) *Alignment {
	a := &Alignment{tables: [2]*table.Table{master, test}}

	sel, a.Fallback = resolveSelector(master, test, sel)
	if sel.IsIndex() {
		a.alignByIndex()
	} else {
		a.alignByColumn(sel.Column)
	}
	return a
}

// resolveSelector degrades a column selector to positional when either
// table lacks the column, and explains why.
func resolveSelector(master, test *table.Table, sel KeySelector) (KeySelector, *Fallback) {
	if sel.IsIndex() {
		return sel, nil
	}

	var missing []string
	if !master.HasColumn(sel.Column) {
		missing = append(missing, Master.String())
	}
	if !test.HasColumn(sel.Column) {
		missing = append(missing, Test.String())
	}
	if len(missing) == 0 {
		return sel, nil
	}

	return IndexKey(), &Fallback{
		RequestedKey: sel.Column,
		MissingIn:    missing,
		Reason: fmt.Sprintf("key column %q not found in %s table; comparing by row position",
			sel.Column, strings.Join(missing, " and ")),
	}
}

func (a *Alignment) alignByIndex() {
	a.Mode = ModeIndex
	n := max(a.tables[Master].Len(), a.tables[Test].Len())
	a.Keys = make([]AlignmentKey, n)
	for i := range n {
		a.Keys[i] = AlignmentKey{Mode: ModeIndex, Position: i}
	}
}

func (a *Alignment) alignByColumn(col string) {
	a.Mode = ModeColumn
	a.KeyColumn = col

	seen := make(map[string]bool)
	for side, t := range a.tables {
		idx := make(map[string]int, t.Len())
		for i := range t.Len() {
			key := t.Cell(i, col).String()
			if _, dup := idx[key]; dup {
				a.DuplicateKeys[side]++
			}
			idx[key] = i
			if !seen[key] {
				seen[key] = true
				a.Keys = append(a.Keys, AlignmentKey{Mode: ModeColumn, Value: key})
			}
		}
		a.byKey[side] = idx
	}
}

// Lookup returns the row of the given side for key, or false if that side
// has no such row.
func (a *Alignment) Lookup(side Side, key AlignmentKey) (table.Row, bool) {
	t := a.tables[side]
	if a.Mode == ModeIndex {
		if key.Position < 0 || key.Position >= t.Len() {
			return nil, false
		}
		return t.Row(key.Position), true
	}
	i, ok := a.byKey[side][key.Value]
	if !ok {
		return nil, false
	}
	return t.Row(i), true
}
