package core

import "github.com/JonMunkholm/drygas/internal/table"

// DiffRecord is one cell that differs between master and test.
type DiffRecord struct {
	Key    AlignmentKey `json:"key"`
	Column string       `json:"column"`
	Master table.Cell   `json:"master"`
	Test   table.Cell   `json:"test"`
}

// DiffSummary describes a completed comparison.
type DiffSummary struct {
	TotalDiffs   int       `json:"total_diffs"`
	DistinctKeys int       `json:"distinct_keys_with_diff"`
	Mode         KeyMode   `json:"mode"`
	KeyColumn    string    `json:"key_column,omitempty"`
	Fallback     *Fallback `json:"fallback,omitempty"`
	MasterRows   int       `json:"master_rows"`
	TestRows     int       `json:"test_rows"`
	AlignedKeys  int       `json:"aligned_keys"`
	Truncated    bool      `json:"truncated"`

	// DuplicateKeys counts repeated keys per side (master, test) under
	// column alignment.
	DuplicateKeys [2]int `json:"duplicate_keys"`
}

// DiffResult is the output of Diff.
type DiffResult struct {
	Schema  []string     `json:"schema"`
	Records []DiffRecord `json:"records"`
	Summary DiffSummary  `json:"summary"`
}

// DiffOptions tunes a comparison.
type DiffOptions struct {
	// MaxRows caps the rows read from each table. 0 means no cap. When the
	// cap cuts rows, DiffSummary.Truncated is set.
	MaxRows int

	// Workers is the number of goroutines sharing the per-key work. Values
	// below 2 run sequentially. Output order does not depend on it.
	Workers int

	// Equal overrides the cell comparator. Nil uses Equal.
	Equal Comparator
}

// Diff compares master against test.
//
// Both tables are unified onto the sorted column union and aligned with sel.
// Then, for every key in alignment order and every schema column in order,
// the two cells are compared; a row missing on one side reads as all-null
// there. Under column alignment the key column itself is the row identity
// and is not compared.
func Diff(master, test *table.Table, sel KeySelector, opts DiffOptions) (*DiffResult, error) {
	if master == nil {
		return nil, ErrNoMaster
	}
	if test == nil {
		test = table.Empty()
	}
	equal := opts.Equal
	if equal == nil {
		equal = Equal
	}

	master, cutMaster := master.Head(opts.MaxRows)
	test, cutTest := test.Head(opts.MaxRows)

	// The key column must exist in the original tables, so resolve the
	// selector before the union null-fills it into both.
	sel, fallback := resolveSelector(master, test, sel)

	res, err := diffAligned(master, test, sel, equal, opts.Workers)
	if err != nil {
		return nil, err
	}
	res.Summary.Fallback = fallback
	res.Summary.Truncated = cutMaster || cutTest
	return res, nil
}

func diffAligned(master, test *table.Table, sel KeySelector, equal Comparator, workers int) (*DiffResult, error) {
	schema, m, t, err := Unify(master, test)
	if err != nil {
		return nil, err
	}
	al := Align(m, t, sel)

	compared := schema
	if al.Mode == ModeColumn {
		compared = make([]string, 0, len(schema))
		for _, c := range schema {
			if c != al.KeyColumn {
				compared = append(compared, c)
			}
		}
	}

	records := mapChunks(len(al.Keys), workers, func(lo, hi int) []DiffRecord {
		var out []DiffRecord
		for _, key := range al.Keys[lo:hi] {
			mRow, _ := al.Lookup(Master, key)
			tRow, _ := al.Lookup(Test, key)
			for _, col := range compared {
				a, b := mRow.Get(col), tRow.Get(col)
				if !equal(a, b) {
					out = append(out, DiffRecord{Key: key, Column: col, Master: a, Test: b})
				}
			}
		}
		return out
	})
	if records == nil {
		records = []DiffRecord{}
	}

	distinct := 0
	for i, r := range records {
		if i == 0 || r.Key != records[i-1].Key {
			distinct++
		}
	}

	return &DiffResult{
		Schema:  schema,
		Records: records,
		Summary: DiffSummary{
			TotalDiffs:    len(records),
			DistinctKeys:  distinct,
			Mode:          al.Mode,
			KeyColumn:     al.KeyColumn,
			MasterRows:    master.Len(),
			TestRows:      test.Len(),
			AlignedKeys:   len(al.Keys),
			DuplicateKeys: al.DuplicateKeys,
		},
	}, nil
}
