// Package tableio loads and saves tables from delimited text, Excel
// workbooks and PostgreSQL queries.
//
// The reconciliation core never touches storage; everything that crosses the
// process boundary goes through this package.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/drygas/internal/table"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("empty file")

// ReadOptions controls how raw text becomes cells.
type ReadOptions struct {
	// NullValues lists the exact cell texts read as null. The empty string is
	// always null. Tokens such as "N/A" stay values unless listed here.
	NullValues []string

	// Comma is the field delimiter (default ',').
	Comma rune
}

func (o ReadOptions) nullSet() map[string]bool {
	set := map[string]bool{"": true}
	for _, v := range o.NullValues {
		set[v] = true
	}
	return set
}

// ReadCSV parses delimited text into a table. The first record is the
// header. Records shorter than the header are padded with nulls; longer
// records are rejected with the offending line number.
func ReadCSV(r io.Reader, opts ReadOptions) (*table.Table, error) {
	data, err := cleanInput(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return fromRecords(records, opts)
}

// fromRecords turns a header plus data records into a table.
func fromRecords(records [][]string, opts ReadOptions) (*table.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := uniqueHeader(records[0])
	nulls := opts.nullSet()

	rows := make([]table.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, header has %d", i+2, len(rec), len(header))
		}
		row := make(table.Row, len(header))
		for j, col := range header {
			if j >= len(rec) || nulls[rec[j]] {
				continue
			}
			row[col] = table.Value(rec[j])
		}
		rows = append(rows, row)
	}

	return table.New(header, rows)
}

// uniqueHeader cleans header names and renames repeats to "name.1",
// "name.2", ... so every column stays addressable.
func uniqueHeader(raw []string) []string {
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))
	out := make([]string, len(raw))

	for _, h := range raw {
		taken[CleanHeader(h)] = true
	}
	for i, h := range raw {
		name := CleanHeader(h)
		if n, dup := seen[name]; dup {
			candidate := name
			for {
				n++
				candidate = name + "." + strconv.Itoa(n)
				if !taken[candidate] {
					break
				}
			}
			seen[name] = n
			taken[candidate] = true
			out[i] = candidate
			continue
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// CleanHeader trims whitespace and the Excel formula wrapper (="...") from a
// header cell. Case is preserved: column matching is exact.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// WriteCSV writes t as CSV with a header row. Null cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	return writeDelimited(w, t, ',')
}

func writeDelimited(w io.Writer, t *table.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return err
	}
	return cw.Error()
}
