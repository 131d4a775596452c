package tableio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/drygas/internal/table"
)

// Format identifies a file encoding for tables.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks a format from a file name's extension. Unknown
// extensions are treated as CSV, matching what spreadsheet exports produce.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".tsv", ".tab":
		return FormatTSV
	default:
		return FormatCSV
	}
}

// Read decodes r using the given format.
func Read(r io.Reader, format Format, opts ReadOptions) (*table.Table, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r, opts)
	case FormatTSV:
		opts.Comma = '\t'
		return ReadCSV(r, opts)
	case FormatCSV, "":
		return ReadCSV(r, opts)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", format)
	}
}

// Write encodes t using the given format.
func Write(w io.Writer, t *table.Table, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatTSV:
		return writeDelimited(w, t, '\t')
	case FormatCSV, "":
		return WriteCSV(w, t)
	default:
		return fmt.Errorf("unsupported file type: %s", format)
	}
}

// LoadFile opens path and reads it with the format implied by its name.
func LoadFile(path string, opts ReadOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f, FormatFor(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// SaveFile writes t to path with the format implied by its name.
func SaveFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t, FormatFor(path)); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
