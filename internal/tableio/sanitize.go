package tableio

// sanitize.go strips the artifacts spreadsheet exports leave in text files
// before they reach the CSV parser:
//
//   - UTF-8 byte order mark (0xEF 0xBB 0xBF) written by Windows programs
//   - invalid UTF-8 sequences, replaced with '?'
//
// Tables are held fully in memory, so the input is read once and cleaned as
// a whole rather than through a streaming transform.

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanInput reads r fully and returns its text with the BOM removed and
// invalid UTF-8 replaced.
func cleanInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return sanitize(data), nil
}

func sanitize(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return string(bytes.ToValidUTF8(data, []byte("?")))
}
