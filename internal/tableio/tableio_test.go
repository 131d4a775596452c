package tableio

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/drygas/internal/table"
)

func TestReadCSV_Basic(t *testing.T) {
	in := "id,DriveTorque,InletFlow\n1,0.5,N/A\n2,-2,\n"

	tbl, err := ReadCSV(strings.NewReader(in), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "DriveTorque", "InletFlow"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "0.5", tbl.Cell(0, "DriveTorque").String())
	assert.Equal(t, "N/A", tbl.Cell(0, "InletFlow").String(), "N/A is a value unless configured as null")
	assert.False(t, tbl.Cell(0, "InletFlow").IsNull())
	assert.True(t, tbl.Cell(1, "InletFlow").IsNull())
}

func TestReadCSV_NullValues(t *testing.T) {
	in := "a,b\nN/A,x\n"

	tbl, err := ReadCSV(strings.NewReader(in), ReadOptions{NullValues: []string{"N/A"}})
	require.NoError(t, err)
	assert.True(t, tbl.Cell(0, "a").IsNull())
	assert.Equal(t, "x", tbl.Cell(0, "b").String())
}

func TestReadCSV_KeepsRawText(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("v\n1.0\n 7 \n"), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.0", tbl.Cell(0, "v").String())
	assert.Equal(t, " 7 ", tbl.Cell(1, "v").String())
}

func TestReadCSV_ShortAndLongRecords(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1\n"), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", tbl.Cell(0, "a").String())
	assert.True(t, tbl.Cell(0, "c").IsNull())

	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "invalid csv")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), ReadOptions{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSV_DuplicateHeaders(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,a,a.1,a\n1,2,3,4\n"), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.2", "a.1", "a.3"}, tbl.Columns())
	assert.Equal(t, "2", tbl.Cell(0, "a.2").String())
}

func TestReadCSV_Sanitizes(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, []byte("id\n1\n")...), "id"},
		{"excel formula header", []byte(`"=""id"""` + "\n1\n"), "id"},
		{"padded header", []byte(" id \n1\n"), "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(bytes.NewReader(tt.input), ReadOptions{})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, tbl.Columns())
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "he?lo", sanitize([]byte{'h', 'e', 0x80, 'l', 'o'}))
	assert.Equal(t, "ok", sanitize([]byte("ok")))
	assert.Equal(t, "", sanitize([]byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	src := table.MustNew([]string{"Key", "Column", "Master", "Test"}, []table.Row{
		{"Key": table.Value("2"), "Column": table.Value("DriveTorque"), "Master": table.Value("-2"), "Test": table.Value("abc")},
		{"Key": table.Value("3"), "Column": table.Value("note"), "Master": table.Value("a,b")},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, src))
	assert.True(t, strings.HasPrefix(buf.String(), "Key,Column,Master,Test\n"))

	back, err := ReadCSV(&buf, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, src.Columns(), back.Columns())
	assert.Equal(t, src.Records(), back.Records())
	assert.True(t, back.Cell(1, "Test").IsNull())
}

func TestXLSX_RoundTrip(t *testing.T) {
	src := table.MustNew([]string{"id", "DriveSpeed"}, []table.Row{
		{"id": table.Value("1"), "DriveSpeed": table.Value("-4.5")},
		{"id": table.Value("2")},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, src))

	back, err := ReadXLSX(&buf, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "DriveSpeed"}, back.Columns())
	require.Equal(t, 2, back.Len())
	assert.Equal(t, "-4.5", back.Cell(0, "DriveSpeed").String())
	assert.True(t, back.Cell(1, "DriveSpeed").IsNull())
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	src := table.MustNew([]string{"a"}, []table.Row{{"a": table.Value("x")}})

	for _, name := range []string{"out.csv", "out.tsv", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, src))

			got, err := LoadFile(path, ReadOptions{})
			require.NoError(t, err)
			assert.Equal(t, src.Records(), got.Records())
		})
	}

	_, err := LoadFile(filepath.Join(dir, "missing.csv"), ReadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFor("Master.XLSX"))
	assert.Equal(t, FormatTSV, FormatFor("a.tsv"))
	assert.Equal(t, FormatCSV, FormatFor("TestData53684.csv"))
	assert.Equal(t, FormatCSV, FormatFor("noext"))
}

func TestNumericText(t *testing.T) {
	tests := []struct {
		name string
		in   pgtype.Numeric
		want string
		ok   bool
	}{
		{"invalid", pgtype.Numeric{}, "", false},
		{"nan", pgtype.Numeric{NaN: true, Valid: true}, "NaN", true},
		{"infinity", pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, "Infinity", true},
		{"scaled", pgtype.Numeric{Int: big.NewInt(1250), Exp: -2, Valid: true}, "12.50", true},
		{"leading zeros", pgtype.Numeric{Int: big.NewInt(7), Exp: -3, Valid: true}, "0.007", true},
		{"negative", pgtype.Numeric{Int: big.NewInt(-25), Exp: -1, Valid: true}, "-2.5", true},
		{"positive exponent", pgtype.Numeric{Int: big.NewInt(3), Exp: 2, Valid: true}, "300", true},
		{"integer", pgtype.Numeric{Int: big.NewInt(-3), Valid: true}, "-3", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numericText(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellFromPG(t *testing.T) {
	id := [16]byte{0x12, 0x34}
	assert.Equal(t, "12340000-0000-0000-0000-000000000000", cellFromPG(id).String())
	assert.True(t, cellFromPG(nil).IsNull())
	assert.Equal(t, "12.50", cellFromPG(pgtype.Numeric{Int: big.NewInt(1250), Exp: -2, Valid: true}).String())
	assert.Equal(t, "42", cellFromPG(int32(42)).String())
}

func TestParseIdentifier(t *testing.T) {
	ident, err := parseIdentifier("lab.master_runs")
	require.NoError(t, err)
	assert.Equal(t, `"lab"."master_runs"`, ident.Sanitize())

	ident, err = parseIdentifier(`odd"name`)
	require.NoError(t, err)
	assert.Equal(t, `"odd""name"`, ident.Sanitize())

	for _, bad := range []string{"", "a..b", "a.b.c", "."} {
		_, err := parseIdentifier(bad)
		assert.Error(t, err, bad)
	}
}
