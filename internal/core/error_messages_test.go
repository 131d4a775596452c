package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/drygas/internal/table"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"configuration error", &ConfigurationError{Problems: []string{"rule 1: no column selector"}}, "CFG001"},
		{"duplicate column", fmt.Errorf("%w: %q", table.ErrDuplicateColumn, "a"), "TBL001"},
		{"unknown pg table", errors.New(`ERROR: relation "lab.master" does not exist (SQLSTATE 42P01)`), "TBL002"},
		{"bad table name", errors.New(`table not found: invalid table name "a.b.c"`), "TBL002"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"invalid csv", errors.New("invalid csv: line 3 has 4 fields, header has 3"), "FILE002"},
		{"unsupported type", errors.New("unsupported file type: .pdf"), "FILE003"},
		{"no file", errors.New("no file provided: master"), "FILE004"},
		{"empty file", errors.New("master.csv: empty file"), "FILE005"},
		{"busy", ErrTooManyComparisons, "CMP001"},
		{"no master", ErrNoMaster, "CMP002"},
		{"no table", ErrNoTable, "CMP003"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB004"},
		{"no database", ErrNoDatabase, "DB007"},
		{"cancelled", context.Canceled, "REQ001"},
		{"deadline", fmt.Errorf("query table: %w", context.DeadlineExceeded), "REQ002"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) has empty message or action: %+v", tt.err, got)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNoMaster)
	want := "No master table was provided (Code: CMP002). Upload a master file, name a master table, or configure a default master"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrTooManyComparisons) {
		t.Error("ErrTooManyComparisons should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unmatched error should not be user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
}
