package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

// formMemory is how much of a multipart form is held in memory before
// spilling to temp files.
const formMemory = 32 << 20

// Output formats accepted by the format form field.
const (
	formatJSON = "json"
	formatHTML = "html"
)

// handleHealth reports liveness and what master sources are available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":         "ok",
		"database":       s.cfg.Database.Enabled(),
		"default_master": s.service.DefaultMaster() != nil,
		"runs":           s.service.LimiterStatus(),
	})
}

// handleRules returns the active rule set.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	s.writeRules(w, r, s.service.Rules())
}

// handleDefaultRules returns the built-in rule set, a starting point for a
// custom rules file.
func (s *Server) handleDefaultRules(w http.ResponseWriter, r *http.Request) {
	s.writeRules(w, r, core.DefaultRuleSet())
}

func (s *Server) writeRules(w http.ResponseWriter, r *http.Request, rs core.RuleSet) {
	if r.URL.Query().Get("format") == formatJSON {
		writeJSON(w, rs)
		return
	}
	data, err := core.MarshalRuleSet(rs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

// handleDiff compares an uploaded test table against a master.
//
// Form fields:
//   - test: test table file (required; .csv, .tsv or .xlsx)
//   - master: master table file; if absent, master_table names a database
//     table, and otherwise the configured default master is used
//   - master_order: comma-separated columns sorting a database master
//     (default: its first column)
//   - key: key column, or "(Index)" / empty for row position
//   - format: json (default), csv, tsv, xlsx or html
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}

	test, err := s.formTable(r, "test")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if test == nil {
		s.respondError(w, r, fmt.Errorf("%w: test", errNoFile))
		return
	}

	master, err := s.formTable(r, "master")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if master == nil {
		if name := strings.TrimSpace(r.FormValue("master_table")); name != "" {
			master, err = s.service.LoadMasterTable(r.Context(), name, orderColumns(r.FormValue("master_order"))...)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
		}
	}

	rep, err := s.service.Compare(r.Context(), master, test, core.ParseKeySelector(r.FormValue("key")))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	switch format := strings.ToLower(r.FormValue("format")); format {
	case "", formatJSON:
		writeJSON(w, rep)
	case formatHTML:
		s.renderHTML(w, r, diffReport(rep))
	default:
		s.writeTable(w, r, core.DiffTable(rep.Records), format, "diff-"+rep.RunID)
	}
}

// handleValidate checks an uploaded table against the active rules, or
// against an uploaded YAML rules file.
//
// Form fields:
//   - file: table to check (required)
//   - rules: YAML rule set replacing the active rules for this run
//   - key: column whose value labels rows in the report
//   - format: json (default), csv, tsv, xlsx or html
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}

	t, err := s.formTable(r, "file")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if t == nil {
		s.respondError(w, r, fmt.Errorf("%w: file", errNoFile))
		return
	}

	var rules *core.RuleSet
	if f, _, err := r.FormFile("rules"); err == nil {
		rs, lerr := core.LoadRuleSet(f)
		f.Close()
		if lerr != nil {
			s.respondError(w, r, lerr)
			return
		}
		rules = &rs
	} else if !errors.Is(err, http.ErrMissingFile) {
		s.respondError(w, r, fmt.Errorf("read rules: %w", err))
		return
	}

	rep, err := s.service.Check(r.Context(), t, rules, strings.TrimSpace(r.FormValue("key")))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	switch format := strings.ToLower(r.FormValue("format")); format {
	case "", formatJSON:
		writeJSON(w, rep)
	case formatHTML:
		s.renderHTML(w, r, issueReport(rep))
	default:
		s.writeTable(w, r, core.IssueTable(rep.Issues), format, "issues-"+rep.RunID)
	}
}

// orderColumns splits a comma-separated column list, dropping blanks.
func orderColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// parseForm bounds the request body and parses the multipart form. The
// body may carry two files plus form fields.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.Upload.MaxFileSize+formMemory)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// formTable reads the uploaded file in field as a table. A missing field
// returns nil without error.
func (s *Server) formTable(r *http.Request, field string) (*table.Table, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	if hdr.Size > s.cfg.Upload.MaxFileSize {
		return nil, fmt.Errorf("file too large: %s is %d bytes, limit is %d", hdr.Filename, hdr.Size, s.cfg.Upload.MaxFileSize)
	}

	t, err := tableio.Read(f, tableio.FormatFor(hdr.Filename), s.service.ReadOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", hdr.Filename, err)
	}
	return t, nil
}

// writeTable sends t as a downloadable file.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, t *table.Table, format, name string) {
	f := tableio.Format(format)
	contentType, ok := downloadTypes[f]
	if !ok {
		s.respondError(w, r, fmt.Errorf("unsupported file type: %s", format))
		return
	}

	var buf bytes.Buffer
	if err := tableio.Write(&buf, t, f); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	w.Write(buf.Bytes())
}

var downloadTypes = map[tableio.Format]string{
	tableio.FormatCSV:  "text/csv; charset=utf-8",
	tableio.FormatTSV:  "text/tab-separated-values; charset=utf-8",
	tableio.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}
