package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/table"
)

const reportStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;margin-top:1rem}
th,td{border:1px solid #cbd2d9;padding:.3rem .6rem;text-align:left}
th{background:#f0f4f8}
.null{color:#9aa5b1;font-style:italic}
.note{background:#fff8e1;border-left:4px solid #f0b429;padding:.5rem 1rem}
.ok{color:#2f8132}`

// renderHTML writes a complete report page.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// page wraps body in an HTML document.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body><h1>%s</h1>",
			templ.EscapeString(title), reportStyle, templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// diffReport renders a comparison as a summary and a table of differences.
func diffReport(rep *core.DiffReport) templ.Component {
	sum := rep.Summary
	return page("Comparison report", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if sum.Fallback != nil {
			if err := writef(w, `<p class="note">%s</p>`, templ.EscapeString(sum.Fallback.Reason)); err != nil {
				return err
			}
		}

		key := "row position"
		if sum.Mode == core.ModeColumn {
			key = "column " + sum.KeyColumn
		}
		if err := writef(w, "<p>Run %s. Aligned by %s. Master rows: %d. Test rows: %d.</p>",
			templ.EscapeString(rep.RunID), templ.EscapeString(key), sum.MasterRows, sum.TestRows); err != nil {
			return err
		}
		if sum.Truncated {
			if err := writef(w, `<p class="note">Input was cut to the configured row cap.</p>`); err != nil {
				return err
			}
		}

		if sum.TotalDiffs == 0 {
			return writef(w, `<p class="ok">No differences found.</p>`)
		}
		if err := writef(w, "<p>%d differences across %d keys.</p>", sum.TotalDiffs, sum.DistinctKeys); err != nil {
			return err
		}

		rows := make([][]table.Cell, len(rep.Records))
		for i, rec := range rep.Records {
			rows[i] = []table.Cell{table.Value(rec.Key.String()), table.Value(rec.Column), rec.Master, rec.Test}
		}
		return writeGrid(w, core.DiffColumns, rows)
	}))
}

// issueReport renders a validation run as a table of issues.
func issueReport(rep *core.ValidationReport) templ.Component {
	return page("Validation report", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writef(w, "<p>Run %s. Rule set %s. Rows checked: %d.</p>",
			templ.EscapeString(rep.RunID), templ.EscapeString(rep.RuleSet), rep.RowsChecked); err != nil {
			return err
		}
		if rep.Truncated {
			if err := writef(w, `<p class="note">Input was cut to the configured row cap.</p>`); err != nil {
				return err
			}
		}
		if len(rep.Issues) == 0 {
			return writef(w, `<p class="ok">No issues found.</p>`)
		}

		rows := make([][]table.Cell, len(rep.Issues))
		for i, is := range rep.Issues {
			rows[i] = []table.Cell{
				table.Value(is.RowKey),
				table.Value(is.Column),
				is.Value,
				table.Value(string(is.Kind)),
				table.Value(is.Message),
			}
		}
		return writeGrid(w, append(append([]string{}, core.IssueColumns...), "Message"), rows)
	}))
}

func writeGrid(w io.Writer, header []string, rows [][]table.Cell) error {
	if err := writef(w, "<table><thead><tr>"); err != nil {
		return err
	}
	for _, h := range header {
		if err := writef(w, "<th>%s</th>", templ.EscapeString(h)); err != nil {
			return err
		}
	}
	if err := writef(w, "</tr></thead><tbody>"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writef(w, "<tr>"); err != nil {
			return err
		}
		for _, c := range row {
			if err := writeCell(w, c); err != nil {
				return err
			}
		}
		if err := writef(w, "</tr>"); err != nil {
			return err
		}
	}
	return writef(w, "</tbody></table><p>%s rows</p>", strconv.Itoa(len(rows)))
}

func writeCell(w io.Writer, c table.Cell) error {
	if c.IsNull() {
		return writef(w, `<td class="null">null</td>`)
	}
	return writef(w, "<td>%s</td>", templ.EscapeString(c.String()))
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
