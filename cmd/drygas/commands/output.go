package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

// outputFlags are shared by the commands that write a report.
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "report format: json, csv, tsv or xlsx (default: from --out, else json)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write the report to a file instead of stdout")
}

// resolve picks the report format. An explicit --format wins; otherwise a
// table extension on --out decides, and JSON is the fallback.
func (o *outputFlags) resolve() (string, error) {
	format := strings.ToLower(o.format)
	if format == "" && o.out != "" && !strings.HasSuffix(strings.ToLower(o.out), ".json") {
		format = string(tableio.FormatFor(o.out))
	}
	if format == "" {
		format = "json"
	}

	switch format {
	case "json", string(tableio.FormatCSV), string(tableio.FormatTSV):
	case string(tableio.FormatXLSX):
		if o.out == "" {
			return "", fmt.Errorf("unsupported file type: xlsx reports need --out")
		}
	default:
		return "", fmt.Errorf("unsupported file type: %s", format)
	}
	return format, nil
}

// write sends report as JSON, or the table built by tbl in a table format.
func (o *outputFlags) write(cmd *cobra.Command, report any, tbl func() *table.Table) (err error) {
	format, err := o.resolve()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if o.out != "" {
		f, cerr := os.Create(o.out)
		if cerr != nil {
			return fmt.Errorf("create report: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close report: %w", cerr)
			}
		}()
		w = f
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return tableio.Write(w, tbl(), tableio.Format(format))
}
