package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

func diffCmd(a *app) *cobra.Command {
	var (
		masterPath  string
		masterTable string
		masterOrder []string
		testPath    string
		key         string
		failOnDiff  bool
		output      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Report every cell where a test table differs from a master table",
		Long: `Aligns the test table with the master table, by the --key column or by
row position, and reports each differing cell. Without --master or
--master-table the configured default master is used.`,
		Example: `  drygas diff --master master.csv --test run42.xlsx --key SerialNo
  drygas diff --master-table lab.master --test run42.csv -o diffs.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx, masterTable != "")
			if err != nil {
				return err
			}
			defer a.close()

			test, err := tableio.LoadFile(testPath, svc.ReadOptions())
			if err != nil {
				return err
			}

			var master *table.Table
			switch {
			case masterPath != "":
				if master, err = tableio.LoadFile(masterPath, svc.ReadOptions()); err != nil {
					return err
				}
			case masterTable != "":
				if master, err = svc.LoadMasterTable(ctx, masterTable, masterOrder...); err != nil {
					return err
				}
			}

			rep, err := svc.Compare(ctx, master, test, core.ParseKeySelector(key))
			if err != nil {
				return err
			}
			if err := output.write(cmd, rep, func() *table.Table { return core.DiffTable(rep.Records) }); err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if fb := rep.Summary.Fallback; fb != nil {
				fmt.Fprintln(stderr, "warning:", fb.Reason)
			}
			if rep.Summary.Truncated {
				fmt.Fprintln(stderr, "warning: input was cut to the row cap")
			}
			fmt.Fprintf(stderr, "%d differences across %d keys\n", rep.Summary.TotalDiffs, rep.Summary.DistinctKeys)

			if failOnDiff && rep.Summary.TotalDiffs > 0 {
				return errFindings
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&masterPath, "master", "m", "", "master table file (.csv, .tsv or .xlsx)")
	f.StringVar(&masterTable, "master-table", "", "master table in the configured database (schema.table)")
	f.StringSliceVar(&masterOrder, "master-order", nil, "columns sorting a --master-table master (default: its first column)")
	f.StringVarP(&testPath, "test", "t", "", "test table file (.csv, .tsv or .xlsx)")
	f.StringVarP(&key, "key", "k", "", `key column, or "(Index)" / empty for row position`)
	f.BoolVar(&failOnDiff, "fail-on-diff", false, "exit non-zero when any difference is found")
	output.register(cmd)

	_ = cmd.MarkFlagRequired("test")
	cmd.MarkFlagsMutuallyExclusive("master", "master-table")
	return cmd
}
