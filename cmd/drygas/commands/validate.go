package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

func validateCmd(a *app) *cobra.Command {
	var (
		keyColumn    string
		failOnIssues bool
		output       outputFlags
	)

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a table's values against the rule set",
		Long: `Applies the active rule set (built in, or --rules) to every non-null
cell of FILE and reports each value that fails a numeric or range check.`,
		Example: `  drygas validate run42.csv --key-column SerialNo
  drygas validate run42.xlsx --rules pressure.yaml -o issues.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			t, err := tableio.LoadFile(args[0], svc.ReadOptions())
			if err != nil {
				return err
			}

			rep, err := svc.Check(cmd.Context(), t, nil, keyColumn)
			if err != nil {
				return err
			}
			if err := output.write(cmd, rep, func() *table.Table { return core.IssueTable(rep.Issues) }); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d issues in %d rows (rule set %s)\n", len(rep.Issues), rep.RowsChecked, rep.RuleSet)
			if failOnIssues && len(rep.Issues) > 0 {
				return errFindings
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyColumn, "key-column", "", "column whose value labels rows in the report")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "exit non-zero when any issue is found")
	output.register(cmd)
	return cmd
}
