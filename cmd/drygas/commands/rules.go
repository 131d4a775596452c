package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drygas/internal/core"
)

func rulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show or check validation rule sets",
	}
	cmd.AddCommand(rulesShowCmd(a), rulesDefaultCmd(), rulesCheckCmd())
	return cmd
}

func rulesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active rule set as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			return printRuleSet(cmd, svc.Rules())
		},
	}
}

func rulesDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print the built-in rule set as YAML, a starting point for --rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRuleSet(cmd, core.DefaultRuleSet())
		},
	}
}

func rulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check rule files and list every problem found",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				rs, err := core.LoadRuleSetFile(path)
				if err == nil {
					fmt.Fprintf(out, "ok    %s: %s (%d rules)\n", path, rs.Name, len(rs.Rules))
					continue
				}

				failed++
				var cfgErr *core.ConfigurationError
				if !errors.As(err, &cfgErr) {
					fmt.Fprintf(out, "FAIL  %v\n", err)
					continue
				}
				fmt.Fprintf(out, "FAIL  %s\n", path)
				for _, p := range cfgErr.Problems {
					fmt.Fprintf(out, "      - %s\n", p)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", core.ErrInvalidRuleSet, failed, len(args))
			}
			return nil
		},
	}
}

func printRuleSet(cmd *cobra.Command, rs core.RuleSet) error {
	data, err := core.MarshalRuleSet(rs)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
