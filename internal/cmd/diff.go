package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/output"
)

func newDiffCmd() *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what install (or clean) would do",
		Long: `Diff compares the Brewfile against the installed packages and prints the
commands install would run. With --clean it prints what clean would remove.
Nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			var plan *diff.Plan
			if cleanup {
				plan, err = svc.PlanCleanup()
			} else {
				plan, err = svc.PlanInstall()
			}
			if err != nil {
				return err
			}
			return printPlan(cmd, plan)
		},
	}

	cmd.Flags().BoolVar(&cleanup, "clean", false, "Show the cleanup plan instead of the install plan")

	return cmd
}

func printPlan(cmd *cobra.Command, plan *diff.Plan) error {
	w, err := writer(cmd)
	if err != nil {
		return err
	}
	if w.Format() != output.FormatText {
		return w.Write(plan)
	}

	out := cmd.OutOrStdout()
	if len(plan.Changes()) == 0 {
		fmt.Fprintln(out, "Nothing to do.")
		return nil
	}
	fmt.Fprint(out, diff.FormatCommands(plan.GenerateCommands(), true))
	install, reinstall, remove, declare := plan.Summary()
	fmt.Fprintf(out, "\n%d to install, %d to reinstall, %d to remove, %d to declare\n", install, reinstall, remove, declare)
	return nil
}
