package cmd

import (
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove packages not in the Brewfile",
		Long: `Clean uninstalls every package that is installed but not declared in the
Brewfile, keeping the dependencies of declared formulas, and removes the
download cache.

This is a dry run that only prints the commands; add -C to execute them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			result, err := svc.Cleanup()
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

func newCleanNonRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean_non_request",
		Aliases: []string{"clean-non-request"},
		Short:   "Uninstall leaves that were not installed on request",
		Long: `Clean_non_request uninstalls formulas that nothing depends on and that were
installed as dependencies rather than on request.

This is a dry run that only prints the commands; add -C to execute them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			result, err := svc.CleanNonRequest()
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}
