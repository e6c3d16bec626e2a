package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/sync"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install packages in the Brewfile",
		Long: `Install installs every tap, formula, cask, pip and gem package and App Store
application declared in the Brewfile and its included files, and runs the
before, command and after lines.

Helpers needed for pip, gem and App Store entries are installed on the way and
added to the Brewfile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			result, err := svc.Install()
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Upgrade, install, clean up and write the Brewfile",
		Long: `Update runs brew update and upgrades every package (skip with --noupgrade),
pulls the Brewfile repository, installs what the Brewfile declares, cleans up
what it does not (only with -C), regenerates the Brewfile and pushes it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			return svc.Update()
		},
	}
}

// printResult writes result in a structured format. Text output was
// already printed while the plan ran, so only counts follow.
func printResult(cmd *cobra.Command, result *sync.Result) error {
	w, err := writer(cmd)
	if err != nil {
		return err
	}
	if w.Format() != output.FormatText {
		return w.Write(result)
	}
	printResultText(cmd.OutOrStdout(), result)
	return nil
}

// printResultText outputs the result in human-readable format.
func printResultText(out io.Writer, result *sync.Result) {
	if result.Installed > 0 {
		fmt.Fprintf(out, "Installed: %d\n", result.Installed)
	}
	if result.Reinstalled > 0 {
		fmt.Fprintf(out, "Reinstalled: %d\n", result.Reinstalled)
	}
	if result.Removed > 0 {
		fmt.Fprintf(out, "Removed: %d\n", result.Removed)
	}
	if result.Failed > 0 {
		fmt.Fprintf(out, "Failed: %d\n", result.Failed)
	}

	if len(result.Attention) > 0 {
		fmt.Fprintln(out, "\nItems needing attention:")
		for _, item := range result.Attention {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}
}
