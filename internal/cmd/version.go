package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/update"
)

// newReleaseChecker is replaced in tests.
var newReleaseChecker = func() *update.Checker {
	return update.NewChecker(update.DefaultOwner, update.DefaultRepo).WithToken(os.Getenv("GITHUB_TOKEN"))
}

func newVersionCmd() *cobra.Command {
	var short, check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show brew-file and Homebrew versions",
		Long: `Display the brew-file version and the version reported by brew -v.

Examples:
  brew-file version           # brew -v, then brew-file version
  brew-file version --short   # brew-file version only
  brew-file version --check   # look up the latest brew-file release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				return runVersionCheck(cmd)
			}
			out := cmd.OutOrStdout()
			if !short {
				svc, err := setup(cmd)
				if err != nil {
					return err
				}
				// Output streams to the console as brew prints it.
				svc.provider.Run([]string{"brew", "-v"})
			}
			fmt.Fprintf(out, "%s %s %s\n", program, appVersion, appDate)
			if appCommit != "none" {
				fmt.Fprintf(out, "commit %s\n", appCommit)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the brew-file version")
	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer brew-file release exists")

	return cmd
}

func runVersionCheck(cmd *cobra.Command) error {
	info, err := newReleaseChecker().Check(cmd.Context(), appVersion)
	if err != nil {
		return err
	}
	w, err := writer(cmd)
	if err != nil {
		return err
	}
	if w.Format() == output.FormatText {
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}
	return w.Write(info)
}
