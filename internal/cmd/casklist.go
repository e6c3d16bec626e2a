package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/cask"
	"github.com/adamancini/brewfile/internal/config"
	"github.com/adamancini/brewfile/internal/output"
)

// caskfile is written to the working directory.
const caskfile = "Caskfile"

func newCasklistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "casklist",
		Short: "Check which applications can be managed by casks",
		Long: `Casklist looks at every application in /Applications, ~/Applications and the
cask application directory, decides whether it came from a cask, the App
Store, a formula or a direct install, and writes the result as Brewfile lines
to ./Caskfile, followed by a summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			report, err := svc.CaskReport()
			if err != nil {
				return err
			}

			tee := output.NewTee(caskfile, svc.console.EchoWriter(2))
			if err := report.WriteCaskfile(tee); err != nil {
				return err
			}
			if err := tee.Close(); err != nil {
				return err
			}
			if err := report.Summary(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cask list was written to %s.\n", caskfile)
			return nil
		},
	}
}

// CaskReport attributes every application bundle in the application
// directories.
func (s *Service) CaskReport() (*cask.Report, error) {
	taps, err := s.provider.ListTaps()
	if err != nil {
		return nil, fmt.Errorf("failed to read taps: %w", err)
	}
	casks, err := s.provider.ListCasks()
	if err != nil {
		return nil, fmt.Errorf("failed to read casks: %w", err)
	}
	prefix, err := s.provider.Value("prefix")
	if err != nil {
		return nil, err
	}
	index, err := cask.BuildIndex(taps, s.provider, casks, config.Caskroom(prefix))
	if err != nil {
		return nil, err
	}

	snap, err := s.ReadState()
	if err != nil {
		return nil, err
	}

	m := &cask.Matcher{
		Index:    index,
		AppStore: cask.NewAppStoreIndex(snap.List.AppStore),
		Namer:    s.provider,
		Formulas: snap,
	}
	report, err := m.Check(s.settings.AppDirs, s.settings.CaskRepo)
	if err != nil {
		return nil, err
	}
	report.Home = s.settings.Home
	return report, nil
}
