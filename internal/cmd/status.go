package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/git"
)

// StatusReport summarizes how far the installed packages are from the Brewfile.
type StatusReport struct {
	Input      string      `json:"input" yaml:"input" toml:"input"`
	Files      []string    `json:"files" yaml:"files" toml:"files"`
	Repository *git.Status `json:"repository,omitempty" yaml:"repository,omitempty" toml:"repository,omitempty"`
	Install    int         `json:"install" yaml:"install" toml:"install"`
	Reinstall  int         `json:"reinstall" yaml:"reinstall" toml:"reinstall"`
	Declare    int         `json:"declare" yaml:"declare" toml:"declare"`
	Remove     int         `json:"remove" yaml:"remove" toml:"remove"`
}

// InSync reports whether install and clean have nothing to do.
func (r StatusReport) InSync() bool {
	return r.Install == 0 && r.Reinstall == 0 && r.Declare == 0 && r.Remove == 0
}

func (r StatusReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Brewfile: %s\n", r.Input)
	if len(r.Files) > 1 {
		fmt.Fprintf(&b, "Includes: %s\n", strings.Join(r.Files[1:], ", "))
	}
	if r.Repository != nil {
		fmt.Fprintf(&b, "Repository: %s\n", r.Repository.Message)
	}
	if r.InSync() {
		b.WriteString("In sync with installed packages.")
		return b.String()
	}
	fmt.Fprintf(&b, "To install: %d\n", r.Install)
	fmt.Fprintf(&b, "To reinstall: %d\n", r.Reinstall)
	fmt.Fprintf(&b, "To declare: %d\n", r.Declare)
	fmt.Fprintf(&b, "To remove: %d", r.Remove)
	return b.String()
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status summary",
		Long: `Status shows a quick summary of the differences between the Brewfile and the
installed packages, and the state of the Brewfile repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			report, err := svc.Status()
			if err != nil {
				return err
			}
			w, err := writer(cmd)
			if err != nil {
				return err
			}
			return w.Write(report)
		},
	}
}

// Status computes the install and cleanup plans and checks the repository.
func (s *Service) Status() (*StatusReport, error) {
	install, err := s.PlanInstall()
	if err != nil {
		return nil, err
	}
	report := &StatusReport{Input: s.input, Files: s.set.Files()}
	report.Install, report.Reinstall, _, report.Declare = install.Summary()

	cleanup, err := s.PlanCleanup()
	if err != nil {
		return nil, err
	}
	_, _, report.Remove, _ = cleanup.Summary()

	if s.repo != nil {
		status := s.repo.Status()
		report.Repository = &status
	}
	return report, nil
}
