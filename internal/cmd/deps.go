package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/deps"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/types"
)

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Show dependencies among the formulas in the Brewfile",
		Long: `Deps prints a tree of the formulas declared in the Brewfile. Only
dependencies that are themselves declared are shown; formulas nothing else
depends on are the roots.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			g, err := svc.DependencyGraph()
			if err != nil {
				return err
			}
			w, err := writer(cmd)
			if err != nil {
				return err
			}
			if w.Format() == output.FormatText {
				return g.WriteTree(cmd.OutOrStdout())
			}
			return w.Write(g.Map())
		},
	}
}

// DependencyGraph builds the graph among declared formulas.
func (s *Service) DependencyGraph() (*deps.Graph, error) {
	set, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}
	return deps.Build(set.Get(types.KindFormula, manifest.SideInput), s.provider)
}
