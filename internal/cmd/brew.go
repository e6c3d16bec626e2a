package cmd

import (
	"github.com/spf13/cobra"
)

func newBrewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brew [noinit] <brew command> [args...]",
		Short: "Run a brew command and update the Brewfile",
		Long: `Brew runs a Homebrew command and then records its effect in the Brewfile:
install, reinstall, tap, cask install, pip and gem add packages; uninstall,
remove, untap, cask uninstall and gem uninstall remove them. Formulas are
added with their installed dependencies.

"pip" runs brew-pip and "gem" runs brew-gem. Add "noinit" to run the command
without touching the Brewfile.

Flags are passed to brew unchanged, so brew-file settings come from the
environment and config.toml here.`,
		Example: `  brew-file brew install jq
  brew-file brew install --cask firefox
  brew-file brew tap homebrew/cask-fonts
  brew-file brew pip -u ansible
  brew-file brew noinit upgrade`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := svc.ResolveRepo(); err != nil {
				return err
			}
			return svc.Brew(args)
		},
	}
}
