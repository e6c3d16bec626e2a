package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adamancini/brewfile/internal/config"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/output"
)

var (
	// Global flags
	outputFormat string
	noLink       bool
	noAppStore   bool
	cleanRun     bool

	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// newServiceFunc builds the service for a command; tests replace it.
var newServiceFunc = func(settings *config.Settings, console *output.Console) *Service {
	return NewService(settings, console, appVersion)
}

func Execute(version, commit, date string) error {
	appVersion, appCommit, appDate = version, commit, date
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   program,
		Short: "Declarative Homebrew package management with a Brewfile",
		Long: `brew-file keeps a Brewfile in sync with the packages Homebrew has installed.

Declare taps, formulas, casks, pip and gem packages and App Store applications
in a Brewfile, install them all with brew-file install, and remove everything
else with brew-file clean. The Brewfile can live in a git repository so the
same package set follows you across machines.`,
		Version:       version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(config.KeyFile, "f", "", "Set input file (or HOMEBREW_BREWFILE)")
	flags.StringP(config.KeyBackup, "b", "", "Set backup file (or HOMEBREW_BREWFILE_BACKUP)")
	flags.StringP(config.KeyFormat, "F", "", "Set output format: file, brewdler, bundle, command")
	flags.Bool(config.KeyLeaves, false, "Make the list only for leaves (or HOMEBREW_BREWFILE_LEAVES)")
	flags.Bool(config.KeyOnRequest, false, "Make the list only for packages installed on request")
	flags.String(config.KeyTopPackages, "", "Comma separated packages always listed")
	flags.BoolP(config.KeyNoUpgrade, "U", false, "Do not upgrade formulas at update")
	flags.StringP(config.KeyRepo, "r", "", "Set repository name for set_repo")
	flags.BoolVarP(&noLink, "nolink", "n", false, "Don't make links for Apps")
	flags.Bool(config.KeyCaskOnly, false, "Write out only cask related packages")
	flags.BoolVar(&noAppStore, "no_appstore", false, "Don't check App Store applications")
	flags.BoolVarP(&cleanRun, "clean_run", "C", false, "Run clean as non dry-run mode")
	flags.BoolP(config.KeyYes, "y", false, "Answer yes to all yes/no questions")
	flags.StringP(config.KeyVerbose, "V", "", "Verbose level 0-4 (or HOMEBREW_BREWFILE_VERBOSE)")
	flags.StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml, toml")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newCleanNonRequestCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSetRepoCmd())
	rootCmd.AddCommand(newSetLocalCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newBrewCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newCatCmd())
	rootCmd.AddCommand(newGetFilesCmd())
	rootCmd.AddCommand(newCasklistCmd())
	rootCmd.AddCommand(newDepsCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc(config.KeyFormat, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"file", "brewdler", "bundle", "command"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

func version() string {
	return appVersion + " " + appDate
}

// loadSettings resolves the settings for cmd. Negated flags are applied
// as overrides; flags that were not given leave the environment in charge.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if changed(flags, "nolink") {
		overrides[config.KeyLink] = !noLink
	}
	if changed(flags, "no_appstore") {
		overrides[config.KeyAppStore] = !noAppStore
	}
	if changed(flags, "clean_run") {
		overrides[config.KeyDryRun] = !cleanRun
	}
	return config.Load(config.LoadOptions{Flags: flags, Overrides: overrides})
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// setup loads the settings and builds the service for a command.
func setup(cmd *cobra.Command) (*Service, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logging.SetupLogger(settings.Verbose, os.Stderr)
	console := output.NewConsole(cmd.OutOrStdout(), settings.Verbose)
	return newServiceFunc(settings, console), nil
}

// setupWithManifest also follows a repository pointer and makes sure the
// manifest exists, offering to initialize it.
func setupWithManifest(cmd *cobra.Command) (*Service, error) {
	svc, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if err := svc.ResolveRepo(); err != nil {
		return nil, err
	}
	if err := svc.CheckInputFile(); err != nil {
		return nil, err
	}
	return svc, nil
}

func writer(cmd *cobra.Command) (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(cmd.OutOrStdout(), format), nil
}
