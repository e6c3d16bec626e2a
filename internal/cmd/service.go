// Package cmd contains the CLI command implementations.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamancini/brewfile/internal/backup"
	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/config"
	"github.com/adamancini/brewfile/internal/diff"
	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/git"
	"github.com/adamancini/brewfile/internal/interactive"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/state"
	"github.com/adamancini/brewfile/internal/sync"
	"github.com/adamancini/brewfile/internal/types"
)

// program is the command name shown in hints.
const program = "brew-file"

// Deps are the collaborators of a Service. Nil fields get defaults.
type Deps struct {
	Provider brew.Provider
	Console  *output.Console
	Prompter *interactive.Prompter
	Git      git.CommandRunner
	Backups  *backup.Manager
	// State replaces the snapshot read from the provider.
	State state.Reader
}

// Service orchestrates one brew-file invocation: it resolves the manifest
// (following a repository pointer), reads installed state, and runs the
// install, cleanup and initialization workflows.
type Service struct {
	settings  *config.Settings
	provider  brew.Provider
	console   *output.Console
	prompter  *interactive.Prompter
	gitRunner git.CommandRunner
	backups   *backup.Manager
	reader    state.Reader

	// input is the manifest in use; it moves into the clone when the
	// configured manifest is a repository pointer.
	input  string
	repo   *git.Repository
	parser *manifest.Parser
	set    *manifest.Set
	// initialized is set once the manifest was regenerated in this run.
	initialized bool
}

// NewService creates a service with default dependencies.
func NewService(settings *config.Settings, console *output.Console, version string) *Service {
	provider := brew.NewCLI(&brew.DefaultCommandRunner{}, brew.Options{
		CaskRepo:     settings.CaskRepo,
		HomebrewRuby: settings.HomebrewRuby,
		Mutator:      &brew.DefaultCommandRunner{Stream: console.Out()},
	})
	return NewServiceWithDeps(settings, Deps{
		Provider: provider,
		Console:  console,
		Prompter: interactive.NewPrompter(settings.AssumeYes),
		Git:      &git.DefaultCommandRunner{},
		Backups:  backup.NewManager(version),
	})
}

// NewServiceWithDeps creates a service with custom dependencies (for testing).
func NewServiceWithDeps(settings *config.Settings, deps Deps) *Service {
	if deps.Console == nil {
		deps.Console = output.NewConsole(os.Stdout, settings.Verbose)
	}
	if deps.Prompter == nil {
		deps.Prompter = interactive.NewPrompter(settings.AssumeYes)
	}
	if deps.Git == nil {
		deps.Git = &git.DefaultCommandRunner{}
	}
	return &Service{
		settings:  settings,
		provider:  deps.Provider,
		console:   deps.Console,
		prompter:  deps.Prompter,
		gitRunner: deps.Git,
		backups:   deps.Backups,
		reader:    deps.State,
		input:     settings.Input,
	}
}

// Input returns the manifest path in use.
func (s *Service) Input() string {
	return s.input
}

// Repository returns the clone holding the manifest, or nil.
func (s *Service) Repository() *git.Repository {
	return s.repo
}

// ResolveRepo follows a repository pointer in the configured manifest:
// the input switches to the manifest inside the clone, which is cloned
// and initialized when needed.
func (s *Service) ResolveRepo() error {
	pointer, err := manifest.RepoPointer(s.settings.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.settings.Input, err)
	}
	if pointer == "" {
		return nil
	}

	url := git.NormalizeURL(pointer)
	file := git.RepoFile(s.settings.Input, url)
	s.repo = git.NewRepositoryWithRunner(url, file, s.gitRunner)
	s.input = file
	logger := logging.GetLogger("cmd")
	logger.Debug().Str("repo", url).Str("input", file).Msg("Using repository manifest")

	if isFile(file) {
		return nil
	}
	if !s.repo.Exists() {
		s.console.Info("$ git clone "+url+" "+s.repo.Dir, 1)
		if err := s.repo.Clone(); err != nil {
			return err
		}
	}
	return s.repo.Init(file)
}

// LoadManifest reads the manifest set.
func (s *Service) LoadManifest() (*manifest.Set, error) {
	s.parser = manifest.NewParser(s.settings.Dialect, s.provider)
	set, err := manifest.Load(s.input, s.parser)
	if err != nil {
		return nil, err
	}
	s.set = set
	return set, nil
}

// ReadState takes a snapshot of installed packages. Without the mas command
// App Store applications are found by their receipts.
func (s *Service) ReadState() (*state.Snapshot, error) {
	reader := s.reader
	if reader == nil {
		cli := &state.CLIReader{Provider: s.provider, Filter: s.filter()}
		if s.settings.AppStore && !s.provider.HasTool("mas") {
			cli.AppStore = &state.ReceiptReader{AppDirs: s.settings.AppDirs, Metadata: s.provider}
		}
		reader = cli
	}
	snap, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read current state: %w", err)
	}
	return snap, nil
}

func (s *Service) filter() state.Filter {
	return state.Filter{
		Leaves:      s.settings.Leaves,
		OnRequest:   s.settings.OnRequest,
		TopPackages: s.settings.TopPackages,
		CaskOnly:    s.settings.CaskOnly,
		AppStore:    s.settings.AppStore,
	}
}

func (s *Service) policy() diff.Policy {
	return diff.Policy{
		Leaves:      s.settings.Leaves,
		OnRequest:   s.settings.OnRequest,
		TopPackages: s.settings.TopPackages,
		CaskOnly:    s.settings.CaskOnly,
		AppStore:    s.settings.AppStore,
		AppDirs:     s.settings.AppDirs,
		CaskRepo:    s.settings.CaskRepo,
	}
}

func (s *Service) renderOptions() manifest.RenderOptions {
	dialect := s.settings.Dialect
	if s.parser != nil {
		dialect = s.parser.Dialect
	}
	return manifest.RenderOptions{
		Dialect:  dialect,
		CaskOnly: s.settings.CaskOnly,
		AppStore: s.settings.AppStore,
		Taps:     s.provider,
	}
}

func (s *Service) executor() *sync.Executor {
	return sync.NewExecutor(s.provider, s.console, sync.Options{
		DryRun:          s.settings.DryRun,
		Link:            s.settings.Link,
		Home:            s.settings.Home,
		CaskRepo:        s.settings.CaskRepo,
		Tmux:            s.settings.Tmux,
		Program:         program,
		PipCarrier:      s.settings.PipFormula,
		GemCarrier:      s.settings.GemFormula,
		MasFormula:      s.settings.MasFormula,
		ReattachFormula: s.settings.ReattachFormula,
	})
}

// CheckInputFile offers to initialize a missing manifest from the installed
// packages.
func (s *Service) CheckInputFile() error {
	if isFile(s.input) {
		return nil
	}
	s.console.Warn("Input file "+s.input+" is not found.", 0)
	if s.prompter.AskYN("Do you want to initialize from installed packages?") {
		return s.Initialize(false, true)
	}
	s.console.Err("Ok, please prepare brewfile", 0)
	s.console.Err("or you can initialize "+s.input+" with:", 0)
	s.console.Err("    $ "+program+" init", 0)
	return bferrors.Newf(bferrors.ErrMissingFile, "%s does not exist", s.input).WithDetail("path", s.input)
}

// Initialize regenerates the manifest from the installed packages. With
// check, an existing manifest is moved to the backup path or overwritten
// after confirmation, and a missing one offers to set a repository first.
// With readInputs, included documents keep what they declare.
func (s *Service) Initialize(check, readInputs bool) error {
	if s.initialized {
		return nil
	}

	if check {
		if !isFile(s.input) {
			if s.prompter.AskYN("Do you want to set a repository (y)? ((n) for local Brewfile).") {
				return s.SetRepo("")
			}
		} else if s.repo != nil {
			s.console.Print("You are using Brewfile of " + s.repo.URL + ".")
		} else {
			s.console.Print(s.input + " is already there.")
			if s.settings.Backup != "" {
				if err := backup.MoveAside(s.input, s.settings.Backup); err != nil {
					return err
				}
				s.console.Info("Ok, old input file was moved to "+s.settings.Backup, 1)
			} else if !s.prompter.AskYN("Do you want to overwrite it?") {
				return nil
			}
		}
	}

	snap, err := s.ReadState()
	if err != nil {
		return err
	}

	set := manifest.NewSet(s.input)
	if readInputs {
		if set, err = s.LoadManifest(); err != nil {
			return err
		}
	} else {
		s.parser = manifest.NewParser(s.settings.Dialect, s.provider)
		s.set = set
	}
	set.Primary.List = snap.List
	if readInputs {
		set.Dedupe()
	}
	return s.writeManifest("init")
}

// writeManifest keeps a copy of the current primary document and writes
// every document of the set.
func (s *Service) writeManifest(note string) error {
	s.keepCopy(note)

	banner := func(path string) { s.console.Banner("# Initialize "+path, 1) }
	if err := s.set.Write(s.renderOptions(), s.console.EchoWriter(2), banner); err != nil {
		return err
	}
	s.console.Banner("# You can edit "+s.input+" with:\n#     $ "+program+" edit", 1)
	s.initialized = true
	return nil
}

// keepCopy stores the primary document in the backup cache. Failures only
// warn; the write goes ahead.
func (s *Service) keepCopy(note string) {
	if s.backups == nil || !isFile(s.input) {
		return
	}
	logger := logging.GetLogger("cmd")
	if _, err := s.backups.Create(s.input, note); err != nil {
		logger.Warn().Err(err).Str("path", s.input).Msg("Failed to keep a copy of the manifest")
		return
	}
	if _, err := s.backups.Prune(backup.DefaultKeepCount); err != nil {
		logger.Warn().Err(err).Msg("Failed to prune manifest copies")
	}
}

// Install installs everything the manifest declares. Carriers bootstrapped
// on the way are declared afterwards and the manifest is rewritten.
func (s *Service) Install() (*sync.Result, error) {
	set, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}
	snap, err := s.ReadState()
	if err != nil {
		return nil, err
	}

	plan, err := diff.ComputeInstall(set, snap, s.provider, s.policy())
	if err != nil {
		return nil, err
	}

	exec := s.executor()
	result, err := exec.Install(plan)
	if err != nil {
		return result, err
	}

	declared := len(plan.Filter(diff.OpDeclare)) > 0
	for _, c := range exec.Carriers() {
		if set.Declare(c.Kind, c.Name, "") {
			declared = true
		}
	}
	if declared || result.Reinit {
		set.InputToList(false)
		if err := s.writeManifest("install"); err != nil {
			return result, err
		}
	}
	return result, nil
}

// PlanCleanup computes the cleanup plan without executing it.
func (s *Service) PlanCleanup() (*diff.Plan, error) {
	set, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}
	snap, err := s.ReadState()
	if err != nil {
		return nil, err
	}

	policy := s.policy()
	if cache, err := s.provider.Value("cache"); err == nil {
		policy.CacheDir = cache
	}
	return diff.ComputeCleanup(set, snap, s.provider, policy)
}

// PlanInstall computes the install plan without executing it.
func (s *Service) PlanInstall() (*diff.Plan, error) {
	set, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}
	snap, err := s.ReadState()
	if err != nil {
		return nil, err
	}
	return diff.ComputeInstall(set, snap, s.provider, s.policy())
}

// Cleanup removes what is installed but not declared. Unless dry-run is
// off, the commands are only printed.
func (s *Service) Cleanup() (*sync.Result, error) {
	plan, err := s.PlanCleanup()
	if err != nil {
		return nil, err
	}
	return s.executor().Cleanup(plan)
}

// CleanNonRequest uninstalls leaves that were not installed on request.
func (s *Service) CleanNonRequest() (*sync.Result, error) {
	return s.executor().CleanNonRequest()
}

// Update optionally upgrades everything, then pulls, installs, cleans up,
// regenerates the manifest and pushes it.
func (s *Service) Update() error {
	if !s.settings.NoUpgrade {
		for _, args := range [][]string{
			{"brew", "update"},
			{"brew", "upgrade", "--fetch-HEAD"},
			{"brew", "upgrade", "--cask"},
		} {
			s.console.Info("$ "+strings.Join(args, " "), 1)
			if err := s.provider.Run(args).Check(); err != nil {
				return err
			}
		}
	}
	if s.repo != nil {
		if err := s.Pull(); err != nil {
			return err
		}
	}
	if _, err := s.Install(); err != nil {
		return err
	}
	if !s.settings.DryRun {
		if _, err := s.Cleanup(); err != nil {
			return err
		}
	}
	s.initialized = false
	if err := s.Initialize(false, true); err != nil {
		return err
	}
	if s.repo != nil {
		return s.Push()
	}
	return nil
}

// SetRepo points the manifest at repo. An empty repo is asked for; "non"
// or an empty answer keeps a local manifest.
func (s *Service) SetRepo(repo string) error {
	if isFile(s.settings.Input) {
		if repo == "" {
			s.console.Print("Input file: " + s.settings.Input + " is already there.")
			if prev, _ := manifest.RepoPointer(s.settings.Input); prev != "" {
				s.console.Print("git repository for Brewfile is already set as " + prev + ".")
			}
		}
		if s.settings.Backup != "" {
			if !s.prompter.AskYN("Do you want to overwrite it?") {
				return nil
			}
			if err := backup.MoveAside(s.settings.Input, s.settings.Backup); err != nil {
				return err
			}
			s.console.Info("Ok, old input file was moved to "+s.settings.Backup, 1)
		}
	}

	if repo == "" {
		s.console.Print("\nSet repository,\n" +
			"\"non\" (or empty) for local Brewfile (" + s.settings.Input + "),\n" +
			"<user>/<repo> for github repository,")
		repo = s.prompter.Ask("or full path for other git repository: ")
		s.console.Banner("# Set Brewfile repository as "+repo, 1)
	}

	if repo == "" || repo == "non" {
		return s.SetLocal()
	}

	s.input = s.settings.Input
	s.keepCopy("set_repo")
	if err := os.MkdirAll(filepath.Dir(s.input), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(s.input), err)
	}
	if err := os.WriteFile(s.input, []byte("git "+repo+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.input, err)
	}
	return s.ResolveRepo()
}

// SetLocal writes a local manifest from the installed packages.
func (s *Service) SetLocal() error {
	s.repo = nil
	s.input = s.settings.Input
	return s.Initialize(false, false)
}

func (s *Service) repository() (*git.Repository, error) {
	if s.repo == nil {
		s.console.Err("Please set a repository, or reset with:", 0)
		s.console.Err("    $ "+program+" set_repo\n", 0)
		return nil, bferrors.New(bferrors.ErrConfigLoad, "no repository is set")
	}
	if !s.repo.Exists() {
		if err := s.repo.Clone(); err != nil {
			return nil, err
		}
	}
	s.console.Info("$ cd "+s.repo.Dir, 1)
	return s.repo, nil
}

// Pull updates the manifest clone.
func (s *Service) Pull() error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	return repo.Pull()
}

// Push commits and pushes the manifest clone. A clone that cannot be
// pushed only prints why.
func (s *Service) Push() error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	if err := repo.Push(); err != nil {
		if bferrors.IsErrorCode(err, bferrors.ErrCommandFailed) {
			return err
		}
		s.console.Warn(err.Error(), 0)
	}
	return nil
}

// Files returns every manifest document path, primary first.
func (s *Service) Files() ([]string, error) {
	set, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}
	return set.Files(), nil
}

// Brew runs a package manager command and records what it installed or
// removed in the manifest. "noinit" skips the manifest update.
func (s *Service) Brew(args []string) error {
	bc := parseBrewCommand(args, s.settings.HomebrewRuby)
	if len(bc.Args) == 0 && bc.Exe == "brew" {
		return bferrors.New(bferrors.ErrInvalidInput, "no brew command given")
	}

	run := append([]string{bc.Exe}, bc.Args...)
	if bc.Kind == types.KindPip && os.Getenv("HOMEBREW_CELLAR") == "" {
		if cellar, err := s.provider.Value("cellar"); err == nil {
			run = append([]string{"env", "HOMEBREW_CELLAR=" + cellar}, run...)
		}
	}
	if err := s.provider.Run(run).Check(); err != nil {
		return err
	}
	if bc.NoInit || bc.Action == actionNone {
		return nil
	}
	return s.Record(bc)
}

// Record updates the manifest for a package manager command that succeeded.
func (s *Service) Record(bc *brewCommand) error {
	if _, err := s.LoadManifest(); err != nil {
		return err
	}

	reqs := bc.Requests()
	switch {
	case bc.Action == actionTap:
		plan, err := diff.DeclareInstalled(s.set, reqs, s.provider, s.policy())
		if err != nil {
			return err
		}
		s.warnConflicts(plan, "Do '"+program+" init' to clean up Brewfile")
	case bc.Action == actionUntap:
		s.warnConflicts(diff.DeclareRemoved(s.set, reqs, true), "Do '"+program+" init' to clean up Brewfile")
	default:
		if bc.removes() {
			plan := diff.DeclareRemoved(s.set, reqs, bc.Action == actionRemove)
			s.warnConflicts(plan, "Try '"+program+" init' to clean up Brewfile")
		}
		if bc.declares() {
			plan, err := diff.DeclareInstalled(s.set, reqs, s.provider, s.policy())
			if err != nil {
				return err
			}
			s.warnConflicts(plan, "Do '"+program+" init' to clean up Brewfile")
		}
	}

	s.set.InputToList(false)
	return s.writeManifest("brew " + strings.Join(bc.Args, " "))
}

func (s *Service) warnConflicts(plan *diff.Plan, hint string) {
	for _, c := range plan.Conflicts {
		msg := c.Error()
		var be *bferrors.BrewfileError
		if errors.As(c, &be) {
			msg = be.Message
		}
		s.console.Warn(msg+".", 0)
		s.console.Warn(hint, 0)
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
