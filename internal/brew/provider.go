package brew

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Provider is the package index: it reports installed state and performs
// mutating package operations. Mutations return a Result and never abort;
// callers decide whether a failure is fatal with Result.Check.
type Provider interface {
	manifest.TapResolver

	ListInstalledFormulas() ([]string, error)
	FormulaInfo(names ...string) (map[string]FormulaMetadata, error)
	Leaves() ([]string, error)
	Deps(name string, oneLevel bool) ([]string, error)
	ListTaps() ([]string, error)
	ListCasks() ([]string, error)
	ListAppStoreApps() ([]string, error)
	TapPath(tap string) (string, error)

	Install(kind types.Kind, name, options string) Result
	Reinstall(name, options string) Result
	Uninstall(kind types.Kind, name string, ignoreDeps bool) Result
	Tap(name string) Result
	Untap(name string) Result
	RemoveApp(path string) Result
	Run(args []string) Result
	Shell(line string) Result

	ProposeCaskToken(app string) ([]string, error)
	HasTool(name string) bool
	Value(name string) (string, error)
}

// Options configure a CLI provider.
type Options struct {
	// CaskRepo is the tap providing casks and the cask token generator.
	CaskRepo string
	// HomebrewRuby passes --homebrew-ruby to brew gem.
	HomebrewRuby bool
	// Mas is the command prefix for the App Store CLI.
	Mas []string
	// Mutator runs mutating commands, typically streaming their output to
	// the console. Queries always use the quiet runner.
	Mutator CommandRunner
}

// CLI implements Provider on top of the brew executable.
type CLI struct {
	runner CommandRunner
	opts   Options
	values map[string]string
	tools  map[string]bool
}

// NewCLI creates a provider that runs commands through runner.
func NewCLI(runner CommandRunner, opts Options) *CLI {
	if opts.CaskRepo == "" {
		opts.CaskRepo = types.CaskTap
	}
	if len(opts.Mas) == 0 {
		opts.Mas = []string{"mas"}
	}
	if opts.Mutator == nil {
		opts.Mutator = runner
	}
	return &CLI{
		runner: runner,
		opts:   opts,
		values: make(map[string]string),
		tools:  make(map[string]bool),
	}
}

// SetMas replaces the App Store command prefix, e.g. to run it through
// reattach-to-user-namespace inside tmux.
func (c *CLI) SetMas(prefix ...string) {
	c.opts.Mas = prefix
}

// Mas returns the App Store command prefix.
func (c *CLI) Mas() []string {
	return append([]string(nil), c.opts.Mas...)
}

func (c *CLI) masArgs(args ...string) []string {
	return append(append([]string(nil), c.opts.Mas[1:]...), args...)
}

func (c *CLI) brew(args ...string) Result {
	return execute(c.runner, "brew", args...)
}

// mutate runs a command that changes installed state.
func (c *CLI) mutate(name string, args ...string) Result {
	return execute(c.opts.Mutator, name, args...)
}

// query runs a read-only brew command and fails on a non-zero exit.
func (c *CLI) query(args ...string) ([]string, error) {
	res := c.brew(args...)
	if !res.OK() {
		return nil, fmt.Errorf("brew %s failed: %s", strings.Join(args, " "), strings.Join(res.Lines, "\n"))
	}
	return res.Lines, nil
}

// Value returns `brew --<name>` (prefix, repository, cache, cellar), cached.
func (c *CLI) Value(name string) (string, error) {
	if v, ok := c.values[name]; ok {
		return v, nil
	}
	lines, err := c.query("--" + name)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("brew --%s returned no output", name)
	}
	c.values[name] = strings.TrimSpace(lines[0])
	return c.values[name], nil
}

// HasTool reports whether name resolves to an executable, cached.
func (c *CLI) HasTool(name string) bool {
	if ok, seen := c.tools[name]; seen {
		return ok
	}
	ok := execute(c.runner, "which", name).OK()
	c.tools[name] = ok
	return ok
}

// ListInstalledFormulas returns installed formula names.
func (c *CLI) ListInstalledFormulas() ([]string, error) {
	return c.query("list", "--formula", "-1")
}

// FormulaInfo returns metadata for names, or for every installed formula
// when names is empty.
func (c *CLI) FormulaInfo(names ...string) (map[string]FormulaMetadata, error) {
	args := []string{"info", "--json=v1"}
	if len(names) == 0 {
		args = append(args, "--installed")
	} else {
		args = append(args, names...)
	}

	out, err := c.runner.Run("brew", args...)
	if err != nil {
		return nil, fmt.Errorf("brew %s failed: %w", strings.Join(args, " "), err)
	}
	info, err := ParseFormulaInfo(jsonPayload(out))
	if err != nil {
		return nil, err
	}

	prefix, err := c.Value("prefix")
	if err != nil {
		return info, nil
	}
	for name, m := range info {
		if m.LinkedKeg != nil {
			continue
		}
		if target, err := os.Readlink(filepath.Join(prefix, "opt", name)); err == nil {
			m.OptVersion = filepath.Base(target)
			info[name] = m
		}
	}
	return info, nil
}

// jsonPayload drops warnings printed before the JSON document.
func jsonPayload(out []byte) []byte {
	s := string(out)
	if i := strings.Index(s, "["); i > 0 {
		return []byte(s[i:])
	}
	return out
}

// Leaves returns installed formulas that no other formula depends on.
func (c *CLI) Leaves() ([]string, error) {
	lines, err := c.query("leaves")
	if err != nil {
		return nil, err
	}
	leaves := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			leaves = append(leaves, manifest.BaseName(l))
		}
	}
	return leaves, nil
}

// Deps returns the dependencies of name, only direct ones when oneLevel is set.
func (c *CLI) Deps(name string, oneLevel bool) ([]string, error) {
	args := []string{"deps"}
	if oneLevel {
		args = append(args, "--1")
	}
	lines, err := c.query(append(args, name)...)
	if err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			deps = append(deps, l)
		}
	}
	return deps, nil
}

// ListTaps returns the tapped repositories.
func (c *CLI) ListTaps() ([]string, error) {
	return c.query("tap")
}

// ListCasks returns installed casks. A cask whose recipe is gone is listed
// with an error marker after its token.
func (c *CLI) ListCasks() ([]string, error) {
	res := c.brew("list", "--cask", "-1")
	if !res.OK() {
		return nil, fmt.Errorf("brew list --cask failed: %s", strings.Join(res.Lines, "\n"))
	}
	var casks []string
	for _, l := range res.Lines {
		if l == "" || strings.Contains(l, "Warning: nothing to list") ||
			strings.Contains(l, "=>") || strings.Contains(l, "->") {
			continue
		}
		casks = append(casks, l)
	}
	return casks, nil
}

// ListAppStoreApps returns `mas list` lines sorted by application name.
func (c *CLI) ListAppStoreApps() ([]string, error) {
	res := execute(c.runner, c.opts.Mas[0], c.masArgs("list")...)
	if !res.OK() {
		return nil, fmt.Errorf("%s list failed: %s", strings.Join(c.opts.Mas, " "), strings.Join(res.Lines, "\n"))
	}
	var apps []string
	for _, l := range res.Lines {
		if l = strings.Join(strings.Fields(l), " "); l == "" || l == "No installed apps found" {
			continue
		}
		apps = append(apps, l)
	}
	manifest.SortAppStore(apps)
	return apps, nil
}

// TapPath returns the local checkout of tap. Direct formulas live in the cache.
func (c *CLI) TapPath(tap string) (string, error) {
	if tap == types.DirectTap {
		cache, err := c.Value("cache")
		if err != nil {
			return "", err
		}
		return filepath.Join(cache, "Formula"), nil
	}
	repo, err := c.Value("repository")
	if err != nil {
		return "", err
	}
	user, name, ok := strings.Cut(tap, "/")
	if !ok {
		return "", fmt.Errorf("invalid tap name %q", tap)
	}
	return filepath.Join(repo, "Library", "Taps", user, "homebrew-"+name), nil
}

// TapContents lists the formula and cask recipes of a local tap checkout.
func (c *CLI) TapContents(tap string) (manifest.TapContents, error) {
	path, err := c.TapPath(tap)
	if err != nil {
		return manifest.TapContents{}, err
	}
	return ReadTap(path)
}

// Install installs name of kind with options.
func (c *CLI) Install(kind types.Kind, name, options string) Result {
	opts := strings.Fields(options)
	switch kind {
	case types.KindTap:
		return c.Tap(name)
	case types.KindCask:
		return c.mutate("brew", append([]string{"install", "--cask", name}, opts...)...)
	case types.KindPip:
		if len(opts) == 1 && !strings.HasPrefix(opts[0], "-") {
			return c.mutate("brew", "pip", name+"=="+opts[0])
		}
		return c.mutate("brew", append([]string{"pip", name}, opts...)...)
	case types.KindGem:
		args := append([]string{"gem", "install", name}, opts...)
		if c.opts.HomebrewRuby && !containsString(args, "--homebrew-ruby") {
			args = append(args, "--homebrew-ruby")
		}
		return c.mutate("brew", args...)
	case types.KindAppStore:
		id, _ := manifest.SplitAppStore(name)
		return c.mutate(c.opts.Mas[0], c.masArgs("install", id)...)
	default:
		return c.mutate("brew", append([]string{"install", name}, opts...)...)
	}
}

// Reinstall rebuilds formula name with options.
func (c *CLI) Reinstall(name, options string) Result {
	return c.mutate("brew", append([]string{"reinstall", name}, strings.Fields(options)...)...)
}

// Uninstall removes name of kind. Pip and gem packages are the generated
// pip-/gem- formulas and are always removed ignoring dependencies.
func (c *CLI) Uninstall(kind types.Kind, name string, ignoreDeps bool) Result {
	switch kind {
	case types.KindTap:
		return c.Untap(name)
	case types.KindCask:
		return c.mutate("brew", "uninstall", "--cask", name)
	case types.KindPip:
		return c.mutate("brew", "uninstall", "--ignore-dependencies", types.PipPrefix+name)
	case types.KindGem:
		return c.mutate("brew", "uninstall", "--ignore-dependencies", types.GemPrefix+name)
	}
	if ignoreDeps {
		return c.mutate("brew", "uninstall", "--ignore-dependencies", name)
	}
	return c.mutate("brew", "uninstall", name)
}

// Tap adds a tap.
func (c *CLI) Tap(name string) Result {
	return c.mutate("brew", "tap", name)
}

// Untap removes a tap.
func (c *CLI) Untap(name string) Result {
	return c.mutate("brew", "untap", name)
}

// RemoveApp deletes an application bundle, through the uninstall helper when
// it is available.
func (c *CLI) RemoveApp(path string) Result {
	if c.HasTool("uninstall") {
		return c.mutate("sudo", "uninstall", "file://"+(&url.URL{Path: path}).EscapedPath())
	}
	return c.mutate("sudo", "rm", "-rf", path)
}

// Run executes args directly.
func (c *CLI) Run(args []string) Result {
	if len(args) == 0 {
		return Result{}
	}
	return c.mutate(args[0], args[1:]...)
}

// Shell executes a manifest command line through /bin/sh.
func (c *CLI) Shell(line string) Result {
	res := c.mutate("/bin/sh", "-c", line)
	res.Command = line
	return res
}

// ProposeCaskToken runs the cask token generator for an application bundle
// and returns its output lines.
func (c *CLI) ProposeCaskToken(app string) ([]string, error) {
	logger := logging.GetLogger("brew")

	path, err := c.TapPath(c.opts.CaskRepo)
	if err != nil {
		return nil, err
	}
	namer := filepath.Join(path, "developer", "bin", "generate_cask_token")
	if _, err := os.Stat(namer); err != nil {
		logger.Debug().Str("path", namer).Msg("Cask token generator not available")
		return nil, nil
	}
	res := execute(c.runner, namer, strings.ToLower(filepath.Base(app)))
	return res.Lines, nil
}

// ReadTap lists the *.rb recipes at the tap root and under Formula (formulas)
// and under Casks (casks). Sharded subdirectories are walked. A missing tap
// yields empty contents.
func ReadTap(path string) (manifest.TapContents, error) {
	var contents manifest.TapContents
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return contents, nil
		}
		return contents, err
	}

	root, err := recipes(path, false)
	if err != nil {
		return contents, err
	}
	formulas, err := recipes(filepath.Join(path, "Formula"), true)
	if err != nil {
		return contents, err
	}
	casks, err := recipes(filepath.Join(path, "Casks"), true)
	if err != nil {
		return contents, err
	}
	contents.Formulas = append(root, formulas...)
	contents.Casks = casks
	return contents, nil
}

func recipes(dir string, recursive bool) ([]string, error) {
	var names []string
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".rb") {
				names = append(names, strings.TrimSuffix(e.Name(), ".rb"))
			}
		}
		return names, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".rb") {
			names = append(names, strings.TrimSuffix(d.Name(), ".rb"))
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
