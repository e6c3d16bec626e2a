// Package config resolves brew-file settings from flags, environment
// variables and an optional config.toml.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/types"
)

const (
	// AppName is the directory name used under the XDG base directories.
	AppName = "brewfile"
	// ConfigFileName is the optional settings file in the config directory.
	ConfigFileName = "config.toml"
	// ManifestName is the default manifest file name.
	ManifestName = "Brewfile"
)

// Settings is the resolved configuration of one run. It is built once by
// Load and not modified afterwards.
type Settings struct {
	Input       string
	Backup      string
	Dialect     types.Dialect
	Leaves      bool
	OnRequest   bool
	TopPackages []string
	NoUpgrade   bool
	Repo        string
	Link        bool
	CaskOnly    bool
	AppStore    bool
	DryRun      bool
	AssumeYes   bool
	Verbose     int
	Editor      string

	CaskRepo        string
	PipFormula      string
	GemFormula      string
	MasFormula      string
	ReattachFormula string

	// AppDir is the cask application directory from HOMEBREW_CASK_OPTS.
	AppDir  string
	FontDir string
	// AppDirs are the existing directories searched for applications.
	AppDirs      []string
	HomebrewRuby bool
	// Tmux is set when running inside a tmux session.
	Tmux bool

	Home string
	// ConfigFile is the config.toml that was read, if any.
	ConfigFile string
}

// LoadOptions control where Load looks for its inputs.
type LoadOptions struct {
	// Flags are bound by name to settings keys; only changed flags override.
	Flags *pflag.FlagSet
	// Overrides are applied last, e.g. for negated flags like --nolink.
	Overrides map[string]any
	// ConfigDir replaces $XDG_CONFIG_HOME/brewfile.
	ConfigDir string
	// Home replaces the user's home directory.
	Home string
}

// envBindings maps settings keys to the environment variables they read.
var envBindings = map[string]string{
	KeyFile:        "HOMEBREW_BREWFILE",
	KeyBackup:      "HOMEBREW_BREWFILE_BACKUP",
	KeyLeaves:      "HOMEBREW_BREWFILE_LEAVES",
	KeyOnRequest:   "HOMEBREW_BREWFILE_ON_REQUEST",
	KeyTopPackages: "HOMEBREW_BREWFILE_TOP_PACKAGES",
	KeyAppStore:    "HOMEBREW_BREWFILE_APPSTORE",
	KeyVerbose:     "HOMEBREW_BREWFILE_VERBOSE",
	KeyEditor:      "EDITOR",
	KeyCaskOpts:    "HOMEBREW_CASK_OPTS",
	KeyGemOpts:     "HOMEBREW_GEM_OPTS",
	KeyTmux:        "TMUX",
}

// Settings keys. Flag names and config.toml keys use the same names.
const (
	KeyFile            = "file"
	KeyBackup          = "backup"
	KeyFormat          = "format"
	KeyLeaves          = "leaves"
	KeyOnRequest       = "on_request"
	KeyTopPackages     = "top_packages"
	KeyNoUpgrade       = "noupgrade"
	KeyRepo            = "repo"
	KeyLink            = "link"
	KeyCaskOnly        = "caskonly"
	KeyAppStore        = "appstore"
	KeyDryRun          = "dryrun"
	KeyYes             = "yes"
	KeyVerbose         = "verbose"
	KeyEditor          = "editor"
	KeyCaskRepo        = "cask_repo"
	KeyPipFormula      = "pip_formula"
	KeyGemFormula      = "gem_formula"
	KeyMasFormula      = "mas_formula"
	KeyReattachFormula = "reattach_formula"
	KeyCaskOpts        = "cask_opts"
	KeyGemOpts         = "gem_opts"
	KeyTmux            = "tmux"
)

// Dir returns $XDG_CONFIG_HOME/brewfile.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultInput returns the manifest path used when none is configured:
// the config directory's Brewfile, unless only the legacy ~/.brewfile/Brewfile exists.
func DefaultInput(configDir, home string) string {
	primary := filepath.Join(configDir, ManifestName)
	legacy := filepath.Join(home, ".brewfile", ManifestName)
	if !isFile(primary) && isFile(legacy) {
		return legacy
	}
	return primary
}

// Load resolves the settings. Precedence, highest first: overrides, changed
// flags, environment, config.toml, defaults.
func Load(opts LoadOptions) (*Settings, error) {
	home := opts.Home
	if home == "" {
		home = xdg.Home
	}
	cfgDir := opts.ConfigDir
	if cfgDir == "" {
		cfgDir = Dir()
	}

	v := viper.New()

	v.SetDefault(KeyFile, DefaultInput(cfgDir, home))
	v.SetDefault(KeyBackup, "")
	v.SetDefault(KeyFormat, string(types.DialectNone))
	v.SetDefault(KeyLeaves, false)
	v.SetDefault(KeyOnRequest, false)
	v.SetDefault(KeyTopPackages, "")
	v.SetDefault(KeyNoUpgrade, false)
	v.SetDefault(KeyRepo, "")
	v.SetDefault(KeyLink, true)
	v.SetDefault(KeyCaskOnly, false)
	v.SetDefault(KeyAppStore, true)
	v.SetDefault(KeyDryRun, true)
	v.SetDefault(KeyYes, false)
	v.SetDefault(KeyVerbose, 1)
	v.SetDefault(KeyEditor, "vim")
	v.SetDefault(KeyCaskRepo, types.CaskTap)
	v.SetDefault(KeyPipFormula, types.PipCarrier)
	v.SetDefault(KeyGemFormula, types.GemCarrier)
	v.SetDefault(KeyMasFormula, types.MasFormula)
	v.SetDefault(KeyReattachFormula, types.ReattachFormula)
	v.SetDefault(KeyCaskOpts, "")
	v.SetDefault(KeyGemOpts, "")
	v.SetDefault(KeyTmux, "")

	cfgFile := filepath.Join(cfgDir, ConfigFileName)
	resolved := ""
	if isFile(cfgFile) {
		if err := loadTOMLIntoViper(v, cfgFile); err != nil {
			return nil, err
		}
		resolved = cfgFile
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, bferrors.Wrapf(err, bferrors.ErrConfigLoad, "failed to bind %s", env)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			if bindErr == nil && isKey(f.Name) {
				bindErr = v.BindPFlag(f.Name, f)
			}
		})
		if bindErr != nil {
			return nil, bferrors.Wrap(bindErr, bferrors.ErrConfigLoad, "failed to bind flags")
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	s, err := fromViper(v, home)
	if err != nil {
		return nil, err
	}
	s.ConfigFile = resolved

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func fromViper(v *viper.Viper, home string) (*Settings, error) {
	dialect, err := types.ParseDialect(v.GetString(KeyFormat))
	if err != nil {
		return nil, bferrors.Wrap(err, bferrors.ErrInvalidInput, "invalid format")
	}

	verbose, err := strconv.Atoi(strings.TrimSpace(v.GetString(KeyVerbose)))
	if err != nil {
		return nil, bferrors.Newf(bferrors.ErrInvalidInput, "verbose must be an integer, got %q", v.GetString(KeyVerbose))
	}

	caskOpts := ParseEnvOpts(v.GetString(KeyCaskOpts), map[string]string{"--appdir": "", "--fontdir": ""})
	gemOpts := ParseEnvOpts(v.GetString(KeyGemOpts), nil)
	_, homebrewRuby := gemOpts["--homebrew-ruby"]

	s := &Settings{
		Input:       ExpandPath(v.GetString(KeyFile), home),
		Backup:      ExpandPath(v.GetString(KeyBackup), home),
		Dialect:     dialect,
		Leaves:      ToBool(v.GetString(KeyLeaves)),
		OnRequest:   ToBool(v.GetString(KeyOnRequest)),
		TopPackages: SplitList(v.GetString(KeyTopPackages)),
		NoUpgrade:   ToBool(v.GetString(KeyNoUpgrade)),
		Repo:        v.GetString(KeyRepo),
		Link:        ToBool(v.GetString(KeyLink)),
		CaskOnly:    ToBool(v.GetString(KeyCaskOnly)),
		AppStore:    ToBool(v.GetString(KeyAppStore)),
		DryRun:      ToBool(v.GetString(KeyDryRun)),
		AssumeYes:   ToBool(v.GetString(KeyYes)),
		Verbose:     verbose,
		Editor:      v.GetString(KeyEditor),

		CaskRepo:        v.GetString(KeyCaskRepo),
		PipFormula:      v.GetString(KeyPipFormula),
		GemFormula:      v.GetString(KeyGemFormula),
		MasFormula:      v.GetString(KeyMasFormula),
		ReattachFormula: v.GetString(KeyReattachFormula),

		AppDir:       strings.TrimRight(caskOpts["--appdir"], "/"),
		FontDir:      caskOpts["--fontdir"],
		HomebrewRuby: homebrewRuby,
		Tmux:         v.GetString(KeyTmux) != "",
		Home:         home,
	}
	if s.AppDir == "" {
		s.AppDir = filepath.Join(home, "Applications")
	}
	s.AppDirs = AppDirs(home, s.AppDir)
	return s, nil
}

// AppDirs lists /Applications, ~/Applications, appDir and the Utilities
// folder of each, keeping only existing directories.
func AppDirs(home, appDir string) []string {
	dirs := []string{"/Applications", filepath.Join(home, "Applications")}
	appDir = strings.TrimRight(appDir, "/")
	if appDir != "" && !contains(dirs, appDir) {
		dirs = append(dirs, appDir)
	}
	for _, d := range append([]string(nil), dirs...) {
		dirs = append(dirs, filepath.Join(d, "Utilities"))
	}

	var out []string
	for _, d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// Caskroom returns where installed casks live for the brew prefix.
func Caskroom(prefix string) string {
	room := filepath.Join(prefix, "Caskroom")
	const legacy = "/opt/homebrew-cask/Caskroom"
	if !isDir(room) && isDir(legacy) {
		return legacy
	}
	return room
}

// ExpandPath expands a leading "~" and environment variables.
func ExpandPath(path, home string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func isKey(name string) bool {
	for _, k := range Keys() {
		if k == name {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Keys returns every settings key, in config.toml order.
func Keys() []string {
	return []string{
		KeyFile, KeyBackup, KeyFormat, KeyLeaves, KeyOnRequest, KeyTopPackages,
		KeyNoUpgrade, KeyRepo, KeyLink, KeyCaskOnly, KeyAppStore, KeyDryRun,
		KeyYes, KeyVerbose, KeyEditor, KeyCaskRepo, KeyPipFormula, KeyGemFormula,
		KeyMasFormula, KeyReattachFormula, KeyCaskOpts, KeyGemOpts, KeyTmux,
	}
}
