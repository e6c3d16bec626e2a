package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/types"
)

// isolate clears every bound environment variable and returns a fake home
// and config directory.
func isolate(t *testing.T) (home, cfgDir string) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	home = t.TempDir()
	cfgDir = filepath.Join(home, ".config", AppName)
	return home, cfgDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	home, cfgDir := isolate(t)

	s, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfgDir, "Brewfile"), s.Input)
	assert.Equal(t, "", s.Backup)
	assert.Equal(t, types.DialectNone, s.Dialect)
	assert.False(t, s.Leaves)
	assert.False(t, s.OnRequest)
	assert.Empty(t, s.TopPackages)
	assert.True(t, s.Link)
	assert.True(t, s.AppStore)
	assert.True(t, s.DryRun)
	assert.False(t, s.AssumeYes)
	assert.Equal(t, 1, s.Verbose)
	assert.Equal(t, "vim", s.Editor)
	assert.Equal(t, types.CaskTap, s.CaskRepo)
	assert.Equal(t, types.PipCarrier, s.PipFormula)
	assert.Equal(t, types.GemCarrier, s.GemFormula)
	assert.Equal(t, types.MasFormula, s.MasFormula)
	assert.Equal(t, types.ReattachFormula, s.ReattachFormula)
	assert.Equal(t, filepath.Join(home, "Applications"), s.AppDir)
	assert.False(t, s.Tmux)
	assert.Empty(t, s.ConfigFile)
}

func TestLoadLegacyInput(t *testing.T) {
	home, cfgDir := isolate(t)
	legacy := filepath.Join(home, ".brewfile", "Brewfile")
	writeFile(t, legacy, "brew git\n")

	s, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir})
	require.NoError(t, err)
	assert.Equal(t, legacy, s.Input)

	// The config directory wins once it has a manifest.
	writeFile(t, filepath.Join(cfgDir, "Brewfile"), "")
	s, err = Load(LoadOptions{Home: home, ConfigDir: cfgDir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfgDir, "Brewfile"), s.Input)
}

func TestLoadEnvironment(t *testing.T) {
	home, cfgDir := isolate(t)
	appDir := t.TempDir()
	t.Setenv("HOMEBREW_BREWFILE", "~/dotfiles/Brewfile")
	t.Setenv("HOMEBREW_BREWFILE_BACKUP", "~/Brewfile.bak")
	t.Setenv("HOMEBREW_BREWFILE_LEAVES", "1")
	t.Setenv("HOMEBREW_BREWFILE_ON_REQUEST", "True")
	t.Setenv("HOMEBREW_BREWFILE_TOP_PACKAGES", "go, coreutils,")
	t.Setenv("HOMEBREW_BREWFILE_APPSTORE", "0")
	t.Setenv("HOMEBREW_BREWFILE_VERBOSE", "2")
	t.Setenv("EDITOR", "nano")
	t.Setenv("HOMEBREW_CASK_OPTS", "--appdir="+appDir+"/ --fontdir=/Library/Fonts")
	t.Setenv("HOMEBREW_GEM_OPTS", "--homebrew-ruby")
	t.Setenv("TMUX", "/tmp/tmux-501/default,1,0")

	s, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "dotfiles", "Brewfile"), s.Input)
	assert.Equal(t, filepath.Join(home, "Brewfile.bak"), s.Backup)
	assert.True(t, s.Leaves)
	assert.True(t, s.OnRequest)
	assert.Equal(t, []string{"go", "coreutils"}, s.TopPackages)
	assert.False(t, s.AppStore)
	assert.Equal(t, 2, s.Verbose)
	assert.Equal(t, "nano", s.Editor)
	assert.Equal(t, appDir, s.AppDir)
	assert.Equal(t, "/Library/Fonts", s.FontDir)
	assert.Contains(t, s.AppDirs, appDir)
	assert.True(t, s.HomebrewRuby)
	assert.True(t, s.Tmux)
}

func TestLoadConfigFile(t *testing.T) {
	home, cfgDir := isolate(t)
	path := filepath.Join(cfgDir, ConfigFileName)
	writeFile(t, path, `
format = "bundle"
leaves = true
on_request = true
verbose = 0
cask_repo = "caskroom/cask"
`)
	t.Setenv("HOMEBREW_BREWFILE_LEAVES", "0")

	s, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir})
	require.NoError(t, err)

	assert.Equal(t, path, s.ConfigFile)
	assert.Equal(t, types.DialectBundle, s.Dialect)
	assert.False(t, s.Leaves, "environment overrides the config file")
	assert.True(t, s.OnRequest)
	assert.Equal(t, 0, s.Verbose)
	assert.Equal(t, types.LegacyCaskTap, s.CaskRepo)
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{"unknown key", "fromat = \"cmd\"\n", "unknown key"},
		{"syntax error", "format = \n", ConfigFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, cfgDir := isolate(t)
			writeFile(t, filepath.Join(cfgDir, ConfigFileName), tt.content)

			_, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir})
			require.Error(t, err)
			assert.True(t, bferrors.IsErrorCode(err, bferrors.ErrConfigLoad))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadFlags(t *testing.T) {
	home, cfgDir := isolate(t)
	t.Setenv("HOMEBREW_BREWFILE", "/env/Brewfile")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("file", "f", "", "")
	flags.StringP("format", "F", "", "")
	flags.Bool("leaves", false, "")
	flags.IntP("verbose", "V", 1, "")
	flags.Bool("unrelated", false, "")
	require.NoError(t, flags.Parse([]string{"--leaves", "-V", "3", "-F", "cmd"}))

	s, err := Load(LoadOptions{Home: home, ConfigDir: cfgDir, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "/env/Brewfile", s.Input, "unchanged flags do not hide the environment")
	assert.True(t, s.Leaves)
	assert.Equal(t, 3, s.Verbose)
	assert.Equal(t, types.DialectCommand, s.Dialect)
}

func TestLoadOverrides(t *testing.T) {
	home, cfgDir := isolate(t)

	s, err := Load(LoadOptions{
		Home:      home,
		ConfigDir: cfgDir,
		Overrides: map[string]any{KeyLink: false, KeyDryRun: false, KeyAppStore: false},
	})
	require.NoError(t, err)
	assert.False(t, s.Link)
	assert.False(t, s.DryRun)
	assert.False(t, s.AppStore)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		code bferrors.ErrorCode
	}{
		{"format", map[string]string{}, bferrors.ErrInvalidInput},
		{"verbose", map[string]string{"HOMEBREW_BREWFILE_VERBOSE": "loud"}, bferrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, cfgDir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := LoadOptions{Home: home, ConfigDir: cfgDir}
			if tt.name == "format" {
				opts.Overrides = map[string]any{KeyFormat: "yaml"}
			}
			_, err := Load(opts)
			require.Error(t, err)
			assert.True(t, bferrors.IsErrorCode(err, tt.code))
		})
	}
}

func TestAppDirs(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Applications", "Utilities"), 0755))
	extra := t.TempDir()

	dirs := AppDirs(home, extra+"/")
	assert.Contains(t, dirs, filepath.Join(home, "Applications"))
	assert.Contains(t, dirs, filepath.Join(home, "Applications", "Utilities"))
	assert.Contains(t, dirs, extra)
	assert.NotContains(t, dirs, filepath.Join(extra, "Utilities"))

	// The default app dir is not listed twice.
	dirs = AppDirs(home, filepath.Join(home, "Applications"))
	count := 0
	for _, d := range dirs {
		if d == filepath.Join(home, "Applications") {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCaskroom(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "Caskroom"), 0755))
	assert.Equal(t, filepath.Join(prefix, "Caskroom"), Caskroom(prefix))
}

func TestExpandPath(t *testing.T) {
	t.Setenv("BREWFILE_TEST_DIR", "/data")
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"~", "/home/u"},
		{"~/Brewfile", "/home/u/Brewfile"},
		{"$BREWFILE_TEST_DIR/Brewfile", "/data/Brewfile"},
		{"/abs/Brewfile", "/abs/Brewfile"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in, "/home/u"), tt.in)
	}
}
