package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/brewfile/internal/backup"
	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/brew/brewtest"
	"github.com/adamancini/brewfile/internal/config"
	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/interactive"
	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/state"
)

// fakeGit answers the git commands listed in out and fails the rest.
type fakeGit struct {
	out   map[string]string
	calls []string
}

func (g *fakeGit) Run(name string, args ...string) ([]byte, error) {
	return g.RunInDir("", name, args...)
}

func (g *fakeGit) RunInDir(dir, name string, args ...string) ([]byte, error) {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	g.calls = append(g.calls, cmd)
	if out, ok := g.out[cmd]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("%s failed", cmd)
}

type serviceFixture struct {
	svc      *Service
	fake     *brewtest.Fake
	git      *fakeGit
	out      *bytes.Buffer
	dir      string
	settings *config.Settings
}

// newFixture builds a service over a fake provider. answers feeds the prompts.
func newFixture(t *testing.T, answers string) *serviceFixture {
	t.Helper()
	dir := t.TempDir()
	settings := &config.Settings{
		Input:  filepath.Join(dir, "Brewfile"),
		Home:   dir,
		Link:   true,
		DryRun: true,
	}
	fx := &serviceFixture{
		fake:     brewtest.New(),
		git:      &fakeGit{out: map[string]string{}},
		out:      &bytes.Buffer{},
		dir:      dir,
		settings: settings,
	}
	fx.svc = NewServiceWithDeps(settings, Deps{
		Provider: fx.fake,
		Console:  output.NewConsole(fx.out, 1),
		Prompter: interactive.NewPrompterWithIO(strings.NewReader(answers), fx.out),
		Git:      fx.git,
		Backups:  backup.NewManagerWithDir(filepath.Join(dir, "backups"), "test"),
	})
	return fx
}

func (fx *serviceFixture) write(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(fx.settings.Input, []byte(content), 0644))
}

func (fx *serviceFixture) read(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fx.svc.Input())
	require.NoError(t, err)
	return string(data)
}

func TestInitializeWritesInstalledPackages(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.AddFormula("git", "")
	fx.fake.AddFormula("vim", "--HEAD")
	fx.fake.TapList = []string{"homebrew/core"}
	fx.fake.CaskList = []string{"firefox"}

	require.NoError(t, fx.svc.Initialize(false, false))

	content := fx.read(t)
	assert.Contains(t, content, "tap homebrew/core")
	assert.Contains(t, content, "brew git")
	assert.Contains(t, content, "brew vim --HEAD")
	assert.Contains(t, content, "cask firefox")
	assert.Contains(t, fx.out.String(), "$ brew-file edit")
}

func TestInitializeOnlyOncePerRun(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.AddFormula("git", "")
	require.NoError(t, fx.svc.Initialize(false, false))

	fx.fake.AddFormula("wget", "")
	require.NoError(t, fx.svc.Initialize(false, false))
	assert.NotContains(t, fx.read(t), "wget")
}

func TestInitializeDeclinedOverwrite(t *testing.T) {
	fx := newFixture(t, "n\n")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew wget\n")

	require.NoError(t, fx.svc.Initialize(true, true))
	assert.Equal(t, "brew wget\n", fx.read(t))
	assert.Contains(t, fx.out.String(), "is already there.")
}

func TestInitializeMovesToBackupPath(t *testing.T) {
	fx := newFixture(t, "")
	fx.settings.Backup = filepath.Join(fx.dir, "Brewfile.bak")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew wget\n")

	require.NoError(t, fx.svc.Initialize(true, false))

	old, err := os.ReadFile(fx.settings.Backup)
	require.NoError(t, err)
	assert.Equal(t, "brew wget\n", string(old))
	assert.Contains(t, fx.read(t), "brew git")
	assert.NotContains(t, fx.read(t), "wget")
}

func TestInitializeKeepsCopy(t *testing.T) {
	fx := newFixture(t, "y\n")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew wget\n")

	require.NoError(t, fx.svc.Initialize(true, true))

	copies, err := fx.svc.backups.List()
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, "init", copies[0].Note)

	bak, err := fx.svc.backups.Get("latest")
	require.NoError(t, err)
	assert.Equal(t, "brew wget\n", bak.Content)
}

func TestCheckInputFile(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		fx := newFixture(t, "n\n")
		err := fx.svc.CheckInputFile()
		require.Error(t, err)
		assert.True(t, bferrors.IsErrorCode(err, bferrors.ErrMissingFile))
		assert.Contains(t, fx.out.String(), "$ brew-file init")
		assert.NoFileExists(t, fx.settings.Input)
	})

	t.Run("accepted", func(t *testing.T) {
		fx := newFixture(t, "y\n")
		fx.fake.AddFormula("git", "")
		require.NoError(t, fx.svc.CheckInputFile())
		assert.Contains(t, fx.read(t), "brew git")
	})

	t.Run("present", func(t *testing.T) {
		fx := newFixture(t, "")
		fx.write(t, "brew git\n")
		require.NoError(t, fx.svc.CheckInputFile())
		assert.Empty(t, fx.out.String())
	})
}

func TestInstallRunsPlan(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew git\nbrew wget\n")

	result, err := fx.svc.Install()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Installed)
	assert.Contains(t, fx.fake.Commands, "install formula wget")
	assert.NotContains(t, fx.fake.Commands, "install formula git")
	assert.Equal(t, "brew git\nbrew wget\n", fx.read(t))
}

func TestInstallDeclaresDependencies(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.DepMap["tig"] = []string{"ncurses"}
	fx.write(t, "brew tig\n")

	_, err := fx.svc.Install()
	require.NoError(t, err)

	content := fx.read(t)
	assert.Contains(t, content, "brew tig")
	assert.Contains(t, content, "brew ncurses")
}

func TestInstallDeclaresCarriers(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "pip requests\n")

	_, err := fx.svc.Install()
	require.NoError(t, err)

	assert.Contains(t, fx.fake.Commands, "install formula brew-pip")
	content := fx.read(t)
	assert.Contains(t, content, "brew brew-pip")
	assert.Contains(t, content, "pip requests")
}

func TestInstallDeclaresCaskTap(t *testing.T) {
	fx := newFixture(t, "")
	fx.settings.CaskRepo = "homebrew/cask"
	fx.write(t, "cask firefox\n")

	_, err := fx.svc.Install()
	require.NoError(t, err)

	assert.Contains(t, fx.fake.Commands, "install tap homebrew/cask")
	content := fx.read(t)
	assert.Contains(t, content, "tap homebrew/cask")
	assert.NotContains(t, content, "tap cask\n")
}

func TestBrewRecordsInstall(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Brew([]string{"install", "wget", "--HEAD"}))

	assert.Equal(t, []string{"run brew install wget --HEAD"}, fx.fake.Commands)
	content := fx.read(t)
	assert.Contains(t, content, "brew git")
	assert.Contains(t, content, "brew wget --HEAD")
}

func TestBrewRecordsTapOfQualifiedName(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Brew([]string{"install", "rcmdnk/file/brew-file"}))

	content := fx.read(t)
	assert.Contains(t, content, "tap rcmdnk/file")
	assert.Contains(t, content, "brew brew-file")
}

func TestBrewRecordsRemove(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\nbrew wget\n")

	require.NoError(t, fx.svc.Brew([]string{"uninstall", "wget"}))

	content := fx.read(t)
	assert.Contains(t, content, "brew git")
	assert.NotContains(t, content, "wget")
}

func TestBrewWarnsOnConflicts(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Brew([]string{"install", "git"}))
	assert.Contains(t, fx.out.String(), "git is already in Brewfile.")
	assert.Contains(t, fx.out.String(), "Do 'brew-file init' to clean up Brewfile")

	fx.out.Reset()
	require.NoError(t, fx.svc.Brew([]string{"rm", "wget"}))
	assert.Contains(t, fx.out.String(), "wget is not in Brewfile.")
	assert.Contains(t, fx.out.String(), "Try 'brew-file init' to clean up Brewfile")
}

func TestBrewNoInit(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Brew([]string{"install", "noinit", "wget"}))
	assert.Equal(t, []string{"run brew install wget"}, fx.fake.Commands)
	assert.Equal(t, "brew git\n", fx.read(t))
}

func TestBrewFailureKeepsManifest(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")
	fx.fake.Failures["run brew install nope"] = 1

	err := fx.svc.Brew([]string{"install", "nope"})
	var exitErr *brew.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "brew git\n", fx.read(t))
}

func TestBrewPipSetsCellar(t *testing.T) {
	t.Setenv("HOMEBREW_CELLAR", "")
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Brew([]string{"pip", "requests"}))
	assert.Equal(t, []string{"run env HOMEBREW_CELLAR=/brew/cellar brew-pip requests"}, fx.fake.Commands)
	assert.Contains(t, fx.read(t), "pip requests")
}

func TestResolveRepoClonesAndInitializes(t *testing.T) {
	fx := newFixture(t, "")
	url := "https://example.com/me/dotbrew.git"
	fx.write(t, "git "+url+"\n")
	clone := filepath.Join(fx.dir, "me_dotbrew")
	fx.git.out["git clone "+url+" "+clone] = ""

	require.NoError(t, fx.svc.ResolveRepo())

	assert.Equal(t, filepath.Join(clone, "Brewfile"), fx.svc.Input())
	require.NotNil(t, fx.svc.Repository())
	assert.Equal(t, url, fx.svc.Repository().URL)
	assert.FileExists(t, filepath.Join(clone, "Brewfile"))
	assert.FileExists(t, filepath.Join(clone, "README.md"))
	assert.Contains(t, fx.git.calls, "git clone "+url+" "+clone)
}

func TestResolveRepoLocal(t *testing.T) {
	fx := newFixture(t, "")
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.ResolveRepo())
	assert.Equal(t, fx.settings.Input, fx.svc.Input())
	assert.Nil(t, fx.svc.Repository())
	assert.Empty(t, fx.git.calls)
}

func TestSetRepoNonKeepsLocal(t *testing.T) {
	fx := newFixture(t, "non\n")
	fx.fake.AddFormula("git", "")

	require.NoError(t, fx.svc.SetRepo(""))

	assert.Nil(t, fx.svc.Repository())
	content := fx.read(t)
	assert.Contains(t, content, "brew git")
	assert.NotContains(t, content, "git https")
}

func TestSetRepoWritesPointer(t *testing.T) {
	fx := newFixture(t, "")
	url := "https://example.com/me/dotbrew.git"
	clone := filepath.Join(fx.dir, "me_dotbrew")
	fx.git.out["git clone "+url+" "+clone] = ""

	require.NoError(t, fx.svc.SetRepo(url))

	pointer, err := os.ReadFile(fx.settings.Input)
	require.NoError(t, err)
	assert.Equal(t, "git "+url+"\n", string(pointer))
	assert.Equal(t, filepath.Join(clone, "Brewfile"), fx.svc.Input())
}

func TestPullWithoutRepository(t *testing.T) {
	fx := newFixture(t, "")
	err := fx.svc.Pull()
	require.Error(t, err)
	assert.True(t, bferrors.IsErrorCode(err, bferrors.ErrConfigLoad))
	assert.Contains(t, fx.out.String(), "$ brew-file set_repo")
}

func TestStatus(t *testing.T) {
	fx := newFixture(t, "")
	fx.fake.AddFormula("git", "")
	fx.write(t, "brew git\nbrew wget\n")

	report, err := fx.svc.Status()
	require.NoError(t, err)
	assert.Equal(t, fx.settings.Input, report.Input)
	assert.Equal(t, 1, report.Install)
	assert.False(t, report.InSync())
	assert.Contains(t, report.String(), "To install: 1")
	assert.Nil(t, report.Repository)
}

func TestStatusInSync(t *testing.T) {
	report := StatusReport{Input: "/tmp/Brewfile", Files: []string{"/tmp/Brewfile", "/tmp/Brewfile.work"}}
	assert.True(t, report.InSync())
	assert.Equal(t, "Brewfile: /tmp/Brewfile\nIncludes: /tmp/Brewfile.work\nIn sync with installed packages.", report.String())
}

func TestRestore(t *testing.T) {
	fx := newFixture(t, "y\n")
	fx.write(t, "brew wget\n")
	bak, err := fx.svc.backups.Create(fx.settings.Input, "manual")
	require.NoError(t, err)
	fx.write(t, "brew git\n")

	require.NoError(t, fx.svc.Restore(bak.ID, ""))
	assert.Equal(t, "brew wget\n", fx.read(t))

	copies, err := fx.svc.backups.List()
	require.NoError(t, err)
	assert.Len(t, copies, 2)
}

type failingReader struct{}

func (failingReader) Read() (*state.Snapshot, error) {
	return nil, errors.New("brew is not installed")
}

func TestInitializeStateError(t *testing.T) {
	dir := t.TempDir()
	settings := &config.Settings{Input: filepath.Join(dir, "Brewfile")}
	svc := NewServiceWithDeps(settings, Deps{
		Provider: brewtest.New(),
		Console:  output.NewConsole(&bytes.Buffer{}, 1),
		State:    failingReader{},
	})

	err := svc.Initialize(false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read current state")
	assert.NoFileExists(t, settings.Input)
}
