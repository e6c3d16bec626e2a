// Package git keeps a manifest in a git repository: it resolves the
// repository pointer to a local clone and pulls and pushes it.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/templates"
)

// CommandRunner is an interface for running external commands.
// This allows for mocking in tests.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
	RunInDir(dir, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses os/exec to run commands.
type DefaultCommandRunner struct{}

// Run executes a command in the current directory.
func (r *DefaultCommandRunner) Run(name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	cmd := exec.Command(name, args...)
	return cmd.CombinedOutput()
}

// RunInDir executes a command in the specified directory.
func (r *DefaultCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// NormalizeURL prefixes a bare "owner/repo" pointer with git@github.com:.
func NormalizeURL(repo string) string {
	for _, p := range []string{"git://", "git@", "http"} {
		if strings.HasPrefix(repo, p) {
			return repo
		}
	}
	return "git@github.com:" + repo
}

// RepoName is the last path element of url without ".git".
func RepoName(url string) string {
	parts := strings.Split(url, "/")
	name, _, _ := strings.Cut(parts[len(parts)-1], ".git")
	return name
}

// UserName is the owner part of url.
func UserName(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		parts = strings.Split(url, ":")
		if len(parts) < 2 {
			return ""
		}
		return parts[len(parts)-2]
	}
	owner := strings.Split(parts[len(parts)-2], ":")
	return owner[len(owner)-1]
}

// RepoFile is where the manifest lives in the clone of url: next to input,
// in a <user>_<repo> directory, with input's file name.
func RepoFile(input, url string) string {
	return filepath.Join(filepath.Dir(input), UserName(url)+"_"+RepoName(url), filepath.Base(input))
}

// Pushable reports whether url uses a protocol that accepts pushes.
func Pushable(url string) bool {
	return !strings.HasPrefix(url, "git://") && !strings.HasPrefix(url, "http")
}

// Repository is a local clone holding the manifest.
type Repository struct {
	URL string
	Dir string
	// Program is the command name shown in hints.
	Program string

	runner CommandRunner
}

// NewRepository creates a repository for the clone of url that holds file.
func NewRepository(url, file string) *Repository {
	return NewRepositoryWithRunner(url, file, &DefaultCommandRunner{})
}

// NewRepositoryWithRunner creates a repository with a custom command runner (for testing).
func NewRepositoryWithRunner(url, file string, runner CommandRunner) *Repository {
	return &Repository{
		URL:     NormalizeURL(url),
		Dir:     filepath.Dir(file),
		Program: "brew-file",
		runner:  runner,
	}
}

func (r *Repository) git(args ...string) ([]byte, error) {
	return r.runner.RunInDir(r.Dir, "git", args...)
}

// Exists reports whether the clone directory exists.
func (r *Repository) Exists() bool {
	info, err := os.Stat(r.Dir)
	return err == nil && info.IsDir()
}

// Clone clones the repository into Dir.
func (r *Repository) Clone() error {
	out, err := r.runner.Run("git", "clone", r.URL, r.Dir)
	if err != nil {
		return bferrors.Wrapf(err, bferrors.ErrCommandFailed,
			"can't clone %s.\nplease check the repository, or reset with\n    $ %s set_repo", r.URL, r.Program).
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	return nil
}

// Initialized reports whether the clone has any branch.
func (r *Repository) Initialized() bool {
	out, err := r.git("branch")
	return err == nil && strings.TrimSpace(string(out)) != ""
}

// Init prepares an empty clone with a README and an empty manifest, and
// pushes them when the git identity allows it. An initialized clone is left
// untouched.
func (r *Repository) Init(file string) error {
	if r.Initialized() {
		return nil
	}
	logger := logging.GetLogger("git")
	logger.Info().Str("dir", r.Dir).Msg("Initializing the repository with README.md/Brewfile")

	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return err
	}
	readme := filepath.Join(r.Dir, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		content, err := templates.Readme(RepoName(r.URL))
		if err != nil {
			return err
		}
		if err := os.WriteFile(readme, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write README.md: %w", err)
		}
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	f.Close()

	if err := r.CheckConfig(); err != nil {
		logger.Warn().Err(err).Msg("Skipping the initial commit")
		return nil
	}
	return r.commitAndPush("Prepared by "+r.Program, true, "-u", "origin", "HEAD")
}

// CheckConfig returns an error when pushes cannot work: the URL is read-only
// or git has no user name or email.
func (r *Repository) CheckConfig() error {
	if !Pushable(r.URL) {
		return bferrors.Newf(bferrors.ErrInvalidInput,
			"You are using repository of %s\nUse git protocol (git@...) to push your Brewfile update.", r.URL)
	}
	name, _ := r.git("config", "user.name")
	email, _ := r.git("config", "user.email")
	if strings.TrimSpace(string(name)) == "" || strings.TrimSpace(string(email)) == "" {
		return bferrors.New(bferrors.ErrConfigLoad,
			"You don't have user/email information in your .gitconfig.\n"+
				"To commit and push your update, run\n"+
				"  git config --global user.email \"you@example.com\"\n"+
				"  git config --global user.name \"Your Name\"\n"+
				"and try again.")
	}
	return nil
}

// Pull updates the clone.
func (r *Repository) Pull() error {
	if out, err := r.git("pull"); err != nil {
		return bferrors.Wrap(err, bferrors.ErrCommandFailed, "git pull failed").
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	return nil
}

// Push commits every change and pushes it. Nothing to commit is not an error.
func (r *Repository) Push() error {
	if err := r.CheckConfig(); err != nil {
		return err
	}
	return r.commitAndPush("Update the package list", false)
}

func (r *Repository) commitAndPush(message string, strict bool, pushArgs ...string) error {
	if out, err := r.git("add", "-A"); err != nil {
		return bferrors.Wrap(err, bferrors.ErrCommandFailed, "git add failed").
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	if out, err := r.git("commit", "-m", message); err != nil && strict {
		return bferrors.Wrap(err, bferrors.ErrCommandFailed, "git commit failed").
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	if out, err := r.git(append([]string{"push"}, pushArgs...)...); err != nil {
		return bferrors.Wrap(err, bferrors.ErrCommandFailed, "git push failed").
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	return nil
}
