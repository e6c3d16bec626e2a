package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bferrors "github.com/adamancini/brewfile/internal/errors"
)

// MockCommandRunner mocks command execution for testing.
type MockCommandRunner struct {
	// Commands maps "dir:command args..." to output
	Commands map[string]struct {
		Output []byte
		Error  error
	}
	Calls []string
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands: make(map[string]struct {
			Output []byte
			Error  error
		}),
	}
}

// AddCommand adds a command response.
func (m *MockCommandRunner) AddCommand(dir, cmd string, output []byte, err error) {
	key := dir + ":" + cmd
	m.Commands[key] = struct {
		Output []byte
		Error  error
	}{Output: output, Error: err}
}

// Run executes a command (not in a specific directory).
func (m *MockCommandRunner) Run(name string, args ...string) ([]byte, error) {
	return m.RunInDir("", name, args...)
}

// RunInDir executes a command in a directory.
func (m *MockCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, error) {
	cmd := name + " " + strings.Join(args, " ")
	m.Calls = append(m.Calls, cmd)
	key := dir + ":" + cmd
	if resp, ok := m.Commands[key]; ok {
		return resp.Output, resp.Error
	}
	// Also try without dir for global commands
	key = ":" + cmd
	if resp, ok := m.Commands[key]; ok {
		return resp.Output, resp.Error
	}
	return nil, errors.New("command not mocked: " + key)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"owner/repo", "git@github.com:owner/repo"},
		{"git@github.com:owner/repo", "git@github.com:owner/repo"},
		{"https://github.com/owner/repo.git", "https://github.com/owner/repo.git"},
		{"git://example.com/owner/repo", "git://example.com/owner/repo"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepoFile(t *testing.T) {
	tests := []struct {
		url  string
		user string
		repo string
	}{
		{"git@github.com:alice/Brewfile", "alice", "Brewfile"},
		{"https://github.com/bob/dotbrew.git", "bob", "dotbrew"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.user, UserName(tt.url))
		assert.Equal(t, tt.repo, RepoName(tt.url))
		assert.Equal(t,
			filepath.Join("/cfg/brewfile", tt.user+"_"+tt.repo, "Brewfile"),
			RepoFile("/cfg/brewfile/Brewfile", tt.url))
	}
}

func TestPushable(t *testing.T) {
	assert.True(t, Pushable("git@github.com:a/b"))
	assert.False(t, Pushable("https://github.com/a/b"))
	assert.False(t, Pushable("git://host/a/b"))
}

func TestCheckConfig(t *testing.T) {
	t.Run("read-only url", func(t *testing.T) {
		r := NewRepositoryWithRunner("https://github.com/a/b", "/x/a_b/Brewfile", NewMockCommandRunner())
		err := r.CheckConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Use git protocol")
	})

	t.Run("missing identity", func(t *testing.T) {
		mock := NewMockCommandRunner()
		mock.AddCommand("/x/a_b", "git config user.name", []byte("Alice\n"), nil)
		r := NewRepositoryWithRunner("a/b", "/x/a_b/Brewfile", mock)
		err := r.CheckConfig()
		require.Error(t, err)
		assert.True(t, bferrors.IsErrorCode(err, bferrors.ErrConfigLoad))
	})

	t.Run("ok", func(t *testing.T) {
		mock := NewMockCommandRunner()
		mock.AddCommand("/x/a_b", "git config user.name", []byte("Alice\n"), nil)
		mock.AddCommand("/x/a_b", "git config user.email", []byte("a@example.com\n"), nil)
		r := NewRepositoryWithRunner("a/b", "/x/a_b/Brewfile", mock)
		assert.NoError(t, r.CheckConfig())
	})
}

func TestInitCreatesReadme(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alice_Brewfile")
	file := filepath.Join(dir, "Brewfile")
	mock := NewMockCommandRunner()
	mock.AddCommand(dir, "git branch", nil, nil)
	mock.AddCommand(dir, "git config user.name", []byte("Alice"), nil)
	mock.AddCommand(dir, "git config user.email", []byte("a@example.com"), nil)
	mock.AddCommand(dir, "git add -A", nil, nil)
	mock.AddCommand(dir, "git commit -m Prepared by brew-file", nil, nil)
	mock.AddCommand(dir, "git push -u origin HEAD", nil, nil)

	r := NewRepositoryWithRunner("alice/Brewfile", file, mock)
	require.NoError(t, r.Init(file))

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(readme), "# Brewfile\n"))
	assert.FileExists(t, file)
	assert.Contains(t, mock.Calls, "git push -u origin HEAD")
}

func TestInitSkipsInitializedClone(t *testing.T) {
	dir := t.TempDir()
	mock := NewMockCommandRunner()
	mock.AddCommand(dir, "git branch", []byte("* main\n"), nil)

	r := NewRepositoryWithRunner("alice/Brewfile", filepath.Join(dir, "Brewfile"), mock)
	require.NoError(t, r.Init(filepath.Join(dir, "Brewfile")))
	assert.Equal(t, []string{"git branch"}, mock.Calls)
	assert.NoFileExists(t, filepath.Join(dir, "README.md"))
}

func TestPushIgnoresEmptyCommit(t *testing.T) {
	mock := NewMockCommandRunner()
	mock.AddCommand("/c", "git config user.name", []byte("Alice"), nil)
	mock.AddCommand("/c", "git config user.email", []byte("a@example.com"), nil)
	mock.AddCommand("/c", "git add -A", nil, nil)
	mock.AddCommand("/c", "git commit -m Update the package list", []byte("nothing to commit"), errors.New("exit status 1"))
	mock.AddCommand("/c", "git push", nil, nil)

	r := NewRepositoryWithRunner("alice/b", "/c/Brewfile", mock)
	require.NoError(t, r.Push())
	assert.Equal(t, "git push", mock.Calls[len(mock.Calls)-1])
}

func TestCloneFailure(t *testing.T) {
	mock := NewMockCommandRunner()
	mock.AddCommand("", "git clone git@github.com:alice/b /c", []byte("fatal: not found"), errors.New("exit status 128"))

	r := NewRepositoryWithRunner("alice/b", "/c/Brewfile", mock)
	err := r.Clone()
	require.Error(t, err)
	assert.True(t, bferrors.IsErrorCode(err, bferrors.ErrCommandFailed))
	assert.Contains(t, err.Error(), "brew-file set_repo")
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		porcelain string
		upstream  bool
		counts    string
		level     Level
		message   string
	}{
		{"uncommitted", " M Brewfile\n", false, "", LevelWarning, "uncommitted changes detected"},
		{"no upstream", "", false, "", LevelOK, "clean (no remote tracking branch)"},
		{"ahead", "", true, "2\t0\n", LevelInfo, "2 commits ahead of remote"},
		{"behind", "", true, "0\t3\n", LevelInfo, "3 commits behind remote"},
		{"in sync", "", true, "0\t0\n", LevelOK, "clean and in sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommandRunner()
			mock.AddCommand("/c", "git status --porcelain", []byte(tt.porcelain), nil)
			if tt.upstream {
				mock.AddCommand("/c", "git rev-parse --abbrev-ref --symbolic-full-name @{u}", []byte("origin/main\n"), nil)
				mock.AddCommand("/c", "git rev-list --left-right --count HEAD...origin/main", []byte(tt.counts), nil)
			}

			r := NewRepositoryWithRunner("alice/b", "/c/Brewfile", mock)
			s := r.Status()
			assert.Equal(t, tt.level, s.Level)
			assert.Contains(t, s.Message, tt.message)
		})
	}
}
