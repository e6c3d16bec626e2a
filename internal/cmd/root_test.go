package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/brewfile/internal/update"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandsListing(t *testing.T) {
	out, err := execute(t, "commands")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "commands: "))
	for _, name := range []string{"install", "clean", "clean_non_request", "set_repo", "brew", "casklist", "help"} {
		assert.Contains(t, strings.Fields(lines[0]), name)
	}
	assert.Contains(t, strings.Fields(lines[1]), "dump")
	assert.Contains(t, strings.Fields(lines[2]), "--file")
	assert.Contains(t, strings.Fields(lines[2]), "-f")
}

func TestListCommandsSkipsHidden(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.AddCommand(&cobra.Command{Use: "shown", Aliases: []string{"s"}})
	root.AddCommand(&cobra.Command{Use: "secret", Hidden: true})
	root.PersistentFlags().BoolP("yes", "y", false, "")

	assert.Equal(t, "commands: shown help\nother aliases: s\noptions: -y --yes\n", listCommands(root))
}

func TestVersionShort(t *testing.T) {
	appVersion, appCommit, appDate = "10.1.0", "none", "2025-01-01"
	t.Cleanup(func() { appVersion, appCommit, appDate = "dev", "none", "unknown" })

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "brew-file 10.1.0 2025-01-01\n", out)
}

func TestVersionCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v10.2.0","html_url":"https://example.com/releases/v10.2.0"}`))
	}))
	t.Cleanup(srv.Close)

	appVersion = "10.1.0"
	orig := newReleaseChecker
	newReleaseChecker = func() *update.Checker {
		return update.NewChecker(update.DefaultOwner, update.DefaultRepo).WithBaseURL(srv.URL)
	}
	t.Cleanup(func() {
		appVersion = "dev"
		newReleaseChecker = orig
	})

	out, err := execute(t, "version", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "brew-file 10.2.0 is available (installed: 10.1.0).")
	assert.Contains(t, out, update.UpgradeCommand)

	out, err = execute(t, "version", "--check", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"latest_version": "10.2.0"`)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2*1024*1024))
}
