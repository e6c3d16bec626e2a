package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Files []string `json:"files" yaml:"files" toml:"files"`
}

func TestWriterFormats(t *testing.T) {
	v := sample{Name: "Brewfile", Files: []string{"a", "b"}}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, `"name": "Brewfile"`},
		{FormatYAML, "name: Brewfile"},
		{FormatTOML, "name = "},
		{FormatText, "Brewfile"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf, tt.format).Write(v))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTeeWritesOnlyAtClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "Brewfile")
	var console bytes.Buffer

	tee := NewTee(path, &console)
	require.NoError(t, tee.Writeln("brew vim"))
	require.NoError(t, tee.Writeln("tap homebrew/core"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file must not exist before Close")
	assert.Equal(t, "brew vim\ntap homebrew/core\n", console.String())

	require.NoError(t, tee.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(data))

	assert.Error(t, tee.Writeln("late"))
}

func TestTeeWithoutConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Brewfile")
	tee := NewTee(path, nil)
	require.NoError(t, tee.Writeln("cask firefox"))
	require.NoError(t, tee.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cask firefox\n", string(data))
}

func TestConsoleVerbosity(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 1)

	c.Info("hidden", 2)
	c.Warn("careful", 1)
	c.Err("broken", 0)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "broken")
	assert.Nil(t, c.EchoWriter(2))
}

func TestConsoleBanner(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, 1).Banner("# Clean up tap packages", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("#", len("# Clean up tap packages")), lines[0])
	assert.Equal(t, lines[0], lines[2])
}
