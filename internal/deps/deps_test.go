package deps

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/brewfile/internal/brew/brewtest"
)

func TestTop(t *testing.T) {
	fake := brewtest.New()
	fake.DepMap["A"] = []string{"B"}

	g, err := Build([]string{"A", "B", "C"}, fake)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, g.Top())
	want := map[string][]string{"A": {"B"}, "B": {}, "C": {}}
	if diff := cmp.Diff(want, g.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildKeepsDeclaredOnly(t *testing.T) {
	fake := brewtest.New()
	fake.DepMap["tig"] = []string{"homebrew/core/git", "ncurses"}
	fake.DepMap["git"] = []string{"pcre2"}

	g, err := Build([]string{"tig", "rcmdnk/file/git", "tig"}, fake)
	require.NoError(t, err)

	assert.Equal(t, []string{"git"}, g.Dependencies("tig"))
	assert.Empty(t, g.Dependencies("git"))
	assert.Equal(t, []string{"tig"}, g.Top())
}

func TestWriteTree(t *testing.T) {
	fake := brewtest.New()
	fake.DepMap["app"] = []string{"lib", "util"}
	fake.DepMap["lib"] = []string{"base"}
	fake.DepMap["other"] = []string{"base"}

	g, err := Build([]string{"app", "lib", "util", "base", "other", "solo"}, fake)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.WriteTree(&buf))

	want := "app\n" +
		"#lib\n" +
		"#  base\n" +
		"#util\n" +
		"other\n" +
		"#base\n" +
		"solo\n"
	assert.Equal(t, want, buf.String())
}

type failingLister struct{}

func (failingLister) Deps(string, bool) ([]string, error) {
	return nil, errors.New("brew deps failed")
}

func TestBuildError(t *testing.T) {
	_, err := Build([]string{"vim"}, failingLister{})
	assert.Error(t, err)
}
