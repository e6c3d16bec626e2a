package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamancini/brewfile/internal/types"
)

func TestOptionsEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"--HEAD --with-x", "--with-x --HEAD", true},
		{" --HEAD", "--HEAD ", true},
		{"", "", true},
		{"--HEAD", "", false},
		{"--with-x", "--with-y", false},
		{"--a --a", "--a", false},
	}

	for _, tt := range tests {
		if got := OptionsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("OptionsEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortTaps(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "core, homebrew, cask, others",
			in:   []string{"abc/x", "homebrew/core", "homebrew/cask", "homebrew/bar"},
			want: []string{"homebrew/core", "homebrew/bar", "homebrew/cask", "abc/x"},
		},
		{
			name: "direct sorts with others",
			in:   []string{"zzz/x", "homebrew/cask", "homebrew/foo", "homebrew/core", "direct"},
			want: []string{"homebrew/core", "homebrew/foo", "homebrew/cask", "direct", "zzz/x"},
		},
		{
			name: "caskroom group after cask tap",
			in:   []string{"caskroom/versions", "caskroom/cask", "caskroom/fonts", "rcmdnk/file"},
			want: []string{"caskroom/cask", "caskroom/fonts", "caskroom/versions", "rcmdnk/file"},
		},
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortTaps(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortTaps() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortAppStore(t *testing.T) {
	apps := []string{"409183694 Keynote (9.0)", "497799835 Xcode (15.0)", "409201541 pages (12.1)", "Solo"}
	SortAppStore(apps)

	want := []string{"409183694 Keynote (9.0)", "409201541 pages (12.1)", "Solo", "497799835 Xcode (15.0)"}
	if diff := cmp.Diff(want, apps); diff != "" {
		t.Errorf("SortAppStore() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitAppStore(t *testing.T) {
	tests := []struct {
		line     string
		wantID   string
		wantName string
		wantApp  string
	}{
		{"497799835 Xcode (15.0)", "497799835", "Xcode (15.0)", "Xcode"},
		{"1234567890 Some App (1.2)", "1234567890", "Some App (1.2)", "Some App"},
		{"Xcode", "", "Xcode", "Xcode"},
		{"12345 Short", "", "12345 Short", "12345 Short"},
	}

	for _, tt := range tests {
		id, name := SplitAppStore(tt.line)
		if id != tt.wantID || name != tt.wantName {
			t.Errorf("SplitAppStore(%q) = (%q, %q), want (%q, %q)", tt.line, id, name, tt.wantID, tt.wantName)
		}
		if got := AppStoreName(tt.line); got != tt.wantApp {
			t.Errorf("AppStoreName(%q) = %q, want %q", tt.line, got, tt.wantApp)
		}
	}
}

func TestEntriesKeepPosition(t *testing.T) {
	var e Entries
	e.Set("vim", "")
	e.Set("git", "")
	e.Set("vim", "--HEAD")

	if diff := cmp.Diff([]string{"vim", "git"}, e.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if o, _ := e.Options("vim"); o != "--HEAD" {
		t.Errorf("Options(vim) = %q, want --HEAD", o)
	}
	if e.Add("git", "--x") {
		t.Error("Add() of existing name should report false")
	}
	if !e.Remove("vim") || e.Has("vim") {
		t.Error("Remove(vim) failed")
	}
}

func TestDeclarationsByKind(t *testing.T) {
	var d Declarations
	d.Add(types.KindFormula, "vim", "--HEAD")
	d.Add(types.KindTap, "homebrew/core", "")
	d.Add(types.KindTap, "homebrew/core", "")
	d.Add(types.KindCask, "firefox", "")

	if got := d.Names(types.KindTap); len(got) != 1 {
		t.Errorf("Names(tap) = %v, want one entry", got)
	}
	if !d.Has(types.KindCask, "firefox") || d.Has(types.KindCask, "vim") {
		t.Error("Has() mismatch for casks")
	}
	if got := d.Options(types.KindFormula)["vim"]; got != "--HEAD" {
		t.Errorf("Options(formula)[vim] = %q, want --HEAD", got)
	}
	if d.Remove(types.KindGem, "rake") {
		t.Error("Remove() of missing gem should report false")
	}
}

func TestDocumentInputToList(t *testing.T) {
	doc := New("/tmp/Brewfile")
	doc.Input.Formulas.Set("vim", "--HEAD")
	doc.Input.Taps = []string{"direct", "homebrew/core"}
	doc.Input.Before = []string{"echo hi"}
	doc.List.Casks = []string{"stale"}

	doc.InputToList()

	if doc.List.Has(types.KindCask, "stale") {
		t.Error("InputToList() should clear the previous list")
	}
	if o, _ := doc.List.Formulas.Options("vim"); o != "--HEAD" {
		t.Errorf("list options = %q, want --HEAD", o)
	}
	doc.Input.Formulas.Set("vim", "")
	if o, _ := doc.List.Formulas.Options("vim"); o != "--HEAD" {
		t.Error("list side must not share storage with input side")
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"vim":                    "vim",
		"rcmdnk/file/brew-file":  "brew-file",
		"https://x.org/foo.rb":   "foo",
		"homebrew/core/python@3": "python@3",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
