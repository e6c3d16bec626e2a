package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/types"
)

func TestParseBrewCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		ruby       bool
		wantExe    string
		wantArgs   []string
		wantKind   types.Kind
		wantAction brewAction
		wantNoInit bool
		wantReqs   []diff.Request
	}{
		{
			name:       "install with package options",
			args:       []string{"install", "--verbose", "vim", "--HEAD", "git"},
			wantExe:    "brew",
			wantArgs:   []string{"install", "--verbose", "vim", "--HEAD", "git"},
			wantKind:   types.KindFormula,
			wantAction: actionInstall,
			wantReqs: []diff.Request{
				{Kind: types.KindFormula, Name: "vim", Options: "--HEAD"},
				{Kind: types.KindFormula, Name: "git"},
			},
		},
		{
			name:       "abbreviated install",
			args:       []string{"instal", "wget"},
			wantExe:    "brew",
			wantArgs:   []string{"instal", "wget"},
			wantKind:   types.KindFormula,
			wantAction: actionInstall,
			wantReqs:   []diff.Request{{Kind: types.KindFormula, Name: "wget"}},
		},
		{
			name:       "cask flag",
			args:       []string{"install", "--cask", "firefox"},
			wantExe:    "brew",
			wantArgs:   []string{"install", "--cask", "firefox"},
			wantKind:   types.KindCask,
			wantAction: actionInstall,
			wantReqs:   []diff.Request{{Kind: types.KindCask, Name: "firefox"}},
		},
		{
			name:       "cask subcommand is rewritten",
			args:       []string{"cask", "uninstall", "firefox"},
			wantExe:    "brew",
			wantArgs:   []string{"uninstall", "--cask", "firefox"},
			wantKind:   types.KindCask,
			wantAction: actionRemove,
			wantReqs:   []diff.Request{{Kind: types.KindCask, Name: "firefox"}},
		},
		{
			name:       "noinit is dropped",
			args:       []string{"rm", "noinit", "wget"},
			wantExe:    "brew",
			wantArgs:   []string{"rm", "wget"},
			wantKind:   types.KindFormula,
			wantAction: actionRemove,
			wantNoInit: true,
			wantReqs:   []diff.Request{{Kind: types.KindFormula, Name: "wget"}},
		},
		{
			name:       "reinstall",
			args:       []string{"reinstall", "vim", "--HEAD"},
			wantExe:    "brew",
			wantArgs:   []string{"reinstall", "vim", "--HEAD"},
			wantKind:   types.KindFormula,
			wantAction: actionReinstall,
			wantReqs:   []diff.Request{{Kind: types.KindFormula, Name: "vim", Options: "--HEAD"}},
		},
		{
			name:       "tap",
			args:       []string{"tap", "rcmdnk/file"},
			wantExe:    "brew",
			wantArgs:   []string{"tap", "rcmdnk/file"},
			wantKind:   types.KindTap,
			wantAction: actionTap,
			wantReqs:   []diff.Request{{Kind: types.KindTap, Name: "rcmdnk/file"}},
		},
		{
			name:       "untap",
			args:       []string{"untap", "rcmdnk/file"},
			wantExe:    "brew",
			wantArgs:   []string{"untap", "rcmdnk/file"},
			wantKind:   types.KindTap,
			wantAction: actionUntap,
			wantReqs:   []diff.Request{{Kind: types.KindTap, Name: "rcmdnk/file"}},
		},
		{
			name:       "install without packages",
			args:       []string{"install", "--help"},
			wantExe:    "brew",
			wantArgs:   []string{"install", "--help"},
			wantKind:   types.KindFormula,
			wantAction: actionNone,
			wantReqs:   []diff.Request{},
		},
		{
			name:       "other commands are only run",
			args:       []string{"list", "--versions"},
			wantExe:    "brew",
			wantArgs:   []string{"list", "--versions"},
			wantKind:   types.KindFormula,
			wantAction: actionNone,
			wantReqs:   []diff.Request{},
		},
		{
			name:       "pip with version",
			args:       []string{"pip", "-k", "requests=2.31.0"},
			wantExe:    "brew-pip",
			wantArgs:   []string{"-k", "requests=2.31.0"},
			wantKind:   types.KindPip,
			wantAction: actionInstall,
			wantReqs:   []diff.Request{{Kind: types.KindPip, Name: "requests", Options: "2.31.0"}},
		},
		{
			name:       "pip upgrade",
			args:       []string{"pip", "-u", "httpie"},
			wantExe:    "brew-pip",
			wantArgs:   []string{"-u", "httpie"},
			wantKind:   types.KindPip,
			wantAction: actionReinstall,
			wantReqs:   []diff.Request{{Kind: types.KindPip, Name: "httpie"}},
		},
		{
			name:       "pip local path is not tracked",
			args:       []string{"pip", "./pkg.tar.gz"},
			wantExe:    "brew-pip",
			wantArgs:   []string{"./pkg.tar.gz"},
			wantKind:   types.KindPip,
			wantAction: actionNone,
			wantReqs:   []diff.Request{},
		},
		{
			name:       "gem install with homebrew ruby",
			args:       []string{"gem", "install", "rubocop", "1.60.0"},
			ruby:       true,
			wantExe:    "brew-gem",
			wantArgs:   []string{"install", "rubocop", "1.60.0", "--homebrew-ruby"},
			wantKind:   types.KindGem,
			wantAction: actionInstall,
			wantReqs:   []diff.Request{{Kind: types.KindGem, Name: "rubocop", Options: "1.60.0"}},
		},
		{
			name:       "gem uninstall",
			args:       []string{"gem", "uninstall", "rubocop"},
			wantExe:    "brew-gem",
			wantArgs:   []string{"uninstall", "rubocop"},
			wantKind:   types.KindGem,
			wantAction: actionRemove,
			wantReqs:   []diff.Request{{Kind: types.KindGem, Name: "rubocop"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := parseBrewCommand(tt.args, tt.ruby)
			assert.Equal(t, tt.wantExe, bc.Exe)
			assert.Equal(t, tt.wantArgs, bc.Args)
			assert.Equal(t, tt.wantKind, bc.Kind)
			assert.Equal(t, tt.wantAction, bc.Action)
			assert.Equal(t, tt.wantNoInit, bc.NoInit)
			assert.Equal(t, tt.wantReqs, bc.Requests())
		})
	}
}

func TestBrewCommandRemovesDeclares(t *testing.T) {
	tests := []struct {
		action   brewAction
		removes  bool
		declares bool
	}{
		{actionInstall, false, true},
		{actionRemove, true, false},
		{actionReinstall, true, true},
		{actionNone, false, false},
	}
	for _, tt := range tests {
		bc := &brewCommand{Action: tt.action}
		assert.Equal(t, tt.removes, bc.removes())
		assert.Equal(t, tt.declares, bc.declares())
	}
}

func TestParseBrewCommandEmpty(t *testing.T) {
	bc := parseBrewCommand([]string{"noinit"}, false)
	assert.True(t, bc.NoInit)
	assert.Empty(t, bc.Args)
	assert.Equal(t, actionNone, bc.Action)
}
