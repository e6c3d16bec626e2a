package cmd

import (
	"strings"

	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/types"
)

// brewAction is what a package manager command means for the manifest.
type brewAction int

const (
	actionNone brewAction = iota
	actionInstall
	actionRemove
	actionReinstall
	actionTap
	actionUntap
)

// brewCommand is a parsed "brew-file brew ..." command line.
type brewCommand struct {
	// Args are run as given, after the executable.
	Args []string
	// Exe is brew, brew-pip or brew-gem.
	Exe  string
	Kind types.Kind
	// Action is what is declared or removed after a successful run.
	Action brewAction
	// NoInit skips the manifest update.
	NoInit   bool
	Global   []string
	Packages []string
	Options  map[string][]string
}

var (
	installCmds = []string{"instal", "install"}
	removeCmds  = []string{"rm", "remove", "uninstall"}
)

// parseBrewCommand classifies args of a package manager command. Options
// before the first package are global; later options belong to the package
// they follow. "cask <sub>" is rewritten to "<sub> --cask".
func parseBrewCommand(args []string, homebrewRuby bool) *brewCommand {
	bc := &brewCommand{Exe: "brew", Kind: types.KindFormula, Options: map[string][]string{}}
	for _, a := range args {
		if a == "noinit" {
			bc.NoInit = true
			continue
		}
		bc.Args = append(bc.Args, a)
	}
	if len(bc.Args) == 0 {
		return bc
	}

	cmd := bc.Args[0]
	rest := bc.Args[1:]
	switch cmd {
	case "cask":
		bc.Kind = types.KindCask
		if len(rest) == 0 {
			return bc
		}
		cmd, rest = rest[0], rest[1:]
		bc.Args = append([]string{cmd, "--cask"}, rest...)
	case "pip":
		bc.Exe = "brew-pip"
		bc.Kind = types.KindPip
		bc.Args = rest
		bc.parsePip(rest)
		return bc
	case "gem":
		bc.Exe = "brew-gem"
		bc.Kind = types.KindGem
		bc.Args = rest
		if homebrewRuby && !contains(rest, "--homebrew-ruby") {
			bc.Args = append(bc.Args, "--homebrew-ruby")
		}
		if len(rest) < 2 {
			return bc
		}
		switch {
		case contains(installCmds, rest[0]):
			bc.Action = actionInstall
		case rest[0] == "uninstall":
			bc.Action = actionRemove
		default:
			return bc
		}
		bc.Packages = []string{rest[1]}
		bc.Options[rest[1]] = rest[2:]
		return bc
	}

	if len(rest) == 0 {
		return bc
	}
	switch {
	case contains(installCmds, cmd):
		bc.Action = actionInstall
	case contains(removeCmds, cmd):
		bc.Action = actionRemove
	case cmd == "reinstall":
		bc.Action = actionReinstall
	case cmd == "tap" && bc.Kind == types.KindFormula:
		bc.Action = actionTap
		bc.Kind = types.KindTap
	case cmd == "untap" && bc.Kind == types.KindFormula:
		bc.Action = actionUntap
		bc.Kind = types.KindTap
	default:
		return bc
	}

	for _, v := range rest {
		if strings.HasPrefix(v, "-") {
			if len(bc.Packages) == 0 {
				bc.Global = append(bc.Global, v)
				continue
			}
			last := bc.Packages[len(bc.Packages)-1]
			bc.Options[last] = append(bc.Options[last], v)
			continue
		}
		bc.Packages = append(bc.Packages, v)
		bc.Options[v] = []string{}
	}
	if contains(bc.Global, "--cask") || contains(bc.Global, "--casks") {
		bc.Kind = types.KindCask
	}
	if len(bc.Packages) == 0 {
		bc.Action = actionNone
	}
	return bc
}

// parsePip reads brew-pip arguments: "name" or "name=version". Local paths
// and archives are not tracked, and -u marks an upgrade.
func (bc *brewCommand) parsePip(args []string) {
	upgrade := false
	for _, v := range args {
		switch {
		case strings.Contains(v, "/") || strings.Contains(v, "tar.gz") || strings.Contains(v, ".zip"):
			bc.Packages = nil
			return
		case v == "-h" || v == "--help" || v == "--version":
			bc.Packages = nil
			return
		case v == "-u" || v == "--upgrade":
			upgrade = true
		case v == "-k" || v == "--keg-only" || v == "-v" || v == "--verbose":
		case !strings.HasPrefix(v, "-"):
			name, version, found := strings.Cut(v, "=")
			bc.Packages = append(bc.Packages, name)
			bc.Options[name] = []string{}
			if found {
				bc.Options[name] = []string{version}
			}
		}
	}
	if len(bc.Packages) == 0 {
		return
	}
	bc.Action = actionInstall
	if upgrade {
		bc.Action = actionReinstall
	}
}

// Requests returns the packages as declaration requests.
func (bc *brewCommand) Requests() []diff.Request {
	reqs := make([]diff.Request, 0, len(bc.Packages))
	for _, p := range bc.Packages {
		reqs = append(reqs, diff.Request{
			Kind:    bc.Kind,
			Name:    p,
			Options: strings.TrimSpace(strings.Join(bc.Options[p], " ")),
		})
	}
	return reqs
}

// removes reports whether the command drops packages from the manifest.
// A reinstall removes and declares again so new options are recorded.
func (bc *brewCommand) removes() bool {
	return bc.Action == actionRemove || bc.Action == actionReinstall
}

func (bc *brewCommand) declares() bool {
	return bc.Action == actionInstall || bc.Action == actionReinstall
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
