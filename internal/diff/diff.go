// Package diff computes the actions that reconcile a manifest with the
// installed packages.
package diff

import (
	"github.com/adamancini/brewfile/internal/types"
)

// State is the reconciliation state of one entry.
type State string

const (
	StateDeclaredOnly         State = "declared-only"          // Must be installed
	StateInstalledOnly        State = "installed-only"         // Removal candidate
	StateDeclaredAndInstalled State = "declared-and-installed" // Options may still differ
	StateNeither              State = "neither"                // Not tracked
)

// Classify returns the state of an entry from its two memberships.
func Classify(declared, installed bool) State {
	switch {
	case declared && installed:
		return StateDeclaredAndInstalled
	case declared:
		return StateDeclaredOnly
	case installed:
		return StateInstalledOnly
	default:
		return StateNeither
	}
}

// Op is what an action does.
type Op string

const (
	OpInstall   Op = "install"
	OpReinstall Op = "reinstall"
	OpUninstall Op = "uninstall"
	OpTap       Op = "tap"
	OpUntap     Op = "untap"
	OpRun       Op = "run"       // Manifest command line
	OpDeclare   Op = "declare"   // Added to the manifest only
	OpUndeclare Op = "undeclare" // Removed from the manifest only
	OpCleanup   Op = "cleanup"   // Package cache cleanup
)

// Action is one step of a plan.
type Action struct {
	Kind    types.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Op      Op         `json:"op" yaml:"op"`
	Name    string     `json:"name" yaml:"name"`
	Options string     `json:"options,omitempty" yaml:"options,omitempty"`
	Reason  string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Fatal actions abort the run when they fail.
	Fatal bool `json:"fatal,omitempty" yaml:"fatal,omitempty"`
	// IgnoreDeps removes a package even if others depend on it.
	IgnoreDeps bool `json:"ignore_dependencies,omitempty" yaml:"ignore_dependencies,omitempty"`
	// Paths are the application bundles removed for an App Store entry.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Plan is an ordered list of actions.
type Plan struct {
	Actions []Action `json:"actions" yaml:"actions"`
	// Conflicts are declaration conflicts that were skipped.
	Conflicts []error `json:"-" yaml:"-"`
}

func (p *Plan) add(a Action) {
	p.Actions = append(p.Actions, a)
}

// Changes returns the actions that change installed or declared state.
// Manifest command lines run on every install and are not changes.
func (p *Plan) Changes() []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Op != OpRun {
			out = append(out, a)
		}
	}
	return out
}

// Filter returns the actions with op.
func (p *Plan) Filter(op Op) []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Op == op {
			out = append(out, a)
		}
	}
	return out
}

// Names returns the names of the actions with op and kind, in order.
func (p *Plan) Names(op Op, kind types.Kind) []string {
	var out []string
	for _, a := range p.Actions {
		if a.Op == op && a.Kind == kind {
			out = append(out, a.Name)
		}
	}
	return out
}

// Summary returns counts of actions needed.
func (p *Plan) Summary() (install, reinstall, remove, declare int) {
	for _, a := range p.Actions {
		switch a.Op {
		case OpInstall, OpTap:
			install++
		case OpReinstall:
			reinstall++
		case OpUninstall, OpUntap:
			remove++
		case OpDeclare, OpUndeclare:
			declare++
		}
	}
	return
}

// Policy holds the settings that change what a plan contains.
type Policy struct {
	Leaves      bool
	OnRequest   bool
	TopPackages []string
	CaskOnly    bool
	AppStore    bool
	// AppDirs are searched for App Store bundles to remove.
	AppDirs []string
	// CacheDir is removed by cleanup when set.
	CacheDir string
	// CaskRepo is the cask tap kept while casks remain.
	CaskRepo string
}

func (p Policy) caskRepo() string {
	if p.CaskRepo == "" {
		return types.CaskTap
	}
	return p.CaskRepo
}

// expandDependency reports whether dep may be declared as a dependency.
// With both leaves and on-request filtering only the top packages are added.
func (p Policy) expandDependency(dep string) bool {
	if !(p.Leaves && p.OnRequest) {
		return true
	}
	return contains(p.TopPackages, dep)
}

// DependencyLister lists the dependencies of a formula.
type DependencyLister interface {
	Deps(name string, oneLevel bool) ([]string, error)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
