// Package state builds a snapshot of what Homebrew has installed, shaped like
// the list side of a manifest.
package state

import (
	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/manifest"
)

// Snapshot is the installed state at one point in time.
type Snapshot struct {
	// List holds the installed entities that belong in a manifest.
	List manifest.Declarations
	// Info is the metadata of every installed formula.
	Info map[string]brew.FormulaMetadata
	// Formulas is every installed formula, including dependencies and
	// pip-/gem- carriers.
	Formulas []string
}

// Installed reports whether formula name is installed at all.
func (s *Snapshot) Installed(name string) bool {
	for _, f := range s.Formulas {
		if f == name {
			return true
		}
	}
	_, ok := s.Info[name]
	return ok
}

// Dependencies returns the installed dependency names of every installed formula.
func (s *Snapshot) Dependencies() map[string][]string {
	deps := make(map[string][]string, len(s.Info))
	for name, m := range s.Info {
		for _, d := range m.Dependencies {
			d = manifest.BaseName(d)
			if _, ok := s.Info[d]; ok {
				deps[name] = append(deps[name], d)
			}
		}
	}
	return deps
}

// Filter selects which installed formulas are listed.
type Filter struct {
	// Leaves lists only formulas nothing else depends on.
	Leaves bool
	// OnRequest lists only formulas installed on request. It takes
	// precedence over Leaves.
	OnRequest bool
	// TopPackages are always listed when installed.
	TopPackages []string
	// CaskOnly skips formulas, pip and gem packages.
	CaskOnly bool
	// AppStore lists App Store applications.
	AppStore bool
}

// Reader defines the interface for reading current state.
type Reader interface {
	Read() (*Snapshot, error)
}
