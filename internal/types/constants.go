// Package types provides type-safe constants for the brew-file manifest system.
//
// This package centralizes all enumerated types used throughout the codebase,
// replacing magic strings with typed constants that provide compile-time safety
// and validation methods.
package types

import (
	"fmt"
	"strings"
)

// Kind is one of the entity categories a manifest can declare.
type Kind string

const (
	// KindFormula is a Homebrew formula package.
	KindFormula Kind = "formula"
	// KindTap is a tap repository (owner/repo).
	KindTap Kind = "tap"
	// KindCask is a cask application package.
	KindCask Kind = "cask"
	// KindPip is a Python package installed through brew-pip.
	KindPip Kind = "pip"
	// KindGem is a Ruby gem installed through brew-gem.
	KindGem Kind = "gem"
	// KindAppStore is a Mac App Store application.
	KindAppStore Kind = "appstore"
	// KindFile is a referenced sub-manifest.
	KindFile Kind = "file"
)

// AllKinds returns all valid kinds in serialization order.
func AllKinds() []Kind {
	return []Kind{KindFormula, KindTap, KindCask, KindPip, KindGem, KindAppStore, KindFile}
}

// Validate checks if the Kind is a valid value.
func (k Kind) Validate() error {
	switch k {
	case KindFormula, KindTap, KindCask, KindPip, KindGem, KindAppStore, KindFile:
		return nil
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("invalid kind '%s' (must be formula, tap, cask, pip, gem, appstore, or file)", k)
	}
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// HasOptions returns true if entries of this kind carry an option string.
func (k Kind) HasOptions() bool {
	return k == KindFormula || k == KindPip || k == KindGem
}

// IsSubPackage returns true for language-ecosystem kinds served by a carrier formula.
func (k Kind) IsSubPackage() bool {
	return k == KindPip || k == KindGem
}

// ParseKind parses a string into a Kind. "brew" is accepted for formulas.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(s)
	if s == "brew" {
		return KindFormula, nil
	}
	k := Kind(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Dialect is the textual flavor of a manifest file.
type Dialect string

const (
	// DialectNone means no dialect has been inferred yet.
	DialectNone Dialect = "none"
	// DialectPlain is the native "brew vim --HEAD" format.
	DialectPlain Dialect = "plain"
	// DialectBundle is the homebrew-bundle compatible "brew 'vim', args: ['HEAD']" format.
	DialectBundle Dialect = "bundle"
	// DialectCommand is an executable shell script of brew commands.
	DialectCommand Dialect = "command-script"
)

// AllDialects returns the dialects a manifest can be written in.
func AllDialects() []Dialect {
	return []Dialect{DialectPlain, DialectBundle, DialectCommand}
}

// Validate checks if the Dialect is a valid value.
func (d Dialect) Validate() error {
	switch d {
	case DialectNone, DialectPlain, DialectBundle, DialectCommand:
		return nil
	case "":
		return fmt.Errorf("dialect is required")
	default:
		return fmt.Errorf("invalid dialect '%s' (must be plain, bundle, or command-script)", d)
	}
}

// String returns the string representation of the Dialect.
func (d Dialect) String() string {
	return string(d)
}

// IsResolved returns true once a concrete dialect has been chosen.
func (d Dialect) IsResolved() bool {
	return d != DialectNone && d != ""
}

// Resolve returns the dialect used for writing: unresolved means plain.
func (d Dialect) Resolve() Dialect {
	if !d.IsResolved() {
		return DialectPlain
	}
	return d
}

// IsBundle returns true for the homebrew-bundle dialect.
func (d Dialect) IsBundle() bool {
	return d == DialectBundle
}

// IsCommand returns true for the executable script dialect.
func (d Dialect) IsCommand() bool {
	return d == DialectCommand
}

// ParseDialect parses a string into a Dialect, accepting historical aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DialectNone, nil
	case "plain", "file":
		return DialectPlain, nil
	case "bundle", "brewdler":
		return DialectBundle, nil
	case "command-script", "command", "cmd":
		return DialectCommand, nil
	default:
		return "", fmt.Errorf("invalid dialect '%s' (must be plain, bundle, or command-script)", s)
	}
}

// Attribution is the installation source decided for an application bundle.
type Attribution string

const (
	// AttributionCask means installed by a known, current cask.
	AttributionCask Attribution = "cask"
	// AttributionCaskObsolete means installed by a cask whose version has moved on.
	AttributionCaskObsolete Attribution = "cask_obsolete"
	// AttributionBrew means shipped by a formula installed with brew install.
	AttributionBrew Attribution = "brew"
	// AttributionAppStore means installed from the App Store.
	AttributionAppStore Attribution = "appstore"
	// AttributionHasCask means installed directly although a cask exists.
	AttributionHasCask Attribution = "has_cask"
	// AttributionNoCask means installed directly and no cask is known.
	AttributionNoCask Attribution = "no_cask"
)

// AllAttributions returns every attribution in report order.
func AllAttributions() []Attribution {
	return []Attribution{
		AttributionCask,
		AttributionCaskObsolete,
		AttributionBrew,
		AttributionHasCask,
		AttributionAppStore,
		AttributionNoCask,
	}
}

// String returns the string representation of the Attribution.
func (a Attribution) String() string {
	return string(a)
}

// Label returns the heading used in the casklist summary.
func (a Attribution) Label() string {
	switch a {
	case AttributionCask:
		return "Installed by Cask"
	case AttributionCaskObsolete:
		return "Installed by Cask (New version is available, try `brew cask upgrade`)"
	case AttributionBrew:
		return "Installed by brew install command"
	case AttributionHasCask:
		return "Installed directly, but casks are available"
	case AttributionAppStore:
		return "Installed from Appstore"
	case AttributionNoCask:
		return "No casks"
	default:
		return string(a)
	}
}

// Well-known names used across packages.
const (
	// DirectTap is the sentinel tap for formulas resolvable without a tap.
	DirectTap = "direct"
	// CoreTap is the designated core tap, always sorted first.
	CoreTap = "homebrew/core"
	// CaskTap is the designated cask tap.
	CaskTap = "homebrew/cask"
	// LegacyCaskTap is the historical name of the cask tap.
	LegacyCaskTap = "caskroom/cask"
	// PipPrefix marks formulas generated by brew-pip.
	PipPrefix = "pip-"
	// GemPrefix marks formulas generated by brew-gem.
	GemPrefix = "gem-"
	// PipCarrier is the formula that installs pip packages as formulas.
	PipCarrier = "brew-pip"
	// GemCarrier is the formula that installs gems as formulas.
	GemCarrier = "brew-gem"
	// MasFormula is the App Store command line client.
	MasFormula = "mas"
	// ReattachFormula lets mas reach the user session from inside tmux.
	ReattachFormula = "reattach-to-user-namespace"
)

// IsCaskTap returns true for either name of the designated cask tap.
func IsCaskTap(tap string) bool {
	return tap == CaskTap || tap == LegacyCaskTap
}
