// Package sync executes install and cleanup plans against the package index.
package sync

import (
	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/types"
)

// Operation records one executed (or dry-run) action.
type Operation struct {
	Kind        types.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name        string     `json:"name" yaml:"name"`
	Action      string     `json:"action" yaml:"action"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Command     string     `json:"command,omitempty" yaml:"command,omitempty"`
	Success     bool       `json:"success" yaml:"success"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result represents the outcome of executing a plan.
type Result struct {
	Installed   int         `json:"installed" yaml:"installed"`
	Reinstalled int         `json:"reinstalled" yaml:"reinstalled"`
	Removed     int         `json:"removed" yaml:"removed"`
	Skipped     int         `json:"skipped" yaml:"skipped"`
	Failed      int         `json:"failed" yaml:"failed"`
	Attention   []string    `json:"attention,omitempty" yaml:"attention,omitempty"` // Items needing manual attention
	Operations  []Operation `json:"operations,omitempty" yaml:"operations,omitempty"`
	// Reinit is set when the manifest should be regenerated: a carrier was
	// bootstrapped or installed options changed.
	Reinit bool `json:"reinit" yaml:"reinit"`
}

func (r *Result) record(op Operation) {
	r.Operations = append(r.Operations, op)
}

// Options configures plan execution.
type Options struct {
	DryRun bool
	// Link follows "ln -s" and "brew linkapps" hints printed by installs.
	Link bool
	// Home expands "~/" in followed link commands.
	Home     string
	CaskRepo string
	// Tmux runs the App Store CLI through reattach-to-user-namespace.
	Tmux bool
	// Program is the command name shown in dry-run hints.
	Program string

	PipCarrier      string
	GemCarrier      string
	MasFormula      string
	ReattachFormula string
}

func (o Options) withDefaults() Options {
	if o.CaskRepo == "" {
		o.CaskRepo = types.CaskTap
	}
	if o.Program == "" {
		o.Program = "brew-file"
	}
	if o.PipCarrier == "" {
		o.PipCarrier = types.PipCarrier
	}
	if o.GemCarrier == "" {
		o.GemCarrier = types.GemCarrier
	}
	if o.MasFormula == "" {
		o.MasFormula = types.MasFormula
	}
	if o.ReattachFormula == "" {
		o.ReattachFormula = types.ReattachFormula
	}
	return o
}

// masPrefixer is implemented by providers whose App Store command can be
// wrapped.
type masPrefixer interface {
	SetMas(prefix ...string)
}

// carrier tracks whether a helper was found or bootstrapped during this run.
type carrier int

const (
	carrierUnknown carrier = iota
	carrierReady
	carrierMissing
)

// Executor runs plans. It owns the per-run bootstrap state of the carrier
// helpers, so one Executor serves one invocation.
type Executor struct {
	provider brew.Provider
	console  *output.Console
	opts     Options

	cask, pip, gem, mas carrier
	carriers            []diff.Request
}

// NewExecutor creates an executor.
func NewExecutor(provider brew.Provider, console *output.Console, opts Options) *Executor {
	return &Executor{
		provider: provider,
		console:  console,
		opts:     opts.withDefaults(),
	}
}

// Bootstrapped reports whether any carrier helper was installed.
func (e *Executor) Bootstrapped() bool {
	return len(e.carriers) > 0
}

// Carriers returns the helpers installed during this run, so they can be
// declared in the manifest.
func (e *Executor) Carriers() []diff.Request {
	return append([]diff.Request(nil), e.carriers...)
}
