package sync

import (
	"fmt"

	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// ensureCaskTap taps the cask repository once per run.
func (e *Executor) ensureCaskTap() error {
	if e.cask != carrierUnknown {
		return nil
	}
	taps, err := e.provider.ListTaps()
	if err != nil {
		return fmt.Errorf("failed to list taps: %w", err)
	}
	if contains(taps, e.opts.CaskRepo) {
		e.cask = carrierReady
		return nil
	}
	e.console.Info("$ brew tap "+e.opts.CaskRepo, 1)
	if err := e.provider.Tap(e.opts.CaskRepo).Check(); err != nil {
		e.console.Err("\nFailed to install "+e.opts.CaskRepo+"\n", 0)
		return err
	}
	e.cask = carrierReady
	e.bootstrap(types.KindTap, e.opts.CaskRepo)
	return nil
}

// ensureFormula installs the carrier formula unless its command is present.
// A failed install is fatal.
func (e *Executor) ensureFormula(state *carrier, formula string) error {
	if *state != carrierUnknown {
		return nil
	}
	if e.provider.HasTool(manifest.BaseName(formula)) {
		*state = carrierReady
		return nil
	}
	e.console.Info(formula+" has not been installed.", 2)
	e.console.Info("$ brew install "+formula, 1)
	if err := e.provider.Install(types.KindFormula, formula, "").Check(); err != nil {
		e.console.Err("\nFailed to install "+formula+"\n", 0)
		*state = carrierMissing
		return err
	}
	*state = carrierReady
	e.bootstrap(types.KindFormula, formula)
	return nil
}

// ensureMas makes the App Store CLI available and reports whether it can be
// used. Inside tmux the CLI runs through reattach-to-user-namespace.
func (e *Executor) ensureMas() bool {
	if e.mas != carrierUnknown {
		return e.mas == carrierReady
	}
	e.mas = carrierMissing

	if !e.provider.HasTool("mas") {
		e.console.Info(e.opts.MasFormula+" has not been installed.", 2)
		if !e.provider.Install(types.KindFormula, e.opts.MasFormula, "").OK() {
			e.console.Err("\nFailed to install "+e.opts.MasFormula+"\n", 0)
			return false
		}
		e.bootstrap(types.KindFormula, e.opts.MasFormula)
	}

	if e.opts.Tmux {
		reattach := manifest.BaseName(e.opts.ReattachFormula)
		if !e.provider.HasTool(reattach) {
			if !e.provider.Install(types.KindFormula, e.opts.ReattachFormula, "").OK() {
				e.console.Err("\nFailed to install "+e.opts.ReattachFormula+"\n", 0)
				return false
			}
			e.bootstrap(types.KindFormula, e.opts.ReattachFormula)
		}
		if p, ok := e.provider.(masPrefixer); ok {
			p.SetMas(reattach, "mas")
		}
	}

	e.mas = carrierReady
	return true
}

func (e *Executor) bootstrap(kind types.Kind, name string) {
	if kind == types.KindFormula {
		name = manifest.BaseName(name)
	}
	e.carriers = append(e.carriers, diff.Request{Kind: kind, Name: name})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
