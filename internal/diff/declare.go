package diff

import (
	"strings"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Request is a package named on a package manager command line.
type Request struct {
	Kind    types.Kind
	Name    string
	Options string
}

// DeclareInstalled records packages that were just installed outside of a
// manifest run. Formulas also declare their installed dependencies, and
// "owner/repo/name" references declare their tap. Packages that are already
// declared are reported as conflicts and skipped.
func DeclareInstalled(set *manifest.Set, reqs []Request, deps DependencyLister, policy Policy) (*Plan, error) {
	plan := &Plan{}

	for _, r := range reqs {
		if r.Kind == types.KindTap {
			if set.Has(types.KindTap, manifest.SideInput, r.Name) {
				plan.Conflicts = append(plan.Conflicts, alreadyDeclared(r.Name))
				continue
			}
			set.Declare(types.KindTap, r.Name, "")
			plan.add(Action{Kind: types.KindTap, Op: OpDeclare, Name: r.Name})
			continue
		}

		name, tap := SplitTapName(r.Name)
		if _, ok := set.Find(r.Kind, manifest.SideInput, name); ok {
			plan.Conflicts = append(plan.Conflicts, alreadyDeclared(name))
			continue
		}
		set.Declare(r.Kind, name, r.Options)
		plan.add(Action{Kind: r.Kind, Op: OpDeclare, Name: name, Options: r.Options})

		if r.Kind == types.KindFormula {
			found, err := deps.Deps(r.Name, false)
			if err != nil {
				return nil, err
			}
			for _, d := range found {
				d = manifest.BaseName(d)
				if !policy.expandDependency(d) {
					continue
				}
				if _, ok := set.Find(types.KindFormula, manifest.SideInput, d); ok {
					continue
				}
				set.Declare(types.KindFormula, d, "")
				plan.add(Action{Kind: types.KindFormula, Op: OpDeclare, Name: d, Reason: "dependency of " + name})
			}
		}

		if tap != types.DirectTap && set.Declare(types.KindTap, tap, "") {
			plan.add(Action{Kind: types.KindTap, Op: OpDeclare, Name: tap, Reason: "tap of " + name})
		}
	}
	return plan, nil
}

// DeclareRemoved removes packages that were just uninstalled from the
// manifest set. pip- and gem- formulas are matched against pip and gem
// declarations. Undeclared packages are reported as conflicts when
// warnMissing is set.
func DeclareRemoved(set *manifest.Set, reqs []Request, warnMissing bool) *Plan {
	plan := &Plan{}

	for _, r := range reqs {
		kind, name := r.Kind, r.Name
		switch {
		case kind == types.KindFormula && strings.HasPrefix(name, types.PipPrefix):
			kind, name = types.KindPip, strings.TrimPrefix(name, types.PipPrefix)
		case kind == types.KindFormula && strings.HasPrefix(name, types.GemPrefix):
			kind, name = types.KindGem, strings.TrimPrefix(name, types.GemPrefix)
		}

		declared, ok := name, set.Has(kind, manifest.SideInput, name)
		if !ok && kind != types.KindTap {
			declared, ok = set.Find(kind, manifest.SideInput, name)
		}
		if !ok {
			if warnMissing {
				plan.Conflicts = append(plan.Conflicts, notDeclared(name))
			}
			continue
		}
		set.Remove(kind, manifest.SideInput, declared)
		plan.add(Action{Kind: kind, Op: OpUndeclare, Name: declared})
	}
	return plan
}

func alreadyDeclared(name string) error {
	return bferrors.Newf(bferrors.ErrDeclarationConflict, "%s is already in Brewfile", name).
		WithDetail("package", name)
}

func notDeclared(name string) error {
	return bferrors.Newf(bferrors.ErrDeclarationConflict, "%s is not in Brewfile", name).
		WithDetail("package", name)
}
