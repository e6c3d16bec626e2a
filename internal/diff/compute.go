package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/state"
	"github.com/adamancini/brewfile/internal/types"
)

// ComputeInstall calculates the actions that install everything the manifest
// set declares. Undeclared dependencies of newly installed formulas are
// declared in the primary document of set.
func ComputeInstall(set *manifest.Set, current *state.Snapshot, deps DependencyLister, policy Policy) (*Plan, error) {
	logger := logging.GetLogger("diff")
	plan := &Plan{}
	installed := &current.List

	for _, c := range set.Commands(func(d *manifest.Declarations) []string { return d.Before }) {
		plan.add(Action{Op: OpRun, Name: c, Reason: "before", Fatal: true})
	}

	for _, t := range unique(set.Get(types.KindTap, manifest.SideInput)) {
		if t == types.DirectTap || installed.Has(types.KindTap, t) {
			continue
		}
		plan.add(Action{Kind: types.KindTap, Op: OpTap, Name: t, Fatal: true})
	}

	for _, c := range unique(set.Get(types.KindCask, manifest.SideInput)) {
		if installed.Has(types.KindCask, c) {
			continue
		}
		plan.add(Action{Kind: types.KindCask, Op: OpInstall, Name: c, Fatal: true})
	}

	if !policy.CaskOnly {
		for _, k := range []types.Kind{types.KindPip, types.KindGem} {
			opts := set.Options(k, manifest.SideInput)
			for _, p := range unique(set.Get(k, manifest.SideInput)) {
				if installed.Has(k, p) {
					continue
				}
				plan.add(Action{Kind: k, Op: OpInstall, Name: p, Options: opts[p], Fatal: true})
			}
		}

		if err := computeFormulas(plan, set, current, deps, policy); err != nil {
			return nil, err
		}
	}

	if policy.AppStore {
		for _, a := range unique(set.Get(types.KindAppStore, manifest.SideInput)) {
			if appStoreInstalled(installed.AppStore, a) {
				continue
			}
			id, _ := manifest.SplitAppStore(a)
			reason := ""
			if id == "" {
				reason = "no App Store id"
			}
			plan.add(Action{Kind: types.KindAppStore, Op: OpInstall, Name: a, Reason: reason, Fatal: id != ""})
		}
	}

	for _, c := range set.Commands(func(d *manifest.Declarations) []string { return d.Commands }) {
		plan.add(Action{Op: OpRun, Name: c, Reason: "command", Fatal: true})
	}
	for _, c := range set.Commands(func(d *manifest.Declarations) []string { return d.After }) {
		plan.add(Action{Op: OpRun, Name: c, Reason: "after", Fatal: true})
	}

	install, reinstall, _, declare := plan.Summary()
	logger.Debug().
		Int("install", install).
		Int("reinstall", reinstall).
		Int("declare", declare).
		Msg("Computed install plan")
	return plan, nil
}

// computeFormulas walks declared formulas in manifest order. Dependencies
// declared on the way are appended to the walk so they are installed too.
func computeFormulas(plan *Plan, set *manifest.Set, current *state.Snapshot, deps DependencyLister, policy Policy) error {
	opts := set.Options(types.KindFormula, manifest.SideInput)
	queue := unique(set.Get(types.KindFormula, manifest.SideInput))
	seen := make(map[string]bool, len(queue))
	for _, p := range queue {
		seen[p] = true
	}

	for i := 0; i < len(queue); i++ {
		p := queue[i]
		base := manifest.BaseName(p)
		want := opts[p]

		switch Classify(true, current.Installed(base)) {
		case StateDeclaredAndInstalled:
			have := current.Info[base].Options()
			if manifest.OptionsEqual(want, have) {
				continue
			}
			plan.add(Action{
				Kind:    types.KindFormula,
				Op:      OpReinstall,
				Name:    p,
				Options: want,
				Reason:  fmt.Sprintf("installed with %q", have),
			})
			continue
		}

		plan.add(Action{Kind: types.KindFormula, Op: OpInstall, Name: p, Options: want})

		found, err := deps.Deps(p, true)
		if err != nil {
			return fmt.Errorf("failed to list dependencies of %s: %w", p, err)
		}
		for _, d := range found {
			d = manifest.BaseName(d)
			if seen[d] || !policy.expandDependency(d) {
				continue
			}
			if _, ok := set.Find(types.KindFormula, manifest.SideInput, d); ok {
				continue
			}
			if !set.Declare(types.KindFormula, d, "") {
				continue
			}
			seen[d] = true
			plan.add(Action{Kind: types.KindFormula, Op: OpDeclare, Name: d, Reason: "dependency of " + p})
			queue = append(queue, d)
		}
	}
	return nil
}

func appStoreInstalled(list []string, line string) bool {
	if contains(list, line) {
		return true
	}
	name := manifest.AppStoreName(line)
	for _, l := range list {
		if manifest.AppStoreName(l) == name {
			return true
		}
	}
	return false
}

// ComputeCleanup calculates the actions that remove everything installed but
// not declared. Installed dependencies of declared formulas are kept.
func ComputeCleanup(set *manifest.Set, current *state.Snapshot, taps manifest.TapResolver, policy Policy) (*Plan, error) {
	logger := logging.GetLogger("diff")
	plan := &Plan{}
	installed := &current.List

	keep := declaredFormulas(set, current)
	declared := func(p string) bool {
		return keep[p] || keep[manifest.BaseName(p)]
	}

	if policy.AppStore {
		inputs := set.Get(types.KindAppStore, manifest.SideInput)
		for _, a := range installed.AppStore {
			if appStoreInstalled(inputs, a) {
				continue
			}
			paths := appBundles(policy.AppDirs, manifest.AppStoreName(a))
			if len(paths) == 0 {
				logger.Debug().Str("app", a).Msg("No application bundle found")
				continue
			}
			plan.add(Action{Kind: types.KindAppStore, Op: OpUninstall, Name: a, Paths: paths, Fatal: true})
		}
	}

	casks := set.Get(types.KindCask, manifest.SideInput)
	retainedCasks := 0
	for _, c := range installed.Casks {
		if contains(casks, c) {
			retainedCasks++
			continue
		}
		plan.add(Action{Kind: types.KindCask, Op: OpUninstall, Name: c, Fatal: true})
	}

	// A carrier stays while any member of its kind is retained. Once the last
	// member is a removal candidate the carrier is judged like any formula.
	carriers := map[string]bool{}
	for k, carrier := range map[types.Kind]string{types.KindPip: types.PipCarrier, types.KindGem: types.GemCarrier} {
		inputs := set.Get(k, manifest.SideInput)
		retained := 0
		for _, p := range installed.Names(k) {
			if contains(inputs, p) {
				retained++
			}
		}
		carriers[carrier] = retained > 0
	}
	for _, k := range []types.Kind{types.KindPip, types.KindGem} {
		inputs := set.Get(k, manifest.SideInput)
		for _, p := range installed.Names(k) {
			if contains(inputs, p) {
				continue
			}
			plan.add(Action{Kind: k, Op: OpUninstall, Name: p, IgnoreDeps: true})
		}
	}

	for _, p := range installed.Names(types.KindFormula) {
		if declared(p) || carriers[p] {
			continue
		}
		// Taps may be removed before their formulas, so dependencies are ignored.
		plan.add(Action{Kind: types.KindFormula, Op: OpUninstall, Name: p, IgnoreDeps: true})
	}

	tapInputs := set.Get(types.KindTap, manifest.SideInput)
	caskInputs := set.Get(types.KindCask, manifest.SideInput)
	for _, t := range installed.Taps {
		if t == types.DirectTap || contains(tapInputs, t) {
			continue
		}
		if retainedCasks > 0 && t == policy.caskRepo() {
			continue
		}
		contents, err := taps.TapContents(t)
		if err != nil {
			return nil, fmt.Errorf("failed to read tap %s: %w", t, err)
		}
		if tapInUse(contents, declared, caskInputs) {
			continue
		}
		plan.add(Action{Kind: types.KindTap, Op: OpUntap, Name: t, Fatal: true})
	}

	if policy.CacheDir != "" {
		plan.add(Action{Op: OpCleanup, Name: policy.CacheDir})
	}

	_, _, remove, _ := plan.Summary()
	logger.Debug().Int("remove", remove).Msg("Computed cleanup plan")
	return plan, nil
}

// declaredFormulas returns the declared formulas and every installed formula
// they depend on, keyed by both identifier and base name.
func declaredFormulas(set *manifest.Set, current *state.Snapshot) map[string]bool {
	keep := map[string]bool{}
	deps := current.Dependencies()

	var walk func(string)
	walk = func(p string) {
		for _, d := range deps[p] {
			if !keep[d] {
				keep[d] = true
				walk(d)
			}
		}
	}

	for _, p := range set.Get(types.KindFormula, manifest.SideInput) {
		keep[p] = true
		keep[manifest.BaseName(p)] = true
	}
	for _, p := range set.Get(types.KindFormula, manifest.SideInput) {
		walk(manifest.BaseName(p))
	}
	return keep
}

func tapInUse(contents manifest.TapContents, declared func(string) bool, casks []string) bool {
	for _, f := range contents.Formulas {
		if declared(f) {
			return true
		}
	}
	for _, c := range contents.Casks {
		if contains(casks, c) {
			return true
		}
	}
	return false
}

// appBundles returns the existing bundles named app in dirs.
func appBundles(dirs []string, app string) []string {
	var out []string
	for _, d := range dirs {
		p := filepath.Join(d, app+".app")
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// SplitTapName splits "owner/repo/name" into the formula name and its tap.
// Anything else resolves through the direct tap.
func SplitTapName(ref string) (name, tap string) {
	parts := strings.Split(ref, "/")
	if len(parts) == 3 && !strings.HasPrefix(ref, "http") && !strings.HasPrefix(ref, "ftp") && !strings.HasPrefix(ref, "/") {
		return parts[2], parts[0] + "/" + parts[1]
	}
	return ref, types.DirectTap
}
