// Package brewtest provides an in-memory brew.Provider for tests.
package brewtest

import (
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Fake is an in-memory package index. Mutations update its state and are
// recorded in Commands as "<op> <kind> <name> [options]".
type Fake struct {
	Formulas []string
	Info     map[string]brew.FormulaMetadata
	// LeafList overrides the computed leaves.
	LeafList []string
	// DepMap holds direct dependencies.
	DepMap   map[string][]string
	TapList  []string
	CaskList []string
	Apps     []string
	TapDirs  map[string]manifest.TapContents
	Values   map[string]string
	Tools    map[string]bool
	Tokens   map[string][]string
	// Failures maps a recorded command to the exit code it fails with.
	Failures map[string]int
	// Output maps a recorded command to the lines it prints.
	Output map[string][]string

	Commands []string
}

// New creates an empty fake.
func New() *Fake {
	return &Fake{
		Info:     map[string]brew.FormulaMetadata{},
		DepMap:   map[string][]string{},
		TapDirs:  map[string]manifest.TapContents{},
		Values:   map[string]string{},
		Tools:    map[string]bool{},
		Tokens:   map[string][]string{},
		Failures: map[string]int{},
		Output:   map[string][]string{},
	}
}

// AddFormula marks name installed with options and direct dependencies.
func (f *Fake) AddFormula(name, options string, deps ...string) {
	if !contains(f.Formulas, name) {
		f.Formulas = append(f.Formulas, name)
	}
	version := "1.0"
	f.Info[name] = brew.FormulaMetadata{
		Name:         name,
		FullName:     name,
		LinkedKeg:    &version,
		Installed:    []brew.InstalledVersion{{Version: version, UsedOptions: strings.Fields(options)}},
		Versions:     brew.Versions{Stable: version},
		Dependencies: deps,
	}
	if len(deps) > 0 {
		f.DepMap[name] = deps
	}
}

// SetOnRequest records whether name was installed on request.
func (f *Fake) SetOnRequest(name string, onRequest bool) {
	m := f.Info[name]
	if len(m.Installed) == 0 {
		return
	}
	m.Installed[0].InstalledOnRequest = &onRequest
	f.Info[name] = m
}

func (f *Fake) record(cmd string) brew.Result {
	f.Commands = append(f.Commands, cmd)
	res := brew.Result{Command: cmd, Lines: f.Output[cmd]}
	if code, ok := f.Failures[cmd]; ok {
		res.Code = code
	}
	return res
}

func format(op string, kind types.Kind, name, options string) string {
	return strings.TrimSpace(strings.Join([]string{op, string(kind), name, strings.Join(strings.Fields(options), " ")}, " "))
}

func (f *Fake) ListInstalledFormulas() ([]string, error) {
	return append([]string(nil), f.Formulas...), nil
}

func (f *Fake) FormulaInfo(names ...string) (map[string]brew.FormulaMetadata, error) {
	out := map[string]brew.FormulaMetadata{}
	for k, v := range f.Info {
		if len(names) == 0 || contains(names, k) {
			out[k] = v
		}
	}
	return out, nil
}

func (f *Fake) Leaves() ([]string, error) {
	if f.LeafList != nil {
		return append([]string(nil), f.LeafList...), nil
	}
	used := map[string]bool{}
	for _, deps := range f.DepMap {
		for _, d := range deps {
			used[d] = true
		}
	}
	var leaves []string
	for _, p := range f.Formulas {
		if !used[p] {
			leaves = append(leaves, p)
		}
	}
	return leaves, nil
}

func (f *Fake) Deps(name string, oneLevel bool) ([]string, error) {
	if oneLevel {
		return append([]string(nil), f.DepMap[name]...), nil
	}
	seen := map[string]bool{}
	var out []string
	var walk func(string)
	walk = func(n string) {
		for _, d := range f.DepMap[n] {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
				walk(d)
			}
		}
	}
	walk(name)
	sort.Strings(out)
	return out, nil
}

func (f *Fake) ListTaps() ([]string, error) {
	return append([]string(nil), f.TapList...), nil
}

func (f *Fake) ListCasks() ([]string, error) {
	return append([]string(nil), f.CaskList...), nil
}

func (f *Fake) ListAppStoreApps() ([]string, error) {
	return append([]string(nil), f.Apps...), nil
}

func (f *Fake) TapPath(tap string) (string, error) {
	return "/taps/" + tap, nil
}

func (f *Fake) TapContents(tap string) (manifest.TapContents, error) {
	return f.TapDirs[tap], nil
}

func (f *Fake) Install(kind types.Kind, name, options string) brew.Result {
	res := f.record(format("install", kind, name, options))
	if !res.OK() {
		return res
	}
	switch kind {
	case types.KindFormula:
		f.AddFormula(manifest.BaseName(name), options, f.DepMap[name]...)
	case types.KindTap:
		f.TapList = appendNew(f.TapList, name)
	case types.KindCask:
		f.CaskList = appendNew(f.CaskList, name)
	case types.KindPip:
		f.AddFormula(types.PipPrefix+name, "")
	case types.KindGem:
		f.AddFormula(types.GemPrefix+name, "")
	case types.KindAppStore:
		f.Apps = appendNew(f.Apps, name)
	}
	return res
}

func (f *Fake) Reinstall(name, options string) brew.Result {
	res := f.record(format("reinstall", types.KindFormula, name, options))
	if res.OK() {
		f.AddFormula(name, options, f.Info[name].Dependencies...)
	}
	return res
}

func (f *Fake) Uninstall(kind types.Kind, name string, ignoreDeps bool) brew.Result {
	op := "uninstall"
	if ignoreDeps && kind == types.KindFormula {
		op = "uninstall-ignore-deps"
	}
	res := f.record(format(op, kind, name, ""))
	if !res.OK() {
		return res
	}
	switch kind {
	case types.KindFormula:
		f.removeFormula(name)
	case types.KindPip:
		f.removeFormula(types.PipPrefix + name)
	case types.KindGem:
		f.removeFormula(types.GemPrefix + name)
	case types.KindTap:
		f.TapList = remove(f.TapList, name)
	case types.KindCask:
		f.CaskList = remove(f.CaskList, name)
	}
	return res
}

func (f *Fake) removeFormula(name string) {
	f.Formulas = remove(f.Formulas, name)
	delete(f.Info, name)
}

func (f *Fake) Tap(name string) brew.Result {
	return f.Install(types.KindTap, name, "")
}

func (f *Fake) Untap(name string) brew.Result {
	return f.Uninstall(types.KindTap, name, false)
}

func (f *Fake) RemoveApp(path string) brew.Result {
	return f.record("remove-app " + path)
}

func (f *Fake) Run(args []string) brew.Result {
	return f.record("run " + strings.Join(args, " "))
}

func (f *Fake) Shell(line string) brew.Result {
	return f.record("sh " + line)
}

func (f *Fake) ProposeCaskToken(app string) ([]string, error) {
	return f.Tokens[app], nil
}

func (f *Fake) HasTool(name string) bool {
	return f.Tools[name]
}

func (f *Fake) Value(name string) (string, error) {
	if v, ok := f.Values[name]; ok {
		return v, nil
	}
	return "/brew/" + name, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendNew(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

var _ brew.Provider = (*Fake)(nil)
