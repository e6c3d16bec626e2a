// Package manifest models Brewfile documents: the declared ("input") side read
// from disk and the observed ("list") side derived from installed state.
package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/types"
)

// Package is a named entry with a raw option string.
type Package struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Options string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// OptionsEqual reports whether two option strings carry the same tokens,
// ignoring order and surrounding whitespace.
func OptionsEqual(a, b string) bool {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) != len(tb) {
		return false
	}
	sort.Strings(ta)
	sort.Strings(tb)
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

// Entries is an insertion-ordered set of packages keyed by name.
// Setting an existing name replaces its options but keeps its position.
type Entries struct {
	names []string
	opts  map[string]string
}

// Set adds name or replaces its options.
func (e *Entries) Set(name, options string) {
	if e.opts == nil {
		e.opts = make(map[string]string)
	}
	if _, ok := e.opts[name]; !ok {
		e.names = append(e.names, name)
	}
	e.opts[name] = strings.TrimSpace(options)
}

// Add adds name only if it is not present. It reports whether it was added.
func (e *Entries) Add(name, options string) bool {
	if e.Has(name) {
		return false
	}
	e.Set(name, options)
	return true
}

// Has reports whether name is present.
func (e *Entries) Has(name string) bool {
	_, ok := e.opts[name]
	return ok
}

// Options returns the option string for name.
func (e *Entries) Options(name string) (string, bool) {
	o, ok := e.opts[name]
	return o, ok
}

// Remove deletes name and reports whether it was present.
func (e *Entries) Remove(name string) bool {
	if !e.Has(name) {
		return false
	}
	delete(e.opts, name)
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i], e.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns a copy of the names in order.
func (e *Entries) Names() []string {
	return append([]string(nil), e.names...)
}

// Packages returns the entries as packages in order.
func (e *Entries) Packages() []Package {
	pkgs := make([]Package, 0, len(e.names))
	for _, n := range e.names {
		pkgs = append(pkgs, Package{Name: n, Options: e.opts[n]})
	}
	return pkgs
}

// Map returns a copy of the name to options mapping.
func (e *Entries) Map() map[string]string {
	m := make(map[string]string, len(e.opts))
	for k, v := range e.opts {
		m[k] = v
	}
	return m
}

// Len returns the number of entries.
func (e *Entries) Len() int {
	return len(e.names)
}

// Clear removes all entries.
func (e *Entries) Clear() {
	e.names = nil
	e.opts = nil
}

// Sort orders entries alphabetically by name.
func (e *Entries) Sort() {
	sort.Strings(e.names)
}

// Clone returns an independent copy.
func (e *Entries) Clone() Entries {
	return Entries{names: e.Names(), opts: e.Map()}
}

// Declarations holds one side (input or list) of a document, one field per kind.
type Declarations struct {
	Formulas Entries
	Pips     Entries
	Gems     Entries
	Taps     []string
	Casks    []string
	AppStore []string
	Files    []string

	// CaskNoCask holds installed casks whose recipe could not be found.
	CaskNoCask []string

	Before   []string
	After    []string
	Commands []string
}

// Entries returns the option-carrying container for kind, or nil.
func (d *Declarations) Entries(kind types.Kind) *Entries {
	switch kind {
	case types.KindFormula:
		return &d.Formulas
	case types.KindPip:
		return &d.Pips
	case types.KindGem:
		return &d.Gems
	}
	return nil
}

func (d *Declarations) list(kind types.Kind) *[]string {
	switch kind {
	case types.KindTap:
		return &d.Taps
	case types.KindCask:
		return &d.Casks
	case types.KindAppStore:
		return &d.AppStore
	case types.KindFile:
		return &d.Files
	}
	return nil
}

// Names returns the declared names of kind in order.
func (d *Declarations) Names(kind types.Kind) []string {
	if e := d.Entries(kind); e != nil {
		return e.Names()
	}
	if l := d.list(kind); l != nil {
		return append([]string(nil), (*l)...)
	}
	return nil
}

// Has reports whether name is declared for kind.
func (d *Declarations) Has(kind types.Kind, name string) bool {
	if e := d.Entries(kind); e != nil {
		return e.Has(name)
	}
	if l := d.list(kind); l != nil {
		return contains(*l, name)
	}
	return false
}

// Add declares name for kind. Options are ignored for kinds without options.
// It reports whether the name was new.
func (d *Declarations) Add(kind types.Kind, name, options string) bool {
	if e := d.Entries(kind); e != nil {
		return e.Add(name, options)
	}
	l := d.list(kind)
	if l == nil || contains(*l, name) {
		return false
	}
	*l = append(*l, name)
	return true
}

// Remove deletes name from kind and reports whether it was present.
func (d *Declarations) Remove(kind types.Kind, name string) bool {
	if e := d.Entries(kind); e != nil {
		return e.Remove(name)
	}
	l := d.list(kind)
	if l == nil {
		return false
	}
	for i, n := range *l {
		if n == name {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Options returns a copy of the name to options mapping for kind.
func (d *Declarations) Options(kind types.Kind) map[string]string {
	if e := d.Entries(kind); e != nil {
		return e.Map()
	}
	return map[string]string{}
}

// Clear empties every container.
func (d *Declarations) Clear() {
	*d = Declarations{}
}

// Listing is a serializable view of Declarations.
type Listing struct {
	Formulas   []Package `json:"formulas,omitempty" yaml:"formulas,omitempty" toml:"formulas,omitempty"`
	Taps       []string  `json:"taps,omitempty" yaml:"taps,omitempty" toml:"taps,omitempty"`
	Casks      []string  `json:"casks,omitempty" yaml:"casks,omitempty" toml:"casks,omitempty"`
	Pips       []Package `json:"pip,omitempty" yaml:"pip,omitempty" toml:"pip,omitempty"`
	Gems       []Package `json:"gem,omitempty" yaml:"gem,omitempty" toml:"gem,omitempty"`
	AppStore   []string  `json:"appstore,omitempty" yaml:"appstore,omitempty" toml:"appstore,omitempty"`
	Files      []string  `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty"`
	CaskNoCask []string  `json:"cask_nocask,omitempty" yaml:"cask_nocask,omitempty" toml:"cask_nocask,omitempty"`
}

// Listing returns a serializable snapshot of the declarations.
func (d *Declarations) Listing() Listing {
	return Listing{
		Formulas:   d.Formulas.Packages(),
		Taps:       d.Names(types.KindTap),
		Casks:      d.Names(types.KindCask),
		Pips:       d.Pips.Packages(),
		Gems:       d.Gems.Packages(),
		AppStore:   d.Names(types.KindAppStore),
		Files:      d.Names(types.KindFile),
		CaskNoCask: append([]string(nil), d.CaskNoCask...),
	}
}

// Side selects the input (declared) or list (observed) half of a document.
type Side int

const (
	// SideInput is what the manifest declares.
	SideInput Side = iota
	// SideList is what was observed or is about to be written.
	SideList
)

// Document is one physical manifest file.
type Document struct {
	Path string
	// Repo is the repository pointer from a leading "git" directive.
	Repo  string
	Input Declarations
	List  Declarations
}

// New creates an empty document for path.
func New(path string) *Document {
	return &Document{Path: path}
}

// Dir returns the directory containing the document.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// Exists reports whether the document file exists.
func (d *Document) Exists() bool {
	_, err := os.Stat(d.Path)
	return err == nil
}

// Side returns the declarations for s.
func (d *Document) Side(s Side) *Declarations {
	if s == SideList {
		return &d.List
	}
	return &d.Input
}

// Has reports whether name is present for kind on side s.
func (d *Document) Has(kind types.Kind, s Side, name string) bool {
	return d.Side(s).Has(kind, name)
}

// Remove deletes name for kind on side s.
func (d *Document) Remove(kind types.Kind, s Side, name string) bool {
	return d.Side(s).Remove(kind, name)
}

// Names returns the names for kind on side s.
func (d *Document) Names(kind types.Kind, s Side) []string {
	return d.Side(s).Names(kind)
}

// ClearInput empties the declared side.
func (d *Document) ClearInput() {
	d.Input.Clear()
}

// ClearList empties the observed side.
func (d *Document) ClearList() {
	d.List.Clear()
}

// InputToList replaces the list side with a copy of the declared packages.
// Command sequences stay on the input side; the serializer reads them from there.
func (d *Document) InputToList() {
	d.List = Declarations{
		Formulas: d.Input.Formulas.Clone(),
		Pips:     d.Input.Pips.Clone(),
		Gems:     d.Input.Gems.Clone(),
		Taps:     d.Input.Names(types.KindTap),
		Casks:    d.Input.Names(types.KindCask),
		AppStore: d.Input.Names(types.KindAppStore),
		Files:    d.Input.Names(types.KindFile),
	}
}

// Sort orders the list side for stable serialization.
func (d *Document) Sort() {
	d.List.Taps = SortTaps(d.List.Taps)
	d.List.Formulas.Sort()
	d.List.Gems.Sort()
	SortAppStore(d.List.AppStore)
}

// SortTaps orders taps: the core tap, other homebrew/* taps, the cask tap,
// other caskroom/* taps, then everything else, each group alphabetically.
// Both names of the cask tap collapse into the first one seen.
func SortTaps(taps []string) []string {
	var (
		core, cask         string
		homebrew, caskroom []string
		others             []string
	)
	for _, t := range taps {
		switch {
		case t == types.CoreTap:
			core = t
		case types.IsCaskTap(t):
			if cask == "" {
				cask = t
			}
		case strings.HasPrefix(t, "homebrew/"):
			homebrew = append(homebrew, t)
		case strings.HasPrefix(t, "caskroom/"):
			caskroom = append(caskroom, t)
		default:
			others = append(others, t)
		}
	}
	sort.Strings(homebrew)
	sort.Strings(caskroom)
	sort.Strings(others)

	out := make([]string, 0, len(taps))
	if core != "" {
		out = append(out, core)
	}
	out = append(out, homebrew...)
	if cask != "" {
		out = append(out, cask)
	}
	out = append(out, caskroom...)
	return append(out, others...)
}

// SortAppStore orders app store lines case-insensitively by the name after the id.
func SortAppStore(apps []string) {
	sort.SliceStable(apps, func(i, j int) bool {
		return appStoreKey(apps[i]) < appStoreKey(apps[j])
	})
}

func appStoreKey(line string) string {
	f := strings.Fields(line)
	if len(f) > 1 {
		return strings.ToLower(strings.Join(f[1:], " "))
	}
	return strings.ToLower(line)
}

// SplitAppStore splits an app store line into its numeric id and name.
// Lines without a leading id of at least nine digits return an empty id.
func SplitAppStore(line string) (id, name string) {
	f := strings.Fields(line)
	if len(f) > 0 && IsAppStoreID(f[0]) {
		return f[0], strings.Join(f[1:], " ")
	}
	return "", strings.TrimSpace(line)
}

// AppStoreName returns the application name of an app store line without
// its id and trailing "(version)".
func AppStoreName(line string) string {
	_, name := SplitAppStore(line)
	if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// IsAppStoreID reports whether s is an App Store numeric identifier.
func IsAppStoreID(s string) bool {
	if len(s) < 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BaseName strips a tap prefix and a ".rb" suffix from a formula reference.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".rb")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
