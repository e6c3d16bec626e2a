package manifest

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/output"
	"github.com/adamancini/brewfile/internal/templates"
	"github.com/adamancini/brewfile/internal/types"
)

// RenderOptions control serialization of a document's list side.
type RenderOptions struct {
	Dialect types.Dialect
	// CaskOnly suppresses formula, pip and gem sections.
	CaskOnly bool
	// AppStore enables the app store section.
	AppStore bool
	Taps     TapResolver
}

// directives holds the per-dialect line prefixes.
type directives struct {
	before, after, other         string
	install, tap, cask, pip, gem string
	caskNoCask, appstore, file   string
}

func directivesFor(d types.Dialect) directives {
	switch d.Resolve() {
	case types.DialectBundle:
		return directives{
			before: "#before ", after: "#after ", other: "#",
			install: "brew ", tap: "tap ", cask: "cask ", pip: "#pip ", gem: "#gem ",
			caskNoCask: "#cask ", appstore: "#appstore ", file: "#file ",
		}
	case types.DialectCommand:
		return directives{
			install: "brew install ", tap: "brew tap ", cask: "brew cask install ",
			pip: "brew pip ", gem: "brew gem install ",
			caskNoCask: "#brew cask install ", appstore: "#appstore ", file: "#file ",
		}
	default:
		return directives{
			before: "before ", after: "after ",
			install: "brew ", tap: "tap ", cask: "cask ", pip: "pip ", gem: "gem ",
			caskNoCask: "#cask ", appstore: "appstore ", file: "file ",
		}
	}
}

// FormatPackage renders a package identifier and its options for dialect.
// The bundle dialect quotes the identifier and emits options as an args list.
func FormatPackage(name, options string, dialect types.Dialect) string {
	opts := strings.Fields(options)
	if !dialect.Resolve().IsBundle() {
		if len(opts) == 0 {
			return name
		}
		return name + " " + strings.Join(opts, " ")
	}
	out := "'" + name + "'"
	if len(opts) == 0 {
		return out
	}
	quoted := make([]string, 0, len(opts))
	for _, o := range opts {
		quoted = append(quoted, "'"+strings.TrimPrefix(o, "--")+"'")
	}
	return out + ", args: [" + strings.Join(quoted, ", ") + "]"
}

// formatPip renders a pip package; a single bare option is a pinned version.
func formatPip(name, options string, dialect types.Dialect) string {
	opts := strings.Fields(options)
	if len(opts) == 1 && !strings.HasPrefix(opts[0], "-") {
		return FormatPackage(name, "", dialect) + "=" + opts[0]
	}
	return FormatPackage(name, options, dialect)
}

// Render writes the list side of d in the requested dialect.
// The list side is sorted first; the document is otherwise not modified.
func (d *Document) Render(w io.Writer, opts RenderOptions) error {
	dialect := opts.Dialect.Resolve()
	dir := directivesFor(dialect)
	pw := &lineWriter{w: w}

	if dialect.IsCommand() {
		preamble, err := templates.Bootstrap()
		if err != nil {
			return err
		}
		pw.raw(preamble)
	}

	d.Sort()
	list := &d.List
	formulas := list.Formulas.Clone()
	casks := list.Names(types.KindCask)

	if len(d.Input.Before) > 0 {
		pw.line("# Before commands")
		for _, c := range d.Input.Before {
			pw.line(dir.before + c)
		}
	}

	headerDone := false
	header := func() {
		if !headerDone {
			pw.line("\n# tap repositories and their packages")
			headerDone = true
		}
	}
	for _, t := range list.Taps {
		contents, err := d.tapContents(opts.Taps, t)
		if err != nil {
			return err
		}
		direct := t == types.DirectTap
		tapDone := false
		tapLine := func(allowDirect bool) {
			header()
			if !tapDone && (!direct || allowDirect) {
				pw.line("\n" + dir.tap + FormatPackage(t, "", dialect))
			}
			tapDone = true
		}

		if !opts.CaskOnly {
			tapLine(false)
			directHeader := direct
			for _, p := range formulas.Names() {
				if !contents.HasFormula(p) {
					continue
				}
				if directHeader {
					directHeader = false
					pw.line("\n## Direct install")
				}
				o, _ := formulas.Options(p)
				pw.line(dir.install + FormatPackage(p, o, dialect))
				formulas.Remove(p)
			}
		}
		for _, c := range sortedCopy(contents.Casks) {
			i := indexOf(casks, c)
			if i < 0 {
				continue
			}
			tapLine(true)
			pw.line(dir.cask + FormatPackage(c, "", dialect))
			casks = append(casks[:i], casks[i+1:]...)
		}
	}

	if !opts.CaskOnly && formulas.Len() > 0 {
		pw.line("\n# Other Homebrew packages")
		for _, p := range formulas.Packages() {
			pw.line(dir.install + FormatPackage(p.Name, p.Options, dialect))
		}
	}

	if !opts.CaskOnly && list.Pips.Len() > 0 {
		pw.line("\n# Other pip packages")
		for _, p := range list.Pips.Packages() {
			pw.line(dir.pip + formatPip(p.Name, p.Options, dialect))
		}
	}

	if !opts.CaskOnly && list.Gems.Len() > 0 {
		pw.line("\n# Other gem packages")
		for _, p := range list.Gems.Packages() {
			pw.line(dir.gem + FormatPackage(p.Name, p.Options, dialect))
		}
	}

	if len(casks) > 0 {
		pw.line("\n# Other Cask applications")
		for _, c := range casks {
			pw.line(dir.cask + FormatPackage(c, "", dialect))
		}
	}

	if len(list.CaskNoCask) > 0 {
		pw.line("\n# Below applications were installed by Cask,")
		pw.line("# but do not have corresponding casks.\n")
		for _, c := range list.CaskNoCask {
			pw.line(dir.caskNoCask + FormatPackage(c, "", dialect))
		}
	}

	if opts.AppStore && len(list.AppStore) > 0 {
		pw.line("\n# App Store applications")
		for _, a := range list.AppStore {
			pw.line(dir.appstore + FormatPackage(a, "", dialect))
		}
	}

	if len(list.Files) > 0 {
		pw.line("\n# Additional files")
		for _, f := range list.Files {
			pw.line(dir.file + FormatPackage(f, "", dialect))
		}
	}

	if len(d.Input.Commands) > 0 {
		pw.line("\n# Other commands")
		for _, c := range d.Input.Commands {
			pw.line(dir.other + c)
		}
	}

	if len(d.Input.After) > 0 {
		pw.line("\n# After commands")
		for _, c := range d.Input.After {
			pw.line(dir.after + c)
		}
	}

	return pw.err
}

// Write renders d to its file, echoing to console when non-nil, and sets
// the file mode for the dialect: executable for command scripts.
func (d *Document) Write(opts RenderOptions, console io.Writer) error {
	logger := logging.GetLogger("manifest.write")

	tee := output.NewTee(d.Path, console)
	if err := d.Render(tee, opts); err != nil {
		return fmt.Errorf("failed to render %s: %w", d.Path, err)
	}
	if err := tee.Close(); err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if opts.Dialect.Resolve().IsCommand() {
		mode = 0755
	}
	if err := os.Chmod(d.Path, mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", d.Path, err)
	}

	logger.Debug().Str("path", d.Path).Str("dialect", opts.Dialect.Resolve().String()).Msg("Wrote manifest")
	return nil
}

func (d *Document) tapContents(r TapResolver, tap string) (TapContents, error) {
	if r == nil {
		return TapContents{}, nil
	}
	c, err := r.TapContents(tap)
	if err != nil {
		return TapContents{}, fmt.Errorf("failed to read tap %s: %w", tap, err)
	}
	return c, nil
}

// lineWriter remembers the first write error so Render can check once.
type lineWriter struct {
	w   io.Writer
	err error
}

func (l *lineWriter) raw(s string) {
	if l.err != nil {
		return
	}
	_, l.err = io.WriteString(l.w, s)
}

func (l *lineWriter) line(s string) {
	l.raw(s + "\n")
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
