package cask

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Report groups the attributions of every checked application.
type Report struct {
	CaskRepo string
	Taps     []string
	Dirs     []string
	// Home is replaced by "~" in printed paths.
	Home    string
	Matches []Match
	Index   *Index
}

// Check attributes every application bundle in dirs. Hidden entries and
// the Utilities folder are skipped.
func (m *Matcher) Check(dirs []string, caskRepo string) (*Report, error) {
	r := &Report{CaskRepo: caskRepo, Taps: m.Index.Taps, Dirs: dirs, Index: m.Index}
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", d, err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") || e.Name() == "Utilities" {
				continue
			}
			if info, err := os.Stat(filepath.Join(d, e.Name())); err != nil || !info.IsDir() {
				continue
			}
			r.Matches = append(r.Matches, m.Attribute(d, e.Name()))
		}
	}
	return r, nil
}

// Counts returns the number of applications per attribution and directory.
func (r *Report) Counts() map[types.Attribution]map[string]int {
	counts := map[types.Attribution]map[string]int{}
	for _, a := range types.AllAttributions() {
		counts[a] = map[string]int{}
	}
	for _, m := range r.Matches {
		counts[m.Attribution][m.Dir]++
	}
	return counts
}

func (r *Report) short(path string) string {
	if r.Home != "" && strings.HasPrefix(path, r.Home) {
		return "~" + strings.TrimPrefix(path, r.Home)
	}
	return path
}

type entry struct {
	name, path string
	obsolete   bool
}

// byTap returns the cask entries of tap; installed selects bundles from the
// attributed cask, otherwise bundles installed directly.
func (r *Report) byTap(tap string, installed bool) []entry {
	var out []entry
	for _, m := range r.Matches {
		switch m.Attribution {
		case types.AttributionCask, types.AttributionCaskObsolete:
			if installed && m.Tap == tap {
				out = append(out, entry{m.Name, m.Path, m.Attribution == types.AttributionCaskObsolete})
			}
		case types.AttributionHasCask:
			if installed {
				continue
			}
			for _, c := range m.Candidates {
				if c.Tap == tap {
					out = append(out, entry{c.Token, m.Path, false})
				}
			}
		}
	}
	return out
}

func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].name != entries[j].name {
			return entries[i].name < entries[j].name
		}
		return entries[i].path < entries[j].path
	})
}

// WriteCaskfile writes the applications as manifest lines, grouped by tap.
// A cask is declared once; later bundles of the same cask are commented out.
func (r *Report) WriteCaskfile(w io.Writer) error {
	cw := &caskWriter{w: w, written: map[string]bool{}}

	cw.line("# Cask applications")
	cw.line("# Please copy these lines to your Brewfile and use with `brew-file install`.")
	cw.line("")

	taps := []string{r.CaskRepo}
	for _, t := range r.Taps {
		if t != r.CaskRepo {
			taps = append(taps, t)
		}
	}
	for i, t := range taps {
		if i == 0 {
			cw.line("# Main tap repository for " + t)
		} else {
			cw.line("# Casks in " + t)
		}
		cw.line("tap " + t)
		cw.line("")
		r.writeTap(cw, t)
	}

	brew := r.filter(types.AttributionBrew)
	if len(brew) > 0 {
		cw.line("# Apps installed by brew install command")
		var tapped []string
		for _, m := range brew {
			if m.Tap == "" {
				cw.line(strings.Join(strings.Fields("brew "+m.Name+" "+m.Options), " ") + " # " + r.short(m.Path))
			} else if !contains(tapped, m.Tap) {
				tapped = append(tapped, m.Tap)
			}
		}
		for _, t := range tapped {
			cw.line("tap " + t)
			for _, m := range brew {
				if m.Tap == t {
					cw.line(strings.Join(strings.Fields("brew "+m.Name+" "+m.Options), " ") + " # " + r.short(m.Path))
				}
			}
		}
		cw.line("")
	}

	apps := r.filter(types.AttributionAppStore)
	if len(apps) > 0 {
		cw.line("# Apps installed from AppStore")
		sort.SliceStable(apps, func(i, j int) bool {
			return strings.ToLower(manifest.AppStoreName(apps[i].Name)) < strings.ToLower(manifest.AppStoreName(apps[j].Name))
		})
		for _, m := range apps {
			if m.Name != "" {
				cw.line("appstore " + m.Name + " # " + r.short(m.Path))
			} else {
				cw.line("#appstore # " + r.short(m.Path))
			}
		}
		cw.line("")
	}

	none := r.filter(types.AttributionNoCask)
	if len(none) > 0 {
		cw.line("# Apps installed but no casks are available")
		cw.line("# (System applications or directory installed.)")
		for _, m := range none {
			cw.line("# " + r.short(m.Path))
		}
	}
	return cw.err
}

func (r *Report) writeTap(cw *caskWriter, tap string) {
	installed := r.byTap(tap, true)
	sortEntries(installed)
	if len(installed) > 0 {
		cw.line("# Apps installed by Cask in " + tap)
		for _, e := range installed {
			if !e.obsolete {
				cw.cask(e.name, r.short(e.path))
			}
		}
		if hasObsolete(installed) {
			cw.line("")
			cw.line("# There are new version for following applications.")
			for _, e := range installed {
				if e.obsolete {
					cw.cask(e.name, r.short(e.path))
				}
			}
		}
		cw.line("")
	}

	var current, outdated []string
	unmatched := false
	for _, rc := range r.Index.Listed(tap) {
		if rc.Matched {
			continue
		}
		unmatched = true
		if rc.Installed {
			current = appendNew(current, rc.Token)
		} else {
			outdated = appendNew(outdated, rc.Token)
		}
	}
	if unmatched {
		sort.Strings(current)
		sort.Strings(outdated)
		cw.line("# Cask is found, but no applications are found (could be fonts, system settings, or installed in other directory.)")
		for _, c := range current {
			cw.caskOnce(c)
		}
		if len(outdated) > 0 {
			cw.line("")
			cw.line("# There are new version for following applications.")
			for _, c := range outdated {
				cw.caskOnce(c)
			}
		}
		cw.line("")
	}

	direct := r.byTap(tap, false)
	if tap == r.CaskRepo {
		sortEntries(direct)
	}
	if len(direct) > 0 {
		cw.line("# Apps installed directly instead of by Cask in " + tap)
		for _, e := range direct {
			cw.line("#cask " + e.name + " # " + r.short(e.path))
		}
		cw.line("")
	}
}

func (r *Report) filter(a types.Attribution) []Match {
	var out []Match
	for _, m := range r.Matches {
		if m.Attribution == a {
			out = append(out, m)
		}
	}
	return out
}

// Summary prints the number of applications per attribution and directory.
func (r *Report) Summary(w io.Writer) error {
	counts := r.Counts()
	var dirs []string
	width := 0
	for _, d := range r.Dirs {
		s := r.short(d)
		dirs = append(dirs, s)
		if len(s) > width {
			width = len(s)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d apps have been checked.\n", len(r.Matches))
	fmt.Fprintf(&b, "Apps in %s\n\n", strings.Join(dirs, ", "))
	for _, a := range types.AllAttributions() {
		total := 0
		for _, n := range counts[a] {
			total += n
		}
		if total == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", a.Label())
		for i, d := range r.Dirs {
			if n := counts[a][d]; n > 0 {
				fmt.Fprintf(&b, "%-*s : %d\n", width, dirs[i], n)
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type caskWriter struct {
	w       io.Writer
	written map[string]bool
	err     error
}

func (c *caskWriter) line(s string) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintln(c.w, s)
}

// cask declares token the first time and comments it out afterwards.
func (c *caskWriter) cask(token, path string) {
	s := "cask " + token
	if c.written[token] {
		s = "#" + s
	}
	c.written[token] = true
	if path != "" {
		s += " # " + path
	}
	c.line(s)
}

// caskOnce declares token unless it was already declared.
func (c *caskWriter) caskOnce(token string) {
	if !c.written[token] {
		c.cask(token, "")
	}
}

func hasObsolete(entries []entry) bool {
	for _, e := range entries {
		if e.obsolete {
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
