// Package cask decides how each installed application bundle got onto the
// machine: by a cask, by a formula, from the App Store, or by hand.
package cask

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/logging"
)

// Recipe is one cask file found in a tap.
type Recipe struct {
	Token string
	Tap   string
	// Listed is set when the cask is in the installed cask list.
	Listed bool
	// Installed is set when a listed cask's declared version is present in
	// the caskroom.
	Installed bool
	// Matched is set once an application bundle was attributed to the cask
	// or to a sibling recipe with the same token.
	Matched bool
	Content string
	// Apps are the candidate bundle names scraped from Content.
	Apps []string
}

var (
	nameClause    = regexp.MustCompile(`^ *name `)
	appClause     = regexp.MustCompile(`^ *app `)
	pkgClause     = regexp.MustCompile(`^ *pkg `)
	versionClause = regexp.MustCompile(`^ *version `)
)

// ScrapeApps returns the bundle names a recipe may install. Each line is
// tried against the name, app, ".app" and pkg clauses in that order; the
// first occurrence of a name wins.
func ScrapeApps(content string) []string {
	var apps []string
	for _, l := range strings.Split(content, "\n") {
		app := ""
		switch {
		case nameClause.MatchString(l):
			app = strings.Trim(nameClause.ReplaceAllString(l, ""), `"' `) + ".app"
		case appClause.MatchString(l):
			app = lastPath(strings.Trim(appClause.ReplaceAllString(l, ""), `"' `))
		case strings.Contains(l, ".app"):
			app = lastPath(strings.SplitN(l, ".app", 2)[0])
			app = afterLast(afterLast(app, "'"), `"`)
		case pkgClause.MatchString(l):
			app = lastPath(strings.Trim(pkgClause.ReplaceAllString(l, ""), `"' `))
			app = strings.ReplaceAll(app, ".pkg", "")
		}
		if app != "" && !contains(apps, app) {
			apps = append(apps, app)
		}
	}
	return apps
}

// versionInstalled reports whether any declared version of the recipe has a
// directory under <caskroom>/<token>.
func versionInstalled(content, caskroom, token string) bool {
	for _, l := range strings.Split(content, "\n") {
		if !versionClause.MatchString(l) {
			continue
		}
		version := strings.Trim(versionClause.ReplaceAllString(l, ""), `"': `)
		if info, err := os.Stat(filepath.Join(caskroom, token, version)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// TapLocator resolves a tap to its local directory.
type TapLocator interface {
	TapPath(tap string) (string, error)
}

// Index holds every cask recipe of the taps that carry a Casks directory.
type Index struct {
	// Taps are the taps with a Casks directory, in the given order.
	Taps []string
	// Installed maps a bundle name to the listed recipe claiming it. A later
	// recipe claiming the same name is ignored.
	Installed map[string]*Recipe
	// NonApp are listed recipes without any bundle name.
	NonApp []*Recipe
	// NotInstalled maps a bundle name to every unlisted recipe claiming it.
	NotInstalled map[string][]*Recipe
	// NonAppNotInstalled are unlisted recipes without any bundle name.
	NonAppNotInstalled []*Recipe

	all []*Recipe
}

// BuildIndex reads the recipes of taps. listed are the installed cask
// tokens; caskroom is where installed cask versions live.
func BuildIndex(taps []string, locator TapLocator, listed []string, caskroom string) (*Index, error) {
	logger := logging.GetLogger("cask")
	idx := &Index{
		Installed:    map[string]*Recipe{},
		NotInstalled: map[string][]*Recipe{},
	}

	for _, t := range taps {
		path, err := locator.TapPath(t)
		if err != nil {
			return nil, fmt.Errorf("failed to locate tap %s: %w", t, err)
		}
		dir := filepath.Join(path, "Casks")
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		idx.Taps = append(idx.Taps, t)

		files, err := recipeFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read casks of %s: %w", t, err)
		}
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read cask %s: %w", f, err)
			}
			r := &Recipe{
				Token:   strings.TrimSuffix(filepath.Base(f), ".rb"),
				Tap:     t,
				Content: string(data),
			}
			r.Listed = contains(listed, r.Token)
			r.Apps = ScrapeApps(r.Content)
			if r.Listed {
				r.Installed = versionInstalled(r.Content, caskroom, r.Token)
			}
			idx.add(r)
		}
		logger.Debug().Str("tap", t).Int("recipes", len(files)).Msg("Indexed casks")
	}
	return idx, nil
}

func (idx *Index) add(r *Recipe) {
	idx.all = append(idx.all, r)
	switch {
	case r.Listed && len(r.Apps) == 0:
		idx.NonApp = append(idx.NonApp, r)
	case r.Listed:
		for _, a := range r.Apps {
			if _, ok := idx.Installed[a]; !ok {
				idx.Installed[a] = r
			}
		}
	case len(r.Apps) == 0:
		idx.NonAppNotInstalled = append(idx.NonAppNotInstalled, r)
	default:
		for _, a := range r.Apps {
			idx.NotInstalled[a] = append(idx.NotInstalled[a], r)
		}
	}
}

// Recipes returns every recipe in discovery order.
func (idx *Index) Recipes() []*Recipe {
	return idx.all
}

// markMatched flags every recipe sharing token.
func (idx *Index) markMatched(token string) {
	for _, r := range idx.all {
		if r.Token == token {
			r.Matched = true
		}
	}
}

// Listed returns the listed recipes of tap, deduplicated, in discovery order.
func (idx *Index) Listed(tap string) []*Recipe {
	var out []*Recipe
	for _, r := range idx.all {
		if r.Tap == tap && r.Listed {
			out = append(out, r)
		}
	}
	return out
}

func recipeFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".rb") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func lastPath(s string) string {
	return afterLast(s, "/")
}

func afterLast(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
