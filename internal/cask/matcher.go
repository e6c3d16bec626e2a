package cask

import (
	"path/filepath"
	"strings"

	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/state"
	"github.com/adamancini/brewfile/internal/types"
)

// TokenProposer runs the cask naming helper for an application bundle.
type TokenProposer interface {
	ProposeCaskToken(app string) ([]string, error)
}

// Candidate is a cask that may provide an application.
type Candidate struct {
	Token string
	Tap   string
}

// Match is the attribution of one application bundle.
type Match struct {
	Dir         string
	Path        string
	Attribution types.Attribution
	// Name is the cask token, formula name or App Store line.
	Name string
	Tap  string
	// Installed is set when the bundle came from the attributed cask.
	Installed bool
	// Options are the install options of a formula attribution.
	Options string
	// Candidates are the casks that could replace a direct install.
	Candidates []Candidate
}

// Matcher attributes application bundles.
type Matcher struct {
	Index    *Index
	AppStore AppStoreIndex
	Namer    TokenProposer
	// Formulas is the installed formula snapshot used to find bundles
	// shipped by formulas.
	Formulas *state.Snapshot
}

// Attribute decides where the bundle in dir came from. The App Store wins
// over a recipe naming the bundle, which wins over the naming helper and
// recipe content, which win over an installed formula of the same name.
func (m *Matcher) Attribute(dir, bundle string) Match {
	logger := logging.GetLogger("cask")
	match := Match{Dir: dir, Path: filepath.Join(dir, bundle), Attribution: types.AttributionNoCask}
	name := strings.TrimSuffix(bundle, ".app")

	if app, ok := m.AppStore[name]; ok {
		match.Attribution = types.AttributionAppStore
		match.Tap = "appstore"
		if app.ID != "" {
			match.Name = m.AppStore.Line(name)
		}
		return match
	}

	key := bundle
	if _, ok := m.Index.Installed[key]; !ok {
		key = strings.SplitN(bundle, ".", 2)[0]
	}
	if r, ok := m.Index.Installed[key]; ok {
		m.Index.markMatched(r.Token)
		match.Name = r.Token
		match.Tap = r.Tap
		match.Installed = true
		match.Attribution = types.AttributionCask
		if !r.Installed {
			match.Attribution = types.AttributionCaskObsolete
		}
		return match
	}

	find := bundle
	if !strings.HasSuffix(bundle, ".app") {
		find = match.Path
	}
	candidates, installed := m.findApp(find)
	for _, c := range candidates {
		m.Index.markMatched(c.Token)
	}
	if len(candidates) > 1 {
		logger.Info().Str("app", bundle).Int("candidates", len(candidates)).Msg("Several casks may provide the application")
	}

	switch {
	case installed:
		match.Attribution = types.AttributionCask
		match.Installed = true
		match.Name = candidates[0].Token
		match.Tap = candidates[0].Tap
		return match
	case len(candidates) == 0:
		logger.Debug().Str("app", bundle).Msg("Non Cask app")
		return match
	}

	for _, c := range candidates {
		if m.Formulas == nil || !m.Formulas.Installed(c.Token) {
			continue
		}
		meta := m.Formulas.Info[c.Token]
		match.Attribution = types.AttributionBrew
		match.Name = c.Token
		match.Options = meta.Options()
		if parts := strings.Split(meta.FullName, "/"); len(parts) == 3 {
			match.Tap = parts[0] + "/" + parts[1]
		}
		return match
	}

	logger.Debug().Str("app", bundle).Msg("Installed directly instead of by Cask")
	match.Attribution = types.AttributionHasCask
	match.Candidates = candidates
	return match
}

// findApp proposes casks for app. The naming helper's proposal only counts
// when it collides with a recipe in a known tap; recipes whose content names
// the bundle are added after it. installed is set when one of the proposals
// is an installed cask.
func (m *Matcher) findApp(app string) ([]Candidate, bool) {
	var names, taps []string

	if m.Namer != nil {
		lines, err := m.Namer.ProposeCaskToken(app)
		if err != nil {
			logger := logging.GetLogger("cask")
			logger.Debug().Err(err).Str("app", app).Msg("Cask naming helper failed")
		}
		for _, l := range lines {
			if strings.Contains(l, "Proposed token") {
				if f := strings.Fields(l); len(f) > 2 {
					names = append(names, f[2])
				}
			}
			if strings.Contains(l, "already exists") {
				if t, ok := m.collisionTap(l); ok {
					taps = append(taps, t)
				}
			}
		}
		if len(taps) == 0 {
			names = nil
		}
	}

	recipes := m.Index.Recipes()
	if len(names) > 0 {
		for _, r := range recipes {
			if r.Token == names[0] && r.Installed {
				return pair(names, taps), true
			}
		}
	}
	for _, r := range recipes {
		if !contains(r.Apps, app) {
			continue
		}
		if r.Installed {
			return []Candidate{{Token: r.Token, Tap: r.Tap}}, true
		}
		if !contains(names, r.Token) {
			names = append(names, r.Token)
			taps = append(taps, r.Tap)
		}
	}
	return pair(names, taps), false
}

// collisionTap finds the tap named inside the quotes of an "already exists"
// message, as owner/homebrew-repo.
func (m *Matcher) collisionTap(line string) (string, bool) {
	parts := strings.Split(line, "'")
	for i := 1; i < len(parts); i += 2 {
		for _, t := range m.Index.Taps {
			owner, repo, ok := strings.Cut(t, "/")
			if ok && strings.Contains(parts[i], owner+"/homebrew-"+repo) {
				return t, true
			}
		}
	}
	return "", false
}

func pair(names, taps []string) []Candidate {
	n := len(names)
	if len(taps) < n {
		n = len(taps)
	}
	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Candidate{Token: names[i], Tap: taps[i]})
	}
	return out
}
