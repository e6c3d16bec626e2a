package brew

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InstalledVersion is one keg of an installed formula.
type InstalledVersion struct {
	Version     string   `json:"version"`
	UsedOptions []string `json:"used_options"`
	// InstalledOnRequest is nil when Homebrew did not record it.
	InstalledOnRequest *bool `json:"installed_on_request"`
}

// Versions are the versions a formula can be built at.
type Versions struct {
	Stable string  `json:"stable"`
	Head   *string `json:"head"`
	Devel  *string `json:"devel"`
}

// FormulaMetadata is one entry of `brew info --json=v1`.
type FormulaMetadata struct {
	Name         string             `json:"name"`
	FullName     string             `json:"full_name"`
	LinkedKeg    *string            `json:"linked_keg"`
	Installed    []InstalledVersion `json:"installed"`
	Versions     Versions           `json:"versions"`
	Dependencies []string           `json:"dependencies"`

	// OptVersion is the version the opt symlink points at, used for unlinked kegs.
	OptVersion string `json:"-"`
}

// ParseFormulaInfo decodes `brew info --json=v1` output keyed by formula name.
func ParseFormulaInfo(data []byte) (map[string]FormulaMetadata, error) {
	var list []FormulaMetadata
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse formula info: %w", err)
	}
	info := make(map[string]FormulaMetadata, len(list))
	for _, m := range list {
		info[m.Name] = m
	}
	return info, nil
}

// Current returns the keg in use: the linked keg, else the opt symlink
// target, else the first installed keg.
func (m FormulaMetadata) Current() (InstalledVersion, bool) {
	version := m.OptVersion
	if m.LinkedKeg != nil {
		version = *m.LinkedKeg
	}
	if version != "" {
		for _, i := range m.Installed {
			if i.Version == version {
				return i, true
			}
		}
		return InstalledVersion{}, false
	}
	if len(m.Installed) == 0 {
		return InstalledVersion{}, false
	}
	return m.Installed[0], true
}

// Options reconstructs the install options of the current keg: the used
// options, plus --HEAD or --devel when the keg is that version.
func (m FormulaMetadata) Options() string {
	cur, ok := m.Current()
	if !ok {
		return ""
	}
	opts := append([]string(nil), cur.UsedOptions...)
	if m.Versions.Head != nil && cur.Version == *m.Versions.Head {
		opts = append(opts, "--HEAD")
	}
	if m.Versions.Devel != nil && cur.Version == *m.Versions.Devel {
		opts = append(opts, "--devel")
	}
	return strings.Join(opts, " ")
}

// OnRequest reports whether the current keg was installed on request.
// Unknown counts as requested.
func (m FormulaMetadata) OnRequest() bool {
	cur, ok := m.Current()
	if !ok {
		return true
	}
	return cur.InstalledOnRequest == nil || *cur.InstalledOnRequest
}

// NotOnRequest reports whether Homebrew explicitly recorded the current keg as
// a dependency install.
func (m FormulaMetadata) NotOnRequest() bool {
	cur, ok := m.Current()
	return ok && cur.InstalledOnRequest != nil && !*cur.InstalledOnRequest
}
