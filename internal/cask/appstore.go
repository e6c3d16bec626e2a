package cask

import (
	"strings"

	"github.com/adamancini/brewfile/internal/manifest"
)

// AppStoreApp is one installed App Store application.
type AppStoreApp struct {
	ID      string
	Version string
}

// AppStoreIndex maps an application name to its App Store entry.
type AppStoreIndex map[string]AppStoreApp

// ParseAppStoreLine splits "<id> <name> (<version>)". A line without a
// leading numeric id keeps the whole text as the name.
func ParseAppStoreLine(line string) (string, AppStoreApp, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "No installed apps") {
		return "", AppStoreApp{}, false
	}
	id, name := manifest.SplitAppStore(line)
	app := AppStoreApp{ID: id}
	if i := strings.Index(name, "("); i >= 0 {
		app.Version = strings.TrimSpace(name[i:])
		name = name[:i]
	}
	return strings.TrimSpace(name), app, true
}

// NewAppStoreIndex builds the index from App Store listing lines.
func NewAppStoreIndex(lines []string) AppStoreIndex {
	idx := AppStoreIndex{}
	for _, l := range lines {
		if name, app, ok := ParseAppStoreLine(l); ok {
			idx[name] = app
		}
	}
	return idx
}

// Line renders the manifest line for name, or "" when the id is unknown.
func (idx AppStoreIndex) Line(name string) string {
	app, ok := idx[name]
	if !ok || app.ID == "" {
		return ""
	}
	return strings.TrimSpace(app.ID + " " + name + " " + app.Version)
}
