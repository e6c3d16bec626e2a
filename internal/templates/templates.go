// Package templates provides the embedded text written by brew-file:
// the command-script bootstrap preamble and the repository README.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed *.tmpl
var templatesFS embed.FS

// HomebrewInstallURL is the official Homebrew installer script.
const HomebrewInstallURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// Render executes the named template with data.
func Render(name string, data interface{}) (string, error) {
	content, err := templatesFS.ReadFile(name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("template '%s' not found: %w", name, err)
	}
	t, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.String(), nil
}

// Bootstrap returns the command-script preamble.
func Bootstrap() (string, error) {
	return Render("bootstrap", struct{ InstallURL string }{HomebrewInstallURL})
}

// Readme returns the README for repository repo.
func Readme(repo string) (string, error) {
	return Render("readme", struct{ Repo string }{repo})
}
