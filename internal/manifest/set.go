package manifest

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/types"
)

// Set is a primary document plus the documents it includes through "file"
// directives, in depth-first directive order.
type Set struct {
	Primary  *Document
	Includes []*Document
}

// NewSet creates a set with an empty primary document for path.
func NewSet(path string) *Set {
	return &Set{Primary: New(path)}
}

// Load reads the primary document at path and every document it includes.
// An include that re-enters the current chain is an include cycle error;
// a file already loaded through another branch is skipped.
func Load(path string, parser *Parser) (*Set, error) {
	s := NewSet(path)
	if err := s.Reload(parser); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the primary document and rebuilds the includes.
func (s *Set) Reload(parser *Parser) error {
	s.Includes = nil
	loaded := map[string]bool{}
	return s.read(s.Primary, parser, nil, loaded)
}

func (s *Set) read(doc *Document, parser *Parser, chain []string, loaded map[string]bool) error {
	logger := logging.GetLogger("manifest.set")

	abs := cleanAbs(doc.Path)
	loaded[abs] = true
	chain = append(chain, abs)

	found, err := parser.ReadFile(doc)
	if err != nil {
		return err
	}
	if !found {
		logger.Debug().Str("path", doc.Path).Msg("Manifest not found, treating as empty")
	}

	for _, f := range doc.Input.Files {
		path := ResolveInclude(doc.Dir(), f)
		abs := cleanAbs(path)
		if containsPath(chain, abs) {
			return errors.Newf(errors.ErrIncludeCycle, "include cycle: %s -> %s", strings.Join(chain, " -> "), abs).
				WithDetail("path", abs)
		}
		if loaded[abs] {
			logger.Warn().Str("path", path).Str("from", doc.Path).Msg("File is included more than once, skipping")
			continue
		}
		inc := New(path)
		s.Includes = append(s.Includes, inc)
		if err := s.read(inc, parser, chain, loaded); err != nil {
			return err
		}
	}
	return nil
}

// ResolveInclude expands "~" and environment variables in ref and makes it
// relative to dir when it is not absolute.
func ResolveInclude(dir, ref string) string {
	ref = os.ExpandEnv(ref)
	if ref == "~" || strings.HasPrefix(ref, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			ref = filepath.Join(home, strings.TrimPrefix(ref, "~"))
		}
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

// Documents returns the primary document followed by the includes.
func (s *Set) Documents() []*Document {
	return append([]*Document{s.Primary}, s.Includes...)
}

// Files returns the paths of all documents, primary first.
func (s *Set) Files() []string {
	docs := s.Documents()
	files := make([]string, 0, len(docs))
	for _, d := range docs {
		files = append(files, d.Path)
	}
	return files
}

// Get concatenates the names of kind on side across all documents.
// Duplicates are kept.
func (s *Set) Get(kind types.Kind, side Side) []string {
	var out []string
	for _, d := range s.Documents() {
		out = append(out, d.Names(kind, side)...)
	}
	return out
}

// Commands concatenates before, catch-all, or after commands across documents.
func (s *Set) Commands(pick func(*Declarations) []string) []string {
	var out []string
	for _, d := range s.Documents() {
		out = append(out, pick(&d.Input)...)
	}
	return out
}

// Options merges the options of kind on side; later documents override earlier ones.
func (s *Set) Options(kind types.Kind, side Side) map[string]string {
	out := map[string]string{}
	for _, d := range s.Documents() {
		for k, v := range d.Side(side).Options(kind) {
			out[k] = v
		}
	}
	return out
}

// Has reports whether any document has name for kind on side.
func (s *Set) Has(kind types.Kind, side Side, name string) bool {
	for _, d := range s.Documents() {
		if d.Has(kind, side, name) {
			return true
		}
	}
	return false
}

// Find returns the declared name matching ref exactly or by formula base name.
func (s *Set) Find(kind types.Kind, side Side, ref string) (string, bool) {
	for _, name := range s.Get(kind, side) {
		if name == ref || BaseName(name) == BaseName(ref) {
			return name, true
		}
	}
	return "", false
}

// Remove deletes name from the first document that has it.
func (s *Set) Remove(kind types.Kind, side Side, name string) bool {
	for _, d := range s.Documents() {
		if d.Remove(kind, side, name) {
			return true
		}
	}
	return false
}

// Declare adds name to the primary input if no document declares it yet.
func (s *Set) Declare(kind types.Kind, name, options string) bool {
	if s.Has(kind, SideInput, name) {
		return false
	}
	return s.Primary.Input.Add(kind, name, options)
}

// InputToList copies input to list for the includes and, unless
// includesOnly is set, for the primary document.
func (s *Set) InputToList(includesOnly bool) {
	if !includesOnly {
		s.Primary.InputToList()
	}
	for _, d := range s.Includes {
		d.InputToList()
	}
}

// dedupeKinds are reconciled between the primary list and include inputs. Taps
// always stay in the primary document.
var dedupeKinds = []types.Kind{types.KindFormula, types.KindCask, types.KindPip, types.KindGem, types.KindAppStore}

// Dedupe prepares an initialization write. The primary list must hold the
// installed snapshot. Include inputs that are no longer installed are dropped,
// each include's input becomes its list, and anything an include declares is
// removed from the primary list so every item is written exactly once.
func (s *Set) Dedupe() {
	installed := &s.Primary.List
	for _, d := range s.Includes {
		for _, k := range append([]types.Kind{types.KindTap}, dedupeKinds...) {
			for _, p := range d.Input.Names(k) {
				if !installed.Has(k, p) && !(k == types.KindCask && contains(installed.CaskNoCask, p)) {
					d.Input.Remove(k, p)
				}
			}
		}
	}

	s.InputToList(true)

	for _, k := range dedupeKinds {
		for _, p := range installed.Names(k) {
			if s.includeDeclares(k, p) {
				installed.Remove(k, p)
			}
		}
	}
	kept := installed.CaskNoCask[:0]
	for _, c := range installed.CaskNoCask {
		if !s.includeDeclares(types.KindCask, c) {
			kept = append(kept, c)
		}
	}
	installed.CaskNoCask = kept

	for _, f := range s.Primary.Input.Files {
		installed.Add(types.KindFile, f, "")
	}
}

func (s *Set) includeDeclares(kind types.Kind, name string) bool {
	for _, d := range s.Includes {
		if d.Input.Has(kind, name) {
			return true
		}
	}
	return false
}

// Write renders every document. banner is called before each write.
func (s *Set) Write(opts RenderOptions, console io.Writer, banner func(path string)) error {
	for _, d := range s.Documents() {
		if banner != nil {
			banner(d.Path)
		}
		if err := d.Write(opts, console); err != nil {
			return err
		}
	}
	return nil
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}

func containsPath(chain []string, p string) bool {
	for _, c := range chain {
		if c == p {
			return true
		}
	}
	return false
}
