package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/types"
)

var (
	ignoreBegin = regexp.MustCompile(`^# *BREWFILE_IGNORE`)
	ignoreEnd   = regexp.MustCompile(`^# *BREWFILE_ENDIGNORE`)
	appstoreCmd = regexp.MustCompile(`^ *appstore *`)
	gitLine     = regexp.MustCompile(`^ *git `)

	normalizer = strings.NewReplacer("'", "", `"`, "", ",", " ", "[", "", "]", "")
)

// TapContents lists the recipes found in a local tap checkout.
type TapContents struct {
	Formulas []string
	Casks    []string
}

// HasFormula reports whether the tap provides the formula referenced by name.
func (c TapContents) HasFormula(name string) bool {
	return contains(c.Formulas, BaseName(name))
}

// HasCask reports whether the tap provides cask token.
func (c TapContents) HasCask(token string) bool {
	return contains(c.Casks, token)
}

// TapResolver looks up the recipes provided by a tap.
// A tap without a local checkout yields empty contents and no error.
type TapResolver interface {
	TapContents(tap string) (TapContents, error)
}

// Parser reads manifest text into a document's input side.
// Dialect starts as the configured dialect and is updated when a
// line reveals the format of an unclassified manifest.
type Parser struct {
	Dialect types.Dialect
	Taps    TapResolver
	Env     func(string) string
}

// NewParser creates a parser with the given starting dialect.
func NewParser(dialect types.Dialect, taps TapResolver) *Parser {
	return &Parser{Dialect: dialect, Taps: taps, Env: os.Getenv}
}

// ReadFile parses doc.Path into doc.Input. A missing file is not an error:
// it reports found=false and leaves an empty input with only the direct tap.
func (p *Parser) ReadFile(doc *Document) (bool, error) {
	doc.ClearInput()
	doc.Repo = ""

	f, err := os.Open(doc.Path)
	if err != nil {
		doc.Input.Taps = append(doc.Input.Taps, types.DirectTap)
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open %s: %w", doc.Path, err)
	}
	defer f.Close()

	if err := p.Parse(f, doc); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", doc.Path, err)
	}
	return true, nil
}

// Parse reads manifest lines from r into doc.Input.
func (p *Parser) Parse(r io.Reader, doc *Document) error {
	logger := logging.GetLogger("manifest.parse")

	doc.Input.Taps = append(doc.Input.Taps, types.DirectTap)
	in := &doc.Input

	ignoring := false
	first := true
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if ignoreEnd.MatchString(line) {
			ignoring = false
		}
		if ignoreBegin.MatchString(line) {
			ignoring = true
		}
		if ignoring {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		args := p.tokenize(normalizer.Replace(line))
		if len(args) == 0 {
			continue
		}
		isFirst := first
		first = false

		cmd := args[0]
		pkg := ""
		if len(args) > 1 {
			pkg = args[1]
		}

		// "brew tap foo", "brew cask install foo", "brew install foo"
		if len(args) > 2 && isOneOf(pkg, "tap", "cask", "pip", "gem") {
			args = args[1:]
			cmd, pkg = args[0], args[1]
			p.infer(types.DialectCommand)
		}
		if len(args) > 2 && isOneOf(cmd, "brew", "cask", "gem") && pkg == "install" {
			args = append(args[:1], args[2:]...)
			pkg = args[1]
			p.infer(types.DialectCommand)
		}

		opt := ""
		if len(args) > 2 {
			if args[2] == "args:" {
				flags := make([]string, 0, len(args)-3)
				for _, a := range args[3:] {
					flags = append(flags, "--"+a)
				}
				opt = strings.Join(flags, " ")
				p.infer(types.DialectBundle)
			} else {
				opt = strings.Join(args[2:], " ")
			}
		}

		if isOneOf(cmd, "brew", "tap", "tapall", "pip", "gem") && strings.ContainsAny(line, `'"`) {
			p.infer(types.DialectBundle)
		}

		rest := strings.TrimSpace(strings.Join(strings.Fields(line)[1:], " "))

		switch {
		case pkg == "" && (isOneOf(cmd, "brew", "install", "tap", "tapall", "cask", "pip", "gem", "file") || strings.EqualFold(cmd, "brewfile")):
			logger.Warn().Str("line", trimmed).Msg("Missing package name, ignoring")
		case cmd == "brew" || cmd == "install":
			in.Formulas.Set(pkg, opt)
		case cmd == "tap":
			in.Add(types.KindTap, pkg, "")
		case cmd == "tapall":
			in.Add(types.KindTap, pkg, "")
			if err := p.expandTap(in, pkg); err != nil {
				logger.Warn().Err(err).Str("tap", pkg).Msg("Failed to list tap formulas")
			}
		case cmd == "cask":
			in.Add(types.KindCask, pkg, "")
		case cmd == "pip":
			name, version := splitPipVersion(pkg)
			if version != "" && opt == "" {
				opt = version
			}
			in.Pips.Set(name, opt)
		case cmd == "gem":
			in.Gems.Set(pkg, opt)
		case cmd == "appstore":
			app := strings.TrimSpace(appstoreCmd.ReplaceAllString(line, ""))
			app = strings.Trim(strings.Trim(app, "'"), `"`)
			in.Add(types.KindAppStore, app, "")
		case cmd == "file" || strings.EqualFold(cmd, "brewfile"):
			in.Add(types.KindFile, pkg, "")
		case cmd == "before":
			in.Before = append(in.Before, rest)
		case cmd == "after":
			in.After = append(in.After, rest)
		case cmd == "git" && isFirst && pkg != "":
			doc.Repo = pkg
		default:
			in.Commands = append(in.Commands, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	p.infer(types.DialectPlain)
	return nil
}

// tokenize splits a normalized line into words, expanding environment variables.
// Lines the shell lexer rejects fall back to whitespace splitting.
func (p *Parser) tokenize(line string) []string {
	env := p.Env
	if env == nil {
		env = os.Getenv
	}
	fields, err := shell.Fields(line, env)
	if err != nil {
		return strings.Fields(line)
	}
	return fields
}

func (p *Parser) infer(d types.Dialect) {
	if !p.Dialect.IsResolved() {
		p.Dialect = d
	}
}

func (p *Parser) expandTap(in *Declarations, tap string) error {
	if p.Taps == nil {
		return nil
	}
	contents, err := p.Taps.TapContents(tap)
	if err != nil {
		return err
	}
	for _, f := range contents.Formulas {
		in.Formulas.Set(f, "")
	}
	return nil
}

// splitPipVersion splits "name=version" as written for pinned pip packages.
func splitPipVersion(pkg string) (string, string) {
	name, version, found := strings.Cut(pkg, "=")
	if !found {
		return pkg, ""
	}
	return name, strings.TrimLeft(version, "=")
}

// RepoPointer returns the repository named by the first "git" line of path.
func RepoPointer(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !gitLine.MatchString(line) {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 1 {
			return fields[1], nil
		}
	}
	return "", scanner.Err()
}

func isOneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
