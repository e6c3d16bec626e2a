package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	bannerStyle = lipgloss.NewStyle().Bold(true)
)

// Console prints user-facing messages gated by a verbosity level.
//
// Levels follow the brew-file convention: 0 prints only errors and
// explicitly forced messages, 1 adds warnings and banners, 2 adds info.
type Console struct {
	out     io.Writer
	verbose int
	color   bool
}

// NewConsole creates a Console writing to out. Color is enabled only when
// out is a terminal and NO_COLOR is unset.
func NewConsole(out io.Writer, verbose int) *Console {
	color := false
	if f, ok := out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{out: out, verbose: verbose, color: color}
}

// Verbose returns the configured verbosity level.
func (c *Console) Verbose() int {
	return c.verbose
}

// Out returns the underlying writer.
func (c *Console) Out() io.Writer {
	return c.out
}

// Print writes text unconditionally.
func (c *Console) Print(text string) {
	fmt.Fprintln(c.out, text)
}

// Info prints text when verbosity is at least level.
func (c *Console) Info(text string, level int) {
	if c.verbose < level {
		return
	}
	fmt.Fprintln(c.out, text)
}

// Warn prints a highlighted warning when verbosity is at least level.
func (c *Console) Warn(text string, level int) {
	c.Info(c.render(warnStyle, text), level)
}

// Err prints a highlighted error when verbosity is at least level.
func (c *Console) Err(text string, level int) {
	c.Info(c.render(errStyle, text), level)
}

// Banner prints text framed by lines of '#' as wide as the longest line.
func (c *Console) Banner(text string, level int) {
	width := 0
	for _, l := range strings.Split(text, "\n") {
		if len(l) > width {
			width = len(l)
		}
	}
	rule := strings.Repeat("#", width)
	c.Info("\n"+c.render(bannerStyle, rule+"\n"+text+"\n"+rule)+"\n", level)
}

// EchoWriter returns the console writer when verbosity is at least level, else nil.
func (c *Console) EchoWriter(level int) io.Writer {
	if c.verbose < level {
		return nil
	}
	return c.out
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}
