package diff

import (
	"fmt"
	"strings"

	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Command represents a CLI command to reconcile state.
type Command struct {
	Command     string `json:"command" yaml:"command"`
	Description string `json:"description" yaml:"description"`
}

// GenerateCommands generates CLI commands for the plan.
// Returns commands in the order they should be executed.
func (p *Plan) GenerateCommands() []Command {
	var commands []Command

	for _, a := range p.Actions {
		switch a.Op {
		case OpRun:
			commands = append(commands, Command{
				Command:     a.Name,
				Description: fmt.Sprintf("Run %s command", a.Reason),
			})

		case OpTap:
			commands = append(commands, Command{
				Command:     "brew tap " + a.Name,
				Description: fmt.Sprintf("Add tap: %s", a.Name),
			})

		case OpUntap:
			commands = append(commands, Command{
				Command:     "brew untap " + a.Name,
				Description: fmt.Sprintf("Remove tap not in Brewfile: %s", a.Name),
			})

		case OpInstall:
			commands = append(commands, Command{
				Command:     installCommand(a),
				Description: fmt.Sprintf("Install %s: %s", a.Kind, a.Name),
			})

		case OpReinstall:
			commands = append(commands, Command{
				Command:     join("brew reinstall", a.Name, a.Options),
				Description: fmt.Sprintf("Reinstall %s with new options (%s)", a.Name, a.Reason),
			})

		case OpUninstall:
			for _, c := range uninstallCommands(a) {
				commands = append(commands, Command{
					Command:     c,
					Description: fmt.Sprintf("Remove %s not in Brewfile: %s", a.Kind, a.Name),
				})
			}

		case OpCleanup:
			commands = append(commands,
				Command{Command: "brew cleanup --force", Description: "Clean up cache"},
				Command{Command: "rm -rf " + a.Name, Description: "Remove cache directory"},
			)
		}
	}

	return commands
}

// Commands returns the shell commands equivalent to the action.
func (a Action) Commands() []string {
	var out []string
	for _, c := range (&Plan{Actions: []Action{a}}).GenerateCommands() {
		out = append(out, c.Command)
	}
	return out
}

func installCommand(a Action) string {
	switch a.Kind {
	case types.KindTap:
		return "brew tap " + a.Name
	case types.KindCask:
		return "brew install --cask " + a.Name
	case types.KindPip:
		if v := strings.Fields(a.Options); len(v) == 1 && !strings.HasPrefix(v[0], "-") {
			return "brew pip " + a.Name + "==" + v[0]
		}
		return join("brew pip", a.Name, a.Options)
	case types.KindGem:
		return join("brew gem install", a.Name, a.Options)
	case types.KindAppStore:
		id, name := manifest.SplitAppStore(a.Name)
		if id == "" {
			return "# Install " + name + " manually from the App Store"
		}
		return "mas install " + id
	default:
		return join("brew install", a.Name, a.Options)
	}
}

func uninstallCommands(a Action) []string {
	switch a.Kind {
	case types.KindCask:
		return []string{"brew uninstall --cask " + a.Name}
	case types.KindPip:
		return []string{"brew uninstall --ignore-dependencies " + types.PipPrefix + a.Name}
	case types.KindGem:
		return []string{"brew uninstall --ignore-dependencies " + types.GemPrefix + a.Name}
	case types.KindAppStore:
		var out []string
		for _, p := range a.Paths {
			out = append(out, fmt.Sprintf("sudo rm -rf '%s'", p))
		}
		return out
	default:
		if a.IgnoreDeps {
			return []string{"brew uninstall --ignore-dependencies " + a.Name}
		}
		return []string{"brew uninstall " + a.Name}
	}
}

func join(cmd, name, options string) string {
	return strings.Join(append([]string{cmd, name}, strings.Fields(options)...), " ")
}

// FormatCommands formats commands for shell execution.
func FormatCommands(commands []Command, includeComments bool) string {
	var output strings.Builder

	for _, cmd := range commands {
		if includeComments {
			output.WriteString(fmt.Sprintf("# %s\n", cmd.Description))
		}
		output.WriteString(fmt.Sprintf("%s\n", cmd.Command))
		if includeComments {
			output.WriteString("\n")
		}
	}

	return output.String()
}
