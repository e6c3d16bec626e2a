package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List commands, aliases and options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), listCommands(cmd.Root()))
			return nil
		},
	}
}

// listCommands renders the command names, their aliases and the global
// options on three lines, for shell completion scripts.
func listCommands(root *cobra.Command) string {
	var names, aliases, options []string
	for _, c := range root.Commands() {
		// cobra adds its help command on execution
		if c.Hidden || c.Name() == "help" {
			continue
		}
		names = append(names, c.Name())
		aliases = append(aliases, c.Aliases...)
	}
	names = append(names, "help")

	root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Shorthand != "" {
			options = append(options, "-"+f.Shorthand)
		}
		options = append(options, "--"+f.Name)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "commands: %s\n", strings.Join(names, " "))
	fmt.Fprintf(&b, "other aliases: %s\n", strings.Join(aliases, " "))
	fmt.Fprintf(&b, "options: %s\n", strings.Join(options, " "))
	return b.String()
}
