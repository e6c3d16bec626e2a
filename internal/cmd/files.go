package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/output"
)

// runAttached runs a command on the terminal; tests replace it.
var runAttached = func(name string, args ...string) error {
	logging.LogCommand(name, args)
	c := exec.Command(name, args...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the Brewfile and its included files",
		Long:  `Edit opens the Brewfile and every file it includes in $EDITOR (default: vim).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			files, err := svc.Files()
			if err != nil {
				return err
			}
			return svc.Edit(files)
		},
	}
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat",
		Short: "Print the Brewfile and its included files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			files, err := svc.Files()
			if err != nil {
				return err
			}
			return catFiles(cmd.OutOrStdout(), files)
		},
	}
}

func newGetFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get_files",
		Aliases: []string{"get-files"},
		Short:   "Print the paths of the Brewfile and its included files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setupWithManifest(cmd)
			if err != nil {
				return err
			}
			files, err := svc.Files()
			if err != nil {
				return err
			}
			w, err := writer(cmd)
			if err != nil {
				return err
			}
			if w.Format() == output.FormatText {
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}
			return w.Write(map[string][]string{"files": files})
		},
	}
}

// Edit opens files in the configured editor. The editor setting is split
// like a shell word list, so "code -w" works.
func (s *Service) Edit(files []string) error {
	editor, err := shell.Fields(s.settings.Editor, nil)
	if err != nil {
		return bferrors.Wrapf(err, bferrors.ErrInvalidInput, "invalid editor %q", s.settings.Editor)
	}
	if len(editor) == 0 {
		return bferrors.New(bferrors.ErrInvalidInput, "no editor is set")
	}
	return runAttached(editor[0], append(editor[1:], files...)...)
}

func catFiles(out io.Writer, files []string) error {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return nil
}
