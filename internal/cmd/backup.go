package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adamancini/brewfile/internal/backup"
	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/output"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Keep and restore copies of the Brewfile",
		Long: `Backup manages copies of the Brewfile.

A copy is kept automatically every time brew-file rewrites the Brewfile. Copies
are stored in ~/.cache/brewfile/backups/ and the most recent 20 are kept.

Use 'brew-file backup restore latest' to bring back the previous Brewfile.`,
	}

	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	cmd.AddCommand(newBackupDeleteCmd())
	cmd.AddCommand(newBackupPruneCmd())

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Keep a copy of the Brewfile now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := backupService(cmd)
			if err != nil {
				return err
			}
			bak, err := svc.backups.Create(svc.input, note)
			if err != nil {
				return err
			}

			w, err := writer(cmd)
			if err != nil {
				return err
			}
			if w.Format() != output.FormatText {
				return w.Write(bak)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup created: %s\n", bak.ID)
			if note != "" {
				fmt.Fprintf(out, "Note: %s\n", note)
			}
			fmt.Fprintf(out, "Location: %s\n", filepath.Join(svc.backups.BackupDir(), bak.ID+".yaml"))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Add a note to describe this backup")

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups",
		Long:  `List displays all available backups with their creation time, source, notes, and size.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			return runBackupList(cmd, svc.backups)
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a Brewfile from a backup",
		Long: `Restore writes a kept copy back to the file it was taken from, or to --to.

Use 'latest' as the ID to restore the most recent backup. The current file is
kept as a new backup first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			return svc.Restore(args[0], dest)
		},
	}

	cmd.Flags().StringVar(&dest, "to", "", "Write the backup to this path instead of its source")

	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a backup",
		Long:  `Delete removes a backup by its ID.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := svc.backups.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted backup: %s\n", args[0])
			return nil
		},
	}
}

func newBackupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old backups",
		Long: `Prune deletes old backups, keeping only the most recent N backups.

By default, keeps the 20 most recent backups.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			return runBackupPrune(cmd, svc.backups, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", backup.DefaultKeepCount, "Number of backups to keep")

	return cmd
}

// backupService resolves the manifest in use, following a repository pointer.
func backupService(cmd *cobra.Command) (*Service, error) {
	svc, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if err := svc.ResolveRepo(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Restore writes backup id to dest, or to the path it was taken from,
// after confirmation. The file being replaced is kept first.
func (s *Service) Restore(id, dest string) error {
	bak, err := s.backups.Get(id)
	if err != nil {
		return err
	}
	target := dest
	if target == "" {
		target = bak.Source
	}

	s.console.Print(fmt.Sprintf("Restoring backup %s (%s) to %s", bak.ID, bak.CreatedAt.Format("2006-01-02 15:04:05"), target))
	if bak.Note != "" {
		s.console.Print("Note: " + bak.Note)
	}
	if isFile(target) && !s.prompter.AskYN("Do you want to overwrite it?") {
		return bferrors.New(bferrors.ErrInvalidInput, "restore cancelled")
	}
	if isFile(target) {
		if _, err := s.backups.Create(target, "before restore of "+bak.ID); err != nil {
			return err
		}
	}

	path, err := s.backups.Restore(bak.ID, dest)
	if err != nil {
		return err
	}
	s.console.Info("Restored "+path, 1)
	return nil
}

// runBackupList lists all backups.
func runBackupList(cmd *cobra.Command, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return err
	}

	w, err := writer(cmd)
	if err != nil {
		return err
	}
	if w.Format() != output.FormatText {
		return w.Write(backups)
	}

	out := cmd.OutOrStdout()
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups found.")
		fmt.Fprintf(out, "Backup directory: %s\n", manager.BackupDir())
		return nil
	}

	fmt.Fprintf(out, "Backups stored in %s:\n\n", manager.BackupDir())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCreated\tSource\tNote\tSize")
	for _, b := range backups {
		note := b.Note
		if note == "" {
			note = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ID,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.Source,
			note,
			formatSize(b.Size),
		)
	}
	return tw.Flush()
}

// runBackupPrune removes old backups.
func runBackupPrune(cmd *cobra.Command, manager *backup.Manager, keep int) error {
	result, err := manager.Prune(keep)
	if err != nil {
		return err
	}

	w, err := writer(cmd)
	if err != nil {
		return err
	}
	if w.Format() != output.FormatText {
		return w.Write(result)
	}

	out := cmd.OutOrStdout()
	if len(result.Deleted) == 0 {
		fmt.Fprintf(out, "No backups to prune (keeping %d).\n", keep)
		return nil
	}
	fmt.Fprintf(out, "Pruned %d backup(s), kept %d:\n", len(result.Deleted), result.Kept)
	for _, b := range result.Deleted {
		fmt.Fprintf(out, "  - %s\n", b.ID)
	}
	return nil
}

// formatSize formats a byte size in human-readable format.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
