package cmd

import (
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Aliases: []string{"dump"},
		Short:   "Write the Brewfile from installed packages",
		Long: `Init writes the Brewfile from the packages that are installed now.

An existing Brewfile is moved to the backup file when one is set (-b), or
overwritten after confirmation. Packages declared in included files stay in
those files. A copy of the previous Brewfile is kept; see brew-file backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := svc.ResolveRepo(); err != nil {
				return err
			}
			return svc.Initialize(true, true)
		},
	}
}

func newSetRepoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set_repo [repository]",
		Aliases: []string{"set-repo"},
		Short:   "Keep the Brewfile in a git repository",
		Long: `Set_repo points the Brewfile at a git repository. The repository is given
as an argument, with -r, or asked for: use <user>/<repo> for GitHub or a full
git URL for other hosts. "non" or an empty answer keeps a local Brewfile.

The repository is cloned next to the Brewfile and initialized with a README
and an empty Brewfile when it has no branch yet.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			repo := svc.settings.Repo
			if len(args) == 1 {
				repo = args[0]
			}
			return svc.SetRepo(repo)
		},
	}
}

func newSetLocalCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set_local",
		Aliases: []string{"set-local"},
		Short:   "Use a local Brewfile",
		Long:    `Set_local replaces a repository pointer with a local Brewfile written from the installed packages.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			return svc.SetLocal()
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Update the Brewfile repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := svc.ResolveRepo(); err != nil {
				return err
			}
			return svc.Pull()
		},
	}
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Commit and push the Brewfile repository",
		Long: `Push commits every change in the Brewfile repository and pushes it. The
repository must use the git protocol (git@...) and git needs a user name and
email.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := svc.ResolveRepo(); err != nil {
				return err
			}
			return svc.Push()
		},
	}
}
