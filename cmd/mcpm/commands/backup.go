package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	backupListTarget    target
	backupRestoreTarget target
)

func init() {
	backupListTarget.register(backupListCmd, false)
	backupRestoreTarget.register(backupRestoreCmd, true)
	backupCmd.AddCommand(backupListCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore config backups",
	Long: `mcpm copies an editor's config file into a backup before every write.
The newest backups are kept according to backup.retention.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List backups, newest first",
	Example: `  mcpm backup list -e cursor`,
	Args:    cobra.NoArgs,
	RunE:    runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a backup over the current config file",
	Long: `Restore a backup, overwriting the current config file. The backup is
checked against its recorded SHA-256 first and a damaged copy is refused.`,
	Example: `  mcpm backup restore 20260123T100712.000000 -e cursor`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBackupRestore,
}

func backupsEnabled(a *app) error {
	if a.backups == nil {
		return errors.NewUserError(errors.New("backups are disabled"), "Set backup.enabled: true in the config")
	}
	return nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	a := newApp(cmd)
	if err := backupsEnabled(a); err != nil {
		return err
	}
	filter, _, err := backupListTarget.filter()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EDITOR\tID\tCREATED\tFILE")
	found := false
	for _, e := range mcp.AllEditors() {
		if filter != "" && e != filter {
			continue
		}
		list, err := a.backups.List(e)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				continue
			}
			return err
		}
		for _, m := range list {
			found = true
			file := ""
			if len(m.Files) > 0 {
				file = m.Files[0].OriginalPath
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e, m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04:05"), file)
		}
	}
	if !found {
		fmt.Fprintln(w, "No backups found")
		return nil
	}
	return tw.Flush()
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	if err := backupsEnabled(a); err != nil {
		return err
	}
	editorID, _, err := backupRestoreTarget.filter()
	if err != nil {
		return err
	}

	if err := a.backups.Restore(editorID, args[0]); err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "Run 'mcpm backup list' to see available backups")
		}
		if errors.Is(err, backup.ErrBackupCorrupted) {
			return errors.NewUserError(err, "Pick an older backup")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s backup %s\n", editorID, args[0])
	return nil
}
