package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if _, err := app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{TaskID: id}); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d deleted.\n", id)
		return nil
	},
}
