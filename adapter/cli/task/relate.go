package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

var relateCmd = &cobra.Command{
	Use:   "relate <id> <kind> <other>",
	Short: "Add a relation between two tasks",
	Long: `Add a relation between two tasks. Vikunja stores the inverse edge too.

Kinds: blocking, blocked, subtask, parenttask, related, duplicateof,
duplicates, precedes, follows, copiedfrom, copiedto.

Examples:
  vikunja-ai task relate 4 blocking 7   # 7 cannot start before 4 is done`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelate(cmd, args, false)
	},
}

var unrelateCmd = &cobra.Command{
	Use:   "unrelate <id> <kind> <other>",
	Short: "Remove a relation between two tasks",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelate(cmd, args, true)
	},
}

func runRelate(cmd *cobra.Command, args []string, remove bool) error {
	app := cli.GetApp()
	if app == nil || app.RelateTasksHandler == nil {
		return cli.ErrNotInitialized
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	other, err := parseTaskID(args[2])
	if err != nil {
		return err
	}

	result, err := app.RelateTasksHandler.Handle(cmd.Context(), commands.RelateTasksCommand{
		TaskID:      id,
		OtherTaskID: other,
		Kind:        args[1],
		Remove:      remove,
	})
	if err != nil {
		return fmt.Errorf("failed to change relation: %w", err)
	}

	verb := "now"
	if result.Removed {
		verb = "no longer"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "#%d is %s %s #%d\n", result.TaskID, verb, result.Kind, result.OtherTaskID)
	return nil
}
