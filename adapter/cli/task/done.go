package task

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	Short:   "Mark a task as complete",
	Aliases: []string{"complete", "finish", "x"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		result, err := app.CompleteTaskHandler.Handle(cmd.Context(), commands.CompleteTaskCommand{TaskID: id})
		if errors.Is(err, task.ErrTaskAlreadyComplete) {
			fmt.Fprintf(out, "Task #%d is already done.\n", id)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		fmt.Fprintf(out, "Task completed: %s\n", result.Task.Title)
		return nil
	},
}
