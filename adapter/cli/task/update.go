package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    string
	updateDue         string
	updateStart       string
	updateClearDue    bool
	updateClearStart  bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a task",
	Long: `Change one or more fields of a task. Only the flags you pass are sent.

Examples:
  vikunja-ai task update 12 --priority urgent
  vikunja-ai task update 12 --due 2026-06-10T17:00:00Z
  vikunja-ai task update 12 --clear-due`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateTaskCommand{
			TaskID:         id,
			ClearDueDate:   updateClearDue,
			ClearStartDate: updateClearStart,
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			update.Title = &updateTitle
		}
		if flags.Changed("description") {
			update.Description = &updateDescription
		}
		if flags.Changed("priority") {
			update.Priority = &updatePriority
		}
		if update.DueDate, err = optionalDate(updateDue); err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		if update.StartDate, err = optionalDate(updateStart); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}

		result, err := app.UpdateTaskHandler.Handle(cmd.Context(), update)
		if errors.Is(err, commands.ErrNothingToUpdate) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to update.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d updated: %s\n", result.Task.ID, strings.Join(result.Fields, ", "))
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "new priority")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date")
	updateCmd.Flags().StringVar(&updateStart, "start", "", "new start date")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "remove the due date")
	updateCmd.Flags().BoolVar(&updateClearStart, "clear-start", false, "remove the start date")
}
