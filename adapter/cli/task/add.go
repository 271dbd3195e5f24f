package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

var (
	addDescription string
	addPriority    string
	addDue         string
	addStart       string
	addProjectID   int64
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new task",
	Long: `Create a new task in Vikunja.

Dates accept RFC 3339 timestamps or YYYY-MM-DD. Without --project the
default project from settings is used.

Examples:
  vikunja-ai task add "Write report"
  vikunja-ai task add "Book flights" --priority high --due 2026-06-03
  vikunja-ai task add "Call plumber" --project 4`,
	Aliases: []string{"create", "new"},
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return cli.ErrNotInitialized
		}

		due, err := optionalDate(addDue)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		start, err := optionalDate(addStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), commands.CreateTaskCommand{
			ProjectID:   addProjectID,
			Title:       strings.Join(args, " "),
			Description: addDescription,
			Priority:    addPriority,
			DueDate:     due,
			StartDate:   start,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		t := result.Task
		fmt.Fprintln(out, "Task created!")
		fmt.Fprintf(out, "  ID: #%d\n", t.ID)
		fmt.Fprintf(out, "  Title: %s\n", t.Title)
		fmt.Fprintf(out, "  Project: %d\n", t.ProjectID)
		if addPriority != "" {
			fmt.Fprintf(out, "  Priority: %s\n", t.Priority)
		}
		if t.DueDate != nil {
			fmt.Fprintf(out, "  Due: %s\n", t.DueDate.Format("Mon, Jan 2 2006 15:04"))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "task description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "priority (low, medium, high, urgent, do_now)")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date")
	addCmd.Flags().StringVar(&addStart, "start", "", "start date")
	addCmd.Flags().Int64Var(&addProjectID, "project", 0, "project id")
}
