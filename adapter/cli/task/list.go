package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
)

var (
	showAll       bool
	listProjectID int64
	limit         int
	listJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks by derived priority",
	Long: `List open tasks ordered by their derived priority score.

Examples:
  vikunja-ai task list                # Open tasks, highest score first
  vikunja-ai task list --all          # Include completed tasks
  vikunja-ai task list --project 3    # Only project 3
  vikunja-ai task list --limit 5      # Top 5 tasks`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListRankedTasksHandler == nil {
			return cli.ErrNotInitialized
		}

		tasks, err := app.ListRankedTasksHandler.Handle(cmd.Context(), queries.ListRankedTasksQuery{
			IncludeDone: showAll,
			ProjectID:   listProjectID,
			Limit:       limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return json.NewEncoder(out).Encode(tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range tasks {
			printRankedTask(out, t)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include completed tasks")
	listCmd.Flags().Int64VarP(&listProjectID, "project", "p", 0, "only tasks in this project")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
