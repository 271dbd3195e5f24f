package task

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
)

var topProjectID int64

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the task to work on next",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTopPriorityHandler == nil {
			return cli.ErrNotInitialized
		}

		out := cmd.OutOrStdout()
		top, err := app.GetTopPriorityHandler.Handle(cmd.Context(), queries.GetTopPriorityQuery{ProjectID: topProjectID})
		if errors.Is(err, queries.ErrNoIncompleteTasks) {
			fmt.Fprintln(out, "Nothing left to do.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find top task: %w", err)
		}

		printRankedTask(out, *top)
		fmt.Fprintf(out, "    %s\n", top.Explanation)
		return nil
	},
}

func init() {
	topCmd.Flags().Int64VarP(&topProjectID, "project", "p", 0, "only tasks in this project")
}
