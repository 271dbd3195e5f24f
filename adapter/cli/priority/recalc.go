package priority

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Rescore every open task and store the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		out := cmd.OutOrStdout()
		if app == nil || app.RecalculatePrioritiesHandler == nil {
			return cli.ErrNotInitialized
		}

		result, err := app.RecalculatePrioritiesHandler.Handle(cmd.Context(), commands.RecalculatePrioritiesCommand{})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Recalculated %d priority scores (%d blocked)\n", result.TaskCount, result.BlockedCount)
		if result.TopTaskID != 0 {
			fmt.Fprintf(out, "Top task: #%d (score %.1f)\n", result.TopTaskID, result.TopScore)
		}
		return nil
	},
}
