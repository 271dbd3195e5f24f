package task

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
)

var explainJSON bool

var explainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Explain how a task's score was derived",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ExplainTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		explanation, err := app.ExplainTaskHandler.Handle(cmd.Context(), queries.ExplainTaskQuery{TaskID: id})
		if err != nil {
			return fmt.Errorf("failed to explain task: %w", err)
		}

		out := cmd.OutOrStdout()
		if explainJSON {
			return json.NewEncoder(out).Encode(explanation)
		}

		t := explanation.Task
		b := t.Breakdown
		fmt.Fprintf(out, "#%d %s\n", t.ID, t.Title)
		fmt.Fprintf(out, "  Priority:   %6.1f (%s)\n", b.PriorityScore, t.Priority)
		fmt.Fprintf(out, "  Due date:   %6.1f\n", b.DueDateScore)
		fmt.Fprintf(out, "  Start date: %6.1f\n", b.StartDateScore)
		fmt.Fprintf(out, "  Age:        %6.1f\n", b.AgeScore)
		fmt.Fprintf(out, "  Unblocks:   %6.1f (%d open dependents)\n", b.BlockingBonus, b.DependentCount)
		if b.IsBlocked {
			fmt.Fprintf(out, "  Blocked by %d open task(s): %.1f -> %.1f\n", b.BlockerCount, b.Subtotal, b.Total)
		}
		fmt.Fprintf(out, "  Total:      %6.1f\n", b.Total)

		for _, ref := range explanation.Blockers {
			fmt.Fprintf(out, "  waits on #%d %s%s\n", ref.ID, ref.Title, doneSuffix(ref.Done))
		}
		for _, ref := range explanation.Dependents {
			fmt.Fprintf(out, "  unblocks #%d %s%s\n", ref.ID, ref.Title, doneSuffix(ref.Done))
		}
		return nil
	},
}

func doneSuffix(done bool) string {
	if done {
		return " (done)"
	}
	return ""
}

func init() {
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "output as JSON")
}
