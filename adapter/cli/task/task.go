package task

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `List ranked tasks, explain scores, and create, update, complete, delete, or relate tasks.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(topCmd)
	Cmd.AddCommand(explainCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(relateCmd)
	Cmd.AddCommand(unrelateCmd)
}

func parseTaskID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}

// optionalDate treats an unset flag as no date.
func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	return task.ParseDate(value)
}

func getPriorityBadge(priority string) string {
	switch priority {
	case "do_now":
		return "(!!!!)"
	case "urgent":
		return "(!!!)"
	case "high":
		return "(!)"
	case "medium":
		return "(~)"
	case "low":
		return "(.)"
	default:
		return ""
	}
}

func getStatusIcon(t queries.RankedTaskDTO) string {
	switch {
	case t.Done:
		return "[x]"
	case t.Blocked:
		return "[#]"
	default:
		return "[ ]"
	}
}

func printRankedTask(out io.Writer, t queries.RankedTaskDTO) {
	badge := getPriorityBadge(t.Priority)
	if badge != "" {
		badge = " " + badge
	}
	fmt.Fprintf(out, "%2d. %s #%d %s%s  score=%.1f\n", t.Rank, getStatusIcon(t), t.ID, t.Title, badge, t.Score)
	if t.DueDate != nil {
		fmt.Fprintf(out, "    Due: %s\n", t.DueDate.Format("2006-01-02 15:04"))
	}
	if len(t.BlockedBy) > 0 {
		fmt.Fprintf(out, "    Blocked by: %s\n", joinIDs(t.BlockedBy))
	}
	if len(t.Blocking) > 0 {
		fmt.Fprintf(out, "    Blocking: %s\n", joinIDs(t.Blocking))
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
