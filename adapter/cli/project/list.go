package project

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/vikunja"
)

var (
	listArchived bool
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List the projects the configured token can see. Use the ids with
"task add --project" or "settings set --default-project".`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Projects == nil {
			return cli.ErrNotInitialized
		}

		projects, err := app.Projects.Projects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		visible := make([]vikunja.Project, 0, len(projects))
		for _, p := range projects {
			if p.IsArchived && !listArchived {
				continue
			}
			visible = append(visible, p)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return json.NewEncoder(out).Encode(visible)
		}
		if len(visible) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d project(s):\n\n", len(visible))
		for _, p := range visible {
			archived := ""
			if p.IsArchived {
				archived = " [archived]"
			}
			fmt.Fprintf(out, "%4d  %s%s\n", p.ID, p.Title, archived)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived projects")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
