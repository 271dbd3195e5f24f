package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	identitySettings "github.com/maccam912/vikunja-ai/internal/identity/application/settings"
	"github.com/maccam912/vikunja-ai/internal/identity/domain"
)

var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage assistant settings",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}

		current, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), current)
	},
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	Long: `Change one or more settings. Only the flags you pass are changed.

Examples:
  vikunja-ai settings set --default-project 4
  vikunja-ai settings set --model gpt-4o --theme dark
  vikunja-ai settings set --system-prompt "Answer in German."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}

		var update identitySettings.Update
		flags := cmd.Flags()
		if flags.Changed("default-project") {
			update.DefaultProjectID = &defaultProjectID
		}
		if flags.Changed("model") {
			update.Model = &model
		}
		if flags.Changed("theme") {
			update.Theme = &theme
		}
		if flags.Changed("system-prompt") {
			update.SystemPrompt = &systemPrompt
		}
		if update == (identitySettings.Update{}) {
			return errors.New("nothing to change; pass at least one flag")
		}

		updated, err := app.SettingsService.Update(cmd.Context(), app.CurrentUserID, update)
		if err != nil {
			return err
		}
		if !settingsJSON {
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
		}
		return printSettings(cmd.OutOrStdout(), updated)
	},
}

var (
	defaultProjectID int64
	model            string
	theme            string
	systemPrompt     string
	settingsJSON     bool
)

func settingsApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.SettingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if app.CurrentUserID == uuid.Nil {
		return nil, errors.New("current user not configured")
	}
	return app, nil
}

func printSettings(out io.Writer, s *domain.Settings) error {
	if settingsJSON {
		return json.NewEncoder(out).Encode(s)
	}
	fmt.Fprintf(out, "Default project: %d\n", s.DefaultProjectID)
	fmt.Fprintf(out, "Model:           %s\n", s.Model)
	fmt.Fprintf(out, "Theme:           %s\n", s.Theme)
	if s.SystemPrompt != "" {
		fmt.Fprintf(out, "System prompt:   %s\n", s.SystemPrompt)
	}
	return nil
}

func init() {
	setCmd.Flags().Int64Var(&defaultProjectID, "default-project", 0, "project new tasks go to")
	setCmd.Flags().StringVar(&model, "model", "", "LLM model name")
	setCmd.Flags().StringVar(&theme, "theme", "", "UI theme (light, dark, system)")
	setCmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "extra instructions for the assistant")

	showCmd.Flags().BoolVar(&settingsJSON, "json", false, "output as JSON")
	setCmd.Flags().BoolVar(&settingsJSON, "json", false, "output as JSON")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
}
