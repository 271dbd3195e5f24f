package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check CLI wiring health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ok")
		if app.Agent == nil {
			fmt.Fprintln(out, "assistant: disabled (set LLM_API_KEY to enable)")
		} else {
			fmt.Fprintln(out, "assistant: enabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
