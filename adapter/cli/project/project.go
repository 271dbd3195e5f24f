package project

import (
	"github.com/spf13/cobra"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Browse Vikunja projects",
}

func init() {
	Cmd.AddCommand(listCmd)
}
