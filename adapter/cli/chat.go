package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Talk to the assistant",
	Long: `Ask the assistant about your tasks or tell it what to change. It can
list, create, update, complete, delete, and relate tasks for you.

With a message the assistant answers once. Without one, chat reads lines
from stdin and keeps the conversation until EOF or "exit".

Examples:
  vikunja-ai chat what should I do next
  vikunja-ai chat "book flights is blocked by renewing my passport"
  vikunja-ai chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		if app.Agent == nil {
			return assistant.ErrAssistantDisabled
		}

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			_, err := chatTurn(cmd, app.Agent, nil, strings.Join(args, " "), out)
			return err
		}

		var history []llm.Message
		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(out, "> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "":
				fmt.Fprint(out, "> ")
				continue
			case "exit", "quit":
				return nil
			}

			next, err := chatTurn(cmd, app.Agent, history, line, out)
			if err != nil {
				if errors.Is(err, cmd.Context().Err()) {
					return err
				}
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				history = next
			}
			fmt.Fprint(out, "> ")
		}
		return scanner.Err()
	},
}

// chatTurn sends one user message and returns the history extended by the
// exchange.
func chatTurn(cmd *cobra.Command, agent *assistant.Agent, history []llm.Message, message string, out io.Writer) ([]llm.Message, error) {
	messages := append(append([]llm.Message(nil), history...), llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := agent.Chat(cmd.Context(), assistant.ChatRequest{Messages: messages})
	if err != nil {
		return nil, err
	}

	for _, action := range resp.Actions {
		status := "ok"
		if action.IsError {
			status = "failed"
		}
		fmt.Fprintf(out, "  [%s %s]\n", action.Name, status)
	}
	fmt.Fprintln(out, resp.Reply)

	return append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Reply}), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
