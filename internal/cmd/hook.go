package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:    "hook <event-type>",
	Short:  "Dispatch a lifecycle event read as JSON from stdin",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	var ev hook.Event
	if len(body) > 0 {
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
	}
	ev.Type = hook.EventType(args[0])
	if ev.SessionID == "" {
		ev.SessionID = os.Getenv("SESSION_ID")
	}

	st, err := projectStore()
	if err != nil {
		return err
	}
	h := &hook.Handler{Store: st}
	return h.Handle(ev)
}
