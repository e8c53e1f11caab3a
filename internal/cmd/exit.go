package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/constants"
)

var exitCmd = &cobra.Command{
	Use:   "exit [reason...]",
	Short: "Exit the current session early with a reason",
	Long: `Exit marks the calling session "exited" rather than "done" or
"failed": the doer→checker loop treats an exited doer as an implicit stop,
never as something to retry or terminate on a gate failure. Intended to be
called by the sub-agent itself (the session id comes from $SESSION_ID),
when it decides mid-task that the assigned work no longer makes sense.`,
	Args: cobra.MinimumNArgs(0),
	RunE: runExit,
}

func init() {
	rootCmd.AddCommand(exitCmd)
}

func runExit(cmd *cobra.Command, args []string) error {
	id, err := currentSessionID()
	if err != nil {
		return err
	}
	st, err := projectStore()
	if err != nil {
		return err
	}
	reason := strings.Join(args, " ")
	if err := st.SaveExitReason(id, reason); err != nil {
		return err
	}
	return st.UpdateState(id, constants.StateExited)
}
