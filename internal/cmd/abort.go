package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/mux"
)

var abortCmd = &cobra.Command{
	Use:   "abort <id>",
	Short: "Abort a session and every live descendant",
	Args:  cobra.ExactArgs(1),
	RunE:  runAbort,
}

func init() {
	rootCmd.AddCommand(abortCmd)
}

func runAbort(cmd *cobra.Command, args []string) error {
	st, err := projectStore()
	if err != nil {
		return err
	}
	id, err := st.ResolveID(args[0])
	if err != nil {
		return err
	}

	mx := mux.New(os.Getenv("MUX_SOCKET"))

	descendants, err := st.GetDescendants(id)
	if err != nil {
		return err
	}
	for _, sess := range descendants {
		if constants.IsTerminal(sess.State) {
			continue
		}
		if sess.TmuxSession != "" {
			_ = mx.KillWindow(sess.TmuxSession)
		}
		if err := st.UpdateState(sess.ID, constants.StateAborted); err != nil {
			return err
		}
	}

	sess, err := st.Load(id)
	if err != nil {
		return err
	}
	if sess.TmuxSession != "" {
		_ = mx.KillWindow(sess.TmuxSession)
	}
	return st.UpdateState(id, constants.StateAborted)
}
