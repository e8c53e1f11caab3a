package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/spawn"
)

var waitCmd = &cobra.Command{
	Use:   "wait <ids...>",
	Short: "Block until every given session reaches a terminal state, then print each",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	st, err := projectStore()
	if err != nil {
		return err
	}
	ids := make([]string, len(args))
	for i, idOrAlias := range args {
		id, err := st.ResolveID(idOrAlias)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	waiter := &spawn.PollWaiter{Store: st}
	for _, id := range ids {
		state, err := waiter.WaitTerminal(context.Background(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", id, state)
	}
	return nil
}
