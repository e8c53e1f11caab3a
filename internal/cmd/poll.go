package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/store"
	"github.com/adagradschool/scope/internal/style"
	"github.com/adagradschool/scope/internal/watch"
)

var pollCmd = &cobra.Command{
	Use:   "poll [id]",
	Short: "Print the session tree (or one session's detail) once",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	st, err := projectStore()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return pollOne(st, args[0])
	}
	return pollTree(st)
}

func pollOne(st *store.Store, idOrAlias string) error {
	id, err := st.ResolveID(idOrAlias)
	if err != nil {
		return err
	}
	sess, err := st.Load(id)
	if err != nil {
		return err
	}
	result, _ := st.LoadResult(id)
	fmt.Fprintf(os.Stdout, "id:     %s\n", sess.ID)
	fmt.Fprintf(os.Stdout, "state:  %s\n", style.StateStyle(sess.State).Render(sess.State))
	fmt.Fprintf(os.Stdout, "task:   %s\n", sess.Task)
	fmt.Fprintf(os.Stdout, "parent: %s\n", sess.Parent)
	if result != "" {
		fmt.Fprintf(os.Stdout, "result:\n%s\n", result)
	}
	return nil
}

func pollTree(st *store.Store) error {
	tree, err := watch.Build(st)
	if err != nil {
		return err
	}
	rows := watch.Flatten(tree.Roots, nil)

	table := style.NewTable(
		style.Column{Name: "ID", Width: 20},
		style.Column{Name: "STATE", Width: 10},
		style.Column{Name: "TASK", Width: 50},
	)
	for _, row := range rows {
		if row.IsHeader {
			table.AddRow(strings.Repeat("  ", depth(row.ID)+1)+fmt.Sprintf("iter %d", row.Iteration.Iteration), row.Iteration.Verdict, "")
			continue
		}
		indent := strings.Repeat("  ", depth(row.ID))
		table.AddRow(indent+row.ID, row.Session.State, row.Session.Task)
	}
	fmt.Fprint(os.Stdout, table.Render())
	return nil
}

func depth(id string) int {
	return strings.Count(id, ".")
}
