package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/diag"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance the current session's committed pattern to its next phase",
	Args:  cobra.NoArgs,
	RunE:  runAdvance,
}

func init() {
	rootCmd.AddCommand(advanceCmd)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	id, err := currentSessionID()
	if err != nil {
		return err
	}
	st, err := projectStore()
	if err != nil {
		return err
	}
	p, err := st.LoadPattern(id)
	if err != nil {
		return err
	}
	if p == nil {
		return diag.New(diag.KindNotFound, "no pattern committed on this session").
			WithFix("run `scope commit <pattern>` first")
	}
	if p.Current >= len(p.Phases)-1 {
		return diag.New(diag.KindFatal, "pattern is already on its last phase").
			WithCause(fmt.Sprintf("phase %q is phase %d of %d", p.Phases[p.Current], p.Current+1, len(p.Phases)))
	}

	p.Completed = append(p.Completed, p.Phases[p.Current])
	p.Current++
	if err := st.SavePattern(id, p); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, p.Phases[p.Current])
	return nil
}
