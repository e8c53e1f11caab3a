package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/termination"
)

var (
	checkTerminationWorkDir   string
	checkTerminationIncrement bool
	checkTerminationJSON      bool
)

var checkTerminationCmd = &cobra.Command{
	Use:   "check-termination <id>",
	Short: "Evaluate a session's termination criteria",
	Long: `Evaluates <id>'s stored termination criteria against its iteration
count and prints a recommendation. --increment bumps the stored iteration
counter before evaluating (callers drive the bump explicitly, once per
loop pass). Exit code 0 means terminate, 2 means iterate again, 1 means
the evaluation itself failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckTermination,
}

func init() {
	checkTerminationCmd.Flags().StringVar(&checkTerminationWorkDir, "work-dir", "", "directory command-criteria run in (default: cwd)")
	checkTerminationCmd.Flags().BoolVar(&checkTerminationIncrement, "increment", false, "bump the stored iteration counter before evaluating")
	checkTerminationCmd.Flags().BoolVar(&checkTerminationJSON, "json", false, "print the full evaluation as JSON instead of the one-line reason")
	rootCmd.AddCommand(checkTerminationCmd)
}

func runCheckTermination(cmd *cobra.Command, args []string) error {
	st, err := projectStore()
	if err != nil {
		return err
	}
	id, err := st.ResolveID(args[0])
	if err != nil {
		return err
	}

	if checkTerminationIncrement {
		if _, err := st.IncrementIteration(id); err != nil {
			return err
		}
	}

	tc, err := st.LoadTerminationCriteria(id)
	if err != nil {
		return err
	}

	workDir := checkTerminationWorkDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	eval := termination.Evaluate(context.Background(), tc.Criteria, tc.Iteration, tc.MaxIterations, workDir, constants.CriterionTimeout)

	if checkTerminationJSON {
		data, err := json.Marshal(eval)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
	} else {
		fmt.Fprintln(os.Stdout, eval.Reason)
	}

	os.Exit(termination.ExitCode(eval))
	return nil
}
