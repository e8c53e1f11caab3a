package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/workflow"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow <file.toml>",
	Short: "Run every phase of a workflow definition in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowRun,
}

var workflowRunCmd = &cobra.Command{
	Use:   "run <file.toml>",
	Short: "Run every phase of a workflow definition in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowRun,
}

func init() {
	workflowCmd.AddCommand(workflowRunCmd)
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflowRun(cmd *cobra.Command, args []string) error {
	def, err := workflow.Load(args[0])
	if err != nil {
		return err
	}
	sp, err := buildSpawner()
	if err != nil {
		return err
	}
	runner := &workflow.Runner{Spawn: sp}
	results, err := runner.Run(def)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", r.Phase, r.SessionID, r.Verdict)
	}
	return nil
}
