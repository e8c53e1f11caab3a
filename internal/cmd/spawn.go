package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/mux"
	"github.com/adagradschool/scope/internal/spawn"
)

var spawnOpts spawn.Options
var spawnRubricPath string

var spawnCmd = &cobra.Command{
	Use:   "spawn [prompt...]",
	Short: "Spawn a sub-agent session and run its doer/checker loop",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpawn,
}

func init() {
	spawnCmd.Flags().StringVar(&spawnOpts.Alias, "id", "", "human-readable name for this session")
	spawnCmd.Flags().StringVar(&spawnOpts.Checker, "checker", "", "shell command, agent:<prompt>, or rubric file path")
	spawnCmd.Flags().IntVar(&spawnOpts.MaxIterations, "max-iterations", 3, "maximum doer iterations before giving up")
	spawnCmd.Flags().StringVar(&spawnOpts.Model, "model", "", "model alias for the doer")
	spawnCmd.Flags().StringVar(&spawnOpts.CheckerModel, "checker-model", "", "model alias for the agent checker")
	spawnCmd.Flags().BoolVar(&spawnOpts.Plan, "plan", false, "launch the doer in plan mode")
	spawnCmd.Flags().StringVar(&spawnOpts.OnFailOf, "on-fail", "", "skip (record as skipped) if this session id ended in done")
	spawnCmd.Flags().StringVar(&spawnOpts.OnPassOf, "on-pass", "", "skip (record as skipped) if this session id ended in failed/aborted")
	spawnCmd.Flags().StringSliceVar(&spawnOpts.PipeFrom, "pipe-from", nil, "session ids whose results feed this prompt")
	spawnCmd.Flags().StringVar(&spawnOpts.FileScope, "file-scope", "", "files this session is allowed to touch")
	spawnCmd.Flags().StringVar(&spawnOpts.Verify, "verify", "", "verification instructions included in the contract")
	spawnCmd.Flags().StringSliceVar(&spawnOpts.Termination, "termination", nil, "termination criteria, one per flag")
	spawnCmd.Flags().StringVar(&spawnRubricPath, "rubric", "", "rubric markdown file path")
	spawnCmd.Flags().StringVar(&spawnOpts.Phase, "phase", "", "workflow phase name this session belongs to")
	spawnCmd.Flags().StringVar(&spawnOpts.ParentIntent, "parent-intent", "", "why the parent session spawned this one")
	spawnCmd.Flags().StringVar(&spawnOpts.PatternCommitment, "pattern-commitment", "", "committed multi-phase pattern context")
	rootCmd.AddCommand(spawnCmd)
}

func runSpawn(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	opts := spawnOpts
	opts.RubricPath = spawnRubricPath

	sp, err := buildSpawner()
	if err != nil {
		return err
	}

	res, err := sp.Spawn(context.Background(), prompt, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, res.ID)
	if res.LoopResult != nil {
		fmt.Fprintln(os.Stdout, res.LoopResult.Verdict)
	}
	return nil
}

func buildSpawner() (*spawn.Spawner, error) {
	st, err := projectStore()
	if err != nil {
		return nil, err
	}
	cfg, err := projectConfig()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	mx := mux.New(os.Getenv("MUX_SOCKET"))
	return &spawn.Spawner{
		Store:               st,
		Mux:                 mx,
		Config:              cfg,
		WorkDir:             cwd,
		PaneDiedHookCommand: "scope hook pane-died",
		Summarizer:          spawn.TruncateSummarizer{},
		Waiter:              &spawn.PollWaiter{Store: st},
	}, nil
}
