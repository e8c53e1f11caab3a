package spawn

import (
	"context"

	"github.com/adagradschool/scope/internal/workflow"
)

// SpawnPhase implements workflow.Spawner: it spawns a phase as its own
// doer→checker session tree and reports the loop's outcome.
func (s *Spawner) SpawnPhase(prompt string, phase workflow.Phase, priorResults string) (id, verdict, exitReason, result string, err error) {
	opts := Options{
		Checker:       phase.Checker,
		MaxIterations: phase.MaxIterations,
		Model:         phase.Model,
		CheckerModel:  phase.CheckerModel,
		FileScope:     phase.FileScope,
		Verify:        phase.Verify,
		Phase:         phase.Name,
		PriorResults:  priorResults,
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 1
	}

	res, err := s.Spawn(context.Background(), prompt, opts)
	if err != nil {
		return "", "", "", "", err
	}
	if res.LoopResult == nil {
		return res.ID, "", "", "", nil
	}
	return res.ID, res.LoopResult.Verdict, res.LoopResult.ExitReason, res.LoopResult.Result, nil
}
