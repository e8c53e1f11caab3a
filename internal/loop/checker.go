package loop

import (
	"context"
	"strconv"
	"time"

	"github.com/adagradschool/scope/internal/contract"
	"github.com/adagradschool/scope/internal/rubric"
	"github.com/adagradschool/scope/internal/store"
)

// CheckResult is the outcome of one iteration's check: gates plus, when the
// rubric carries criteria, an agent checker's verdict.
type CheckResult struct {
	Verdict         rubric.Verdict
	Feedback        string
	Gates           []store.GateResult
	CriteriaSummary string
	RubricHash      string
}

// AgentChecker spawns a checker sub-session with the given contract and
// returns its raw result text once it reaches a terminal state. Loop
// implementations are injected with a concrete AgentChecker from
// internal/spawn; this keeps the loop engine free of mux/spawn
// particulars.
type AgentChecker interface {
	RunChecker(ctx context.Context, parentID string, iteration int, contractMD, model string) (result string, err error)
}

// Check runs the composite verdict algorithm for one iteration: gates
// first, then (if the rubric has criteria or nice-to-have items) an agent
// checker, then composes the two per the priority rule terminate > any
// failed gate > agent verdict. loopBaseID must be the loop's stable root
// doer id (never an iteration child) so the checker session it spawns gets
// a single, non-nested iteration suffix.
func Check(ctx context.Context, r *rubric.Rubric, rawRubric string, doerOutput string, loopBaseID string, iteration int, priorIterations string, checker AgentChecker, workDir string, gateTimeout time.Duration, checkerModel string) (*CheckResult, error) {
	hash := rubric.Hash(rawRubric)

	if r.Empty() {
		return &CheckResult{Verdict: rubric.VerdictAccept, Feedback: "no checks to run", RubricHash: hash}, nil
	}

	gateResults := runGates(ctx, r.Gates, workDir, gateTimeout)
	gatesSummary := gateSummary(gateResults)

	if len(r.Criteria) == 0 && len(r.NiceToHave) == 0 {
		if allGatesPass(gateResults) {
			return &CheckResult{Verdict: rubric.VerdictAccept, Feedback: gatesSummary, Gates: gateResults, RubricHash: hash}, nil
		}
		return &CheckResult{
			Verdict:    rubric.VerdictRetry,
			Feedback:   failedGateOutput(gateResults),
			Gates:      gateResults,
			RubricHash: hash,
		}, nil
	}

	checkerContract := contract.BuildChecker(contract.CheckerOptions{
		Role:            "You are verifying a sub-agent's work against a rubric.",
		GateResults:     gatesSummary,
		MustHave:        contract.NumberedList(r.Criteria),
		NiceToHave:      contract.NumberedList(r.NiceToHave),
		Notes:           r.Notes,
		DoerOutput:      doerOutput,
		Iteration:       strconv.Itoa(iteration),
		PriorIterations: priorIterations,
		VerdictPrompt:   "State PASS/FAIL per criterion, then end with a line containing exactly one of ACCEPT, RETRY, or TERMINATE.",
	})

	response, err := checker.RunChecker(ctx, loopBaseID, iteration, checkerContract, checkerModel)
	if err != nil {
		return &CheckResult{
			Verdict:    rubric.VerdictTerminate,
			Feedback:   "checker failed: " + err.Error(),
			Gates:      gateResults,
			RubricHash: hash,
		}, nil
	}

	agentVerdict, feedback := rubric.ParseVerdict(response)

	result := &CheckResult{
		Gates:           gateResults,
		CriteriaSummary: response,
		RubricHash:      hash,
	}

	switch {
	case agentVerdict == rubric.VerdictTerminate:
		result.Verdict = rubric.VerdictTerminate
		result.Feedback = feedback
	case !allGatesPass(gateResults):
		result.Verdict = rubric.VerdictRetry
		result.Feedback = failedGateOutput(gateResults) + "\n" + feedback
	default:
		result.Verdict = agentVerdict
		result.Feedback = feedback
	}
	return result, nil
}
