// Package loop drives the doer→checker iteration protocol: wait for a doer
// to finish, check its output against a rubric (shell gates and/or a
// nested agent checker), and either accept, terminate, or spawn the next
// doer iteration with summarized feedback.
package loop

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/diag"
	"github.com/adagradschool/scope/internal/rubric"
	"github.com/adagradschool/scope/internal/store"
)

// DoerLauncher spawns a retry iteration's doer session with a deterministic
// child id, mirroring the pane-first/save-after discipline the original
// spawn used to create the root doer.
type DoerLauncher interface {
	LaunchDoerIteration(ctx context.Context, id, prompt, model, workDir string) error
}

// Summarizer condenses a doer's raw result into the shorter form fed to
// both the checker and the next iteration's prompt.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Waiter blocks until a session reaches a terminal state.
type Waiter interface {
	WaitTerminal(ctx context.Context, sessionID string) (string, error)
}

// Engine runs the doer→checker loop for one session tree.
type Engine struct {
	Store        *store.Store
	Doer         DoerLauncher
	Checker      AgentChecker
	Summarizer   Summarizer
	Waiter       Waiter
	GateTimeout  time.Duration
	CheckerModel string
}

// Result is what a completed (or terminated) loop reports back to its
// caller (the spawner, or the workflow runner).
type Result struct {
	Verdict    string // accept | terminate | exit | max_iterations
	ExitReason string
	Result     string
}

// Run executes the iteration protocol starting from rootDoerID, which must
// already be running. prompt is the original task prompt, reused verbatim
// in each retry's "Previous Attempt Summary" composition. checkerSpec
// names the gate command, agent prompt, or rubric file path; for a rubric
// file path, the file is re-read every iteration so hot edits take effect
// on the next check.
func (e *Engine) Run(ctx context.Context, rootDoerID, prompt string, checkerSpec rubric.CheckerSpec, maxIterations int, model, workDir string) (*Result, error) {
	loopState := &store.LoopState{MaxIterations: maxIterations}
	currentDoer := rootDoerID

	for iteration := 0; ; iteration++ {
		state, err := e.Waiter.WaitTerminal(ctx, currentDoer)
		if err != nil {
			return nil, err
		}

		switch state {
		case constants.StateAborted, constants.StateFailed:
			return &Result{Verdict: "terminate"}, nil
		case constants.StateExited:
			reason, err := e.Store.LoadExitReason(currentDoer)
			if err != nil {
				return nil, err
			}
			return &Result{Verdict: "exit", ExitReason: reason}, nil
		}

		rawResult, err := e.Store.LoadResult(currentDoer)
		if err != nil {
			return nil, err
		}

		summary, err := e.Summarizer.Summarize(ctx, rawResult)
		if err != nil {
			summary = truncate(rawResult, 2000)
		}

		rawRubric, err := loadRubricText(checkerSpec)
		if err != nil {
			return nil, diag.Wrap(diag.KindRubric, err, "reading rubric file")
		}
		parsed := rubric.Parse(rawRubric)

		check, err := Check(ctx, parsed, rawRubric, summary, rootDoerID, iteration, historyText(loopState.History), e.Checker, workDir, e.GateTimeout, e.CheckerModel)
		if err != nil {
			return nil, err
		}

		record := store.IterationRecord{
			Iteration:       iteration,
			DoerSession:     currentDoer,
			Verdict:         string(check.Verdict),
			Feedback:        check.Feedback,
			Gates:           check.Gates,
			CriteriaSummary: check.CriteriaSummary,
			RubricHash:      check.RubricHash,
		}
		loopState.History = append(loopState.History, record)
		loopState.CurrentIteration = iteration
		if err := e.Store.SaveLoopState(rootDoerID, loopState); err != nil {
			return nil, err
		}

		switch check.Verdict {
		case rubric.VerdictAccept:
			return &Result{Verdict: "accept", Result: rawResult}, nil
		case rubric.VerdictTerminate:
			return &Result{Verdict: "terminate", Result: rawResult}, nil
		}

		if iteration+1 >= maxIterations {
			return &Result{Verdict: "max_iterations", Result: rawResult}, nil
		}

		nextID := store.IterSessionID(rootDoerID, iteration+1, constants.RoleDoer)
		nextPrompt := composeRetryPrompt(prompt, iteration, summary, check.Feedback)
		if err := e.Doer.LaunchDoerIteration(ctx, nextID, nextPrompt, model, workDir); err != nil {
			return nil, err
		}
		currentDoer = nextID
	}
}

func composeRetryPrompt(original string, iteration int, summary, feedback string) string {
	return fmt.Sprintf("%s\n\n# Previous Attempt Summary (iteration %d)\n\n%s\n\n# Checker Feedback\n\n%s", original, iteration, summary, feedback)
}

func historyText(history []store.IterationRecord) string {
	var out string
	for _, h := range history {
		out += fmt.Sprintf("Iteration %d (%s): %s\n", h.Iteration, h.Verdict, h.Feedback)
	}
	return out
}

func loadRubricText(spec rubric.CheckerSpec) (string, error) {
	switch spec.Kind {
	case rubric.KindRubricFile:
		data, err := os.ReadFile(spec.Value)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case rubric.KindAgent:
		return rubric.SugarToRubric("agent:" + spec.Value), nil
	default:
		return rubric.SugarToRubric(spec.Value), nil
	}
}
