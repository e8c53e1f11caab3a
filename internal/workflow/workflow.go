// Package workflow runs a named sequence of phases, each spawned as its own
// doer→checker session tree, piping one phase's result into the next's
// prompt and applying a per-phase on_fail policy.
package workflow

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Phase is one [[phase]] block in a workflow TOML file.
type Phase struct {
	Name          string `toml:"name"`
	Task          string `toml:"task"`
	Checker       string `toml:"checker"`
	MaxIterations int    `toml:"max_iterations"`
	Model         string `toml:"model"`
	CheckerModel  string `toml:"checker_model"`
	OnFail        string `toml:"on_fail"` // "stop" (default) | "continue" | "retry:N"
	PipeFrom      string `toml:"pipe_from"`
	FileScope     string `toml:"file_scope"`
	Verify        string `toml:"verify"`
}

// Definition is a parsed workflow TOML file: a named, ordered phase list.
type Definition struct {
	Name   string  `toml:"name"`
	Phases []Phase `toml:"phase"`
}

// Load reads a workflow definition from a TOML file.
func Load(path string) (*Definition, error) {
	var def Definition
	if _, err := toml.DecodeFile(path, &def); err != nil {
		return nil, fmt.Errorf("parsing workflow %s: %w", path, err)
	}
	if len(def.Phases) == 0 {
		return nil, fmt.Errorf("workflow %s defines no phases", path)
	}
	return &def, nil
}

// onFailPolicy is the parsed form of a phase's on_fail string.
type onFailPolicy struct {
	mode       string // "stop" | "continue" | "retry"
	retryCount int
}

func parseOnFail(raw string) onFailPolicy {
	if raw == "" || raw == "stop" {
		return onFailPolicy{mode: "stop"}
	}
	if raw == "continue" {
		return onFailPolicy{mode: "continue"}
	}
	if n, ok := strings.CutPrefix(raw, "retry:"); ok {
		count, err := strconv.Atoi(n)
		if err == nil && count > 0 {
			return onFailPolicy{mode: "retry", retryCount: count}
		}
	}
	return onFailPolicy{mode: "stop"}
}

// failed reports whether a phase verdict counts as a failure for on_fail
// purposes: everything except "accept" and the implicit-stop "exit".
func failed(verdict string) bool {
	return verdict != "accept" && verdict != "exit"
}

// PhaseResult is one phase's outcome after its spawn+loop ran to
// completion.
type PhaseResult struct {
	Phase      string
	SessionID  string
	Verdict    string // accept | terminate | exit | max_iterations
	ExitReason string
	Result     string
	Attempts   int
}

// Spawner is the subset of internal/spawn's Spawner the runner needs: spawn
// one phase as a doer→checker session tree and report its outcome.
type Spawner interface {
	SpawnPhase(prompt string, phase Phase, priorResults string) (id, verdict, exitReason, result string, err error)
}

// Runner executes a workflow definition's phases in order.
type Runner struct {
	Spawn Spawner
}

// Run executes every phase of def in order, piping results forward and
// honoring each phase's on_fail policy. It stops at the first phase whose
// failure policy is "stop" (the default) and that phase failed.
func (r *Runner) Run(def *Definition) ([]PhaseResult, error) {
	var results []PhaseResult
	byName := map[string]PhaseResult{}

	for i, phase := range def.Phases {
		priorResults := resolvePriorResults(phase, i, def.Phases, byName, results)

		policy := parseOnFail(phase.OnFail)
		var pr PhaseResult
		attempts := 0
		maxAttempts := 1
		if policy.mode == "retry" {
			maxAttempts = 1 + policy.retryCount
		}

		for attempts < maxAttempts {
			attempts++
			id, verdict, exitReason, result, err := r.Spawn.SpawnPhase(phase.Task, phase, priorResults)
			if err != nil {
				return results, fmt.Errorf("phase %q: %w", phase.Name, err)
			}
			pr = PhaseResult{Phase: phase.Name, SessionID: id, Verdict: verdict, ExitReason: exitReason, Result: result, Attempts: attempts}
			if !failed(verdict) {
				break
			}
			if policy.mode != "retry" {
				break
			}
		}

		results = append(results, pr)
		byName[phase.Name] = pr

		if failed(pr.Verdict) && policy.mode == "stop" {
			return results, nil
		}
		if pr.Verdict == "exit" {
			return results, nil
		}
	}
	return results, nil
}

// resolvePriorResults builds the "Prior Phase Results" text fed into a
// phase's prompt: the named pipe_from phase's result if set, else the
// immediately preceding phase's result, else nothing for the first phase.
func resolvePriorResults(phase Phase, index int, phases []Phase, byName map[string]PhaseResult, results []PhaseResult) string {
	if phase.PipeFrom != "" {
		if pr, ok := byName[phase.PipeFrom]; ok {
			return pr.Result
		}
		return ""
	}
	if index == 0 || len(results) == 0 {
		return ""
	}
	return results[len(results)-1].Result
}

// DerivePhaseVerdict implements the state/loop_state-to-verdict mapping
// used when inspecting a phase's session after the fact (e.g. a workflow
// status query) rather than from a freshly returned loop.Result:
// exited sessions map to "exit", aborted/failed sessions to "terminate",
// and otherwise the last iteration history entry's verdict is authoritative
// (empty history maps to "max_iterations").
func DerivePhaseVerdict(state string, historyVerdicts []string) string {
	switch state {
	case "exited":
		return "exit"
	case "aborted", "failed":
		return "terminate"
	}
	if len(historyVerdicts) == 0 {
		return "max_iterations"
	}
	last := historyVerdicts[len(historyVerdicts)-1]
	switch last {
	case "accept", "terminate":
		return last
	default:
		return "max_iterations"
	}
}

// ResolvePatternsDir returns the directory patterns (named, reusable
// workflow definitions) are loaded from under a scope root.
func ResolvePatternsDir(scopeRoot string) string {
	return scopeRoot + string(os.PathSeparator) + "patterns"
}
