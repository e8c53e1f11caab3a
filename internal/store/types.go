// Package store implements the on-disk session state store: one field per
// file under sessions/<id>/, atomic replace-style writes, id allocation,
// alias resolution, loop-state persistence, and LRU eviction. It is the
// single source of truth every other scope component reads and mutates.
package store

import "time"

// Session is the unit of sub-agent execution.
type Session struct {
	ID           string    `json:"id"`
	Task         string    `json:"task"`
	Parent       string    `json:"parent"`
	State        string    `json:"state"`
	TmuxSession  string    `json:"tmux_session"`
	CreatedAt    time.Time `json:"created_at"`
	Alias        string    `json:"alias,omitempty"`
	DependsOn    []string  `json:"depends_on,omitempty"`
}

// IterationRecord describes the verdict rendered after a doer iteration's
// output was checked.
type IterationRecord struct {
	Iteration       int    `json:"iteration"`
	DoerSession     string `json:"doer_session"`
	CheckerSession  string `json:"checker_session,omitempty"`
	Verdict         string `json:"verdict"`
	Feedback        string `json:"feedback,omitempty"`
	Gates           []GateResult `json:"gates,omitempty"`
	CriteriaSummary string `json:"criteria_summary,omitempty"`
	RubricHash      string `json:"rubric_hash,omitempty"`
}

// GateResult is one shell-command gate's outcome.
type GateResult struct {
	Command string `json:"command"`
	Verdict string `json:"verdict"` // "pass" | "fail"
	Output  string `json:"output"`
}

// LoopState is present only for sessions that drive a doer→checker loop.
type LoopState struct {
	Checker          string            `json:"checker"`
	RubricPath       string            `json:"rubric_path,omitempty"`
	MaxIterations    int               `json:"max_iterations"`
	CurrentIteration int               `json:"current_iteration"`
	History          []IterationRecord `json:"history"`
}

// TerminationCriteria is the per-session termination-evaluation config.
type TerminationCriteria struct {
	Criteria      []string `json:"criteria"`
	MaxIterations int      `json:"max_iterations"`
	Iteration     int      `json:"iteration"`
}

// PatternState tracks a session's committed multi-phase workflow pattern.
type PatternState struct {
	Name      string   `json:"name"`
	Phases    []string `json:"phases"`
	Current   int      `json:"current"`
	Completed []string `json:"completed"`
}
