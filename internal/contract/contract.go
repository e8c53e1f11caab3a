// Package contract assembles the markdown documents sent to doer and
// checker sub-agents. Section order is part of the external interface:
// callers must keep it bit-stable.
package contract

import (
	"strconv"
	"strings"
)

// section is one optional named block; it is omitted entirely when Body is
// empty.
type section struct {
	Heading string
	Body    string
}

func render(sections []section) string {
	var b strings.Builder
	first := true
	for _, s := range sections {
		if strings.TrimSpace(s.Body) == "" {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		b.WriteString("## " + s.Heading + "\n\n")
		b.WriteString(strings.TrimRight(s.Body, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// DoerOptions holds the optional fields a doer contract may include.
type DoerOptions struct {
	Dependencies        string
	Phase               string
	PatternCommitment   string
	ParentIntent        string
	PriorResults        string
	Task                string
	FileScope           string
	Verification        string
	TerminationCriteria string
}

// BuildDoer assembles a doer contract in the fixed section order:
// Dependencies, Phase, Pattern Commitment, Parent Intent, Prior Results,
// Task, File Scope, Verification, Termination Criteria.
func BuildDoer(opts DoerOptions) string {
	return render([]section{
		{"Dependencies", opts.Dependencies},
		{"Phase", opts.Phase},
		{"Pattern Commitment", opts.PatternCommitment},
		{"Parent Intent", opts.ParentIntent},
		{"Prior Results", opts.PriorResults},
		{"Task", opts.Task},
		{"File Scope", opts.FileScope},
		{"Verification", opts.Verification},
		{"Termination Criteria", opts.TerminationCriteria},
	})
}

// CheckerOptions holds the fields a rubric-aware checker contract may
// include.
type CheckerOptions struct {
	Role            string
	GateResults     string
	MustHave        string
	NiceToHave      string
	Notes           string
	DoerOutput      string
	Iteration       string
	PriorIterations string
	VerdictPrompt   string
}

// BuildChecker assembles a checker contract in the fixed section order:
// Role, Gate Results, Must-Have Criteria, Nice-to-Have Criteria, Notes,
// Doer Output, Iteration, Prior Iterations, Verdict instructions.
func BuildChecker(opts CheckerOptions) string {
	return render([]section{
		{"Role", opts.Role},
		{"Gate Results", opts.GateResults},
		{"Must-Have Criteria", opts.MustHave},
		{"Nice-to-Have Criteria", opts.NiceToHave},
		{"Notes", opts.Notes},
		{"Doer Output", opts.DoerOutput},
		{"Iteration", opts.Iteration},
		{"Prior Iterations", opts.PriorIterations},
		{"Verdict", opts.VerdictPrompt},
	})
}

// NumberedList renders items as a "1. item" list, or "" if items is empty.
func NumberedList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + item)
	}
	return b.String()
}
