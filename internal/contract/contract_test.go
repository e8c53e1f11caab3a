package contract

import (
	"strings"
	"testing"
)

func TestBuildDoerOmitsEmptySections(t *testing.T) {
	out := BuildDoer(DoerOptions{Task: "implement the thing", Verification: "go test ./..."})
	if strings.Contains(out, "## Dependencies") {
		t.Fatal("empty Dependencies section should be omitted")
	}
	if !strings.Contains(out, "## Task") || !strings.Contains(out, "## Verification") {
		t.Fatalf("missing populated sections: %s", out)
	}
	taskIdx := strings.Index(out, "## Task")
	verifyIdx := strings.Index(out, "## Verification")
	if taskIdx > verifyIdx {
		t.Fatal("Task must precede Verification")
	}
}

func TestBuildDoerSectionOrder(t *testing.T) {
	out := BuildDoer(DoerOptions{
		Dependencies:        "dep",
		Phase:               "phase",
		PatternCommitment:   "pattern",
		ParentIntent:        "intent",
		PriorResults:        "prior",
		Task:                "task",
		FileScope:           "scope",
		Verification:        "verify",
		TerminationCriteria: "term",
	})
	headings := []string{"Dependencies", "Phase", "Pattern Commitment", "Parent Intent", "Prior Results", "Task", "File Scope", "Verification", "Termination Criteria"}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, "## "+h)
		if idx < 0 {
			t.Fatalf("missing section %s", h)
		}
		if idx < last {
			t.Fatalf("section %s out of order", h)
		}
		last = idx
	}
}

func TestBuildCheckerOrder(t *testing.T) {
	out := BuildChecker(CheckerOptions{
		Role:          "You are a checker.",
		GateResults:   "- `true`: PASS",
		MustHave:      NumberedList([]string{"a", "b"}),
		DoerOutput:    "the result",
		VerdictPrompt: "Respond with ACCEPT, RETRY, or TERMINATE.",
	})
	for _, pair := range [][2]string{{"Role", "Gate Results"}, {"Gate Results", "Must-Have Criteria"}, {"Must-Have Criteria", "Doer Output"}, {"Doer Output", "Verdict"}} {
		if strings.Index(out, "## "+pair[0]) > strings.Index(out, "## "+pair[1]) {
			t.Fatalf("%s must precede %s:\n%s", pair[0], pair[1], out)
		}
	}
}

func TestNumberedList(t *testing.T) {
	got := NumberedList([]string{"first", "second"})
	want := "1. first\n2. second"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if NumberedList(nil) != "" {
		t.Fatal("empty list should render empty")
	}
}
