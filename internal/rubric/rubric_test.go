package rubric

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseAllSections(t *testing.T) {
	text := "# My Rubric\n\n" +
		"## Gates\n- `true`\n- not a command\n- `go test ./...`\n\n" +
		"## Criteria\n- handles the empty case\n- logs errors\n\n" +
		"## Nice to Have\n- fast\n\n" +
		"## Notes\nThis task is tricky.\n"

	r := Parse(text)
	if r.Title != "My Rubric" {
		t.Fatalf("Title = %q", r.Title)
	}
	if !reflect.DeepEqual(r.Gates, []string{"true", "go test ./..."}) {
		t.Fatalf("Gates = %v", r.Gates)
	}
	if !reflect.DeepEqual(r.Criteria, []string{"handles the empty case", "logs errors"}) {
		t.Fatalf("Criteria = %v", r.Criteria)
	}
	if !reflect.DeepEqual(r.NiceToHave, []string{"fast"}) {
		t.Fatalf("NiceToHave = %v", r.NiceToHave)
	}
	if r.Notes != "This task is tricky." {
		t.Fatalf("Notes = %q", r.Notes)
	}
}

func TestParseNiceToHaveHyphenVariant(t *testing.T) {
	r := Parse("## Nice-to-have\n- clean commit history\n")
	if !reflect.DeepEqual(r.NiceToHave, []string{"clean commit history"}) {
		t.Fatalf("NiceToHave = %v", r.NiceToHave)
	}
}

func TestParseEmptyRubric(t *testing.T) {
	r := Parse("")
	if !r.Empty() {
		t.Fatal("expected empty rubric")
	}
}

func TestSugarToRubricShellCommand(t *testing.T) {
	r := Parse(SugarToRubric("pytest"))
	if !reflect.DeepEqual(r.Gates, []string{"pytest"}) {
		t.Fatalf("Gates = %v, want [pytest]", r.Gates)
	}
	if len(r.Criteria) != 0 {
		t.Fatalf("Criteria = %v, want empty", r.Criteria)
	}
}

func TestSugarToRubricAgentPrompt(t *testing.T) {
	r := Parse(SugarToRubric("agent: the output should be well-formatted JSON"))
	if !reflect.DeepEqual(r.Criteria, []string{"the output should be well-formatted JSON"}) {
		t.Fatalf("Criteria = %v", r.Criteria)
	}
	if len(r.Gates) != 0 {
		t.Fatalf("Gates = %v, want empty", r.Gates)
	}
}

func TestHashIsStableAndShort(t *testing.T) {
	h1 := Hash("## Gates\n- `true`\n")
	h2 := Hash("## Gates\n- `true`\n")
	if h1 != h2 {
		t.Fatalf("hash not stable: %s != %s", h1, h2)
	}
	if len(h1) != 12 {
		t.Fatalf("hash length = %d, want 12", len(h1))
	}
	if Hash("## Gates\n- `false`\n") == h1 {
		t.Fatal("different rubrics hashed the same")
	}
}

func TestParseCheckerSpecAgent(t *testing.T) {
	spec := ParseCheckerSpec("agent: check for race conditions", nil)
	if spec.Kind != KindAgent || spec.Value != "check for race conditions" {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestParseCheckerSpecRubricFile(t *testing.T) {
	spec := ParseCheckerSpec("rubric.md", func(p string) bool { return p == "rubric.md" })
	if spec.Kind != KindRubricFile {
		t.Fatalf("spec.Kind = %v, want KindRubricFile", spec.Kind)
	}
}

func TestParseCheckerSpecShell(t *testing.T) {
	spec := ParseCheckerSpec("true", func(string) bool { return false })
	if spec.Kind != KindShell || spec.Value != "true" {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestParseVerdictPicksLastLineWithToken(t *testing.T) {
	response := "The tests look reasonable.\nThere's a retry path noted earlier.\nVERDICT: ACCEPT\n"
	v, _ := ParseVerdict(response)
	if v != VerdictAccept {
		t.Fatalf("verdict = %v, want accept", v)
	}
}

func TestParseVerdictTerminatePriorityOnSameLine(t *testing.T) {
	v, _ := ParseVerdict("This should ACCEPT but actually TERMINATE given the crash.")
	if v != VerdictTerminate {
		t.Fatalf("verdict = %v, want terminate", v)
	}
}

func TestParseVerdictDefaultsToRetry(t *testing.T) {
	v, feedback := ParseVerdict("The output is missing error handling.")
	if v != VerdictRetry {
		t.Fatalf("verdict = %v, want retry", v)
	}
	if !strings.Contains(feedback, "missing error handling") {
		t.Fatalf("feedback = %q", feedback)
	}
}
