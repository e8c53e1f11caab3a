package termination

import (
	"context"
	"testing"
	"time"
)

func TestIsCommand(t *testing.T) {
	cases := map[string]bool{
		"pytest tests/":                    true,
		"ruff check .":                     true,
		"cargo test":                       true,
		"./run.sh":                         true,
		"python -c 'exit(0)'":              true,
		"mypy .":                           true,
		"black --check .":                  true,
		"node script.js":                   true,
		"bash run.sh":                      true,
		"sh run.sh":                        true,
		"test -f out.txt":                  true,
		"  PYTEST tests/":                  true,
		"the output should be formatted":   false,
		"handles the empty list correctly": false,
	}
	for c, want := range cases {
		if got := IsCommand(c); got != want {
			t.Errorf("IsCommand(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestEvaluateAllPassRecommendsTerminate(t *testing.T) {
	eval := Evaluate(context.Background(), []string{"python3 -c 'exit(0)'"}, 1, 5, ".", 5*time.Second)
	if eval.Recommendation != RecommendTerminate {
		t.Fatalf("Recommendation = %v, want terminate", eval.Recommendation)
	}
	if ExitCode(eval) != 0 {
		t.Fatalf("ExitCode = %d, want 0", ExitCode(eval))
	}
}

func TestEvaluateFailingBelowMaxRecommendsIterate(t *testing.T) {
	eval := Evaluate(context.Background(), []string{"python3 -c 'exit(1)'"}, 1, 5, ".", 5*time.Second)
	if eval.Recommendation != RecommendIterate {
		t.Fatalf("Recommendation = %v, want iterate", eval.Recommendation)
	}
	if ExitCode(eval) != 2 {
		t.Fatalf("ExitCode = %d, want 2", ExitCode(eval))
	}
}

func TestEvaluateFailingAtMaxRecommendsTerminate(t *testing.T) {
	eval := Evaluate(context.Background(), []string{"python3 -c 'exit(1)'"}, 5, 5, ".", 5*time.Second)
	if eval.Recommendation != RecommendTerminate {
		t.Fatalf("Recommendation = %v, want terminate", eval.Recommendation)
	}
	if eval.Reason == "" {
		t.Fatal("expected a reason naming the still-failing criteria")
	}
}

func TestEvaluateDescriptiveCriterionAlwaysFails(t *testing.T) {
	eval := Evaluate(context.Background(), []string{"the UI should feel snappy"}, 1, 5, ".", 5*time.Second)
	if eval.Results[0].Passed {
		t.Fatal("descriptive criteria must never pass")
	}
	if eval.Results[0].Detail != "descriptive criterion — cannot be automatically verified" {
		t.Fatalf("Detail = %q", eval.Results[0].Detail)
	}
}

func TestEvaluateCommandTimeout(t *testing.T) {
	eval := Evaluate(context.Background(), []string{"sh -c 'sleep 2'"}, 1, 5, ".", 50*time.Millisecond)
	if eval.Results[0].Passed {
		t.Fatal("expected timeout to fail the criterion")
	}
	if eval.Results[0].Detail != "command timed out" {
		t.Fatalf("Detail = %q, want 'command timed out'", eval.Results[0].Detail)
	}
}
