package loop

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/adagradschool/scope/internal/store"
)

const maxGateOutputBytes = 4096

// runGates executes each gate command with a bounded timeout, in order,
// and returns one GateResult per gate.
func runGates(ctx context.Context, gates []string, workDir string, timeout time.Duration) []store.GateResult {
	results := make([]store.GateResult, 0, len(gates))
	for _, g := range gates {
		results = append(results, runGate(ctx, g, workDir, timeout))
	}
	return results
}

func runGate(ctx context.Context, command, workDir string, timeout time.Duration) store.GateResult {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", command)
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	output := truncate(string(out), maxGateOutputBytes)

	if cctx.Err() == context.DeadlineExceeded {
		return store.GateResult{Command: command, Verdict: "fail", Output: "command timed out"}
	}
	if err != nil {
		if output == "" {
			output = err.Error()
		}
		return store.GateResult{Command: command, Verdict: "fail", Output: output}
	}
	return store.GateResult{Command: command, Verdict: "pass", Output: output}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "... (truncated)"
}

// gateSummary renders gate results as the feedback format the checker
// contract and composite verdict both use: "- `cmd`: PASS" / "FAIL (output)".
func gateSummary(results []store.GateResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		verdict := "PASS"
		if r.Verdict != "pass" {
			verdict = "FAIL"
			if r.Output != "" {
				verdict += " (" + r.Output + ")"
			}
		}
		fmt.Fprintf(&b, "- `%s`: %s", r.Command, verdict)
	}
	return b.String()
}

func allGatesPass(results []store.GateResult) bool {
	for _, r := range results {
		if r.Verdict != "pass" {
			return false
		}
	}
	return true
}

func failedGateOutput(results []store.GateResult) string {
	var failed []string
	for _, r := range results {
		if r.Verdict != "pass" {
			failed = append(failed, fmt.Sprintf("`%s`: %s", r.Command, r.Output))
		}
	}
	return strings.Join(failed, "\n")
}
