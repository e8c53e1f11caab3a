package rubric

import (
	"regexp"
	"strings"
)

// Verdict is a checker's recommendation for the current iteration.
type Verdict string

const (
	VerdictAccept    Verdict = "accept"
	VerdictRetry     Verdict = "retry"
	VerdictTerminate Verdict = "terminate"
)

var verdictTokenRe = regexp.MustCompile(`(?i)\b(TERMINATE|ACCEPT|RETRY)\b`)

// ParseVerdict scans a checker agent's free-text response from the last
// line backward looking for a verdict token, since a checker typically
// states its verdict last. If a single line carries more than one token,
// TERMINATE takes priority over ACCEPT, which takes priority over RETRY.
// A response with no recognizable token defaults to retry, with the full
// response kept as feedback.
func ParseVerdict(response string) (Verdict, string) {
	lines := strings.Split(strings.TrimRight(response, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		tokens := verdictTokenRe.FindAllString(lines[i], -1)
		if len(tokens) == 0 {
			continue
		}
		has := map[string]bool{}
		for _, tok := range tokens {
			has[strings.ToUpper(tok)] = true
		}
		switch {
		case has["TERMINATE"]:
			return VerdictTerminate, response
		case has["ACCEPT"]:
			return VerdictAccept, response
		case has["RETRY"]:
			return VerdictRetry, response
		}
	}
	return VerdictRetry, response
}
