package spawn

import "context"

// TruncateSummarizer implements loop.Summarizer with a bounded truncation
// rather than a second agent call: a summarization round-trip would itself
// need a sub-agent spawn, and the loop engine already falls back to
// truncation when a Summarizer errors, so this is that same behavior made
// the default rather than a fallback.
type TruncateSummarizer struct {
	MaxLen int
}

// Summarize returns text unchanged if it fits within MaxLen, else the first
// MaxLen bytes followed by a truncation marker.
func (s TruncateSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	max := s.MaxLen
	if max <= 0 {
		max = 2000
	}
	if len(text) <= max {
		return text, nil
	}
	return text[:max] + "\n...(truncated)", nil
}
