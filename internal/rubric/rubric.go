// Package rubric parses the markdown rubric format checkers use: optional
// Gates/Criteria/Nice-to-Have/Notes sections, plus "sugar" forms (a bare
// shell command, or an "agent:"-prefixed prompt) that expand to a
// single-section rubric.
package rubric

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Rubric is the parsed form of a rubric markdown document.
type Rubric struct {
	Title      string
	Gates      []string
	Criteria   []string
	NiceToHave []string
	Notes      string
}

// Empty reports whether the rubric has no checks to run at all.
func (r *Rubric) Empty() bool {
	return len(r.Gates) == 0 && len(r.Criteria) == 0 && len(r.NiceToHave) == 0
}

var (
	titleRe    = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionRe  = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	gateItemRe = regexp.MustCompile("^-\\s*`([^`]+)`\\s*$")
	itemRe     = regexp.MustCompile(`^-\s*(.+)$`)
)

const (
	sectionGates      = "gates"
	sectionCriteria   = "criteria"
	sectionNiceToHave = "nicetohave"
	sectionNotes      = "notes"
)

func normalizeSectionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

// Parse reads rubric markdown text into a Rubric. Unknown "## " sections
// are ignored. Gate list items must be backtick-wrapped; items without
// backticks under Gates are silently dropped (they are not commands).
func Parse(text string) *Rubric {
	r := &Rubric{}
	if m := titleRe.FindStringSubmatch(text); m != nil {
		r.Title = strings.TrimSpace(m[1])
	}

	locs := sectionRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return r
	}
	for i, loc := range locs {
		name := text[loc[2]:loc[3]]
		bodyStart := loc[1]
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := strings.TrimSpace(text[bodyStart:bodyEnd])

		switch normalizeSectionName(name) {
		case sectionGates:
			r.Gates = extractGateItems(body)
		case sectionCriteria:
			r.Criteria = extractItems(body)
		case sectionNiceToHave:
			r.NiceToHave = extractItems(body)
		case sectionNotes:
			r.Notes = body
		}
	}
	return r
}

func extractGateItems(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if m := gateItemRe.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

func extractItems(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if m := itemRe.FindStringSubmatch(line); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

// SugarToRubric expands a bare checker spec string into an equivalent
// rubric markdown document: a plain shell command becomes a one-gate
// rubric, an "agent:"-prefixed prompt becomes a one-criterion rubric. File
// paths are not recognized here: any other string becomes a gate (callers
// read rubric files themselves and call Parse).
func SugarToRubric(spec string) string {
	if prompt, ok := strings.CutPrefix(spec, "agent:"); ok {
		return "## Criteria\n- " + strings.TrimSpace(prompt) + "\n"
	}
	return "## Gates\n- `" + spec + "`\n"
}

// Hash returns a short hex prefix of the SHA-256 digest of raw rubric
// bytes, used to detect a hot-reloaded rubric changing between iterations.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}

// CheckerSpecKind tags what a checker spec string names.
type CheckerSpecKind int

const (
	KindShell CheckerSpecKind = iota
	KindAgent
	KindRubricFile
)

// CheckerSpec is the tagged-variant representation design notes call for:
// dynamic checker configuration arrives as a string, but core logic
// switches on an explicit kind rather than re-sniffing prefixes everywhere.
type CheckerSpec struct {
	Kind  CheckerSpecKind
	Value string // shell command, agent prompt, or rubric file path
}

// ParseCheckerSpec classifies a raw --checker string. It recognizes the
// "agent:" prefix itself; a path is recognized only when the caller-supplied
// isExistingFile reports it (a nil func never does), since the caller has
// filesystem access. Anything else is a shell command.
func ParseCheckerSpec(raw string, isExistingFile func(string) bool) CheckerSpec {
	if prompt, ok := strings.CutPrefix(raw, "agent:"); ok {
		return CheckerSpec{Kind: KindAgent, Value: strings.TrimSpace(prompt)}
	}
	if isExistingFile != nil && isExistingFile(raw) {
		return CheckerSpec{Kind: KindRubricFile, Value: raw}
	}
	return CheckerSpec{Kind: KindShell, Value: raw}
}
