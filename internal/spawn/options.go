// Package spawn implements the spawn algorithm: allocate an id, create the
// sub-agent's pane, save its session record, assemble and deliver its
// contract, and (unless skipped) run its doer→checker loop.
package spawn

// Options are the spawn command's configurable fields.
type Options struct {
	Alias            string
	Checker          string // required: shell command, "agent:" prompt, or rubric file path
	MaxIterations    int
	Model            string
	CheckerModel     string
	Plan             bool
	OnFailOf         string
	OnPassOf         string
	PipeFrom         []string
	FileScope        string
	Verify           string
	Termination      []string
	RubricPath       string
	Phase            string
	ParentIntent     string
	PatternCommitment string
	PriorResults     string
	Dependencies     string
}
