package cmd

import (
	"os"

	"github.com/adagradschool/scope/internal/diag"
)

// currentSessionID reads the calling sub-agent's own id, set by the
// spawner in the pane's environment.
func currentSessionID() (string, error) {
	id := os.Getenv("SESSION_ID")
	if id == "" {
		return "", diag.New(diag.KindFatal, "SESSION_ID is not set").
			WithCause("this command must be run from inside a spawned session's pane")
	}
	return id, nil
}
