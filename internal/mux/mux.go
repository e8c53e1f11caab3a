// Package mux adapts an external terminal multiplexer into the small
// interface scope needs to spawn and supervise sub-agent panes. The
// production backend shells out to tmux; a second backend emulates the
// same interface over an in-process pty for environments with no tmux
// server (tests, CI).
package mux

import (
	"errors"
	"time"
)

var (
	ErrNoServer      = errors.New("mux: no server running")
	ErrWindowExists  = errors.New("mux: window already exists")
	ErrWindowMissing = errors.New("mux: window not found")
)

// Mux creates and supervises the panes sub-agents run in.
type Mux interface {
	// CreateWindow starts command in a new window named name, in cwd, with
	// env appended to the pane's environment. Fails with ErrWindowExists if
	// name is already taken.
	CreateWindow(name, command, cwd string, env map[string]string) error

	// HasWindow reports whether a window named name currently exists.
	HasWindow(name string) (bool, error)

	// KillWindow destroys a window, regardless of whether its process has
	// already exited.
	KillWindow(name string) error

	// SendKeys delivers text to target. If submit is true an Enter keypress
	// follows. Payloads over a chunk threshold are split and paced; verify,
	// when non-empty, is a no-op hint in the test backend and unused by the
	// tmux backend (kept for interface symmetry with spawn's retry logic,
	// which performs its own verification against the state store).
	SendKeys(target, text string, submit bool, verify string) error

	// SetPaneOption tags target with a key/value pair (e.g. a correlation
	// id) retrievable later via pane metadata.
	SetPaneOption(target, key, value string) error

	// IsWindowDead reports whether target's pane process has exited. With
	// remain-on-exit set, a dead pane is still addressable until killed.
	IsWindowDead(target string) (bool, error)

	// InstallPaneDiedHook arranges for handlerCommand to run (with the
	// dying pane's name and exit status available to it) whenever any pane
	// under this mux's control exits.
	InstallPaneDiedHook(handlerCommand string) error

	// GetCurrentSession returns the mux session/window identifier the
	// caller process is itself running inside, or "" if not inside the mux.
	GetCurrentSession() (string, error)

	// InMux reports whether the calling process is attached to this mux.
	InMux() bool
}

// ChunkThreshold and pacing mirror the paste-vs-type heuristic: below
// threshold, SendKeys pastes the whole payload and submits immediately;
// above it, implementations must chunk with a dwell proportional to size.
const (
	ChunkThresholdBytes = 2048
	ChunkDwellBase      = 300 * time.Millisecond
	ChunkDwellPerByte   = 50 * time.Microsecond
)

// New selects a backend based on the MUX_SOCKET environment convention:
// "local" routes to the pty backend so callers can run without a real
// tmux server; any other value, including empty, selects the tmux backend.
func New(socketMode string) Mux {
	if socketMode == "local" {
		return NewPTY()
	}
	return NewTmux()
}
