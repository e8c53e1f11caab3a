package mux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tmux drives a real tmux server over subprocess calls. One window per
// session; "target" throughout this file means a window name (tmux treats
// our single-pane windows as addressable by name directly).
type Tmux struct{}

func NewTmux() *Tmux { return &Tmux{} }

func (t *Tmux) run(args ...string) (string, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", wrapError(err, stderr.String(), args)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func wrapError(err error, stderr string, args []string) error {
	stderr = strings.TrimSpace(stderr)
	switch {
	case strings.Contains(stderr, "no server running"), strings.Contains(stderr, "error connecting to"):
		return ErrNoServer
	case strings.Contains(stderr, "duplicate session"), strings.Contains(stderr, "already exists"):
		return ErrWindowExists
	case strings.Contains(stderr, "session not found"), strings.Contains(stderr, "can't find"):
		return ErrWindowMissing
	case stderr != "":
		return fmt.Errorf("tmux %s: %s", args[0], stderr)
	default:
		return fmt.Errorf("tmux %s: %w", args[0], err)
	}
}

// CreateWindow starts command as the initial process of a fresh detached
// session named name. Passing command directly (rather than a session
// followed by send-keys) avoids the race where send-keys arrives before
// the shell is ready to read it.
func (t *Tmux) CreateWindow(name, command, cwd string, env map[string]string) error {
	exists, err := t.HasWindow(name)
	if err != nil {
		return err
	}
	if exists {
		return ErrWindowExists
	}
	args := []string{"new-session", "-d", "-s", name}
	if cwd != "" {
		args = append(args, "-c", cwd)
	}
	for k, v := range env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	// remain-on-exit keeps the pane addressable after the agent exits, so
	// the pane-died hook can still read its tag before the caller kills it.
	if _, err := t.run("set-option", "-g", "remain-on-exit", "on"); err != nil {
		return err
	}
	args = append(args, command)
	_, err = t.run(args...)
	return err
}

func (t *Tmux) HasWindow(name string) (bool, error) {
	_, err := t.run("has-session", "-t", "="+name)
	if err != nil {
		if errors.Is(err, ErrWindowMissing) || errors.Is(err, ErrNoServer) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *Tmux) KillWindow(name string) error {
	_, err := t.run("kill-session", "-t", name)
	if errors.Is(err, ErrWindowMissing) || errors.Is(err, ErrNoServer) {
		return nil
	}
	return err
}

// SendKeys implements the chunked paste protocol: payloads under threshold
// are pasted and submitted immediately; larger payloads are split into
// threshold-sized chunks sent without submit, dwelled proportional to
// total size, then submitted with one trailing empty Enter.
func (t *Tmux) SendKeys(target, text string, submit bool, verify string) error {
	if len(text) <= ChunkThresholdBytes {
		if _, err := t.run("send-keys", "-t", target, "-l", text); err != nil {
			return err
		}
		if submit {
			_, err := t.run("send-keys", "-t", target, "Enter")
			return err
		}
		return nil
	}

	total := len(text)
	for len(text) > 0 {
		n := ChunkThresholdBytes
		if n > len(text) {
			n = len(text)
		}
		chunk := text[:n]
		text = text[n:]
		if _, err := t.run("send-keys", "-t", target, "-l", chunk); err != nil {
			return err
		}
	}
	dwell := ChunkDwellBase + time.Duration(total)*ChunkDwellPerByte
	time.Sleep(dwell)
	if submit {
		_, err := t.run("send-keys", "-t", target, "Enter")
		return err
	}
	return nil
}

func (t *Tmux) SetPaneOption(target, key, value string) error {
	_, err := t.run("set-option", "-t", target, "-p", "@"+key, value)
	return err
}

func (t *Tmux) IsWindowDead(target string) (bool, error) {
	out, err := t.run("list-panes", "-t", target, "-F", "#{pane_dead}")
	if err != nil {
		if errors.Is(err, ErrWindowMissing) {
			return true, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) == "1", nil
}

// InstallPaneDiedHook registers a global pane-died hook. handlerCommand
// receives the dying pane's session name and exit status via tmux format
// substitution (#{session_name}, #{pane_dead_status}).
func (t *Tmux) InstallPaneDiedHook(handlerCommand string) error {
	hook := fmt.Sprintf(`run-shell "%s --window '#{session_name}' --exit-code #{pane_dead_status}"`, handlerCommand)
	_, err := t.run("set-hook", "-g", "pane-died", hook)
	return err
}

func (t *Tmux) GetCurrentSession() (string, error) {
	if os.Getenv("TMUX") == "" {
		return "", nil
	}
	return t.run("display-message", "-p", "#{session_name}")
}

func (t *Tmux) InMux() bool {
	return os.Getenv("TMUX") != ""
}

// NewPaneTag returns a fresh random UUID string for use as a pane tag.
// The spawner does not call it: it tags each pane with its session id.
func NewPaneTag() string {
	return uuid.NewString()
}
