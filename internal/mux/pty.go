package mux

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty/v2"
)

// PTY is a tmux-free backend: each "window" is an in-process pty running
// command, whose output a goroutine reads continuously and discards. It
// exists so spawn/wait/loop tests (and CI) never need a real tmux server;
// select it by setting MUX_SOCKET=local.
type PTY struct {
	mu      sync.Mutex
	windows map[string]*ptyWindow
}

type ptyWindow struct {
	cmd     *exec.Cmd
	file    *os.File
	options map[string]string
	dead    bool
	exitErr error
}

func NewPTY() *PTY {
	return &PTY{windows: make(map[string]*ptyWindow)}
}

func (p *PTY) CreateWindow(name, command, cwd string, env map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.windows[name]; exists {
		return ErrWindowExists
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("starting pty for window %s: %w", name, err)
	}

	w := &ptyWindow{cmd: cmd, file: f, options: make(map[string]string)}
	p.windows[name] = w

	go func() {
		io.Copy(io.Discard, f)
		err := cmd.Wait()
		p.mu.Lock()
		w.dead = true
		w.exitErr = err
		p.mu.Unlock()
	}()

	return nil
}

func (p *PTY) HasWindow(name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.windows[name]
	return ok, nil
}

func (p *PTY) KillWindow(name string) error {
	p.mu.Lock()
	w, ok := p.windows[name]
	delete(p.windows, name)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	return w.file.Close()
}

func (p *PTY) SendKeys(target, text string, submit bool, verify string) error {
	p.mu.Lock()
	w, ok := p.windows[target]
	p.mu.Unlock()
	if !ok {
		return ErrWindowMissing
	}

	write := func(s string) error {
		_, err := w.file.Write([]byte(s))
		return err
	}

	if len(text) <= ChunkThresholdBytes {
		if err := write(text); err != nil {
			return err
		}
	} else {
		total := len(text)
		for len(text) > 0 {
			n := ChunkThresholdBytes
			if n > len(text) {
				n = len(text)
			}
			if err := write(text[:n]); err != nil {
				return err
			}
			text = text[n:]
		}
		time.Sleep(ChunkDwellBase + time.Duration(total)*ChunkDwellPerByte)
	}
	if submit {
		return write("\r")
	}
	return nil
}

func (p *PTY) SetPaneOption(target, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[target]
	if !ok {
		return ErrWindowMissing
	}
	w.options[key] = value
	return nil
}

func (p *PTY) IsWindowDead(target string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[target]
	if !ok {
		return true, nil
	}
	return w.dead, nil
}

// InstallPaneDiedHook is a no-op on the pty backend: there is no external
// hook mechanism to wire, so callers that need exit notification should
// poll IsWindowDead instead. Tests exercise that path directly.
func (p *PTY) InstallPaneDiedHook(handlerCommand string) error {
	return nil
}

func (p *PTY) GetCurrentSession() (string, error) {
	return "", nil
}

func (p *PTY) InMux() bool {
	return false
}
