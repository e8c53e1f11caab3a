package spawn

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/adagradschool/scope/internal/config"
	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

type fakeMux struct {
	mu      sync.Mutex
	windows map[string]bool
	sent    map[string][]string
}

func newFakeMux() *fakeMux {
	return &fakeMux{windows: map[string]bool{}, sent: map[string][]string{}}
}

func (f *fakeMux) CreateWindow(name, command, cwd string, env map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[name] = true
	return nil
}

func (f *fakeMux) HasWindow(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows[name], nil
}

func (f *fakeMux) KillWindow(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, name)
	return nil
}

func (f *fakeMux) SendKeys(target, text string, submit bool, verify string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[target] = append(f.sent[target], text)
	return nil
}

func (f *fakeMux) SetPaneOption(target, key, value string) error { return nil }
func (f *fakeMux) IsWindowDead(target string) (bool, error)      { return false, nil }
func (f *fakeMux) InstallPaneDiedHook(handlerCommand string) error { return nil }
func (f *fakeMux) GetCurrentSession() (string, error)            { return "", nil }
func (f *fakeMux) InMux() bool                                   { return false }

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return text, nil
}

// fakeWaiter reports a session as terminal at once, in the state the test
// preloaded for it (done when none was preloaded).
type fakeWaiter struct {
	st     *store.Store
	states map[string]string
}

func (w *fakeWaiter) WaitTerminal(ctx context.Context, id string) (string, error) {
	if s, ok := w.states[id]; ok {
		return s, nil
	}
	return constants.StateDone, nil
}

func newTestSpawner(t *testing.T) (*Spawner, *store.Store, *fakeMux) {
	t.Helper()
	root := t.TempDir()
	st := store.New(filepath.Join(root, ".scope"))
	if err := st.EnsureScopeDir(); err != nil {
		t.Fatalf("EnsureScopeDir: %v", err)
	}
	mx := newFakeMux()
	sp := &Spawner{
		Store:      st,
		Mux:        mx,
		Config:     &config.ProjectConfig{LRUCap: constants.DefaultLRUCap, RoleModels: map[string]string{}},
		WorkDir:    root,
		Summarizer: fakeSummarizer{},
		Waiter:     &fakeWaiter{st: st, states: map[string]string{}},
	}
	return sp, st, mx
}

// markReady simulates the hook handler observing the agent's first prompt
// and writing the ready marker, unblocking Spawn's readiness wait.
func markReady(t *testing.T, st *store.Store, id string) {
	t.Helper()
	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = st.SaveReady(id)
		_ = st.SaveTask(id, "got it")
	}()
}

func TestSpawnCreatesPaneBeforeSaving(t *testing.T) {
	sp, st, mx := newTestSpawner(t)
	t.Setenv("SKIP_LOOP", "1")

	// Readiness must be satisfied asynchronously since Spawn blocks on it;
	// use a zero-wait path by pre-seeding readiness for any id up front is
	// impossible (id unknown yet), so we race a goroutine against the poll.
	doneCh := make(chan *Result, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := sp.Spawn(context.Background(), "do the thing", Options{Checker: "true", MaxIterations: 3})
		if err != nil {
			errCh <- err
			return
		}
		doneCh <- res
	}()

	// Poll for the reserved session directory to appear, then mark it ready.
	deadline := time.Now().Add(2 * time.Second)
	var id string
	for time.Now().Before(deadline) {
		all, _ := st.LoadAll()
		if len(all) > 0 {
			id = all[0].ID
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if id == "" {
		t.Fatalf("session was never saved")
	}
	markReady(t, st, id)

	select {
	case err := <-errCh:
		t.Fatalf("Spawn: %v", err)
	case res := <-doneCh:
		if res.ID != id {
			t.Fatalf("ID = %s, want %s", res.ID, id)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Spawn did not return in time")
	}

	if ok, _ := mx.HasWindow(windowName(id)); !ok {
		t.Fatalf("window %s was never created", windowName(id))
	}
	sess, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.State != constants.StateRunning {
		t.Fatalf("State = %s, want running", sess.State)
	}
}

func TestSpawnAliasConflict(t *testing.T) {
	sp, st, _ := newTestSpawner(t)
	existing := &store.Session{ID: "0", State: constants.StateRunning, Alias: "taken"}
	if err := st.Save(existing); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := sp.Spawn(context.Background(), "do the thing", Options{Alias: "taken", Checker: "true"})
	if err == nil {
		t.Fatalf("expected alias conflict error")
	}
}

func TestSpawnRequiresChecker(t *testing.T) {
	sp, _, _ := newTestSpawner(t)
	_, err := sp.Spawn(context.Background(), "do the thing", Options{})
	if err == nil {
		t.Fatalf("expected error for missing checker")
	}
}

func TestSpawnOnFailOfSkipsWhenDependencySucceeded(t *testing.T) {
	sp, st, mx := newTestSpawner(t)
	dep := &store.Session{ID: "0", State: constants.StateDone}
	if err := st.Save(dep); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := sp.Spawn(context.Background(), "cleanup", Options{Checker: "true", OnFailOf: "0"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	sess, err := st.Load(res.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.State != constants.StateSkipped {
		t.Fatalf("State = %s, want skipped", sess.State)
	}
	if len(sess.DependsOn) != 1 || sess.DependsOn[0] != "0" {
		t.Fatalf("DependsOn = %v", sess.DependsOn)
	}
	if ok, _ := mx.HasWindow(windowName(res.ID)); ok {
		t.Fatalf("skipped session should never get a pane")
	}
}
