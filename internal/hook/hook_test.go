package hook

import (
	"path/filepath"
	"testing"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), ".scope"))
	if err := st.EnsureScopeDir(); err != nil {
		t.Fatalf("EnsureScopeDir: %v", err)
	}
	return st
}

func TestOnSessionStartMarksReady(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", Task: constants.TaskPending, State: constants.StateRunning}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}
	if err := h.Handle(Event{Type: EventSessionStart, SessionID: "0"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	ready, err := st.IsReady("0")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !ready {
		t.Fatalf("expected ready")
	}
}

func TestOnUserPromptSubmitOnlyUpdatesTaskOnce(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", Task: constants.TaskPending, State: constants.StateRunning}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}

	if err := h.Handle(Event{Type: EventUserPromptSubmit, SessionID: "0", Prompt: "first real prompt"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := h.Handle(Event{Type: EventUserPromptSubmit, SessionID: "0", Prompt: "a follow-up"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got, err := st.Load("0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Task != "first real prompt" {
		t.Fatalf("Task = %q, want first prompt preserved", got.Task)
	}
}

func TestOnStopSetsDoneOnZeroExit(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", State: constants.StateRunning}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}
	if err := h.Handle(Event{Type: EventStop, SessionID: "0", Result: "all good", ExitCode: 0}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got, err := st.Load("0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != constants.StateDone {
		t.Fatalf("State = %s, want done", got.State)
	}
	result, err := st.LoadResult("0")
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if result != "all good" {
		t.Fatalf("Result = %q", result)
	}
}

func TestOnStopSetsFailedOnNonzeroExit(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", State: constants.StateRunning}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}
	if err := h.Handle(Event{Type: EventStop, SessionID: "0", ExitCode: 1}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got, err := st.Load("0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != constants.StateFailed {
		t.Fatalf("State = %s, want failed", got.State)
	}
}

func TestOnStopNeverDowngradesAlreadyTerminalState(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", State: constants.StateExited}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}
	if err := h.Handle(Event{Type: EventStop, SessionID: "0", ExitCode: 0}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got, err := st.Load("0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != constants.StateExited {
		t.Fatalf("State = %s, want exited preserved", got.State)
	}
}

func TestOnPaneDiedMarksFailedIfStillRunning(t *testing.T) {
	st := newTestStore(t)
	sess := &store.Session{ID: "0", State: constants.StateRunning}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := &Handler{Store: st}
	if err := h.Handle(Event{Type: EventPaneDied, SessionID: "0"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got, err := st.Load("0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != constants.StateFailed {
		t.Fatalf("State = %s, want failed", got.State)
	}
}

func TestHandleRejectsMissingSessionID(t *testing.T) {
	h := &Handler{Store: newTestStore(t)}
	if err := h.Handle(Event{Type: EventActivity}); err == nil {
		t.Fatalf("expected error for missing session id")
	}
}
