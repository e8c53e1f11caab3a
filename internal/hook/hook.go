// Package hook handles the lifecycle events a sub-agent's runtime reports
// back to scope: the first prompt it receives, activity pings, its
// terminal result, and its pane's death. Each event is a small mutation on
// the state store; the wiring from the underlying agent's own hook
// mechanism into this package's event shape happens in the agent launch
// command, not here.
package hook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/diag"
	"github.com/adagradschool/scope/internal/store"
)

// EventType names one of the lifecycle events a sub-agent's runtime can
// report.
type EventType string

const (
	EventSessionStart     EventType = "session_start"
	EventUserPromptSubmit EventType = "user_prompt_submit"
	EventActivity         EventType = "activity"
	EventStop             EventType = "stop"
	EventPaneDied         EventType = "pane_died"
)

// Event is the payload delivered alongside a lifecycle event. Not every
// field is populated for every EventType.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Prompt    string    `json:"prompt,omitempty"`
	Result    string    `json:"result,omitempty"`
	ExitCode  int       `json:"exit_code,omitempty"`
}

// Handler dispatches lifecycle events into state-store mutations.
type Handler struct {
	Store *store.Store
}

// Handle dispatches event to the mutation appropriate for its type.
func (h *Handler) Handle(ev Event) error {
	if ev.SessionID == "" {
		return diag.New(diag.KindFatal, "hook event missing session_id")
	}
	switch ev.Type {
	case EventSessionStart:
		return h.onSessionStart(ev)
	case EventUserPromptSubmit:
		return h.onUserPromptSubmit(ev)
	case EventActivity:
		return h.onActivity(ev)
	case EventStop:
		return h.onStop(ev)
	case EventPaneDied:
		return h.onPaneDied(ev)
	default:
		return diag.New(diag.KindFatal, fmt.Sprintf("unknown hook event type %q", ev.Type))
	}
}

// onSessionStart marks a session ready to receive its contract. The pane
// has already started its agent process by the time this fires; readiness
// here means the agent's own startup is complete, not that the pane exists.
func (h *Handler) onSessionStart(ev Event) error {
	return h.Store.SaveReady(ev.SessionID)
}

// onUserPromptSubmit overwrites the placeholder task description with the
// first real prompt the agent observed. Only the first submission updates
// task; later ones (retry prompts, follow-ups within the same pane) are
// only recorded in the trajectory.
func (h *Handler) onUserPromptSubmit(ev Event) error {
	sess, err := h.Store.Load(ev.SessionID)
	if err != nil {
		return err
	}
	if sess.Task == constants.TaskPending && ev.Prompt != "" {
		if err := h.Store.SaveTask(ev.SessionID, ev.Prompt); err != nil {
			return err
		}
	}
	return h.appendTrajectory(ev.SessionID, "prompt", ev.Prompt)
}

// onActivity records a liveness ping, used by the watcher to distinguish a
// stalled pane from one that is still thinking.
func (h *Handler) onActivity(ev Event) error {
	return h.Store.SaveActivity(ev.SessionID, time.Now().UTC().Format(time.RFC3339))
}

// onStop persists the agent's final result and flips the session to the
// terminal state implied by its exit code: 0 is done, anything else is
// failed. An agent that wants an "aborted" or "exited" terminal state sets
// it itself via the store before emitting this event; onStop never
// downgrades an already-terminal state.
func (h *Handler) onStop(ev Event) error {
	sess, err := h.Store.Load(ev.SessionID)
	if err != nil {
		return err
	}
	if err := h.Store.SaveResult(ev.SessionID, ev.Result); err != nil {
		return err
	}
	if constants.IsTerminal(sess.State) {
		return nil
	}
	newState := constants.StateDone
	if ev.ExitCode != 0 {
		newState = constants.StateFailed
	}
	return h.Store.UpdateState(ev.SessionID, newState)
}

// onPaneDied is the mux's pane-died hook firing: a process that exited
// without ever calling Stop (crash, kill -9, tmux pane closed by hand) is
// recorded as failed so the loop engine does not wait on it forever.
func (h *Handler) onPaneDied(ev Event) error {
	sess, err := h.Store.Load(ev.SessionID)
	if err != nil {
		return err
	}
	if constants.IsTerminal(sess.State) {
		return nil
	}
	return h.Store.UpdateState(ev.SessionID, constants.StateFailed)
}

func (h *Handler) appendTrajectory(sessionID, kind, text string) error {
	line, err := json.Marshal(map[string]string{
		"type": kind,
		"text": text,
		"at":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return h.Store.AppendTrajectory(sessionID, string(line))
}
