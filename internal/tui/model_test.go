package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
	"github.com/adagradschool/scope/internal/watch"
)

func newTestModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), ".scope"))
	if err := st.EnsureScopeDir(); err != nil {
		t.Fatalf("EnsureScopeDir: %v", err)
	}
	for _, id := range []string{"0", "0.1", "0.2"} {
		parent := store.ParentOf(id)
		sess := &store.Session{ID: id, Parent: parent, State: constants.StateRunning}
		if err := st.Save(sess); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	w := watch.New(st)
	m := New(st, w)
	return m, st
}

func pushTree(t *testing.T, m Model, st *store.Store) Model {
	t.Helper()
	tree, err := watch.Build(st)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	updated, _ := m.Update(treeMsg{tree: tree})
	return updated.(Model)
}

func TestUpdateTreeMsgPopulatesRows(t *testing.T) {
	m, st := newTestModel(t)
	m = pushTree(t, m, st)
	if len(m.rows) != 3 {
		t.Fatalf("rows = %+v, want 3 (root + 2 children)", m.rows)
	}
}

func TestCursorMovesDownAndStopsAtEnd(t *testing.T) {
	m, st := newTestModel(t)
	m = pushTree(t, m, st)

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	for i := 0; i < 5; i++ {
		updated, _ := m.Update(down)
		m = updated.(Model)
	}
	if m.cursor != len(m.rows)-1 {
		t.Fatalf("cursor = %d, want clamped to %d", m.cursor, len(m.rows)-1)
	}
}

func TestCursorMovesUpAndStopsAtStart(t *testing.T) {
	m, st := newTestModel(t)
	m = pushTree(t, m, st)
	m.cursor = 2

	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	for i := 0; i < 5; i++ {
		updated, _ := m.Update(up)
		m = updated.(Model)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestEnterTogglesCollapseAndHidesChildren(t *testing.T) {
	m, st := newTestModel(t)
	m = pushTree(t, m, st)
	m.cursor = 0 // the root "0" row

	enter := tea.KeyMsg{Type: tea.KeyEnter}
	updated, _ := m.Update(enter)
	m = updated.(Model)

	if len(m.rows) != 1 {
		t.Fatalf("rows = %+v, want only the collapsed root visible", m.rows)
	}

	updated, _ = m.Update(enter)
	m = updated.(Model)
	if len(m.rows) != 3 {
		t.Fatalf("rows = %+v, want expanded back to 3", m.rows)
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m, st := newTestModel(t)
	m = pushTree(t, m, st)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}
