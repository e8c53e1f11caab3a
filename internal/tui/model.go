// Package tui implements the `top` command's live session-tree view: a
// Bubble Tea program driven by internal/watch's filesystem-watching tree
// rebuilder, rendered with lipgloss for the tree/table pane and glamour for
// the selected session's contract markdown.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/adagradschool/scope/internal/store"
	"github.com/adagradschool/scope/internal/style"
	"github.com/adagradschool/scope/internal/watch"
)

// Model is the top command's Bubble Tea model.
type Model struct {
	Store   *store.Store
	Watcher *watch.Watcher

	tree      *watch.Tree
	rows      []*watch.Node
	collapsed map[string]bool
	cursor    int
	width     int
	height    int
	err       error

	renderer *glamour.TermRenderer
}

// New builds a Model. Call tea.NewProgram(m).Run() to drive it; the caller
// owns starting and stopping Watcher.
func New(st *store.Store, w *watch.Watcher) Model {
	r, _ := glamour.NewTermRenderer(glamour.WithAutoStyle())
	return Model{
		Store:     st,
		Watcher:   w,
		collapsed: map[string]bool{},
		renderer:  r,
	}
}

type treeMsg struct{ tree *watch.Tree }
type errMsg struct{ err error }

func waitForTree(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		tree, ok := <-w.Updates
		if !ok {
			return nil
		}
		return treeMsg{tree: tree}
	}
}

func waitForError(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-w.Errors
		if !ok {
			return nil
		}
		return errMsg{err: err}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForTree(m.Watcher), waitForError(m.Watcher))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case treeMsg:
		selected := ""
		if m.cursor >= 0 && m.cursor < len(m.rows) {
			selected = m.rows[m.cursor].ID
		}
		m.tree = msg.tree
		m.rows = watch.Flatten(m.tree.Roots, m.collapsed)
		m.cursor = watch.PreserveSelection(m.rows, selected)
		return m, waitForTree(m.Watcher)

	case errMsg:
		m.err = msg.err
		return m, waitForError(m.Watcher)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor >= 0 && m.cursor < len(m.rows) {
				id := m.rows[m.cursor].ID
				m.collapsed[id] = !m.collapsed[id]
				m.rows = watch.Flatten(m.tree.Roots, m.collapsed)
			}
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return style.Red.Render(fmt.Sprintf("watch error: %v\n", m.err))
	}
	if m.tree == nil {
		return style.Dim.Render("loading session tree...\n")
	}

	var b strings.Builder
	for i, row := range m.rows {
		line := renderRow(row)
		if i == m.cursor {
			line = lipgloss.NewStyle().Reverse(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	detail := m.renderDetail()
	if detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
	}
	return b.String()
}

func renderRow(n *watch.Node) string {
	indent := strings.Repeat("  ", depthOf(n.ID))
	if n.IsHeader {
		role := fmt.Sprintf("iteration %d: %s", n.Iteration.Iteration, n.Iteration.Verdict)
		return indent + style.Dim.Render(role)
	}
	label := n.ID
	if n.Session.Alias != "" {
		label = fmt.Sprintf("%s (%s)", n.ID, n.Session.Alias)
	}
	stateLabel := style.StateStyle(n.Session.State).Render(n.Session.State)
	task := n.Session.Task
	if len(task) > 60 {
		task = task[:57] + "..."
	}
	return fmt.Sprintf("%s%s [%s] %s", indent, label, stateLabel, task)
}

func depthOf(id string) int {
	return strings.Count(id, ".")
}

func (m Model) renderDetail() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	row := m.rows[m.cursor]
	if row.IsHeader || row.Session == nil {
		return ""
	}
	contract, err := m.Store.LoadContract(row.Session.ID)
	if err != nil || contract == "" {
		return ""
	}
	if m.renderer == nil {
		return contract
	}
	out, err := m.renderer.Render(contract)
	if err != nil {
		return contract
	}
	return out
}
