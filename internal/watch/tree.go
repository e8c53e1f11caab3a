// Package watch builds and maintains a session tree view for the top
// command: a fsnotify watcher over the sessions directory feeds a
// rebuild-from-scratch tree model, with cursor selection and per-node
// collapse state preserved across refreshes.
package watch

import (
	"sort"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

// Node is one row of the session tree: either a plain session or, when the
// session drives a loop, a synthetic header row grouping its iterations.
type Node struct {
	ID        string
	Session   *store.Session
	IsHeader  bool // true for a synthetic row standing for one loop iteration
	Iteration *store.IterationRecord
	DoerID    string
	CheckerID string
	Children  []*Node
}

// Tree is the full rebuilt session forest for one scope root.
type Tree struct {
	Roots []*Node
}

// Build loads every session and loop state from st and assembles the
// display tree: dotted-id parent/child nesting, with each loop-driving
// session's iteration history flattened into one synthetic child row per
// history entry (carrying that entry's doer and checker ids) instead of
// literal "<id>-<n>-do"/"<id>-<n>-check" sessions nested under it by id.
// There is no separate loop header row, and the do and check sessions of
// an iteration get no rows of their own.
func Build(st *store.Store) (*Tree, error) {
	sessions, err := st.LoadAll()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Node, len(sessions))
	var plain []*store.Session
	for _, sess := range sessions {
		if store.IsLoopChildID(sess.ID) {
			// Iteration children are folded into their parent's loop rows
			// below rather than appearing as their own tree nodes.
			continue
		}
		plain = append(plain, sess)
	}

	for _, sess := range plain {
		byID[sess.ID] = &Node{ID: sess.ID, Session: sess}
	}

	var roots []*Node
	for _, sess := range plain {
		n := byID[sess.ID]
		ls, err := st.LoadLoopState(sess.ID)
		if err != nil {
			return nil, err
		}
		if ls != nil && len(ls.History) > 0 {
			n.Children = append(n.Children, loopChildren(sess.ID, ls)...)
		}

		parent := store.ParentOf(sess.ID)
		if parent == "" || byID[parent] == nil {
			roots = append(roots, n)
			continue
		}
		byID[parent].Children = append(byID[parent].Children, n)
	}

	sortTree(roots)
	return &Tree{Roots: roots}, nil
}

func loopChildren(parentID string, ls *store.LoopState) []*Node {
	var out []*Node
	for _, rec := range ls.History {
		header := &Node{
			ID:        store.IterSessionID(parentID, rec.Iteration, "iter"),
			IsHeader:  true,
			Iteration: &rec,
			DoerID:    rec.DoerSession,
			CheckerID: rec.CheckerSession,
		}
		out = append(out, header)
	}
	return out
}

func sortTree(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return store.SortKey(nodes[i].ID).Less(store.SortKey(nodes[j].ID))
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

// Flatten walks the tree depth-first respecting collapsed, returning the
// visible rows in display order.
func Flatten(roots []*Node, collapsed map[string]bool) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			if collapsed[n.ID] {
				continue
			}
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// PreserveSelection finds the row in newRows matching selectedID; if that
// exact id is gone (its session was evicted), it walks up the id's former
// ancestor chain and returns the first match still present. If none of the
// chain survived it returns 0, or -1 when newRows is empty.
func PreserveSelection(newRows []*Node, selectedID string) int {
	for i, n := range newRows {
		if n.ID == selectedID {
			return i
		}
	}
	for id := store.ParentOf(selectedID); id != ""; id = store.ParentOf(id) {
		for i, n := range newRows {
			if n.ID == id {
				return i
			}
		}
	}
	if len(newRows) > 0 {
		return 0
	}
	return -1
}

// IsTerminal is a small convenience re-export so callers styling a row
// don't need to import constants just for this one check.
func IsTerminal(state string) bool {
	return constants.IsTerminal(state)
}
