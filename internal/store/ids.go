package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// iterSuffixRe matches the optional "-<iter>-<role>" suffix on a session id.
var iterSuffixRe = regexp.MustCompile(`^(.*)-(\d+)-(do|check)$`)

// SplitIterSuffix splits id into its base tree id and, if present, the
// iteration index and role. ok is false for plain (non-loop-child) ids.
func SplitIterSuffix(id string) (base string, iter int, role string, ok bool) {
	m := iterSuffixRe.FindStringSubmatch(id)
	if m == nil {
		return id, 0, "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return id, 0, "", false
	}
	return m[1], n, m[3], true
}

// IterSessionID builds the deterministic id for a loop child:
// "<parent>-<iter>-<role>".
func IterSessionID(parent string, iter int, role string) string {
	return fmt.Sprintf("%s-%d-%s", parent, iter, role)
}

// ParentOf returns the parent id for id, understanding both the dotted tree
// segment and the iteration suffix. ParentOf("2.1-0-check") == "2.1";
// ParentOf("2.1") == "2"; ParentOf("0") == "".
func ParentOf(id string) string {
	base, _, _, ok := SplitIterSuffix(id)
	if ok {
		return base
	}
	idx := strings.LastIndex(id, ".")
	if idx < 0 {
		return ""
	}
	return id[:idx]
}

// Depth returns the number of dot-separated tree segments in id's base
// (iteration suffix does not affect depth).
func Depth(id string) int {
	base, _, _, _ := SplitIterSuffix(id)
	return strings.Count(base, ".") + 1
}

// treeInts parses the dotted tree segment of id into its integer components.
func treeInts(base string) []int {
	parts := strings.Split(base, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

// SortKey returns a key for ordering sessions for display: iteration
// children sort after the plain parent of the same base, and plain ids use
// (-1, "") as their trailing pair so they precede any iteration child.
//
// sort_key("2.1") < sort_key("2.1-0-check") < sort_key("2.1-0-do") < sort_key("2.1-1-check")
type Key struct {
	Tree []int
	Iter int
	Role string
}

func SortKey(id string) Key {
	base, iter, role, ok := SplitIterSuffix(id)
	if !ok {
		return Key{Tree: treeInts(id), Iter: -1, Role: ""}
	}
	return Key{Tree: treeInts(base), Iter: iter, Role: role}
}

// Less implements the composite ordering over two sort keys.
func (k Key) Less(o Key) bool {
	for i := 0; i < len(k.Tree) || i < len(o.Tree); i++ {
		var a, b int
		if i < len(k.Tree) {
			a = k.Tree[i]
		}
		if i < len(o.Tree) {
			b = o.Tree[i]
		}
		if a != b {
			return a < b
		}
	}
	if k.Iter != o.Iter {
		return k.Iter < o.Iter
	}
	// "check" precedes "do" within the same iteration, matching the
	// canonical doer→checker pairing order used by the TUI.
	if k.Role != o.Role {
		return k.Role < o.Role
	}
	return false
}

// IsLoopChildID reports whether id carries an iteration suffix.
func IsLoopChildID(id string) bool {
	_, _, _, ok := SplitIterSuffix(id)
	return ok
}
