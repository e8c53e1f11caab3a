package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/diag"
)

// Store is a handle on one scope root (project or global).
type Store struct {
	Root string
}

// New returns a Store rooted at root (e.g. "<cwd>/.scope").
func New(root string) *Store {
	return &Store{Root: root}
}

// EnsureScopeDir idempotently creates the scope root and its sessions
// subdirectory.
func (s *Store) EnsureScopeDir() error {
	return os.MkdirAll(s.sessionsDir(), 0o755)
}

func (s *Store) sessionsDir() string {
	return filepath.Join(s.Root, constants.SessionsDir)
}

func (s *Store) sessionDir(id string) string {
	return filepath.Join(s.sessionsDir(), id)
}

// ---- ID allocation --------------------------------------------------------

// NextID allocates the next id for a child of parent (or a root id when
// parent is ""). For roots this is a single-file counter read-modify-write
// under an exclusive lock (Invariant 1). For children it scans existing
// child directories and picks max+1, retrying on racy concurrent creation.
// As a side effect, the returned child's directory is reserved (created
// empty) so Invariant 2 ("parent precedes child on disk") holds the moment
// the id is handed back, before any field is written.
func (s *Store) NextID(parent string) (string, error) {
	if parent == "" {
		return s.nextRootID()
	}
	return s.nextChildID(parent)
}

func (s *Store) nextRootID() (string, error) {
	if err := s.EnsureScopeDir(); err != nil {
		return "", err
	}
	counterPath := filepath.Join(s.Root, constants.NextIDFile)
	lockPath := counterPath + ".lock"

	var id string
	err := withLock(lockPath, func() error {
		cur := 0
		data, err := os.ReadFile(counterPath)
		if err == nil {
			cur, _ = strconv.Atoi(strings.TrimSpace(string(data)))
		} else if !os.IsNotExist(err) {
			return err
		}
		id = strconv.Itoa(cur)
		if err := writeFileAtomic(counterPath, []byte(strconv.Itoa(cur+1)), 0o644); err != nil {
			return err
		}
		// Reserve the root session's directory.
		return os.MkdirAll(s.sessionDir(id), 0o755)
	})
	return id, err
}

var directChildRe = func(parent string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(parent) + `\.(\d+)$`)
}

func (s *Store) nextChildID(parent string) (string, error) {
	if err := s.EnsureScopeDir(); err != nil {
		return "", err
	}
	parentDir := s.sessionDir(parent)
	if _, err := os.Stat(parentDir); err != nil {
		return "", diag.NotFound(fmt.Sprintf("parent session %s", parent))
	}
	lockPath := filepath.Join(parentDir, ".next_child.lock")
	re := directChildRe(parent)

	var id string
	err := withLock(lockPath, func() error {
		entries, err := os.ReadDir(s.sessionsDir())
		if err != nil {
			return err
		}
		maxIdx := -1
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if m := re.FindStringSubmatch(e.Name()); m != nil {
				n, _ := strconv.Atoi(m[1])
				if n > maxIdx {
					maxIdx = n
				}
			}
		}
		// Tolerate racy creation: keep trying the next free index if
		// Mkdir reports the directory already exists.
		for idx := maxIdx + 1; ; idx++ {
			candidate := fmt.Sprintf("%s.%d", parent, idx)
			err := os.Mkdir(s.sessionDir(candidate), 0o755)
			if err == nil {
				id = candidate
				return nil
			}
			if !os.IsExist(err) {
				return err
			}
		}
	})
	return id, err
}

// ---- Session CRUD ----------------------------------------------------------

// Save persists every field of session to its directory. Per Invariant 3,
// callers that are spawning a live agent must create the pane before
// calling Save.
func (s *Store) Save(sess *Session) error {
	dir := s.sessionDir(sess.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	fields := map[string]string{
		constants.FileTask:       sess.Task,
		constants.FileParent:     sess.Parent,
		constants.FileState:      sess.State,
		constants.FileTmux:       sess.TmuxSession,
		constants.FileCreatedAt:  sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		constants.FileAlias:      sess.Alias,
		constants.FileDependsOn:  strings.Join(sess.DependsOn, ","),
	}
	for name, value := range fields {
		if err := writeFieldString(filepath.Join(dir, name), value); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// Load reads a session's fields back from disk.
func (s *Store) Load(id string) (*Session, error) {
	dir := s.sessionDir(id)
	if _, err := os.Stat(dir); err != nil {
		return nil, diag.NotFound(fmt.Sprintf("session %s", id))
	}
	sess := &Session{ID: id}
	var err error
	if sess.Task, err = readFieldString(filepath.Join(dir, constants.FileTask)); err != nil {
		return nil, err
	}
	if sess.Parent, err = readFieldString(filepath.Join(dir, constants.FileParent)); err != nil {
		return nil, err
	}
	if sess.State, err = readFieldString(filepath.Join(dir, constants.FileState)); err != nil {
		return nil, err
	}
	if sess.TmuxSession, err = readFieldString(filepath.Join(dir, constants.FileTmux)); err != nil {
		return nil, err
	}
	if sess.Alias, err = readFieldString(filepath.Join(dir, constants.FileAlias)); err != nil {
		return nil, err
	}
	createdAtStr, err := readFieldString(filepath.Join(dir, constants.FileCreatedAt))
	if err != nil {
		return nil, err
	}
	if createdAtStr != "" {
		if t, perr := time.Parse(time.RFC3339Nano, createdAtStr); perr == nil {
			sess.CreatedAt = t
		}
	}
	dependsStr, err := readFieldString(filepath.Join(dir, constants.FileDependsOn))
	if err != nil {
		return nil, err
	}
	if dependsStr != "" {
		sess.DependsOn = strings.Split(dependsStr, ",")
	}
	return sess, nil
}

// LoadAll loads every session found under the scope root.
func (s *Store) LoadAll() ([]*Session, error) {
	entries, err := os.ReadDir(s.sessionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []*Session
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sess, err := s.Load(e.Name())
		if err != nil {
			continue // skip a session whose field files cannot be read; a reserved-but-unsaved directory loads with empty fields
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return SortKey(out[i].ID).Less(SortKey(out[j].ID))
	})
	return out, nil
}

// Delete removes a session's directory entirely.
func (s *Store) Delete(id string) error {
	return os.RemoveAll(s.sessionDir(id))
}

// UpdateState atomically rewrites just the state field. This is how the mux
// exit hook flips a session to a terminal state, and the only state
// transition allowed after a session is running.
func (s *Store) UpdateState(id, newState string) error {
	dir := s.sessionDir(id)
	if _, err := os.Stat(dir); err != nil {
		return diag.NotFound(fmt.Sprintf("session %s", id))
	}
	return writeFieldString(filepath.Join(dir, constants.FileState), newState)
}

// ---- Alias resolution -------------------------------------------------------

// LoadByAlias returns the session currently holding alias, or a NotFound
// diagnostic if none does.
func (s *Store) LoadByAlias(alias string) (*Session, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, sess := range all {
		if sess.Alias == alias {
			return sess, nil
		}
	}
	return nil, diag.NotFound(fmt.Sprintf("alias %q", alias))
}

// AliasInUse reports whether any live session currently holds alias
// (Invariant 4).
func (s *Store) AliasInUse(alias string) (bool, error) {
	if alias == "" {
		return false, nil
	}
	_, err := s.LoadByAlias(alias)
	if err != nil {
		if diag.IsKind(err, diag.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResolveID resolves an id-or-alias string to a canonical session id.
func (s *Store) ResolveID(idOrAlias string) (string, error) {
	if _, err := os.Stat(s.sessionDir(idOrAlias)); err == nil {
		return idOrAlias, nil
	}
	sess, err := s.LoadByAlias(idOrAlias)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// ParentOf returns the parent id of id (pure, no disk access required).
func (s *Store) ParentOf(id string) string {
	return ParentOf(id)
}

// GetDescendants returns every descendant of id, sorted deepest-first so
// callers can drive cascading operations (e.g. abort cascades) child before
// parent.
func (s *Store) GetDescendants(id string) ([]*Session, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []*Session
	for _, sess := range all {
		if isDescendant(sess.ID, id) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return Depth(out[i].ID) > Depth(out[j].ID)
	})
	return out, nil
}

func isDescendant(id, ancestor string) bool {
	cur := id
	for {
		p := ParentOf(cur)
		if p == "" {
			return false
		}
		if p == ancestor {
			return true
		}
		cur = p
	}
}

// ---- Loop state --------------------------------------------------------

func (s *Store) SaveLoopState(id string, ls *LoopState) error {
	data, err := json.Marshal(ls)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.sessionDir(id), constants.FileLoopState), data, 0o644)
}

func (s *Store) LoadLoopState(id string) (*LoopState, error) {
	data, err := readFileTolerant(filepath.Join(s.sessionDir(id), constants.FileLoopState))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ls LoopState
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("parsing loop_state.json for %s: %w", id, err)
	}
	return &ls, nil
}

// ---- Exit reason --------------------------------------------------------

func (s *Store) SaveExitReason(id, reason string) error {
	return writeFieldString(filepath.Join(s.sessionDir(id), constants.FileExitReason), reason)
}

func (s *Store) LoadExitReason(id string) (string, error) {
	return readFieldString(filepath.Join(s.sessionDir(id), constants.FileExitReason))
}

// ---- Result / activity / ready / trajectory --------------------------------

func (s *Store) SaveResult(id, result string) error {
	return writeFieldString(filepath.Join(s.sessionDir(id), constants.FileResult), result)
}

func (s *Store) LoadResult(id string) (string, error) {
	return readFieldString(filepath.Join(s.sessionDir(id), constants.FileResult))
}

func (s *Store) SaveTask(id, task string) error {
	return writeFieldString(filepath.Join(s.sessionDir(id), constants.FileTask), task)
}

func (s *Store) SaveActivity(id, activity string) error {
	return writeFieldString(filepath.Join(s.sessionDir(id), constants.FileActivity), activity)
}

func (s *Store) SaveReady(id string) error {
	return writeFieldString(filepath.Join(s.sessionDir(id), constants.FileReady), "1")
}

func (s *Store) IsReady(id string) (bool, error) {
	v, err := readFieldString(filepath.Join(s.sessionDir(id), constants.FileReady))
	if err != nil {
		return false, err
	}
	return v != "", nil
}

func (s *Store) AppendTrajectory(id, jsonLine string) error {
	path := filepath.Join(s.sessionDir(id), constants.FileTrajectory)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(jsonLine + "\n")
	return err
}

func (s *Store) SaveContract(id, contract string) error {
	path := filepath.Join(s.sessionDir(id), constants.FileContract)
	return writeFileAtomic(path, []byte(contract), 0o644)
}

func (s *Store) LoadContract(id string) (string, error) {
	data, err := readFileTolerant(filepath.Join(s.sessionDir(id), constants.FileContract))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// ---- Termination criteria ------------------------------------------------

func (s *Store) SaveTerminationCriteria(id string, tc *TerminationCriteria) error {
	dir := s.sessionDir(id)
	if err := writeFieldString(filepath.Join(dir, constants.FileTerminationCriteria), strings.Join(tc.Criteria, "\n")); err != nil {
		return err
	}
	if err := writeFieldString(filepath.Join(dir, constants.FileMaxIterations), strconv.Itoa(tc.MaxIterations)); err != nil {
		return err
	}
	return writeFieldString(filepath.Join(dir, constants.FileIteration), strconv.Itoa(tc.Iteration))
}

func (s *Store) LoadTerminationCriteria(id string) (*TerminationCriteria, error) {
	dir := s.sessionDir(id)
	raw, err := readFieldString(filepath.Join(dir, constants.FileTerminationCriteria))
	if err != nil {
		return nil, err
	}
	maxStr, err := readFieldString(filepath.Join(dir, constants.FileMaxIterations))
	if err != nil {
		return nil, err
	}
	iterStr, err := readFieldString(filepath.Join(dir, constants.FileIteration))
	if err != nil {
		return nil, err
	}
	tc := &TerminationCriteria{}
	if raw != "" {
		tc.Criteria = strings.Split(raw, "\n")
	}
	tc.MaxIterations, _ = strconv.Atoi(maxStr)
	tc.Iteration, _ = strconv.Atoi(iterStr)
	return tc, nil
}

// IncrementIteration bumps and persists the termination iteration counter,
// returning the new value.
func (s *Store) IncrementIteration(id string) (int, error) {
	tc, err := s.LoadTerminationCriteria(id)
	if err != nil {
		return 0, err
	}
	tc.Iteration++
	if err := s.SaveTerminationCriteria(id, tc); err != nil {
		return 0, err
	}
	return tc.Iteration, nil
}

// ---- Pattern commitment ---------------------------------------------------

func (s *Store) SavePattern(id string, p *PatternState) error {
	dir := s.sessionDir(id)
	if err := writeFieldString(filepath.Join(dir, constants.FilePatternName), p.Name); err != nil {
		return err
	}
	if err := writeFieldString(filepath.Join(dir, constants.FilePatternPhases), strings.Join(p.Phases, ",")); err != nil {
		return err
	}
	if err := writeFieldString(filepath.Join(dir, constants.FilePatternCurrent), strconv.Itoa(p.Current)); err != nil {
		return err
	}
	return writeFieldString(filepath.Join(dir, constants.FilePatternCompleted), strings.Join(p.Completed, ","))
}

func (s *Store) LoadPattern(id string) (*PatternState, error) {
	dir := s.sessionDir(id)
	name, err := readFieldString(filepath.Join(dir, constants.FilePatternName))
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	phasesStr, err := readFieldString(filepath.Join(dir, constants.FilePatternPhases))
	if err != nil {
		return nil, err
	}
	curStr, err := readFieldString(filepath.Join(dir, constants.FilePatternCurrent))
	if err != nil {
		return nil, err
	}
	completedStr, err := readFieldString(filepath.Join(dir, constants.FilePatternCompleted))
	if err != nil {
		return nil, err
	}
	p := &PatternState{Name: name}
	if phasesStr != "" {
		p.Phases = strings.Split(phasesStr, ",")
	}
	p.Current, _ = strconv.Atoi(curStr)
	if completedStr != "" {
		p.Completed = strings.Split(completedStr, ",")
	}
	return p, nil
}

// ---- LRU eviction ---------------------------------------------------------

// CheckAndEvict deletes the oldest terminal sessions beyond cap, never
// evicting a running session or one with a live descendant.
func (s *Store) CheckAndEvict(cap int) ([]string, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	if cap <= 0 || len(all) <= cap {
		return nil, nil
	}

	hasLiveDescendant := make(map[string]bool)
	for _, sess := range all {
		if constants.IsTerminal(sess.State) {
			continue
		}
		for p := ParentOf(sess.ID); p != ""; p = ParentOf(p) {
			hasLiveDescendant[p] = true
		}
	}

	var terminal []*Session
	for _, sess := range all {
		if constants.IsTerminal(sess.State) && !hasLiveDescendant[sess.ID] {
			terminal = append(terminal, sess)
		}
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].CreatedAt.Before(terminal[j].CreatedAt)
	})

	excess := len(all) - cap
	var evicted []string
	for i := 0; i < excess && i < len(terminal); i++ {
		if err := s.Delete(terminal[i].ID); err != nil {
			return evicted, err
		}
		evicted = append(evicted, terminal[i].ID)
	}
	return evicted, nil
}
