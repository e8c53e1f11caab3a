package spawn

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adagradschool/scope/internal/config"
	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/contract"
	"github.com/adagradschool/scope/internal/diag"
	"github.com/adagradschool/scope/internal/loop"
	"github.com/adagradschool/scope/internal/mux"
	"github.com/adagradschool/scope/internal/rubric"
	"github.com/adagradschool/scope/internal/store"
)

// Spawner builds sub-agent launch commands, creates their panes in
// pane-before-save order, delivers their contracts, and (via
// LaunchDoerIteration/RunChecker) doubles as the loop engine's doer
// launcher and agent checker.
type Spawner struct {
	Store               *store.Store
	Mux                 mux.Mux
	Config              *config.ProjectConfig
	WorkDir             string
	CommandPrefix       string
	PaneDiedHookCommand string
	Summarizer          loop.Summarizer
	Waiter              loop.Waiter
}

// Result is what Spawn reports: the new session's id and, if the loop ran
// inline, its outcome.
type Result struct {
	ID         string
	LoopResult *loop.Result
}

// Spawn implements the full public spawn operation.
func (s *Spawner) Spawn(ctx context.Context, prompt string, opts Options) (*Result, error) {
	parent := os.Getenv("SESSION_ID")

	if skipped, id, err := s.applyConditionalGate(opts, parent); skipped {
		return &Result{ID: id}, err
	} else if err != nil {
		return nil, err
	}

	if opts.Alias != "" {
		inUse, err := s.Store.AliasInUse(opts.Alias)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, diag.AliasConflict(opts.Alias)
		}
	}

	if opts.Checker == "" {
		return nil, diag.Fatal("spawn requires a checker", "checker is a mandatory option")
	}

	id, err := s.Store.NextID(parent)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" && s.Config != nil {
		model = s.Config.ModelFor(constants.RoleDoer)
	}

	doerContract := contract.BuildDoer(contract.DoerOptions{
		Dependencies:        opts.Dependencies,
		Phase:               opts.Phase,
		PatternCommitment:   opts.PatternCommitment,
		ParentIntent:        opts.ParentIntent,
		PriorResults:        opts.PriorResults,
		Task:                prompt,
		FileScope:           opts.FileScope,
		Verification:        opts.Verify,
		TerminationCriteria: strings.Join(opts.Termination, "\n"),
	})

	if err := s.launchPane(id, parent, opts.Plan, model); err != nil {
		return nil, err
	}

	sess := &store.Session{
		ID:          id,
		Task:        constants.TaskPending,
		Parent:      parent,
		State:       constants.StateRunning,
		TmuxSession: windowName(id),
		CreatedAt:   time.Now().UTC(),
		Alias:       opts.Alias,
	}
	if err := s.Store.Save(sess); err != nil {
		return nil, err
	}

	if s.Config != nil {
		if _, err := s.Store.CheckAndEvict(s.Config.LRUCap); err != nil {
			return nil, err
		}
	}

	if err := s.Store.SaveContract(id, doerContract); err != nil {
		return nil, err
	}
	if err := s.Store.SaveLoopState(id, &store.LoopState{MaxIterations: opts.MaxIterations}); err != nil {
		return nil, err
	}

	if err := s.waitReady(id); err != nil {
		fmt.Fprintln(os.Stderr, diag.New(diag.KindMux, "session did not become ready in time").WithCause(err.Error()).Diagnostic())
	}

	if err := s.deliverContract(id, doerContract); err != nil {
		return nil, err
	}

	if os.Getenv("SKIP_LOOP") != "" {
		return &Result{ID: id}, nil
	}

	checkerSpec := rubric.ParseCheckerSpec(opts.Checker, isExistingFile)
	if opts.RubricPath != "" {
		checkerSpec = rubric.CheckerSpec{Kind: rubric.KindRubricFile, Value: opts.RubricPath}
	}

	checkerModel := opts.CheckerModel
	if checkerModel == "" && s.Config != nil {
		checkerModel = s.Config.ModelFor(constants.RoleChecker)
	}

	engine := &loop.Engine{
		Store:        s.Store,
		Doer:         s,
		Checker:      s,
		Summarizer:   s.Summarizer,
		Waiter:       s.Waiter,
		GateTimeout:  constants.GateTimeout,
		CheckerModel: checkerModel,
	}

	loopResult, err := engine.Run(ctx, id, prompt, checkerSpec, opts.MaxIterations, model, s.WorkDir)
	if err != nil {
		return nil, err
	}
	return &Result{ID: id, LoopResult: loopResult}, nil
}

// applyConditionalGate implements step 1 of the spawn algorithm: a
// dependency-conditioned spawn that resolves against an already-terminal
// state short-circuits into a skipped session record instead of creating
// a pane.
func (s *Spawner) applyConditionalGate(opts Options, parent string) (skipped bool, id string, err error) {
	var depID string
	var skipOnState []string
	switch {
	case opts.OnFailOf != "":
		depID = opts.OnFailOf
		skipOnState = []string{constants.StateDone}
	case opts.OnPassOf != "":
		depID = opts.OnPassOf
		skipOnState = []string{constants.StateFailed, constants.StateAborted}
	default:
		return false, "", nil
	}

	dep, err := s.Store.Load(depID)
	if err != nil {
		return false, "", err
	}
	if dep.State == constants.StateSkipped {
		return false, "", diag.Fatal("cannot depend on a skipped session", "a skipped session never produced a real result to check against")
	}
	for _, st := range skipOnState {
		if dep.State == st {
			newID, allocErr := s.Store.NextID(parent)
			if allocErr != nil {
				return false, "", allocErr
			}
			sess := &store.Session{
				ID:        newID,
				Task:      constants.TaskPending,
				Parent:    parent,
				State:     constants.StateSkipped,
				CreatedAt: time.Now().UTC(),
				DependsOn: []string{depID},
			}
			if saveErr := s.Store.Save(sess); saveErr != nil {
				return false, "", saveErr
			}
			return true, newID, nil
		}
	}
	return false, "", nil
}

func isExistingFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func windowName(id string) string {
	return "scope-" + strings.ReplaceAll(id, ".", "_")
}

func (s *Spawner) buildLaunchCommand(model string, plan bool) string {
	bin := os.Getenv("SPAWN_COMMAND")
	if bin == "" {
		bin = "claude"
	}
	args := []string{bin}
	if os.Getenv("DANGEROUSLY_SKIP_PERMISSIONS") != "" {
		args = append(args, "--dangerously-skip-permissions")
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if plan {
		args = append(args, "--permission-mode", "plan")
	}
	return strings.Join(args, " ")
}

func (s *Spawner) launchPane(id, parent string, plan bool, model string) error {
	name := windowName(id)
	command := s.buildLaunchCommand(model, plan)
	env := map[string]string{"SESSION_ID": id}
	if err := s.Mux.CreateWindow(name, command, s.WorkDir, env); err != nil {
		return diag.Wrap(diag.KindMux, err, "creating pane for "+id).
			WithCause("the mux window could not be created").
			WithFix("check the mux server is running and the agent binary is installed")
	}
	if err := s.Mux.SetPaneOption(name, "session_id", id); err != nil {
		return diag.Wrap(diag.KindMux, err, "tagging pane for "+id)
	}
	if s.PaneDiedHookCommand != "" {
		if err := s.Mux.InstallPaneDiedHook(s.PaneDiedHookCommand); err != nil {
			return diag.Wrap(diag.KindMux, err, "installing pane-died hook")
		}
	}
	return nil
}

func (s *Spawner) waitReady(id string) error {
	deadline := time.Now().Add(constants.ReadyTimeout)
	for time.Now().Before(deadline) {
		ready, err := s.Store.IsReady(id)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		time.Sleep(constants.PollInterval)
	}
	return fmt.Errorf("timed out after %s", constants.ReadyTimeout)
}

func (s *Spawner) deliverContract(id, contractMD string) error {
	name := windowName(id)
	if s.CommandPrefix != "" {
		if err := s.Mux.SendKeys(name, s.CommandPrefix, true, ""); err != nil {
			return diag.Wrap(diag.KindMux, err, "sending command prefix")
		}
	}
	if err := s.Mux.SendKeys(name, contractMD, true, ""); err != nil {
		return diag.Wrap(diag.KindMux, err, "sending contract to "+id).
			WithCause("send failed, possibly because the pane already closed")
	}

	for attempt := 0; attempt < constants.TaskPendingRetries; attempt++ {
		sess, err := s.Store.Load(id)
		if err != nil {
			return err
		}
		if sess.Task != constants.TaskPending {
			return nil
		}
		time.Sleep(constants.TaskPendingRetryWait)
		_ = s.Mux.SendKeys(name, "", true, "")
	}
	return nil
}

// LaunchDoerIteration implements loop.DoerLauncher for retry iterations: a
// fresh pane running the same agent binary, delivered the composed retry
// prompt directly as its contract.
func (s *Spawner) LaunchDoerIteration(ctx context.Context, id, prompt, model, workDir string) error {
	parent := store.ParentOf(id)
	if err := s.launchPane(id, parent, false, model); err != nil {
		return err
	}
	sess := &store.Session{
		ID:          id,
		Task:        constants.TaskPending,
		Parent:      parent,
		State:       constants.StateRunning,
		TmuxSession: windowName(id),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Save(sess); err != nil {
		return err
	}
	if err := s.waitReady(id); err != nil {
		fmt.Fprintln(os.Stderr, diag.New(diag.KindMux, "retry session did not become ready in time").WithCause(err.Error()).Diagnostic())
	}
	return s.deliverContract(id, prompt)
}

// RunChecker implements loop.AgentChecker: spawns a checker sub-session
// with the rubric-aware contract, waits for its terminal state, and
// returns its result text.
func (s *Spawner) RunChecker(ctx context.Context, parentID string, iteration int, contractMD, model string) (string, error) {
	id := store.IterSessionID(parentID, iteration, constants.RoleChecker)
	if err := s.launchPane(id, parentID, false, model); err != nil {
		return "", err
	}
	sess := &store.Session{
		ID:          id,
		Task:        constants.TaskPending,
		Parent:      parentID,
		State:       constants.StateRunning,
		TmuxSession: windowName(id),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Save(sess); err != nil {
		return "", err
	}
	if err := s.waitReady(id); err != nil {
		fmt.Fprintln(os.Stderr, diag.New(diag.KindMux, "checker session did not become ready in time").WithCause(err.Error()).Diagnostic())
	}
	if err := s.deliverContract(id, contractMD); err != nil {
		return "", err
	}

	state, err := s.Waiter.WaitTerminal(ctx, id)
	if err != nil {
		return "", diag.Wrap(diag.KindCheckerOS, err, "waiting for checker "+id)
	}
	if state != constants.StateDone {
		return "", diag.New(diag.KindCheckerOS, "checker session ended in state "+state)
	}
	return s.Store.LoadResult(id)
}
