// Package janitor runs the periodic background sweep the top command keeps
// alive while attached: evict old terminal sessions past the configured
// cap, and clean up ready markers that were never consumed because their
// session crashed before the loop engine observed them.
package janitor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

// Janitor wraps a cron schedule driving eviction and stale-marker sweeps.
type Janitor struct {
	Store    *store.Store
	LRUCap   int
	cron     *cron.Cron
	OnEvict  func(evicted []string)
	OnSweep  func(stale []string)
}

// New builds a Janitor that has not yet started its schedule.
func New(st *store.Store, lruCap int) *Janitor {
	return &Janitor{Store: st, LRUCap: lruCap, cron: cron.New()}
}

// Start schedules the sweep to run every interval and returns immediately;
// the schedule keeps running until Stop is called.
func (j *Janitor) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := j.cron.AddFunc(spec, j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for any in-flight sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	evicted, err := j.Store.CheckAndEvict(j.LRUCap)
	if err == nil && j.OnEvict != nil && len(evicted) > 0 {
		j.OnEvict(evicted)
	}

	stale := j.sweepStaleReadyMarkers()
	if j.OnSweep != nil && len(stale) > 0 {
		j.OnSweep(stale)
	}
}

// sweepStaleReadyMarkers deletes ready markers older than the readiness
// timeout that belong to a session still stuck in running: the agent
// reported ready but never produced a result or a pane-died event,
// typically because the backend's pane-died hook never fired for it.
func (j *Janitor) sweepStaleReadyMarkers() []string {
	all, err := j.Store.LoadAll()
	if err != nil {
		return nil
	}
	var stale []string
	for _, sess := range all {
		ready, err := j.Store.IsReady(sess.ID)
		if err != nil || !ready {
			continue
		}
		if sess.State != constants.StateRunning {
			continue
		}
		markerPath := filepath.Join(j.Store.Root, constants.SessionsDir, sess.ID, constants.FileReady)
		info, err := os.Stat(markerPath)
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > constants.ReadyTimeout {
			_ = os.Remove(markerPath)
			stale = append(stale, sess.ID)
		}
	}
	return stale
}
