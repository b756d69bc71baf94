// Package syncer implements bidirectional reconciliation between the local
// record store and the backend: pulling sessions, pushing then pulling daily
// insights, and arbitrating conflicts between the two sides.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/netx"
	"github.com/scott12355/MeditationApp-sub000/internal/remote"
	"github.com/scott12355/MeditationApp-sub000/internal/sessioncache"
	"github.com/scott12355/MeditationApp-sub000/internal/store"
)

// Phase names one stage of a sync run.
type Phase string

const (
	PhaseStarting        Phase = "STARTING"
	PhaseSyncingSessions Phase = "SYNCING_SESSIONS"
	PhaseSyncingInsights Phase = "SYNCING_INSIGHTS"
	PhaseCompleted       Phase = "COMPLETED"
	PhaseFailed          Phase = "FAILED"
)

// Event is delivered to the observer at each phase transition.
type Event struct {
	Phase   Phase
	Message string
}

// Observer receives phase transitions. It is called from the syncing
// goroutines and must not block.
type Observer func(Event)

// IdentityFunc resolves the signed-in user, or common.ErrNoCurrentUser.
type IdentityFunc func(ctx context.Context) (string, error)

// Orchestrator runs sync. At most one run is in flight at a time; starts
// within the cooldown window are rejected unless forced.
type Orchestrator struct {
	store    *store.Store
	shared   *sessioncache.Cache
	client   remote.Client
	checker  netx.Checker
	identity IdentityFunc
	observer Observer

	cooldown time.Duration
	grace    time.Duration

	mu          sync.Mutex
	inProgress  bool
	lastAttempt time.Time

	log logging.Logger
	now func() time.Time
}

func New(st *store.Store, shared *sessioncache.Cache, client remote.Client, checker netx.Checker,
	identity IdentityFunc, cooldown, grace time.Duration, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:    st,
		shared:   shared,
		client:   client,
		checker:  checker,
		identity: identity,
		observer: func(Event) {},
		cooldown: cooldown,
		grace:    grace,
		log:      log,
		now:      time.Now,
	}
}

// SetObserver registers the phase-change callback. Call before the first Run.
func (o *Orchestrator) SetObserver(fn Observer) {
	if fn != nil {
		o.observer = fn
	}
}

// Run executes one sync run. force bypasses the in-progress and cooldown
// guards (pull-to-refresh). A run either completes or fails as a whole; there
// is no mid-run cancellation beyond ctx applying to individual remote calls.
func (o *Orchestrator) Run(ctx context.Context, force bool) error {
	if err := o.begin(force); err != nil {
		return err
	}
	defer o.end()

	runID := uuid.NewString()
	log := o.log.With("sync_run", runID)
	log.Info(ctx, "sync run starting", "forced", force)
	o.observer(Event{Phase: PhaseStarting, Message: "starting sync"})

	if !o.checker.IsReachable(ctx) {
		log.Warn(ctx, "sync run aborted, network unreachable")
		o.observer(Event{Phase: PhaseFailed, Message: "network unavailable"})
		return common.ErrNetworkUnavailable
	}

	userID, err := o.identity(ctx)
	if err != nil {
		log.Warn(ctx, "sync run aborted, no signed-in user", "error", err)
		o.observer(Event{Phase: PhaseFailed, Message: "no signed-in user"})
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o.observer(Event{Phase: PhaseSyncingSessions, Message: "syncing sessions"})
		n, err := o.syncSessions(gctx, userID)
		if err != nil {
			return fmt.Errorf("session sync failed: %w", err)
		}
		log.Info(gctx, "sessions synced", "written", n)
		return nil
	})
	g.Go(func() error {
		o.observer(Event{Phase: PhaseSyncingInsights, Message: "syncing insights"})
		n, err := o.syncInsights(gctx, userID)
		if err != nil {
			return fmt.Errorf("insight sync failed: %w", err)
		}
		log.Info(gctx, "insights synced", "written", n)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error(ctx, "sync run failed", "error", err)
		o.observer(Event{Phase: PhaseFailed, Message: err.Error()})
		return err
	}

	// Both phases have finished writing; dropping the caches here means no
	// reader can observe a partially synced aggregate.
	o.store.InvalidateCache()
	o.shared.ClearAll()

	log.Info(ctx, "sync run completed")
	o.observer(Event{Phase: PhaseCompleted, Message: "sync completed"})
	return nil
}

// begin applies the single-flight and cooldown guards and stamps the attempt.
// The stamp happens even for runs that later fail on reachability or identity
// so a down network cannot be hot-looped against.
func (o *Orchestrator) begin(force bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inProgress && !force {
		return common.ErrSyncInProgress
	}
	if !force && !o.lastAttempt.IsZero() && o.now().Sub(o.lastAttempt) < o.cooldown {
		return common.ErrSyncCooldown
	}

	o.inProgress = true
	o.lastAttempt = o.now()
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.inProgress = false
	o.mu.Unlock()
}
