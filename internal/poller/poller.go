// Package poller implements the status poller: a cancellable loop that
// watches one in-flight session generation and reports each observed status
// to a caller-supplied callback until a terminal state is reached.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
	"github.com/scott12355/MeditationApp-sub000/internal/remote"
)

// Result is the terminal outcome of a polling run.
type Result string

const (
	ResultCompleted Result = "COMPLETED"
	ResultFailed    Result = "FAILED"
	ResultTimedOut  Result = "TIMED_OUT"
	ResultCancelled Result = "CANCELLED"
)

// Observer receives each status observed by the loop, plus any synthesized
// terminal status. errorMessage is empty unless status is FAILED.
type Observer func(status models.SessionStatus, errorMessage string)

// errGenerationPending drives the retry loop while the session is not
// terminal yet.
var errGenerationPending = errors.New("generation still pending")

const getSessionStatusQuery = `
query GetSessionStatus($sessionID: ID!) {
  getSessionStatus(sessionID: $sessionID) {
    status
    errorMessage
  }
}`

// Poller polls one session until it completes, fails, times out, or is
// cancelled. A Poller is single-use; construct a new one per session.
type Poller struct {
	client      remote.Client
	sessionID   string
	interval    time.Duration
	maxDuration time.Duration
	observer    Observer
	log         logging.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
}

func New(client remote.Client, sessionID string, interval, maxDuration time.Duration, observer Observer, log logging.Logger) *Poller {
	if observer == nil {
		observer = func(models.SessionStatus, string) {}
	}
	return &Poller{
		client:      client,
		sessionID:   sessionID,
		interval:    interval,
		maxDuration: maxDuration,
		observer:    observer,
		log:         log,
	}
}

// Cancel stops the loop promptly, including mid-sleep. Safe to call from any
// goroutine, any number of times, before or after Run.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = true
	if p.cancel != nil {
		p.cancel()
	}
}

// Run blocks until a terminal outcome. Every outcome except cancellation is
// preceded by a final observer callback; errors never escape the loop.
func (p *Poller) Run(ctx context.Context) Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return ResultCancelled
	}
	p.cancel = cancel
	p.mu.Unlock()

	log := p.log.With("session_id", p.sessionID)

	var result Result
	backoff := retry.WithMaxDuration(p.maxDuration, retry.NewConstant(p.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, errorMessage, err := p.queryStatus(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn(ctx, "status query failed", "error", err)
			result = ResultFailed
			p.observer(models.StatusFailed, "could not check session status")
			return nil
		}

		p.observer(status, errorMessage)

		switch status {
		case models.StatusCompleted:
			result = ResultCompleted
			return nil
		case models.StatusFailed:
			result = ResultFailed
			return nil
		default:
			return retry.RetryableError(errGenerationPending)
		}
	})

	if err == nil {
		return result
	}

	if p.wasCancelled() || errors.Is(err, context.Canceled) {
		log.Debug(ctx, "polling cancelled")
		return ResultCancelled
	}

	log.Warn(ctx, "polling timed out")
	p.observer(models.StatusFailed, "timed out waiting for session generation")
	return ResultTimedOut
}

func (p *Poller) wasCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

func (p *Poller) queryStatus(ctx context.Context) (models.SessionStatus, string, error) {
	resp, err := p.client.Execute(ctx, getSessionStatusQuery, map[string]any{"sessionID": p.sessionID})
	if err != nil {
		return "", "", err
	}

	node, ok := resp.Data["getSessionStatus"].(map[string]any)
	if !ok {
		return "", "", errors.New("malformed status response")
	}

	status := models.ParseSessionStatus(stringField(node, "status"))
	return status, stringField(node, "errorMessage"), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
