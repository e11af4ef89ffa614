// Package worker hosts background supervision loops, grounded in the
// teacher's ticker-driven worker pattern (deployment polling, app health
// monitoring) and repurposed here for accept-loop supervision.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Restartable is the subset of forwardws.Service a Supervisor needs: bind
// again, and report the accept loop's terminal error.
type Restartable interface {
	Start() error
	Done() <-chan error
}

// Supervisor restarts a Restartable's accept loop when it dies for a
// reason other than cancellation, per spec §4.1: "the service does not
// self-heal from listener death; the supervisor restarts it." Backoff is
// capped exponential, doubling from an initial delay up to a ceiling, to
// avoid a hot-loop against a persistently broken bind (e.g. port already
// in use).
type Supervisor struct {
	target  Restartable
	logger  *slog.Logger
	initial time.Duration
	ceiling time.Duration
}

// NewSupervisor builds a Supervisor with a 1s initial backoff and a 30s
// ceiling.
func NewSupervisor(target Restartable, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		target:  target,
		logger:  logger,
		initial: time.Second,
		ceiling: 30 * time.Second,
	}
}

// Run blocks until ctx is cancelled or the accept loop reports an orderly
// (nil) exit on Done, restarting target whenever its accept loop exits
// with a non-nil error.
func (sv *Supervisor) Run(ctx context.Context) {
	backoff := sv.initial

	for {
		if err := sv.target.Start(); err != nil {
			sv.logger.Error("supervisor: failed to (re)start forward-websocket service", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, sv.ceiling)
			continue
		}
		backoff = sv.initial

		select {
		case <-ctx.Done():
			return
		case err := <-sv.target.Done():
			if err == nil {
				return
			}
			sv.logger.Error("supervisor: accept loop died, restarting", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, sv.ceiling)
		}
	}
}

func nextBackoff(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}
