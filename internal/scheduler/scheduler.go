// Package scheduler runs the periodic global-token-statistics refresh on a
// fixed interval, independent of any single HTTP request.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"identityresolver/internal/logging"
	"identityresolver/internal/stats"
	"identityresolver/internal/stats/archive"
	"identityresolver/internal/store"
)

// RefreshJobName identifies the recurring stats-refresh job.
const RefreshJobName = "stats-refresh"

// Scheduler wraps a gocron scheduler running the stats-refresh job.
type Scheduler struct {
	sched gocron.Scheduler
	job   gocron.Job
	log   *slog.Logger
}

// New creates a Scheduler that refreshes cache from st every interval,
// starting immediately. If arc is non-nil, every refresh also archives a
// compressed snapshot of the resulting stats map. The caller owns the
// returned Scheduler's lifecycle and must call Stop to release gocron's
// background goroutine.
func New(interval time.Duration, st *store.Store, cache *stats.Cache, arc *archive.Archive, logger *slog.Logger) (*Scheduler, error) {
	logger = logging.Default(logger).With("component", "scheduler")

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		entries, err := st.AllEntriesWithPhone(ctx)
		if err != nil {
			logger.Error("stats refresh: load corpus failed", "error", err)
			return
		}
		cache.Refresh(entries)
		logger.Info("stats refresh complete", "tokens", len(cache.Snapshot()), "entries", len(entries))

		if arc != nil {
			if err := arc.Snapshot(cache.Snapshot(), time.Now()); err != nil {
				logger.Error("stats snapshot archival failed", "error", err)
			}
		}
	}

	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(refresh),
		gocron.WithName(RefreshJobName),
	)
	if err != nil {
		return nil, fmt.Errorf("register stats-refresh job: %w", err)
	}

	sched := &Scheduler{sched: s, job: job, log: logger}

	// DurationJob fires for the first time only after interval elapses; run
	// once synchronously up front so the cache is populated immediately.
	refresh()

	s.Start()
	logger.Info("scheduler started", "interval", interval)
	return sched, nil
}

// Stop shuts down the scheduler, waiting for any in-flight refresh to finish.
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
