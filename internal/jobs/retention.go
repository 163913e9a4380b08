package jobs

import (
	"context"
	"log"
	"time"
)

// LogPruner deletes telemetry documents created before a cutoff.
type LogPruner interface {
	DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Retention periodically deletes telemetry documents older than maxAge.
type Retention struct {
	db       LogPruner
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

// NewRetention creates a retention job.
func NewRetention(database LogPruner, interval, maxAge time.Duration) *Retention {
	return &Retention{
		db:       database,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start begins the background retention loop. It returns when ctx is
// cancelled.
func (r *Retention) Start(ctx context.Context) {
	log.Printf("Retention job started (interval: %v, maxAge: %v)", r.interval, r.maxAge)

	// Run immediately on start
	r.prune(ctx)

	if r.interval <= 0 {
		log.Printf("Retention job: non-positive interval %v, not repeating", r.interval)
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention job stopped")
			return
		case <-ticker.C:
			r.prune(ctx)
		}
	}
}

// prune deletes one batch of expired documents.
func (r *Retention) prune(ctx context.Context) {
	cutoff := r.now().Add(-r.maxAge)

	deleted, err := r.db.DeleteLogsOlderThan(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Retention job: failed to delete logs: %v", err)
		}
		return
	}

	if deleted > 0 {
		log.Printf("Retention job: deleted %d logs created before %s", deleted, cutoff.Format(time.RFC3339))
	}
}
