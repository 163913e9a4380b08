package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"valentine/internal/flow"
)

// Event names passed to the observer.
const (
	EventCreated      = "created"
	EventGeneratedURL = "generated_url"
	EventOpened       = "opened"
	EventMissingName  = "missing_name"
	EventAccepted     = "accepted"
	EventDeclined     = "declined"
)

// Outcomes passed to the observer.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// DefaultTimeout bounds every store call.
const DefaultTimeout = 5 * time.Second

var _ flow.Events = (*Recorder)(nil)

// Recorder is the best-effort front of a Store. A nil *Recorder, or one
// built around a nil Store, is a valid disabled recorder.
type Recorder struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger
	observe func(event, outcome string)

	wg sync.WaitGroup
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.timeout = d }
}

// WithLogger sets the logger used for dropped calls.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithObserver registers fn to be told the outcome of every store call.
func WithObserver(fn func(event, outcome string)) Option {
	return func(r *Recorder) { r.observe = fn }
}

// NewRecorder wraps store. store may be nil.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether a backend is configured.
func (r *Recorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Create stores rec and returns the new document id, or "" when telemetry
// is disabled or the store failed. The caller needs the id to build the
// link, so this call waits for the store, bounded by the timeout.
func (r *Recorder) Create(ctx context.Context, rec Record) string {
	if !r.Enabled() {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	id, err := r.store.CreateLog(ctx, rec)
	if err != nil {
		r.logger.Debug("telemetry create failed", "error", err)
		r.report(EventCreated, OutcomeError)
		return ""
	}
	r.report(EventCreated, OutcomeOK)
	return id
}

// Update applies patch to document id in the background.
func (r *Recorder) Update(id string, patch Patch) {
	r.update(EventGeneratedURL, id, patch)
}

// Opened implements flow.Events.
func (r *Recorder) Opened(sessionID string, at time.Time) {
	r.update(EventOpened, sessionID, OpenedPatch(at))
}

// MissingName implements flow.Events.
func (r *Recorder) MissingName(sessionID string) {
	r.update(EventMissingName, sessionID, MissingNamePatch())
}

// Accepted implements flow.Events.
func (r *Recorder) Accepted(sessionID string, decision time.Duration) {
	r.update(EventAccepted, sessionID, AcceptedPatch(flow.DecisionTime(decision)))
}

// Declined implements flow.Events.
func (r *Recorder) Declined(sessionID string, ev flow.InteractionEvent) {
	r.update(EventDeclined, sessionID, DeclinedPatch(ev.Attempt, ev.Shrinking()))
}

// Wait blocks until in-flight updates finish or time out.
func (r *Recorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

func (r *Recorder) update(event, id string, patch Patch) {
	if !r.Enabled() || id == "" {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.UpdateLog(ctx, id, patch); err != nil {
			r.logger.Debug("telemetry update failed", "event", event, "id", id, "error", err)
			r.report(event, OutcomeError)
			return
		}
		r.report(event, OutcomeOK)
	}()
}

func (r *Recorder) report(event, outcome string) {
	if r.observe != nil {
		r.observe(event, outcome)
	}
}
