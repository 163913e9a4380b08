package flow

import (
	"math/rand/v2"
	"net/url"
	"time"

	"valentine/internal/payload"
)

// History is the host's navigation surface. Push changes the path without a
// reload; Subscribe delivers every later path change until unsubscribed.
type History interface {
	Path() string
	Push(path string)
	Subscribe(fn func(path string)) (unsubscribe func())
}

// Events receives best-effort lifecycle notifications for links that carry
// a session id. Implementations must not block.
type Events interface {
	Opened(sessionID string, at time.Time)
	MissingName(sessionID string)
	Accepted(sessionID string, decision time.Duration)
	Declined(sessionID string, ev InteractionEvent)
}

// Celebrator plays the acceptance effects.
type Celebrator interface {
	Celebrate(inv payload.Invitation)
}

// ViewerConfig wires a Viewer to its host. Only History is required.
type ViewerConfig struct {
	History    History
	Query      url.Values
	Events     Events
	Celebrator Celebrator
	Surface    Surface
	Phrases    []string
	Clock      func() time.Time
	Rand       *rand.Rand
}

// Viewer is the state of one page load of the app.
type Viewer struct {
	history    History
	events     Events
	celebrator Celebrator
	surface    Surface
	phrases    []string
	now        func() time.Time
	rng        *rand.Rand

	inv     payload.Invitation
	present bool

	path        string
	screen      Screen
	accepted    bool
	opened      bool
	missingSent bool
	enteredAt   time.Time
	decline     *DeclineControl

	unsubscribe func()
}

// NewViewer decodes the link once and computes the initial screen.
func NewViewer(cfg ViewerConfig) *Viewer {
	v := &Viewer{
		history:    cfg.History,
		events:     cfg.Events,
		celebrator: cfg.Celebrator,
		surface:    cfg.Surface,
		phrases:    cfg.Phrases,
		now:        cfg.Clock,
		rng:        cfg.Rand,
	}
	if v.now == nil {
		v.now = time.Now
	}
	v.inv, v.present = payload.FromQuery(cfg.Query)

	v.path = v.history.Path()
	v.unsubscribe = v.history.Subscribe(v.navigated)
	v.refresh()
	return v
}

// Close stops observing path changes.
func (v *Viewer) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// Screen returns the current screen.
func (v *Viewer) Screen() Screen { return v.screen }

// Invitation returns the decoded invitation and whether one was present.
func (v *Viewer) Invitation() (payload.Invitation, bool) { return v.inv, v.present }

// Path returns the last observed path.
func (v *Viewer) Path() string { return v.path }

// Decline returns the decline control of the current invitation view, or
// nil outside the invitation screen.
func (v *Viewer) Decline() *DeclineControl { return v.decline }

// Accept moves an invitation to the accepted screen. It reports false when
// the current screen is not the invitation.
func (v *Viewer) Accept() bool {
	if v.screen != ScreenInvitation {
		return false
	}

	decision := v.now().Sub(v.enteredAt)
	if decision < 0 {
		decision = 0
	}

	v.accepted = true
	v.refresh()

	if v.events != nil && v.inv.SessionID != "" {
		v.events.Accepted(v.inv.SessionID, decision)
	}
	if v.celebrator != nil {
		v.celebrator.Celebrate(v.inv)
	}
	return true
}

// DeclineInteraction forwards a click or tap to the decline control and
// reports it. It returns false when there is no control to interact with.
func (v *Viewer) DeclineInteraction(b Bounds) bool {
	if v.decline == nil {
		return false
	}
	ev, ok := v.decline.Interact(b)
	if !ok {
		return false
	}
	if v.events != nil && v.inv.SessionID != "" {
		v.events.Declined(v.inv.SessionID, ev)
	}
	return true
}

// DeclineHover forwards a hover to the decline control.
func (v *Viewer) DeclineHover(b Bounds) {
	if v.decline != nil {
		v.decline.Hover(b)
	}
}

// RequestNewLink navigates to the creation screen and forgets acceptance.
func (v *Viewer) RequestNewLink() {
	v.accepted = false
	v.history.Push(CreatePath)
}

// Cancel leaves the creation screen.
func (v *Viewer) Cancel() {
	v.history.Push(HomePath)
}

// DecisionTime returns the whole seconds between first seeing the
// invitation and d, as reported on acceptance.
func DecisionTime(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (v *Viewer) navigated(path string) {
	v.path = path
	v.refresh()
}

func (v *Viewer) refresh() {
	next := Derive(v.path, v.inv, v.present, v.accepted)
	prev := v.screen
	v.screen = next

	if next != ScreenInvitation {
		v.decline = nil
	} else if v.decline == nil || prev != ScreenInvitation {
		v.decline = NewDeclineControl(v.surface, v.phrases, v.rng)
	}

	switch next {
	case ScreenInvitation:
		if v.enteredAt.IsZero() {
			v.enteredAt = v.now()
		}
		if !v.opened {
			v.opened = true
			if v.events != nil && v.inv.SessionID != "" {
				v.events.Opened(v.inv.SessionID, v.now())
			}
		}
	case ScreenMissingName:
		if !v.missingSent && v.inv.SessionID != "" {
			v.missingSent = true
			if v.events != nil {
				v.events.MissingName(v.inv.SessionID)
			}
		}
	}
}
