package flow

import (
	"math"
	"math/rand/v2"
)

// Surface is the input capability of the presenting device. It is resolved
// once by the host and never re-evaluated.
type Surface int

const (
	// SurfaceTouch has no hover: the decline control cycles phrases, then
	// shrinks away.
	SurfaceTouch Surface = iota
	// SurfacePointer can hover: the decline control jumps away.
	SurfacePointer
)

func (s Surface) String() string {
	if s == SurfacePointer {
		return "pointer"
	}
	return "touch"
}

// Phase describes what a decline interaction did.
type Phase string

const (
	PhaseEvading     Phase = "evading"
	PhaseCyclingText Phase = "cycling-text"
	PhaseShrinking   Phase = "shrinking"
)

// ParsePhase reads a phase reported by a remote host.
func ParsePhase(s string) (Phase, bool) {
	switch p := Phase(s); p {
	case PhaseEvading, PhaseCyclingText, PhaseShrinking:
		return p, true
	}
	return "", false
}

// DefaultDeclinePhrases are shown in order on touch surfaces.
var DefaultDeclinePhrases = []string{"No", "Are you sure?", "Think again", "Last chance", "...okay wow"}

const (
	// ShrinkStep is the scale lost per interaction once phrases run out.
	ShrinkStep = 0.2
	// EdgeMargin keeps a relocated control away from the container edge.
	EdgeMargin = 40.0

	scaleEpsilon = 1e-9
)

// InteractionEvent records one interaction with the decline control.
type InteractionEvent struct {
	Attempt int   `json:"attempt"`
	Phase   Phase `json:"phase"`
}

// Shrinking reports whether the phrase list had been exhausted.
func (e InteractionEvent) Shrinking() bool {
	return e.Phase == PhaseShrinking
}

// Point is an offset from the control's resting position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds are the measured sizes of the container and the control.
type Bounds struct {
	ContainerWidth  float64
	ContainerHeight float64
	ControlWidth    float64
	ControlHeight   float64
}

// Limits returns the maximum absolute offset on each axis.
func (b Bounds) Limits() (maxX, maxY float64) {
	maxX = math.Max(0, b.ContainerWidth/2-b.ControlWidth/2-EdgeMargin)
	maxY = math.Max(0, b.ContainerHeight/2-b.ControlHeight/2-EdgeMargin)
	return maxX, maxY
}

// DeclineControl is the evasive "No" button of one invitation view.
type DeclineControl struct {
	surface  Surface
	phrases  []string
	rng      *rand.Rand
	attempts int
	pos      Point
}

// NewDeclineControl creates a control for surface. Empty phrases fall back
// to DefaultDeclinePhrases; a nil rng uses a randomly seeded source.
func NewDeclineControl(surface Surface, phrases []string, rng *rand.Rand) *DeclineControl {
	if len(phrases) == 0 {
		phrases = DefaultDeclinePhrases
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DeclineControl{
		surface: surface,
		phrases: append([]string(nil), phrases...),
		rng:     rng,
	}
}

// Surface returns the capability the control was created for.
func (d *DeclineControl) Surface() Surface { return d.surface }

// Attempts returns the number of interactions so far.
func (d *DeclineControl) Attempts() int { return d.attempts }

// Position returns the current offset of the control.
func (d *DeclineControl) Position() Point { return d.pos }

// Label returns the text the control currently shows.
func (d *DeclineControl) Label() string {
	if d.surface == SurfacePointer {
		return d.phrases[0]
	}
	if d.attempts < len(d.phrases) {
		return d.phrases[d.attempts]
	}
	return d.phrases[len(d.phrases)-1]
}

func (d *DeclineControl) shrinkSteps() int {
	if d.surface == SurfacePointer {
		return 0
	}
	return max(0, d.attempts-(len(d.phrases)-1))
}

// Scale returns the visual scale in [0, 1].
func (d *DeclineControl) Scale() float64 {
	s := 1 - float64(d.shrinkSteps())*ShrinkStep
	if s <= scaleEpsilon {
		return 0
	}
	return s
}

// Renderable reports whether the control is still shown. Once false it
// stays false for the lifetime of the control.
func (d *DeclineControl) Renderable() bool {
	return d.Scale() > 0
}

// Hover relocates the control on pointer surfaces. It is a no-op on touch
// surfaces and once the control is gone.
func (d *DeclineControl) Hover(b Bounds) {
	if d.surface != SurfacePointer || !d.Renderable() {
		return
	}
	d.relocate(b)
}

// Interact registers a click or tap. It returns false without side effects
// when the control has been removed.
func (d *DeclineControl) Interact(b Bounds) (InteractionEvent, bool) {
	if !d.Renderable() {
		return InteractionEvent{}, false
	}

	d.attempts++
	ev := InteractionEvent{Attempt: d.attempts}

	switch {
	case d.surface == SurfacePointer:
		ev.Phase = PhaseEvading
		d.relocate(b)
	case d.attempts >= len(d.phrases):
		ev.Phase = PhaseShrinking
	default:
		ev.Phase = PhaseCyclingText
	}
	return ev, true
}

func (d *DeclineControl) relocate(b Bounds) {
	maxX, maxY := b.Limits()
	d.pos = Point{
		X: (d.rng.Float64() - 0.5) * maxX * 2,
		Y: (d.rng.Float64() - 0.5) * maxY * 2,
	}
}
