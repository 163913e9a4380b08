package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v3"

	"valentine/internal/flow"
	"valentine/internal/middleware"
	"valentine/internal/models"
)

// maxDecisionSeconds caps client-reported decision times at 30 days.
const maxDecisionSeconds = 30 * 24 * 60 * 60

// SessionHandler forwards lifecycle events from browsers to telemetry.
// Routes are guarded by middleware.RequireSession. Every endpoint answers
// 202 at once and malformed bodies are dropped.
type SessionHandler struct {
	events flow.Events
	now    func() time.Time
}

// NewSessionHandler creates a session event handler.
func NewSessionHandler(events flow.Events) *SessionHandler {
	return &SessionHandler{events: events, now: time.Now}
}

func (h *SessionHandler) sessionID(c fiber.Ctx) (string, bool) {
	if h.events == nil {
		return "", false
	}
	return middleware.SessionID(c)
}

// Opened records that a link was viewed.
func (h *SessionHandler) Opened(c fiber.Ctx) error {
	if id, ok := h.sessionID(c); ok {
		h.events.Opened(id, h.now())
	}
	return jsonAccepted(c)
}

// MissingName records that a link without a recipient was opened.
func (h *SessionHandler) MissingName(c fiber.Ctx) error {
	if id, ok := h.sessionID(c); ok {
		h.events.MissingName(id)
	}
	return jsonAccepted(c)
}

// Accepted records a yes and the seconds it took.
func (h *SessionHandler) Accepted(c fiber.Ctx) error {
	id, ok := h.sessionID(c)
	if !ok {
		return jsonAccepted(c)
	}

	var body models.AcceptEventRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonAccepted(c)
	}
	secs := min(max(body.DecisionSeconds, 0), maxDecisionSeconds)
	h.events.Accepted(id, time.Duration(secs)*time.Second)
	return jsonAccepted(c)
}

// Declined records an interaction with the decline control.
func (h *SessionHandler) Declined(c fiber.Ctx) error {
	id, ok := h.sessionID(c)
	if !ok {
		return jsonAccepted(c)
	}

	var body models.DeclineEventRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Attempt < 1 {
		return jsonAccepted(c)
	}
	phase, ok := flow.ParsePhase(body.Phase)
	if !ok {
		return jsonAccepted(c)
	}
	h.events.Declined(id, flow.InteractionEvent{Attempt: body.Attempt, Phase: phase})
	return jsonAccepted(c)
}
