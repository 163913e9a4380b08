package models

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle states of a logged link.
const (
	StateCreated     = "created"
	StateOpened      = "opened"
	StateMissingName = "missing_name"
	StateAccepted    = "accepted"
)

// InvitationLog is a stored telemetry document.
type InvitationLog struct {
	ID        uuid.UUID      `json:"id"`
	Document  map[string]any `json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// State derives the lifecycle state from the document fields. It mirrors
// the CASE expression used for metrics.
func (l *InvitationLog) State() string {
	switch {
	case l.Document["result"] == "yes":
		return StateAccepted
	case l.Document["missingNameStateTriggered"] == true:
		return StateMissingName
	case l.Document["wasOpened"] == true:
		return StateOpened
	default:
		return StateCreated
	}
}

// LogStateCount is the number of logs in one lifecycle state.
type LogStateCount struct {
	State string
	Count int64
}
