// Package flow derives which screen a visitor sees and drives the
// transitions between screens.
package flow

import (
	"strings"

	"valentine/internal/payload"
)

// Route paths.
const (
	HomePath   = "/"
	CreatePath = "/create"
)

// Screen is the navigation state of a view.
type Screen int

const (
	ScreenCreate Screen = iota
	ScreenMissingName
	ScreenInvitation
	ScreenAccepted
)

func (s Screen) String() string {
	switch s {
	case ScreenCreate:
		return "create"
	case ScreenMissingName:
		return "missing_name"
	case ScreenInvitation:
		return "invitation"
	case ScreenAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// MarshalText encodes the screen by name.
func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsCreatePath reports whether path is the link creation route.
func IsCreatePath(path string) bool {
	return normalizePath(path) == CreatePath
}

func normalizePath(path string) string {
	if path == "" {
		return HomePath
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return HomePath
		}
	}
	return path
}

// Derive computes the screen for a path and decoded invitation. present is
// false when no payload could be read from the link. It is a pure function.
func Derive(path string, inv payload.Invitation, present, accepted bool) Screen {
	if IsCreatePath(path) {
		return ScreenCreate
	}
	if !present || inv.Nameless() {
		return ScreenMissingName
	}
	if accepted {
		return ScreenAccepted
	}
	return ScreenInvitation
}
