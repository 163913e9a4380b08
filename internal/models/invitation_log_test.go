package models

import "testing"

func TestInvitationLog_State(t *testing.T) {
	tests := []struct {
		name     string
		document map[string]any
		expected string
	}{
		{"fresh link", map[string]any{"wasOpened": false}, StateCreated},
		{"empty document", nil, StateCreated},
		{"opened", map[string]any{"wasOpened": true, "missingNameStateTriggered": false}, StateOpened},
		{"missing name", map[string]any{"wasOpened": false, "missingNameStateTriggered": true}, StateMissingName},
		{"accepted", map[string]any{"wasOpened": true, "result": "yes"}, StateAccepted},
		{"accepted wins over missing name", map[string]any{"result": "yes", "missingNameStateTriggered": true}, StateAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &InvitationLog{Document: tt.document}
			if got := l.State(); got != tt.expected {
				t.Errorf("State() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStateConstants(t *testing.T) {
	// Values are stored in metrics labels; changing them breaks dashboards.
	if StateCreated != "created" {
		t.Errorf("StateCreated = %q, want %q", StateCreated, "created")
	}
	if StateOpened != "opened" {
		t.Errorf("StateOpened = %q, want %q", StateOpened, "opened")
	}
	if StateMissingName != "missing_name" {
		t.Errorf("StateMissingName = %q, want %q", StateMissingName, "missing_name")
	}
	if StateAccepted != "accepted" {
		t.Errorf("StateAccepted = %q, want %q", StateAccepted, "accepted")
	}
}
