package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"valentine/internal/flow"
	"valentine/internal/models"
)

// apiEvents reports viewer events to a running server's session endpoints.
// Requests run in the background and failures are ignored.
type apiEvents struct {
	base   string
	client *http.Client
	wg     sync.WaitGroup
}

var _ flow.Events = (*apiEvents)(nil)

func newAPIEvents(base string) *apiEvents {
	return &apiEvents{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *apiEvents) Opened(sessionID string, _ time.Time) {
	e.post(sessionID, "opened", nil)
}

func (e *apiEvents) MissingName(sessionID string) {
	e.post(sessionID, "missing-name", nil)
}

func (e *apiEvents) Accepted(sessionID string, decision time.Duration) {
	e.post(sessionID, "accepted", models.AcceptEventRequest{DecisionSeconds: flow.DecisionTime(decision)})
}

func (e *apiEvents) Declined(sessionID string, ev flow.InteractionEvent) {
	e.post(sessionID, "declined", models.DeclineEventRequest{Attempt: ev.Attempt, Phase: string(ev.Phase)})
}

// Wait blocks until queued requests finish.
func (e *apiEvents) Wait() {
	e.wg.Wait()
}

func (e *apiEvents) post(sessionID, event string, body any) {
	data := []byte("{}")
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return
		}
	}
	target := e.base + "/api/sessions/" + url.PathEscape(sessionID) + "/" + event

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		resp, err := e.client.Post(target, "application/json", bytes.NewReader(data))
		if err != nil {
			return
		}
		resp.Body.Close()
	}()
}
