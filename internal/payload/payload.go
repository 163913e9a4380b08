// Package payload encodes invitation records into URL-safe link tokens.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

// Query parameter names understood in shared links.
const (
	TokenParam      = "v"
	LegacyToParam   = "to"
	LegacyFromParam = "from"
	LegacyIDParam   = "id"
)

// Invitation is the record carried by a generated link.
// An empty SessionID means no telemetry document is associated.
type Invitation struct {
	From      string `json:"from"`
	To        string `json:"to"`
	SessionID string `json:"sessionId,omitempty"`
}

// Nameless reports whether the recipient name is blank.
func (i Invitation) Nameless() bool {
	return strings.TrimSpace(i.To) == ""
}

// wire mirrors Invitation with pointer fields so the decoder can tell a
// missing key from an empty one.
type wire struct {
	From      *string `json:"from"`
	To        *string `json:"to"`
	SessionID *string `json:"sessionId"`
}

// Encode serializes an invitation into a token that can be placed in a query
// value without percent-encoding. It returns "" if serialization fails.
func Encode(inv Invitation) string {
	data, err := json.Marshal(inv)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token produced by Encode. Malformed input of any kind
// yields ok == false.
func Decode(token string) (Invitation, bool) {
	w, ok := decodeWire(token)
	if !ok {
		return Invitation{}, false
	}
	return w.invitation(), true
}

func decodeWire(token string) (wire, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return wire{}, false
	}

	data, err := decodeBase64(token)
	if err != nil || len(data) == 0 {
		return wire{}, false
	}

	// Only a JSON object is a payload; null, arrays and scalars are foreign.
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return wire{}, false
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return wire{}, false
	}
	return w, true
}

// decodeBase64 accepts the raw URL alphabet first, then padded and standard
// alphabet variants produced by older or foreign encoders.
func decodeBase64(token string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	normalized := strings.NewReplacer("+", "-", "/", "_", " ", "-").Replace(token)
	normalized = strings.TrimRight(normalized, "=")
	return base64.RawURLEncoding.DecodeString(normalized)
}

func (w wire) invitation() Invitation {
	var inv Invitation
	if w.From != nil {
		inv.From = *w.From
	}
	if w.To != nil {
		inv.To = *w.To
	}
	if w.SessionID != nil {
		inv.SessionID = *w.SessionID
	}
	return inv
}

// FromQuery reads an invitation from link query values. The encoded token is
// tried first; legacy to/from/id parameters fill any field the token does not
// carry. ok is false when neither form supplies a field.
func FromQuery(values url.Values) (Invitation, bool) {
	var (
		inv   Invitation
		found bool
	)

	w, tokenOK := decodeWire(values.Get(TokenParam))
	if tokenOK {
		found = true
	}

	pick := func(encoded *string, legacyKey string) string {
		if tokenOK && encoded != nil {
			return *encoded
		}
		if values.Has(legacyKey) {
			found = true
			return values.Get(legacyKey)
		}
		return ""
	}

	inv.To = pick(w.To, LegacyToParam)
	inv.From = pick(w.From, LegacyFromParam)
	inv.SessionID = pick(w.SessionID, LegacyIDParam)

	return inv, found
}

// Link returns base with the encoded invitation in its query string.
// Existing query parameters on base are preserved. A bare origin gets the
// root path.
func Link(base string, inv Invitation) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	q.Del(LegacyToParam)
	q.Del(LegacyFromParam)
	q.Del(LegacyIDParam)
	q.Set(TokenParam, Encode(inv))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// LegacyLink returns base with discrete to/from/id parameters.
func LegacyLink(base string, inv Invitation) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	q.Del(TokenParam)
	q.Set(LegacyFromParam, inv.From)
	q.Set(LegacyToParam, inv.To)
	if inv.SessionID != "" {
		q.Set(LegacyIDParam, inv.SessionID)
	} else {
		q.Del(LegacyIDParam)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromLink parses a full link URL and reads its invitation.
func FromLink(link string) (Invitation, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Invitation{}, false
	}
	return FromQuery(u.Query())
}
