package models

// CreateLinkRequest is the body of POST /api/links.
type CreateLinkRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// ShareInfo carries ready-made share targets for a link.
type ShareInfo struct {
	Text     string `json:"text"`
	WhatsApp string `json:"whatsapp"`
	QRCode   string `json:"qrCode"`
}

// CreateLinkResponse is returned after a link is generated.
type CreateLinkResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId,omitempty"`
	Share     ShareInfo `json:"share"`
}

// ViewResponse describes the screen a link resolves to.
type ViewResponse struct {
	Screen    string `json:"screen"`
	To        string `json:"to,omitempty"`
	From      string `json:"from,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// DeclineEventRequest is the body of POST /api/sessions/:id/declined.
type DeclineEventRequest struct {
	Attempt int    `json:"attempt"`
	Phase   string `json:"phase"`
}

// AcceptEventRequest is the body of POST /api/sessions/:id/accepted.
type AcceptEventRequest struct {
	DecisionSeconds int `json:"decisionSeconds"`
}
