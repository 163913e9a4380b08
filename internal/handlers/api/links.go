package api

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"valentine/internal/config"
	"valentine/internal/metrics"
	"valentine/internal/models"
	"valentine/internal/payload"
	"valentine/internal/share"
	"valentine/internal/telemetry"
	"valentine/internal/validation"
)

// LinkHandler generates invitation links via JSON API.
type LinkHandler struct {
	recorder *telemetry.Recorder
	cfg      *config.Config
	content  *config.Content
	now      func() time.Time
}

// NewLinkHandler creates a new API link handler. recorder may be nil.
func NewLinkHandler(recorder *telemetry.Recorder, cfg *config.Config, content *config.Content) *LinkHandler {
	return &LinkHandler{recorder: recorder, cfg: cfg, content: content, now: time.Now}
}

// Create builds a link for a sender and recipient. When telemetry is
// enabled the document id is embedded in the link as its session id.
func (h *LinkHandler) Create(c fiber.Ctx) error {
	var body models.CreateLinkRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	to := validation.NormalizeName(body.To)
	from := validation.NormalizeName(body.From)

	if valid, msg := validation.ValidateName(to, true); !valid {
		return jsonError(c, fiber.StatusBadRequest, "to: "+msg)
	}
	if valid, msg := validation.ValidateName(from, false); !valid {
		return jsonError(c, fiber.StatusBadRequest, "from: "+msg)
	}

	base := h.cfg.BaseURL
	if body.BaseURL != "" {
		if valid, msg := validation.ValidateBaseURL(body.BaseURL); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		base = body.BaseURL
	}

	rec := telemetry.NewRecord(from, to, c.Get(fiber.HeaderUserAgent), h.now())
	inv := payload.Invitation{
		From:      from,
		To:        to,
		SessionID: h.recorder.Create(c.Context(), rec),
	}

	link, err := payload.Link(base, inv)
	if err != nil {
		slog.Error("failed to build link", "base", base, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to build link")
	}
	h.recorder.Update(inv.SessionID, telemetry.GeneratedURLPatch(link))
	metrics.RecordLinkCreated()

	text := share.Text(h.content.ShareMessage, inv)
	c.Status(fiber.StatusCreated)
	return jsonSuccess(c, models.CreateLinkResponse{
		URL:       link,
		Token:     payload.Encode(inv),
		SessionID: inv.SessionID,
		Share: models.ShareInfo{
			Text:     text,
			WhatsApp: share.WhatsAppURL(text, link),
			QRCode:   share.QRImagePath(link),
		},
	})
}
