package handlers

import (
	"encoding/json"
	"html/template"

	"github.com/gofiber/fiber/v3"

	"valentine/internal/config"
	"valentine/internal/payload"
)

// ClientConfig is handed to the browser app in the page shell.
type ClientConfig struct {
	TokenParam     string   `json:"tokenParam"`
	DeclinePhrases []string `json:"declinePhrases"`
	SuccessGIFs    []string `json:"successGifs"`
	MusicURL       string   `json:"musicUrl"`
	Telemetry      bool     `json:"telemetry"`
}

// PageHandler serves the single page shell. Screens are chosen in the
// browser, so every app route renders the same template.
type PageHandler struct {
	cfg    *config.Config
	client template.JS
}

// NewPageHandler creates a page handler. telemetry reports whether a
// telemetry backend is configured.
func NewPageHandler(cfg *config.Config, content *config.Content, telemetry bool) (*PageHandler, error) {
	data, err := json.Marshal(ClientConfig{
		TokenParam:     payload.TokenParam,
		DeclinePhrases: content.DeclinePhrases,
		SuccessGIFs:    content.SuccessGIFs,
		MusicURL:       content.MusicURL,
		Telemetry:      telemetry,
	})
	if err != nil {
		return nil, err
	}
	// json.Marshal escapes <, > and & so the blob is safe inside a script tag.
	return &PageHandler{cfg: cfg, client: template.JS(data)}, nil
}

// Index renders the app shell for / and /create.
func (h *PageHandler) Index(c fiber.Ctx) error {
	return c.Render("index", MergeBranding(fiber.Map{
		"Title":        h.cfg.SiteTitle,
		"ClientConfig": h.client,
	}, h.cfg))
}
