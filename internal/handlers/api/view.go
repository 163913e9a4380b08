package api

import (
	"net/url"

	"github.com/gofiber/fiber/v3"

	"valentine/internal/flow"
	"valentine/internal/models"
	"valentine/internal/payload"
)

// View resolves a link to the screen it opens on. The query carries the
// link's own parameters plus path, the route the link points at.
// Malformed pairs are skipped; whatever parsed is still resolved.
func View(c fiber.Ctx) error {
	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))

	path := query.Get("path")
	if path == "" {
		path = flow.HomePath
	}

	inv, present := payload.FromQuery(query)
	screen := flow.Derive(path, inv, present, false)

	resp := models.ViewResponse{Screen: screen.String()}
	if screen != flow.ScreenCreate {
		resp.To = inv.To
		resp.From = inv.From
		resp.SessionID = inv.SessionID
	}
	return jsonSuccess(c, resp)
}
