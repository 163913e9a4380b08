package api

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"valentine/internal/share"
	"valentine/internal/validation"
)

// QRCode renders the url query parameter as a PNG QR code. An optional
// size parameter sets the edge length in pixels.
func QRCode(c fiber.Ctx) error {
	link := c.Query("url")
	if valid, msg := validation.ValidateURL(link); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "size must be an integer")
		}
		size = n
	}

	img, err := share.QRCode(link, size)
	if err != nil {
		slog.Error("failed to render qr code", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to render qr code")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(img)
}
