// Package share builds the share targets offered after a link is created.
package share

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"valentine/internal/payload"
)

// QR code size bounds, in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// QRPath is the route serving QR images.
const QRPath = "/api/share/qr"

// DefaultMessage is used when no share message is configured.
const DefaultMessage = "{from} has a question for you, {to} 💌"

// anonymousSender stands in for an empty From.
const anonymousSender = "Someone"

// ErrEmptyLink is returned by QRCode for an empty link.
var ErrEmptyLink = errors.New("share: empty link")

// Text renders message for inv, substituting {to} and {from}.
func Text(message string, inv payload.Invitation) string {
	if message == "" {
		message = DefaultMessage
	}
	from := strings.TrimSpace(inv.From)
	if from == "" {
		from = anonymousSender
	}
	return strings.NewReplacer("{to}", strings.TrimSpace(inv.To), "{from}", from).Replace(message)
}

// WhatsAppURL returns a wa.me deep link that pre-fills text followed by link.
func WhatsAppURL(text, link string) string {
	msg := strings.TrimSpace(text + " " + link)
	return "https://wa.me/?text=" + url.QueryEscape(msg)
}

// QRImagePath returns the relative URL of the QR image for link.
func QRImagePath(link string) string {
	return QRPath + "?url=" + url.QueryEscape(link)
}

// ClampQRSize bounds a requested size, using DefaultQRSize for zero or
// negative values.
func ClampQRSize(size int) int {
	if size <= 0 {
		return DefaultQRSize
	}
	return min(max(size, MinQRSize), MaxQRSize)
}

// QRCode renders link as a size x size PNG. The image grows past size
// when the symbol itself is larger.
func QRCode(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, ErrEmptyLink
	}
	size = ClampQRSize(size)

	code, err := qr.Encode(link, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("share: encode qr: %w", err)
	}
	// Long links produce symbols wider than small requested sizes.
	size = max(size, code.Bounds().Dx(), code.Bounds().Dy())
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("share: scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("share: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
