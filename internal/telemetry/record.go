// Package telemetry records the lifecycle of generated links in a document
// store. Every call is best effort: failures are logged and dropped.
package telemetry

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"
)

// LongNameThreshold is the recipient name length (in runes) above which a
// link is flagged with longNameTriggered.
const LongNameThreshold = 15

// Record is the document created when a link is generated.
type Record struct {
	FromName          string    `json:"fromName"`
	ToName            string    `json:"toName"`
	GeneratedURL      string    `json:"generatedUrl"`
	DeviceType        string    `json:"deviceType"`
	UserAgent         string    `json:"userAgent"`
	LongNameTriggered bool      `json:"longNameTriggered"`
	WasOpened         bool      `json:"wasOpened"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Device types stored in deviceType.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

var mobileUserAgent = regexp.MustCompile(`(?i)Android|iPhone|iPad`)

// DeviceType classifies a User-Agent header for the log document only; the
// decline control's surface comes from the client's feature detection.
func DeviceType(userAgent string) string {
	if mobileUserAgent.MatchString(userAgent) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// NewRecord builds the creation document for a link from sender to
// recipient requested by userAgent.
func NewRecord(from, to, userAgent string, now time.Time) Record {
	return Record{
		FromName:          from,
		ToName:            to,
		DeviceType:        DeviceType(userAgent),
		UserAgent:         userAgent,
		LongNameTriggered: utf8.RuneCountInString(to) > LongNameThreshold,
		CreatedAt:         now.UTC(),
	}
}

// Patch is a partial document update keyed by stored field name.
type Patch map[string]any

// Document field names used in patches.
const (
	FieldGeneratedURL       = "generatedUrl"
	FieldWasOpened          = "wasOpened"
	FieldOpenedAt           = "openedAt"
	FieldMissingName        = "missingNameStateTriggered"
	FieldResult             = "result"
	FieldTimeToDecision     = "timeToDecision"
	FieldMobileNoTapCount   = "mobileNoTapCount"
	FieldReachedShrinkPhase = "reachedShrinkPhase"
)

// ResultYes is the only recorded outcome; declining is never final.
const ResultYes = "yes"

// OpenedPatch marks a link as opened at t.
func OpenedPatch(t time.Time) Patch {
	return Patch{
		FieldWasOpened:   true,
		FieldOpenedAt:    t.UTC().Format(time.RFC3339),
		FieldMissingName: false,
	}
}

// MissingNamePatch flags a link that was opened without a recipient.
func MissingNamePatch() Patch {
	return Patch{FieldMissingName: true}
}

// AcceptedPatch records a yes after seconds of deliberation.
func AcceptedPatch(seconds int) Patch {
	return Patch{
		FieldResult:         ResultYes,
		FieldTimeToDecision: seconds,
	}
}

// DeclinedPatch records the decline control attempt count.
func DeclinedPatch(attempts int, shrinking bool) Patch {
	return Patch{
		FieldMobileNoTapCount:   attempts,
		FieldReachedShrinkPhase: shrinking,
	}
}

// GeneratedURLPatch stores the final link once its session id is known.
func GeneratedURLPatch(link string) Patch {
	return Patch{FieldGeneratedURL: link}
}

// Store persists telemetry documents.
type Store interface {
	CreateLog(ctx context.Context, rec Record) (string, error)
	UpdateLog(ctx context.Context, id string, patch Patch) error
}

