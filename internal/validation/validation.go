package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest accepted display name, in runes.
const MaxNameLength = 50

// SessionIDPattern matches the ids both telemetry backends hand out:
// Appwrite document ids and UUIDs.
var SessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,35}$`)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// NormalizeName trims a display name, collapses inner whitespace, composes
// it to NFC and upper-cases the first letter of each word. Letters after
// the first are left alone so "McKenzie" survives.
func NormalizeName(name string) string {
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(name)
}

// ValidateName checks a normalized display name. An empty name is allowed
// only when required is false (the sender may stay anonymous).
func ValidateName(name string, required bool) (bool, string) {
	if name == "" {
		if required {
			return false, "Name is required"
		}
		return true, ""
	}
	if !utf8.ValidString(name) {
		return false, "Name must be valid UTF-8"
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return false, "Name is too long"
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false, "Name contains invalid characters"
		}
	}
	return true, ""
}

// ValidateSessionID checks if an id could have come from a telemetry backend.
func ValidateSessionID(id string) bool {
	return SessionIDPattern.MatchString(id)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateBaseURL checks a link base supplied by a client. Besides
// ValidateURL it rejects bases that already carry a query or fragment.
func ValidateBaseURL(urlStr string) (bool, string) {
	if ok, msg := ValidateURL(urlStr); !ok {
		return false, msg
	}
	u, _ := url.Parse(urlStr)
	if u.RawQuery != "" || u.Fragment != "" {
		return false, "Base URL must not have a query or fragment"
	}
	if u.User != nil {
		return false, "Base URL must not contain credentials"
	}
	return true, ""
}
