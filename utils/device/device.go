// Package device normalizes User-Agent strings into the coarse fingerprint
// that scopes one refresh session per client, e.g. "Android / Mobile / Chrome".
package device

import (
	"fmt"
	"strings"

	ua "github.com/mileusna/useragent"
)

// UnknownDevice is the fingerprint for absent or unparseable User-Agent
// headers. A missing User-Agent is still a valid, distinct "device".
const UnknownDevice = "Unknown"

// Fingerprint parses a User-Agent header into "OS / FormFactor / Browser".
func Fingerprint(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownDevice
	}

	parsed := ua.Parse(userAgent)

	os := parsed.OS
	if os == "" {
		os = "Unknown OS"
	}

	formFactor := "Computer"
	switch {
	case parsed.Mobile:
		formFactor = "Mobile"
	case parsed.Tablet:
		formFactor = "Tablet"
	case parsed.Bot:
		formFactor = "Bot"
	}

	browser := parsed.Name
	if browser == "" {
		browser = "Unknown Browser"
	}

	return fmt.Sprintf("%s / %s / %s", os, formFactor, browser)
}
