// Package device turns a User-Agent header into a short label for login
// audit records, e.g. "Chrome on Windows" or "Safari on iPhone (mobile)".
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "unknown device"

// Label returns a coarse, non-identifying description of the client. Only
// the browser family, OS family and form factor are kept; versions are
// dropped.
func Label(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknown
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}

	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "unknown browser"
	}

	os := osFamily(ua)
	label := browser + " on " + os
	if ua.Mobile() {
		label += " (mobile)"
	}
	return label
}

func osFamily(ua *useragent.UserAgent) string {
	info := ua.OSInfo()
	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = strings.TrimSpace(ua.Platform())
	}
	if name == "" {
		return "unknown OS"
	}
	return name
}
