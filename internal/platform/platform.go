// Package platform classifies the host browser from its user-agent and
// platform strings. Detection runs once at startup; the result is carried as
// a value and never recomputed.
package platform

import "strings"

// Browser identifies a browser family.
type Browser string

// Browser family constants.
const (
	BrowserChrome  Browser = "chrome"
	BrowserEdge    Browser = "edge"
	BrowserFirefox Browser = "firefox"
	BrowserSafari  Browser = "safari"
	BrowserOther   Browser = "other"
)

// Info is the result of a one-time platform detection.
type Info struct {
	Browser Browser
	// SafariOnMac gates the VP9/WebM format candidate: that combination's
	// decoder support is unreliable there.
	SafariOnMac bool
	// Banner is a cosmetic console greeting with no functional effect.
	Banner string
}

// Detect classifies the given user-agent and platform strings.
// Chromium-based browsers ship "Safari" in their user-agent, so the Safari
// check must reject Chrome/Chromium/Edge tokens first.
func Detect(userAgent, platform string) Info {
	browser := classify(userAgent)

	return Info{
		Browser:     browser,
		SafariOnMac: browser == BrowserSafari && strings.Contains(platform, "Mac"),
		Banner:      banner(browser),
	}
}

func classify(userAgent string) Browser {
	switch {
	case strings.Contains(userAgent, "Edg/") || strings.Contains(userAgent, "Edge/"):
		return BrowserEdge
	case strings.Contains(userAgent, "Chrome/") || strings.Contains(userAgent, "Chromium/") || strings.Contains(userAgent, "CriOS/"):
		return BrowserChrome
	case strings.Contains(userAgent, "Firefox/"):
		return BrowserFirefox
	case strings.Contains(userAgent, "Safari/"):
		return BrowserSafari
	default:
		return BrowserOther
	}
}

func banner(b Browser) string {
	switch b {
	case BrowserSafari:
		return "hello, safari"
	case BrowserFirefox:
		return "hello, firefox"
	case BrowserEdge, BrowserChrome:
		return "hello, chromium friend"
	default:
		return "hello there"
	}
}
