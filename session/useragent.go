package session

import "strings"

// Coarse device classes derived from the user agent. The parser is
// intentionally shallow; fingerprinting carries the real signal.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// ParseUserAgent extracts coarse browser, OS, and device-type labels from a
// raw user-agent string. Unrecognized input yields "unknown" fields rather
// than an error.
func ParseUserAgent(userAgent string) (browser, os, deviceType string) {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return "unknown", "unknown", DeviceUnknown
	}

	switch {
	case strings.Contains(ua, "bot"), strings.Contains(ua, "crawler"),
		strings.Contains(ua, "spider"), strings.Contains(ua, "curl"),
		strings.Contains(ua, "wget"):
		return "bot", "unknown", DeviceBot
	}

	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		browser = "edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		browser = "opera"
	case strings.Contains(ua, "chrome"):
		browser = "chrome"
	case strings.Contains(ua, "safari"):
		browser = "safari"
	case strings.Contains(ua, "firefox"):
		browser = "firefox"
	default:
		browser = "unknown"
	}

	switch {
	case strings.Contains(ua, "android"):
		os = "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"),
		strings.Contains(ua, "ios"):
		os = "ios"
	case strings.Contains(ua, "windows"):
		os = "windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		os = "macos"
	case strings.Contains(ua, "linux"):
		os = "linux"
	default:
		os = "unknown"
	}

	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		deviceType = DeviceTablet
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "iphone"),
		strings.Contains(ua, "android"):
		deviceType = DeviceMobile
	default:
		deviceType = DeviceDesktop
	}

	return browser, os, deviceType
}
