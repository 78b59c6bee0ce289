package service

import "strings"

// userAgentsSimilar reports whether two user-agent strings plausibly come
// from the same client. Exact comparison is too brittle (minor version
// bumps rewrite the string), so only the browser and OS families are
// compared. An empty side always passes: some clients send no UA at all.
func userAgentsSimilar(stored, seen string) bool {
	if stored == "" || seen == "" {
		return true
	}
	sb, so := uaFamilies(stored)
	cb, co := uaFamilies(seen)
	return sb == cb && so == co
}

// uaFamilies extracts coarse browser and OS families from a user-agent
// string. Order matters: Edge embeds "chrome", Chrome embeds "safari".
func uaFamilies(ua string) (browser, os string) {
	l := strings.ToLower(ua)
	browser, os = "unknown", "unknown"

	switch {
	case strings.Contains(l, "edg"):
		browser = "edge"
	case strings.Contains(l, "chrome"):
		browser = "chrome"
	case strings.Contains(l, "firefox"):
		browser = "firefox"
	case strings.Contains(l, "safari"):
		browser = "safari"
	}

	switch {
	case strings.Contains(l, "windows"):
		os = "windows"
	case strings.Contains(l, "android"):
		os = "android"
	case strings.Contains(l, "iphone"), strings.Contains(l, "ipad"), strings.Contains(l, "ios"):
		os = "ios"
	case strings.Contains(l, "mac"):
		os = "macos"
	case strings.Contains(l, "linux"):
		os = "linux"
	}
	return browser, os
}
