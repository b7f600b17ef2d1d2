package search

import (
	"net/url"
	"strings"

	"github.com/leadharvest/leadharvest/internal/lead"
)

// facebookExcluded lists top-level path segments that never identify a
// page: listings, utility surfaces, content permalinks.
var facebookExcluded = map[string]bool{
	"events": true, "groups": true, "notes": true, "photo": true,
	"photo.php": true, "video": true, "video.php": true, "watch": true,
	"marketplace": true, "gaming": true, "fundraisers": true,
	"login": true, "login.php": true, "sharer": true, "sharer.php": true,
	"dialog": true, "pages": true, "stories": true, "story.php": true,
	"help": true, "settings": true, "notifications": true,
	"messages": true, "friends": true, "bookmarks": true,
	"directory": true, "posts": true, "reel": true,
}

// instagramExcluded lists first-segment values that are site surfaces
// rather than account handles.
var instagramExcluded = map[string]bool{
	"p": true, "reel": true, "reels": true, "explore": true,
	"tags": true, "locations": true, "developer": true, "about": true,
	"legal": true, "api": true, "accounts": true, "login": true,
	"emails": true, "challenge": true, "direct": true, "stories": true,
	"tv": true,
}

// Classify reports whether a URL points at a profile or page worth
// scraping, and on which platform. Content permalinks, utility pages and
// bare platform homepages are rejected.
func Classify(raw string) (lead.SourceType, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "web.")

	segments := pathSegments(parsed.Path)

	switch {
	case host == "facebook.com" || host == "fb.com":
		if classifyFacebook(parsed, segments) {
			return lead.SourceFacebook, true
		}
	case host == "instagram.com":
		if classifyInstagram(segments) {
			return lead.SourceInstagram, true
		}
	}
	return "", false
}

func classifyFacebook(parsed *url.URL, segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	first := strings.ToLower(segments[0])

	// Share redirectors and ad pages are never profiles.
	if first == "l.php" || first == "ads" {
		return false
	}
	if first == "profile.php" {
		return parsed.Query().Get("id") != ""
	}
	if facebookExcluded[first] {
		return false
	}
	// Deeper paths are permalinks into a page, not the page itself.
	if len(segments) > 1 {
		return false
	}
	// Numeric-only vanity segments are internal IDs exposed by
	// redirects, and never resolve as pages.
	if allDigitsSegment(first) {
		return false
	}
	return true
}

func classifyInstagram(segments []string) bool {
	if len(segments) != 1 {
		return false
	}
	handle := strings.ToLower(segments[0])
	if instagramExcluded[handle] {
		return false
	}
	// Web routes and static assets carry an extension; handles with a
	// literal dot are rare enough that the engine rarely surfaces them.
	if strings.Contains(handle, ".") {
		return false
	}
	return handle != ""
}

// genericCandidate reports whether a non-platform URL is worth a
// generic scrape: a plain web page, not engine infrastructure and not a
// platform URL that Classify already rejected for cause.
func genericCandidate(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return false
	}
	for _, skip := range []string{"google.", "gstatic.", "facebook.com", "fb.com", "instagram.com", "youtube.com"} {
		if strings.Contains(host, skip) {
			return false
		}
	}
	return true
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func allDigitsSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
