package normalize

import (
	"net/url"
	"strings"
)

var urlPlaceholders = map[string]bool{
	"":            true,
	NotFound:      true,
	NotGenerated:  true,
	"N/A":         true,
	"N/A (Insta)": true,
	"N/A (FB)":    true,
	"#":           true,
}

// CleanURL canonicalizes a scraped URL so that two references to the same
// page compare equal. Platform hosts get platform-specific treatment:
// instagram.com and wa.me are reduced to their first path segment,
// facebook.com keeps its path and, for profile.php, the id query
// parameter. Other hosts lose query and fragment and gain a trailing
// slash unless the last segment looks like a file.
//
// CleanURL is idempotent: CleanURL(CleanURL(u)) == CleanURL(u).
// Returns NotFound for placeholders and unparseable input.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if urlPlaceholders[raw] {
		return NotFound
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return NotFound
	}

	host := strings.ToLower(parsed.Host)
	bare := strings.TrimPrefix(host, "www.")
	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}

	switch {
	case strings.HasSuffix(bare, "instagram.com"):
		if seg := firstSegment(parsed.Path); seg != "" {
			return "https://www.instagram.com/" + seg + "/"
		}
		return "https://www.instagram.com/"

	case strings.HasSuffix(bare, "facebook.com"):
		if strings.TrimSuffix(parsed.Path, "/") == "/profile.php" {
			if id := parsed.Query().Get("id"); id != "" {
				return "https://www.facebook.com/profile.php?id=" + id
			}
		}
		path := parsed.Path
		if path == "" {
			path = "/"
		}
		return "https://www.facebook.com" + path

	case bare == "wa.me":
		if seg := firstSegment(parsed.Path); seg != "" {
			return "https://wa.me/" + seg
		}
		return NotFound

	default:
		path := parsed.Path
		if path == "" {
			path = "/"
		}
		// Directory-style paths get a trailing slash so that /about and
		// /about/ collapse; file-style paths (a dot in the last segment)
		// are left alone.
		if !strings.HasSuffix(path, "/") && !strings.Contains(lastSegment(path), ".") {
			path += "/"
		}
		return scheme + "://" + host + path
	}
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

func lastSegment(path string) string {
	segs := strings.Split(strings.TrimSuffix(path, "/"), "/")
	return segs[len(segs)-1]
}

// CleanCount normalizes a follower or like count to bare digits:
// separators are dropped and a trailing k/K multiplies by a thousand.
// Unparseable input comes back unchanged.
func CleanCount(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || urlPlaceholders[s] {
		return s
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasSuffix(s, "k") || strings.HasSuffix(s, "K") {
		base := s[:len(s)-1]
		if dot := strings.Index(base, "."); dot >= 0 {
			frac := base[dot+1:]
			whole := base[:dot]
			for len(frac) < 3 {
				frac += "0"
			}
			if len(frac) > 3 {
				frac = frac[:3]
			}
			if allDigits(whole) && allDigits(frac) {
				return whole + frac
			}
			return raw
		}
		if allDigits(base) {
			return base + "000"
		}
		return raw
	}
	if allDigits(s) {
		return s
	}
	return raw
}

func allDigits(s string) bool {
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
