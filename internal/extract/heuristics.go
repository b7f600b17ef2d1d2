package extract

import (
	"regexp"
	"strings"

	"github.com/leadharvest/leadharvest/internal/normalize"
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe   = regexp.MustCompile(`\+?\d[\d \t().\-]{5,}\d`)
	waLinkRe  = regexp.MustCompile(`https?://(?:wa\.me/|api\.whatsapp\.com/send\?phone=)\+?(\d{7,15})`)
	urlRe     = regexp.MustCompile(`https?://(?:www\.)?[a-zA-Z0-9\-]+(?:\.[a-zA-Z0-9\-]+)+(?:/[^\s"'<>)]*)?`)
	igURLRe   = regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[A-Za-z0-9._\-]{2,30}/?`)
	fbURLRe   = regexp.MustCompile(`https?://(?:www\.|m\.)?facebook\.com/[^\s"'<>)]+`)
	igHandle  = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9._\-]{1,29})\b`)
	countRe   = regexp.MustCompile(`^[\d.,\s]+[kKmM]?$`)
	postalRe  = regexp.MustCompile(`\b\d{1,5}\s+[A-Za-zÀ-ÿ]{3,}`)
)

// socialHosts are never accepted as a business website.
var socialHosts = []string{
	"facebook.com", "fb.me", "fb.com", "instagram.com",
	"wa.me", "whatsapp.com", "messenger.com", "m.me",
}

var addressKeywords = []string{
	"rue", "avenue", "av.", "boulevard", "bd ", "quartier", "lotissement",
	"lot ", "immeuble", "résidence", "residence", "angle", "n°", "km ",
	"casablanca", "rabat", "marrakech", "tanger", "agadir", "fès", "fes",
	"kénitra", "kenitra", "oujda", "meknès", "meknes", "street", "road",
}

var buttonWords = []string{
	"follow", "following", "message", "like", "share", "see more",
	"suivre", "suivi(e)", "contacter", "j'aime", "partager", "voir plus",
	"s'abonner", "abonné", "plus d'infos", "en savoir plus", "sponsored",
	"sponsorisé", "log in", "se connecter", "sign up", "créer un compte",
}

// applyHeuristics is tier 3: for every field neither the region lookup
// nor the model resolved, fall back to per-field pattern matching on the
// raw page text. Each field is attempted independently.
func applyHeuristics(direct *Fields, ai Fields, content string) {
	open := func(d, a string) bool { return d == "" && a == "" }

	if open(direct.Email, ai.Email) {
		direct.Email = emailRe.FindString(content)
	}

	if open(direct.Phone, ai.Phone) {
		direct.Phone = bestPhone(content)
	}

	if open(direct.WhatsApp, ai.WhatsApp) {
		if m := waLinkRe.FindStringSubmatch(content); m != nil {
			direct.WhatsApp = "https://wa.me/" + m[1]
			// The link's number sometimes beats the one parsed from
			// loose text.
			if normalize.DigitCount(m[1]) > normalize.DigitCount(direct.Phone) && ai.Phone == "" {
				direct.Phone = m[1]
			}
		}
	}

	if open(direct.Website, ai.Website) {
		direct.Website = findWebsite(content)
	}

	if open(direct.Instagram, ai.Instagram) {
		if m := igURLRe.FindString(content); m != "" {
			direct.Instagram = m
		} else if m := igHandle.FindStringSubmatch(content); m != nil {
			direct.Instagram = "https://www.instagram.com/" + m[1] + "/"
		}
	}

	if open(direct.Facebook, ai.Facebook) {
		direct.Facebook = fbURLRe.FindString(content)
	}

	if open(direct.Address, ai.Address) {
		direct.Address = findAddressLine(content)
	}

	if direct.Posts == "" && direct.Followers == "" && direct.Following == "" {
		direct.Posts, direct.Followers, direct.Following = parseCounts(content)
	}

	if open(direct.Bio, ai.Bio) {
		direct.Bio = residualBio(content, *direct)
	}
}

// bestPhone collects phone-like substrings, cleans each, and keeps the
// one with the most digits. Fewer than 7 digits is not a phone.
func bestPhone(content string) string {
	best := ""
	bestDigits := 0
	for _, cand := range phoneRe.FindAllString(content, -1) {
		cleaned := normalize.CleanPhone(cand)
		if n := normalize.DigitCount(cleaned); n >= 7 && n <= 15 && n > bestDigits {
			best = cleaned
			bestDigits = n
		}
	}
	return best
}

func findWebsite(content string) string {
	for _, cand := range urlRe.FindAllString(content, -1) {
		lower := strings.ToLower(cand)
		social := false
		for _, host := range socialHosts {
			if strings.Contains(lower, host) {
				social = true
				break
			}
		}
		if !social {
			return cand
		}
	}
	return ""
}

// findAddressLine scans for the first line that reads like a postal
// address: a street/place keyword or a number-plus-word shape, and not a
// phone number or counter line in disguise.
func findAddressLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 8 || len(line) > 200 {
			continue
		}
		if looksLikePhoneLine(line) || looksLikeCountLine(line) {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range addressKeywords {
			if strings.Contains(lower, kw) {
				return line
			}
		}
		if postalRe.MatchString(line) && strings.Count(line, " ") >= 2 {
			return line
		}
	}
	return ""
}

func looksLikePhoneLine(line string) bool {
	cleaned := normalize.CleanPhone(line)
	return normalize.DigitCount(cleaned) >= 7 && normalize.DigitCount(cleaned) >= len(line)/2
}

func looksLikeCountLine(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range []string{"followers", "abonnés", "abonnements", "posts", "publications", "likes", "j'aime", "following"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// residualBio joins the lines not claimed by any other field: no name or
// handle repeats, no UI button labels, no count or contact lines. Short
// residue is noise, not a bio.
func residualBio(content string, found Fields) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if line == found.Name || line == found.Username {
			continue
		}
		if looksLikeCountLine(line) || looksLikePhoneLine(line) || countRe.MatchString(line) {
			continue
		}
		if found.Email != "" && strings.Contains(line, found.Email) {
			continue
		}
		if found.Address != "" && line == found.Address {
			continue
		}
		if found.Website != "" && line == found.Website {
			continue
		}
		lower := strings.ToLower(line)
		isButton := false
		for _, w := range buttonWords {
			if lower == w || (len(line) < 30 && strings.Contains(lower, w)) {
				isButton = true
				break
			}
		}
		if isButton {
			continue
		}
		kept = append(kept, line)
	}

	bio := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(bio) < 15 {
		return ""
	}
	return bio
}

var (
	postsCountRe     = regexp.MustCompile(`([\d.,\s]*\d\s?[kKmM]?)\s*(?:posts|publications)`)
	followersCountRe = regexp.MustCompile(`([\d.,\s]*\d\s?[kKmM]?)\s*(?:followers|abonnés)`)
	followingCountRe = regexp.MustCompile(`([\d.,\s]*\d\s?[kKmM]?)\s*(?:following|abonnements|suivi\(e\)s)`)
)

// parseCounts pulls post/follower/following counters out of a profile
// header or the page text at large.
func parseCounts(text string) (posts, followers, following string) {
	if m := postsCountRe.FindStringSubmatch(text); m != nil {
		posts = strings.TrimSpace(m[1])
	}
	if m := followersCountRe.FindStringSubmatch(text); m != nil {
		followers = strings.TrimSpace(m[1])
	}
	if m := followingCountRe.FindStringSubmatch(text); m != nil {
		following = strings.TrimSpace(m[1])
	}
	return posts, followers, following
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
