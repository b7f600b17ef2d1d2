// Package normalize canonicalizes phone numbers and URLs. Everything in
// here is pure: no I/O, no state, and a failed parse is a sentinel value,
// never an error.
package normalize

import (
	"regexp"
	"strings"
)

// Placeholder values produced (and recognized) across the pipeline. A
// sentinel is a legitimate field value meaning "we looked and found
// nothing", distinct from an empty string which means "nobody looked".
const (
	NotFound     = "Not Found"
	NotGenerated = "Not Generated"
)

// phoneNoise matches separators, punctuation and the phone emoji glyphs
// that show up in scraped contact lines.
var phoneNoise = regexp.MustCompile(`[\s().\-\x{1F4F2}\x{1F4DE}\x{260E}\x{FE0F}]`)

var genericIntl = regexp.MustCompile(`^\d{7,15}$`)

// placeholders that must never be treated as a real phone value.
var phonePlaceholders = map[string]bool{
	"":            true,
	NotFound:      true,
	NotGenerated:  true,
	"N/A":         true,
	"N/A (Insta)": true,
	"N/A (FB)":    true,
}

// CleanPhone strips separator noise from a raw phone string but keeps a
// leading "+" so prefix heuristics can still see it.
func CleanPhone(raw string) string {
	cleaned := phoneNoise.ReplaceAllString(raw, "")
	if strings.HasPrefix(cleaned, "+") {
		return "+" + strings.ReplaceAll(cleaned[1:], "+", "")
	}
	return strings.ReplaceAll(cleaned, "+", "")
}

// DigitCount returns the number of decimal digits in s.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// WhatsAppLink cleans a phone number and formats it as a wa.me link.
//
// The number-shape rules are deliberately biased toward Moroccan numbers
// (the deployment locale of the data this pipeline collects): a leading 0
// with 9-10 digits is rewritten with country code 212, a bare or
// plus-prefixed 212 number is passed through, and anything else with 7-15
// digits is wrapped as-is. Numbers from other locales with a national
// leading zero will be mislabeled; that is a documented trade-off, not a
// bug to fix silently.
//
// Returns NotGenerated when the input is a placeholder or cannot be
// formatted reliably.
func WhatsAppLink(raw string) string {
	if phonePlaceholders[raw] {
		return NotGenerated
	}

	cleaned := CleanPhone(raw)
	if DigitCount(cleaned) < 7 {
		return NotGenerated
	}

	switch {
	case strings.HasPrefix(cleaned, "0") && (len(cleaned) == 9 || len(cleaned) == 10):
		return "https://wa.me/212" + cleaned[1:]
	case strings.HasPrefix(cleaned, "212") && (len(cleaned) == 11 || len(cleaned) == 12):
		return "https://wa.me/" + cleaned
	case strings.HasPrefix(cleaned, "+212") && (len(cleaned) == 12 || len(cleaned) == 13):
		return "https://wa.me/" + cleaned[1:]
	case genericIntl.MatchString(cleaned):
		return "https://wa.me/" + cleaned
	default:
		return NotGenerated
	}
}

var waLinkNumber = regexp.MustCompile(`wa\.me/\+?(\d+)`)

// CanonicalPhone cleans a phone number into a "+"-prefixed digit string,
// routing through the same shape heuristics as WhatsAppLink so that the
// phone column and the WhatsApp column always agree on the country code.
// Returns NotFound when no usable number remains.
func CanonicalPhone(raw string) string {
	if phonePlaceholders[raw] {
		return NotFound
	}
	cleaned := CleanPhone(raw)
	if cleaned == "" || cleaned == "+" || DigitCount(cleaned) < 7 {
		return NotFound
	}

	if link := WhatsAppLink(cleaned); link != NotGenerated {
		if m := waLinkNumber.FindStringSubmatch(link); m != nil {
			return "+" + m[1]
		}
	}

	// Shape heuristics could not place the number; keep the cleaned digits.
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return "+" + cleaned
}
