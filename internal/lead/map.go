package lead

import (
	"strings"
	"time"
)

// notValue reports whether v is absent or a placeholder for absent.
func notValue(v string, placeholders ...string) bool {
	if v == "" {
		return true
	}
	for _, p := range placeholders {
		if v == p {
			return true
		}
	}
	return false
}

// firstValue returns the first candidate that carries a real value, or
// fallback when none does.
func firstValue(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if !notValue(c, NotFound, NA) {
			return c
		}
	}
	return fallback
}

// MapDetail folds a DetailRecord into a canonical Row, applying the field
// precedence rules:
//
//   - Name walks page name, AI name, full name, search name, result title
//     and falls back to the explicit UnknownName marker, never NotFound.
//   - DOM-found values win over their AI counterparts.
//   - The scraped platform gets a self-link from the source URL.
//   - WhatsApp prefers the generated to-verify link, then the link found
//     on the page, then the AI value, skipping invalid placeholders.
func MapDetail(d DetailRecord, now time.Time) Row {
	r := Row{
		State:      "Prospect",
		ClientCode: "",
		Client:     "2",
		Supplier:   "0",
		CreatedAt:  now.Format("02/01/2006"),

		SourceURL:     orDefault(d.SourceURL, NA),
		SourceKeyword: orDefault(d.SourceKeyword, NA),
		SourceType:    orDefault(string(d.SourceType), NA),
		SearchName:    orDefault(d.SearchName, NA),
		SearchTitle:   orDefault(d.SearchTitle, NA),
		LinkType:      orDefault(d.LinkType, NA),
		Status:        orDefault(string(d.Status), "Unknown Status"),
		ErrorMessage:  d.ErrorMessage,

		Posts:     orDefault(d.Posts, NA),
		Followers: orDefault(d.Followers, NA),
		Following: orDefault(d.Following, NA),
		PageType:  orDefault(d.PageType, NotFound),
	}

	r.Name = firstValue(UnknownName,
		d.PageName, d.AIName, d.FullName, d.SearchName, d.SearchTitle)

	// The username is the alternate name; failing that, the search name,
	// unless it already became the primary name.
	r.AltName = NotFound
	if !notValue(d.Username, NotFound, NA) {
		r.AltName = d.Username
	} else if !notValue(d.SearchName, NotFound, NA) && d.SearchName != r.Name {
		r.AltName = d.SearchName
	}

	r.Address = firstValue(NotFound, d.Address, d.AIAddress)
	r.Phone = firstValue(NotFound, d.Phone, d.AIPhone)
	r.Email = firstValue(NotFound, d.Email, d.AIEmail)
	r.Bio = firstValue(NA, d.Bio, d.AIBio)
	r.Website = firstValue(NotFound, d.Website, d.BioWebsite, d.AIWebsite)

	source := strings.ToLower(d.SourceURL)
	if strings.Contains(source, "facebook.com") {
		r.Facebook = d.SourceURL
	} else {
		r.Facebook = firstValue(NotFound, d.Facebook, d.AIFacebook)
	}
	if strings.Contains(source, "instagram.com") {
		r.Instagram = d.SourceURL
	} else {
		r.Instagram = firstValue(NotFound, d.Instagram, d.AIInstagram)
	}

	switch {
	case !notValue(d.WhatsAppToVerify, NotGenerated, InvalidPhoneFormat, WhatsAppNAInstagram, WhatsAppNAFacebook):
		r.WhatsApp = d.WhatsAppToVerify
	case !notValue(d.WhatsApp, NotFound, WhatsAppNAInstagram, WhatsAppNAFacebook):
		r.WhatsApp = d.WhatsApp
	default:
		r.WhatsApp = firstValue(NotFound, d.AIWhatsApp)
	}

	return r
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// IsLead reports whether a consolidated row clears the bar for keeping:
// at least one contact channel, or a real name together with an address
// or website.
func IsLead(r Row) bool {
	hasEmail := !notValue(r.Email, NotFound, NA)
	hasWhatsApp := !notValue(r.WhatsApp, NotFound, NA, NotGenerated, InvalidPhoneFormat)
	hasWebsite := !notValue(r.Website, NotFound, NA)
	hasFacebook := !notValue(r.Facebook, NotFound, NA)
	hasInstagram := !notValue(r.Instagram, NotFound, NA)
	hasName := !notValue(r.Name, NotFound, NA, UnknownName, "Nom Inconnu (Scraping skipped/failed)")
	hasAddress := !notValue(r.Address, NotFound, NA, WhatsAppNAInstagram)

	if hasEmail || hasWhatsApp || hasWebsite || hasFacebook || hasInstagram {
		return true
	}
	return hasName && (hasAddress || hasWebsite)
}
