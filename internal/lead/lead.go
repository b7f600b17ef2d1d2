// Package lead defines the data model of the pipeline: the per-page
// DetailRecord produced by scraping, the canonical Row stored in the lead
// CSV, and the status vocabulary shared by the scraper and the
// consolidator.
package lead

import "github.com/leadharvest/leadharvest/internal/normalize"

// Sentinel field values. These travel through CSV files and LLM prompts,
// so they are stable strings, not enum-like types.
const (
	NotFound            = normalize.NotFound
	NotGenerated        = normalize.NotGenerated
	NA                  = "N/A"
	UnknownName         = "Nom Inconnu"
	InvalidPhoneFormat  = "Invalid Phone Format for WhatsApp"
	WhatsAppNAInstagram = "N/A (Insta)"
	WhatsAppNAFacebook  = "N/A (FB)"
)

// Status describes the outcome of scraping a single candidate URL.
type Status string

const (
	StatusSuccess          Status = "Success"
	StatusCompleted        Status = "Completed"
	StatusPartialNoIntro   Status = "Partial Success - Intro Block Not Found"
	StatusSkippedPostURL   Status = "Skipped - Looks like Post/Photo URL"
	StatusRedirected       Status = "Redirected to login/checkpoint/error page"
	StatusPageNotFound     Status = "Page Not Found"
	StatusTimeout          Status = "Timeout loading page elements"
	StatusCriticalMissing  Status = "Critical Element Not Found"
	StatusScraperError     Status = "Error Calling Page Scraper"
	StatusAISuccess        Status = "Success - AI Extraction"
	StatusAIUnavailable    Status = "Skipped - AI Model Unavailable"
	StatusAIComplex        Status = "Skipped - AI Judged Complex"
	StatusAIInvalid        Status = "Error - AI Invalid Response"
	StatusAIFailed         Status = "Error - AI Extraction Failed"
)

// failureStatuses are outcomes whose rows carry no usable contact data.
// The consolidation filter drops rows whose merged status is exactly one
// of these. Timeout is included: a timed-out page may have partial data
// but it is not trustworthy enough to keep.
var failureStatuses = map[Status]bool{
	StatusSkippedPostURL:  true,
	StatusRedirected:      true,
	StatusScraperError:    true,
	StatusTimeout:         true,
	StatusCriticalMissing: true,
}

// IsFailure reports whether s marks a row as a failed or skipped scrape.
// Matching is exact string membership; a merged status like
// "Partial Success; Errors on some entries" passes through.
func IsFailure(s Status) bool {
	return failureStatuses[s]
}

// SourceType labels where a candidate URL came from.
type SourceType string

const (
	SourceFacebook  SourceType = "Facebook"
	SourceInstagram SourceType = "Instagram"
	SourceGeneric   SourceType = "Generic"
)

// Candidate is a URL harvested from search results, with the provenance
// needed to label the eventual lead.
type Candidate struct {
	URL     string
	Keyword string
	Type    SourceType
	// Name is the profile or page name inferred from the result title.
	Name string
	// Title is the raw search result title.
	Title string
}

// DetailRecord holds everything one page scrape produced: provenance,
// outcome, fields found in the DOM, and fields recovered by the language
// model tier. DOM and AI values stay separate so the canonical mapping
// can apply its precedence rules.
type DetailRecord struct {
	SourceURL     string
	SourceKeyword string
	SourceType    SourceType
	SearchName    string
	SearchTitle   string
	LinkType      string

	Status       Status
	ErrorMessage string

	PageName string
	FullName string
	Username string
	Phone    string
	Email    string
	Address  string
	Website  string
	// BioWebsite is an external link found in the bio rather than a
	// dedicated website field.
	BioWebsite string
	Bio        string
	Facebook   string
	Instagram  string
	WhatsApp   string
	// WhatsAppToVerify is a wa.me link generated from a found phone
	// number, as opposed to one present on the page.
	WhatsAppToVerify string
	Posts            string
	Followers        string
	Following        string
	PageType         string

	AIName      string
	AIPhone     string
	AIEmail     string
	AIAddress   string
	AIWebsite   string
	AIFacebook  string
	AIInstagram string
	AIWhatsApp  string
	AIBio       string
}

// Row is one canonical lead, in the CRM import shape the downstream
// tooling expects. Column names are the historical French headers; they
// are a data contract, not a style choice.
type Row struct {
	Name          string // Nom du tiers
	AltName       string // Nom alternatif
	State         string // État
	ClientCode    string // Code client
	Address       string // Adresse
	Phone         string // Téléphone
	Website       string // Url
	Email         string // Email
	Client        string // Client
	Supplier      string // Fournisseur
	CreatedAt     string // Date création
	Facebook      string // Facebook
	Instagram     string // Instagram
	WhatsApp      string // Whatsapp
	SourceURL     string // URL_Originale_Source
	Bio           string // Bio
	SourceKeyword string // Source_Mot_Cle
	SourceType    string // Type_Source
	SearchName    string // Nom_Trouve_Recherche
	SearchTitle   string // Titre_Trouve_Google
	LinkType      string // Type_Lien_Google
	Status        string // Statut_Scraping_Detail
	ErrorMessage  string // Message_Erreur_Detail
	Posts         string // Nombre de Publications
	Followers     string // Nombre de Followers
	Following     string // Nombre de Suivis
	PageType      string // Type de Page
}

// Header is the canonical CSV column order. Changing it breaks every
// previously written leads file.
func Header() []string {
	return []string{
		"Nom du tiers", "Nom alternatif", "État", "Code client", "Adresse",
		"Téléphone", "Url", "Email", "Client", "Fournisseur", "Date création",
		"Facebook", "Instagram", "Whatsapp", "URL_Originale_Source", "Bio",
		"Source_Mot_Cle", "Type_Source", "Nom_Trouve_Recherche",
		"Titre_Trouve_Google", "Type_Lien_Google", "Statut_Scraping_Detail",
		"Message_Erreur_Detail", "Nombre de Publications",
		"Nombre de Followers", "Nombre de Suivis", "Type de Page",
	}
}

// Record flattens r in Header order.
func (r Row) Record() []string {
	return []string{
		r.Name, r.AltName, r.State, r.ClientCode, r.Address,
		r.Phone, r.Website, r.Email, r.Client, r.Supplier, r.CreatedAt,
		r.Facebook, r.Instagram, r.WhatsApp, r.SourceURL, r.Bio,
		r.SourceKeyword, r.SourceType, r.SearchName,
		r.SearchTitle, r.LinkType, r.Status,
		r.ErrorMessage, r.Posts,
		r.Followers, r.Following, r.PageType,
	}
}

// FromFields builds a Row from a column-name-to-value map, typically read
// from a CSV with an arbitrary header. Unknown columns are ignored and
// missing ones default per column: provenance and counts to "N/A",
// everything else to "Not Found".
func FromFields(fields map[string]string) Row {
	get := func(col, def string) string {
		if v, ok := fields[col]; ok && v != "" {
			return v
		}
		return def
	}
	return Row{
		Name:          get("Nom du tiers", UnknownName),
		AltName:       get("Nom alternatif", NotFound),
		State:         get("État", "Prospect"),
		ClientCode:    fields["Code client"],
		Address:       get("Adresse", NotFound),
		Phone:         get("Téléphone", NotFound),
		Website:       get("Url", NotFound),
		Email:         get("Email", NotFound),
		Client:        get("Client", "2"),
		Supplier:      get("Fournisseur", "0"),
		CreatedAt:     fields["Date création"],
		Facebook:      get("Facebook", NotFound),
		Instagram:     get("Instagram", NotFound),
		WhatsApp:      get("Whatsapp", NotFound),
		SourceURL:     get("URL_Originale_Source", NA),
		Bio:           get("Bio", NA),
		SourceKeyword: get("Source_Mot_Cle", NA),
		SourceType:    get("Type_Source", NA),
		SearchName:    get("Nom_Trouve_Recherche", NA),
		SearchTitle:   get("Titre_Trouve_Google", NA),
		LinkType:      get("Type_Lien_Google", NA),
		Status:        get("Statut_Scraping_Detail", "Unknown Status"),
		ErrorMessage:  fields["Message_Erreur_Detail"],
		Posts:         get("Nombre de Publications", NA),
		Followers:     get("Nombre de Followers", NA),
		Following:     get("Nombre de Suivis", NA),
		PageType:      get("Type de Page", NotFound),
	}
}

// Fields is the inverse of FromFields.
func (r Row) Fields() map[string]string {
	header := Header()
	rec := r.Record()
	m := make(map[string]string, len(header))
	for i, col := range header {
		m[col] = rec[i]
	}
	return m
}
