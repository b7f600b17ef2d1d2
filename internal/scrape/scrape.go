// Package scrape visits one candidate URL at a time and turns the page
// into a DetailRecord: it pre-filters URLs that cannot be profiles,
// detects login walls and dead pages, waits on layout landmarks, and
// hands the rendered text to the tiered extractor.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leadharvest/leadharvest/internal/browser"
	"github.com/leadharvest/leadharvest/internal/extract"
	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/normalize"
)

// postURLMarkers identify content permalinks that slipped past search
// classification (redirect chains can land on them).
var postURLMarkers = []string{
	"/photo.php", "/photo/", "/photos/", "/posts/", "/videos/",
	"/video.php", "/watch/", "/reel/", "/p/", "story_fbid=", "fbid=",
}

// loginMarkers in the resolved URL mean the page bounced us to an auth
// or checkpoint wall.
var loginMarkers = []string{
	"/login", "login.php", "checkpoint", "accounts/login",
	"/recover", "error", "next=",
}

// notFoundMarkers in the visible text mean the page is gone.
var notFoundMarkers = []string{
	"this page isn't available",
	"this content isn't available",
	"sorry, this page isn't available",
	"cette page n'est pas disponible",
	"ce contenu n'est pas disponible",
	"désolé, cette page n'est pas disponible",
	"page not found",
}

// selectorSet names the layout elements of one platform. Landmark must
// appear or the scrape is abandoned; Intro is waited for but tolerated
// missing.
type selectorSet struct {
	Landmark string
	Title    string
	Username string
	Category string
	Intro    string
	Counts   string
}

var facebookSelectors = selectorSet{
	Landmark: "h1",
	Title:    "h1",
	Category: `div[data-pagelet="ProfileTilesFeed"] span > a[href*="/pages/category/"]`,
	Intro:    `div[data-pagelet="ProfileTilesFeed"]`,
	Counts:   `div[data-pagelet="ProfileAppSection_0"]`,
}

var instagramSelectors = selectorSet{
	Landmark: "header",
	Title:    "header section h1, header section h2",
	Username: "header h2, main header h2",
	Intro:    "header section",
	Counts:   "header ul",
}

// Config holds scraper settings.
type Config struct {
	// LandmarkTimeout bounds the wait for each layout element.
	LandmarkTimeout time.Duration
	// SnapshotDir receives a screenshot and page dump on unexpected
	// failures. Empty disables snapshots.
	SnapshotDir string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{LandmarkTimeout: 20 * time.Second}
}

// Scraper produces one DetailRecord per candidate.
type Scraper struct {
	renderer  browser.Renderer
	static    *browser.StaticFetcher
	extractor *extract.Extractor
	config    Config
}

// New creates a Scraper. static may be nil when no generic-URL
// candidates are expected.
func New(renderer browser.Renderer, static *browser.StaticFetcher, extractor *extract.Extractor, cfg Config) *Scraper {
	if cfg.LandmarkTimeout <= 0 {
		cfg.LandmarkTimeout = DefaultConfig().LandmarkTimeout
	}
	return &Scraper{renderer: renderer, static: static, extractor: extractor, config: cfg}
}

// Scrape visits cand and returns its DetailRecord. Every scrape outcome,
// including failures, is encoded in the record's Status; the error
// return is reserved for context cancellation.
func (s *Scraper) Scrape(ctx context.Context, cand lead.Candidate) (lead.DetailRecord, error) {
	rec := newRecord(cand)

	if err := ctx.Err(); err != nil {
		return rec, err
	}

	if cand.Type == lead.SourceGeneric {
		s.scrapeGeneric(ctx, cand, &rec)
		return rec, ctx.Err()
	}

	if looksLikePostURL(cand.URL) {
		rec.Status = lead.StatusSkippedPostURL
		return rec, nil
	}

	if err := s.renderer.Navigate(ctx, cand.URL); err != nil {
		if ctx.Err() != nil {
			return rec, ctx.Err()
		}
		rec.Status = lead.StatusScraperError
		rec.ErrorMessage = fmt.Sprintf("navigation: %v", err)
		s.snapshot(ctx, cand)
		return rec, nil
	}

	if current, err := s.renderer.CurrentURL(ctx); err == nil && redirectedToWall(current) {
		rec.Status = lead.StatusRedirected
		rec.ErrorMessage = "resolved to " + current
		return rec, nil
	}

	body, err := s.renderer.VisibleText(ctx, "body")
	if err != nil {
		if ctx.Err() != nil {
			return rec, ctx.Err()
		}
		rec.Status = lead.StatusScraperError
		rec.ErrorMessage = fmt.Sprintf("reading page text: %v", err)
		s.snapshot(ctx, cand)
		return rec, nil
	}

	if pageGone(body) {
		rec.Status = lead.StatusPageNotFound
		return rec, nil
	}

	sel := facebookSelectors
	if cand.Type == lead.SourceInstagram {
		sel = instagramSelectors
	}

	if err := s.renderer.WaitVisible(ctx, sel.Landmark, s.config.LandmarkTimeout); err != nil {
		if ctx.Err() != nil {
			return rec, ctx.Err()
		}
		rec.Status = lead.StatusCriticalMissing
		rec.ErrorMessage = fmt.Sprintf("landmark %q never appeared", sel.Landmark)
		s.snapshot(ctx, cand)
		return rec, nil
	}

	timedOut := false
	if sel.Intro != "" {
		if err := s.renderer.WaitVisible(ctx, sel.Intro, s.config.LandmarkTimeout); err != nil {
			if ctx.Err() != nil {
				return rec, ctx.Err()
			}
			timedOut = true
			logger.Debug("intro block never became visible", "url", cand.URL)
		}
	}

	regions := s.collectRegions(ctx, sel)
	res, err := s.extractor.Extract(ctx, body, regions)
	if errors.Is(err, extract.ErrUnusableContent) {
		logger.Info("model judged page unusable, keeping page-found fields only", "url", cand.URL)
	}

	fillFromResult(&rec, res)
	rec.WhatsAppToVerify = whatsAppToVerify(rec)

	switch {
	case timedOut:
		rec.Status = lead.StatusTimeout
		rec.ErrorMessage = "intro block not visible before timeout"
	case regions.Intro == "" && sel.Intro != "":
		rec.Status = lead.StatusPartialNoIntro
	case hasContactData(rec):
		rec.Status = lead.StatusSuccess
	default:
		rec.Status = lead.StatusCompleted
	}
	return rec, nil
}

// scrapeGeneric handles plain websites: a static fetch plus the
// model-only extraction tier, since there is no known layout to anchor
// selectors or regexes on.
func (s *Scraper) scrapeGeneric(ctx context.Context, cand lead.Candidate, rec *lead.DetailRecord) {
	if s.static == nil {
		rec.Status = lead.StatusScraperError
		rec.ErrorMessage = "no static fetcher configured"
		return
	}

	page, err := s.static.Fetch(ctx, cand.URL)
	if err != nil {
		rec.Status = lead.StatusScraperError
		rec.ErrorMessage = fmt.Sprintf("fetch: %v", err)
		return
	}

	fields, _, err := s.extractor.ExtractAI(ctx, page.Text)
	switch {
	case err == nil:
		rec.Status = lead.StatusAISuccess
	case errors.Is(err, extract.ErrModelUnavailable):
		rec.Status = lead.StatusAIUnavailable
		return
	case errors.Is(err, extract.ErrUnusableContent):
		rec.Status = lead.StatusAIComplex
		return
	case errors.Is(err, extract.ErrInvalidModelResponse):
		rec.Status = lead.StatusAIInvalid
		rec.ErrorMessage = err.Error()
		return
	default:
		rec.Status = lead.StatusAIFailed
		rec.ErrorMessage = err.Error()
		return
	}

	rec.AIName = fields.Name
	rec.AIPhone = fields.Phone
	rec.AIEmail = fields.Email
	rec.AIAddress = fields.Address
	rec.AIWebsite = fields.Website
	rec.AIFacebook = fields.Facebook
	rec.AIInstagram = fields.Instagram
	rec.AIWhatsApp = fields.WhatsApp
	rec.AIBio = fields.Bio
	rec.PageType = fields.PageType
	rec.WhatsAppToVerify = whatsAppToVerify(*rec)
}

// collectRegions reads each configured selector's visible text. Missing
// elements read as empty; the extractor treats that as unresolved.
func (s *Scraper) collectRegions(ctx context.Context, sel selectorSet) extract.Regions {
	read := func(selector string) string {
		if selector == "" {
			return ""
		}
		text, err := s.renderer.VisibleText(ctx, selector)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(text)
	}
	return extract.Regions{
		Title:    read(sel.Title),
		Username: read(sel.Username),
		Category: read(sel.Category),
		Intro:    read(sel.Intro),
		Counts:   read(sel.Counts),
	}
}

func (s *Scraper) snapshot(ctx context.Context, cand lead.Candidate) {
	if s.config.SnapshotDir == "" {
		return
	}
	s.renderer.Snapshot(ctx, s.config.SnapshotDir, snapshotLabel(cand.URL))
}

// snapshotLabel derives a filesystem-safe label from a URL.
func snapshotLabel(url string) string {
	label := strings.TrimPrefix(url, "https://")
	label = strings.TrimPrefix(label, "http://")
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, label)
	if len(label) > 80 {
		label = label[:80]
	}
	return label
}

func newRecord(cand lead.Candidate) lead.DetailRecord {
	return lead.DetailRecord{
		SourceURL:     cand.URL,
		SourceKeyword: cand.Keyword,
		SourceType:    cand.Type,
		SearchName:    cand.Name,
		SearchTitle:   cand.Title,
		LinkType:      string(cand.Type),
	}
}

func looksLikePostURL(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range postURLMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func redirectedToWall(current string) bool {
	lower := strings.ToLower(current)
	for _, marker := range loginMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func pageGone(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func fillFromResult(rec *lead.DetailRecord, res extract.Result) {
	d := res.Direct
	rec.PageName = d.Name
	rec.Username = d.Username
	rec.PageType = d.PageType
	rec.Phone = d.Phone
	rec.Email = d.Email
	rec.Address = d.Address
	rec.Website = d.Website
	rec.Bio = d.Bio
	rec.Facebook = d.Facebook
	rec.Instagram = d.Instagram
	rec.WhatsApp = d.WhatsApp
	rec.Posts = d.Posts
	rec.Followers = d.Followers
	rec.Following = d.Following

	ai := res.AI
	rec.AIName = ai.Name
	rec.AIPhone = ai.Phone
	rec.AIEmail = ai.Email
	rec.AIAddress = ai.Address
	rec.AIWebsite = ai.Website
	rec.AIFacebook = ai.Facebook
	rec.AIInstagram = ai.Instagram
	rec.AIWhatsApp = ai.WhatsApp
	rec.AIBio = ai.Bio
	if rec.PageType == "" {
		rec.PageType = ai.PageType
	}
}

// whatsAppToVerify generates a wa.me link from whichever phone number
// the scrape produced. A phone that cannot be shaped into a link is
// flagged rather than silently dropped.
func whatsAppToVerify(rec lead.DetailRecord) string {
	phone := rec.Phone
	if phone == "" {
		phone = rec.AIPhone
	}
	if phone == "" {
		return lead.NotGenerated
	}
	link := normalize.WhatsAppLink(phone)
	if link == lead.NotGenerated {
		return lead.InvalidPhoneFormat
	}
	return link
}

// hasContactData reports whether the scrape found at least one direct
// contact field, the difference between Success and a mere Completed.
func hasContactData(rec lead.DetailRecord) bool {
	for _, v := range []string{rec.Phone, rec.Email, rec.Website, rec.WhatsApp, rec.Address} {
		if v != "" {
			return true
		}
	}
	return false
}
