// Package search harvests candidate profile URLs from search-engine
// result pages: it walks keyword combinations across result pages,
// classifies each hit by platform, and deduplicates within the run.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/normalize"
)

// Pager is the slice of the browser surface the harvester needs.
type Pager interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	VisibleText(ctx context.Context, selector string) (string, error)
	HTML(ctx context.Context) (string, error)
	ClickAny(ctx context.Context, selectors []string) bool
}

// consentSelectors cover the label variants of the search engine's
// consent banner. Clicking is best-effort; the banner may simply not be
// there.
var consentSelectors = []string{
	`button#L2AGLb`,
	`button[aria-label="Tout accepter"]`,
	`button[aria-label="Accept all"]`,
	`form[action*="consent"] button`,
}

var captchaURLMarkers = []string{"google.com/sorry", "consent.google.com", "ipv4.google.com/sorry"}

var captchaPageMarkers = []string{
	"recaptcha", "grecaptcha", "unusual traffic", "trafic inhabituel",
	"nos systèmes ont détecté", "our systems have detected",
}

// Config holds harvester settings.
type Config struct {
	// PagesPerSearch caps result pages walked per keyword combination.
	PagesPerSearch int
	// Platforms restricts results via site: operators; empty means no
	// restriction. Values are bare platform names ("facebook",
	// "instagram").
	Platforms []string
	// DelayMin/DelayMax bound the randomized pause between page loads, a
	// rate-limiting measure rather than an optimization.
	DelayMin time.Duration
	DelayMax time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PagesPerSearch: 5,
		Platforms:      []string{"facebook", "instagram"},
		DelayMin:       2 * time.Second,
		DelayMax:       4 * time.Second,
	}
}

// Harvester drives a Pager through searches.
type Harvester struct {
	pager  Pager
	config Config
	rng    *rand.Rand
}

// New creates a Harvester.
func New(pager Pager, cfg Config) *Harvester {
	if cfg.PagesPerSearch <= 0 {
		cfg.PagesPerSearch = DefaultConfig().PagesPerSearch
	}
	return &Harvester{
		pager:  pager,
		config: cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Combinations expands keyword category lists into their cartesian
// product, joined by spaces. Empty categories are skipped rather than
// producing empty slots; an all-empty input yields nothing.
func Combinations(lists [][]string) []string {
	combos := []string{""}
	for _, list := range lists {
		var kws []string
		for _, kw := range list {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		// A category with nothing usable in it is skipped, not expanded
		// into partial combinations.
		if len(kws) == 0 {
			continue
		}
		var next []string
		for _, prefix := range combos {
			for _, kw := range kws {
				if prefix == "" {
					next = append(next, kw)
				} else {
					next = append(next, prefix+" "+kw)
				}
			}
		}
		combos = next
	}

	var out []string
	seen := make(map[string]bool)
	for _, c := range combos {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// siteOperators builds the "(site:facebook.com OR site:instagram.com)"
// query suffix.
func siteOperators(platforms []string) string {
	var ops []string
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p != "" {
			ops = append(ops, "site:"+p+".com")
		}
	}
	if len(ops) == 0 {
		return ""
	}
	return "(" + strings.Join(ops, " OR ") + ")"
}

// Harvest runs every keyword combination through the search engine and
// returns the deduplicated candidate list in discovery order. One
// combination failing (CAPTCHA, timeout) skips to the next; harvest only
// fails outright when the browser is gone.
func (h *Harvester) Harvest(ctx context.Context, combinations []string) ([]lead.Candidate, error) {
	ops := siteOperators(h.config.Platforms)
	// Without a platform restriction, whatever the engine returns is a
	// candidate; such pages go through the static AI-only scrape path.
	includeGeneric := ops == ""

	var candidates []lead.Candidate
	seen := make(map[string]bool)
	consentHandled := false

	for i, combo := range combinations {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		query := combo
		if ops != "" {
			query = combo + " " + ops
		}
		logger.Info("searching", "combination", combo, "index", i+1, "total", len(combinations))

		searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)
		if err := h.pager.Navigate(ctx, searchURL); err != nil {
			if ctx.Err() != nil {
				return candidates, ctx.Err()
			}
			logger.Warn("search navigation failed, skipping combination", "combination", combo, "error", err)
			continue
		}

		if !consentHandled {
			if h.pager.ClickAny(ctx, consentSelectors) {
				logger.Debug("consent banner dismissed")
			}
			consentHandled = true
		}

		if h.captchaSuspected(ctx) {
			logger.Warn("CAPTCHA suspected, skipping combination", "combination", combo)
			h.pause(ctx)
			continue
		}

		for page := 1; page <= h.config.PagesPerSearch; page++ {
			if err := ctx.Err(); err != nil {
				return candidates, err
			}

			html, err := h.pager.HTML(ctx)
			if err != nil {
				logger.Warn("reading results page failed", "combination", combo, "page", page, "error", err)
				break
			}

			found := 0
			results, next := ParseResults(html, combo, includeGeneric)
			for _, cand := range results {
				key := strings.TrimSuffix(normalize.CleanURL(cand.URL), "/")
				if key == normalize.NotFound || seen[key] {
					continue
				}
				seen[key] = true
				candidates = append(candidates, cand)
				found++
			}
			logger.Debug("results page parsed", "combination", combo, "page", page, "new_urls", found)

			if page == h.config.PagesPerSearch || next == "" {
				break
			}
			h.pause(ctx)
			if err := h.pager.Navigate(ctx, resolveNext(searchURL, next)); err != nil {
				logger.Warn("pagination failed", "combination", combo, "page", page+1, "error", err)
				break
			}
		}

		h.pause(ctx)
	}

	logger.Info("harvest complete", "candidates", len(candidates))
	return candidates, nil
}

// captchaSuspected checks the resolved URL and page text for the known
// interstitial markers.
func (h *Harvester) captchaSuspected(ctx context.Context) bool {
	current, err := h.pager.CurrentURL(ctx)
	if err == nil {
		lower := strings.ToLower(current)
		for _, marker := range captchaURLMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}

	text, err := h.pager.VisibleText(ctx, "body")
	if err != nil {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range captchaPageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// pause sleeps a randomized interval within the configured delay range,
// returning early if ctx ends.
func (h *Harvester) pause(ctx context.Context) {
	if h.config.DelayMax <= 0 {
		return
	}
	d := h.config.DelayMin
	if spread := h.config.DelayMax - h.config.DelayMin; spread > 0 {
		d += time.Duration(h.rng.Int63n(int64(spread)))
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// resolveNext makes a pagination href absolute against the search URL.
func resolveNext(base, next string) string {
	b, err := url.Parse(base)
	if err != nil {
		return next
	}
	n, err := url.Parse(next)
	if err != nil {
		return next
	}
	return b.ResolveReference(n).String()
}

// ParseResults extracts candidates from a results page and returns them
// along with the next-page href ("" when on the last page). With
// includeGeneric set, results outside the known platforms are kept as
// generic candidates instead of being dropped.
func ParseResults(html, keyword string, includeGeneric bool) ([]lead.Candidate, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("results page unparseable", "error", err)
		return nil, ""
	}

	var candidates []lead.Candidate
	doc.Find("div.tF2Cxc").Each(func(_ int, container *goquery.Selection) {
		link := container.Find("div.yuRUbf a[href]").First()
		if link.Length() == 0 {
			link = container.Find(`a[href]:not([role="button"])`).First()
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		target := UnwrapRedirect(href)
		platform, ok := Classify(target)
		if !ok {
			if !includeGeneric || !genericCandidate(target) {
				return
			}
			platform = lead.SourceGeneric
		}

		title := strings.TrimSpace(container.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		if title == "" {
			title = target
		}

		candidates = append(candidates, lead.Candidate{
			URL:     target,
			Keyword: keyword,
			Type:    platform,
			Name:    NameFromTitle(title),
			Title:   title,
		})
	})

	next, _ := doc.Find("a#pnnext").First().Attr("href")
	if next == "" {
		next, _ = doc.Find(`a[aria-label*="Suivant"], a[aria-label*="Next"]`).First().Attr("href")
	}
	return candidates, next
}

// UnwrapRedirect resolves the engine's /url?q= indirection to the real
// target. Non-redirect URLs pass through untouched.
func UnwrapRedirect(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.Contains(parsed.Host, "google.") || !strings.Contains(parsed.Path, "/url") {
		return raw
	}
	if q := parsed.Query().Get("q"); q != "" {
		return q
	}
	return raw
}

// NameFromTitle strips the platform decoration a result title carries
// ("Biz Name - Home | Facebook" -> "Biz Name").
func NameFromTitle(title string) string {
	cut := false
	for _, sep := range []string{" | ", " - ", " – ", " • "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			cut = true
		}
	}
	// A title that starts with a separator carries no decoration to
	// strip; hand it back untouched.
	if !cut {
		return title
	}
	return strings.TrimSpace(title)
}

// String implements fmt.Stringer for logging convenience.
func (c Config) String() string {
	return fmt.Sprintf("pages=%d platforms=%v", c.PagesPerSearch, c.Platforms)
}
