package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leadharvest/leadharvest/internal/extract"
	"github.com/leadharvest/leadharvest/internal/lead"
)

// fakeRenderer serves canned selector text for one page.
type fakeRenderer struct {
	currentURL   string
	text         map[string]string
	navErr       error
	missing      map[string]bool
	snapshots    []string
	waitedFor    []string
}

func (f *fakeRenderer) Navigate(_ context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	if f.currentURL == "" {
		f.currentURL = url
	}
	return nil
}

func (f *fakeRenderer) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	f.waitedFor = append(f.waitedFor, selector)
	if f.missing[selector] {
		return errors.New("element not visible")
	}
	return nil
}

func (f *fakeRenderer) VisibleText(_ context.Context, selector string) (string, error) {
	return f.text[selector], nil
}

func (f *fakeRenderer) Title(context.Context) (string, error) { return "", nil }

func (f *fakeRenderer) CurrentURL(context.Context) (string, error) { return f.currentURL, nil }

func (f *fakeRenderer) ClickAny(context.Context, []string) bool { return false }

func (f *fakeRenderer) Snapshot(_ context.Context, _, label string) {
	f.snapshots = append(f.snapshots, label)
}

func igCandidate(url string) lead.Candidate {
	return lead.Candidate{
		URL:     url,
		Keyword: "bakery casablanca",
		Type:    lead.SourceInstagram,
		Name:    "Atlas Bakery",
		Title:   "Atlas Bakery (@atlasbakery) | Instagram",
	}
}

func newTestScraper(r *fakeRenderer) *Scraper {
	return New(r, nil, extract.New(nil), DefaultConfig())
}

func TestScrapeSkipsPostURLs(t *testing.T) {
	urls := []string{
		"https://www.facebook.com/photo.php?fbid=123",
		"https://www.facebook.com/atlasbakery/posts/456",
		"https://www.instagram.com/reel/Cxyz/",
	}
	s := newTestScraper(&fakeRenderer{})
	for _, u := range urls {
		cand := igCandidate(u)
		cand.Type = lead.SourceFacebook
		rec, err := s.Scrape(context.Background(), cand)
		if err != nil {
			t.Fatalf("Scrape(%q) error = %v", u, err)
		}
		if rec.Status != lead.StatusSkippedPostURL {
			t.Errorf("Scrape(%q) status = %q, want skipped", u, rec.Status)
		}
	}
}

func TestScrapeDetectsLoginRedirect(t *testing.T) {
	r := &fakeRenderer{currentURL: "https://www.instagram.com/accounts/login/?next=%2Fatlasbakery%2F"}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusRedirected {
		t.Errorf("status = %q, want redirected", rec.Status)
	}
	if !strings.Contains(rec.ErrorMessage, "accounts/login") {
		t.Errorf("error message = %q, want resolved URL", rec.ErrorMessage)
	}
}

func TestScrapeDetectsPageGone(t *testing.T) {
	r := &fakeRenderer{text: map[string]string{
		"body": "Sorry, this page isn't available.",
	}}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/ghostpage/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusPageNotFound {
		t.Errorf("status = %q, want page not found", rec.Status)
	}
}

func TestScrapeCriticalElementMissing(t *testing.T) {
	r := &fakeRenderer{
		text:    map[string]string{"body": "some unrelated shell"},
		missing: map[string]bool{"header": true},
	}
	s := New(r, nil, extract.New(nil), Config{SnapshotDir: t.TempDir()})

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusCriticalMissing {
		t.Errorf("status = %q, want critical missing", rec.Status)
	}
	if len(r.snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(r.snapshots))
	}
}

func TestScrapeTimeoutOnIntroStillExtracts(t *testing.T) {
	r := &fakeRenderer{
		text: map[string]string{
			"body": "Atlas Bakery\ncontact@atlasbakery.ma",
			"header section h1, header section h2": "Atlas Bakery",
		},
		missing: map[string]bool{"header section": true},
	}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusTimeout {
		t.Errorf("status = %q, want timeout", rec.Status)
	}
	if rec.PageName != "Atlas Bakery" {
		t.Errorf("PageName = %q, extraction should still run", rec.PageName)
	}
	if rec.Email != "contact@atlasbakery.ma" {
		t.Errorf("Email = %q, regex tier should still run", rec.Email)
	}
}

func TestScrapeSuccessPopulatesRecord(t *testing.T) {
	r := &fakeRenderer{
		text: map[string]string{
			"body": "Atlas Bakery\n@atlasbakery\nArtisan bread baked every morning in the old medina.\n" +
				"12 Rue des Fleurs, Casablanca\ncontact@atlasbakery.ma\n06 12 34 56 78\n" +
				"245 posts\n12.4k followers\n310 following",
			"header section h1, header section h2": "Atlas Bakery",
			"header h2, main header h2":            "atlasbakery",
			"header section":                       "Atlas Bakery\nBakery\nArtisan bread baked every morning in the old medina.",
			"header ul":                            "245 posts 12.4k followers 310 following",
		},
	}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusSuccess {
		t.Errorf("status = %q, want success", rec.Status)
	}
	if rec.PageName != "Atlas Bakery" {
		t.Errorf("PageName = %q", rec.PageName)
	}
	if rec.Username != "atlasbakery" {
		t.Errorf("Username = %q", rec.Username)
	}
	if rec.Phone != "0612345678" {
		t.Errorf("Phone = %q", rec.Phone)
	}
	if rec.WhatsAppToVerify != "https://wa.me/212612345678" {
		t.Errorf("WhatsAppToVerify = %q", rec.WhatsAppToVerify)
	}
	if rec.Posts != "245" || rec.Followers != "12.4k" || rec.Following != "310" {
		t.Errorf("counts = %q/%q/%q", rec.Posts, rec.Followers, rec.Following)
	}
	if rec.SourceKeyword != "bakery casablanca" || rec.SourceType != lead.SourceInstagram {
		t.Errorf("provenance not carried: %+v", rec)
	}
}

func TestScrapeCompletedWithoutContactData(t *testing.T) {
	r := &fakeRenderer{
		text: map[string]string{
			"body": "Atlas Bakery",
			"header section h1, header section h2": "Atlas Bakery",
			"header section":                       "Atlas Bakery",
		},
	}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusCompleted {
		t.Errorf("status = %q, want completed", rec.Status)
	}
	if rec.WhatsAppToVerify != lead.NotGenerated {
		t.Errorf("WhatsAppToVerify = %q, want %q", rec.WhatsAppToVerify, lead.NotGenerated)
	}
}

func TestScrapeNavigationError(t *testing.T) {
	r := &fakeRenderer{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	s := newTestScraper(r)

	rec, err := s.Scrape(context.Background(), igCandidate("https://www.instagram.com/atlasbakery/"))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if rec.Status != lead.StatusScraperError {
		t.Errorf("status = %q, want scraper error", rec.Status)
	}
	if rec.ErrorMessage == "" {
		t.Error("error message should record the cause")
	}
}

func TestScrapeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestScraper(&fakeRenderer{})

	_, err := s.Scrape(ctx, igCandidate("https://www.instagram.com/atlasbakery/"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scrape() error = %v, want context.Canceled", err)
	}
}

func TestScrapeGenericStatuses(t *testing.T) {
	cand := lead.Candidate{URL: "https://example.com", Type: lead.SourceGeneric}

	t.Run("no model", func(t *testing.T) {
		s := New(&fakeRenderer{}, nil, extract.New(nil), DefaultConfig())
		rec, err := s.Scrape(context.Background(), cand)
		if err != nil {
			t.Fatalf("Scrape() error = %v", err)
		}
		if rec.Status != lead.StatusScraperError {
			t.Errorf("status = %q, want scraper error without fetcher", rec.Status)
		}
	})
}

func TestWhatsAppToVerify(t *testing.T) {
	tests := []struct {
		name    string
		rec     lead.DetailRecord
		want    string
	}{
		{"no phone", lead.DetailRecord{}, lead.NotGenerated},
		{"valid local", lead.DetailRecord{Phone: "0612345678"}, "https://wa.me/212612345678"},
		{"ai fallback", lead.DetailRecord{AIPhone: "212612345678"}, "https://wa.me/212612345678"},
		{"unusable", lead.DetailRecord{Phone: "123"}, lead.InvalidPhoneFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := whatsAppToVerify(tt.rec); got != tt.want {
				t.Errorf("whatsAppToVerify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLooksLikePostURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.facebook.com/photo.php?fbid=1", true},
		{"https://www.facebook.com/watch/?v=2", true},
		{"https://www.instagram.com/p/Cabc/", true},
		{"https://www.facebook.com/atlasbakery", false},
		{"https://www.instagram.com/atlasbakery/", false},
	}
	for _, tt := range tests {
		if got := looksLikePostURL(tt.url); got != tt.want {
			t.Errorf("looksLikePostURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
