package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// StaticPage is the readable content of a page fetched without a
// browser.
type StaticPage struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
}

// StaticFetcher retrieves pages over plain HTTP. Used for generic,
// non-platform URLs where the model-only extraction path does not need
// JavaScript rendering.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewStaticFetcher creates a static fetcher.
func NewStaticFetcher(userAgent string, timeout time.Duration) *StaticFetcher {
	if userAgent == "" {
		userAgent = DefaultConfig().UserAgent
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &StaticFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch retrieves url and extracts its title and readable text.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (StaticPage, error) {
	result := StaticPage{URL: url}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)

	var html string
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		html = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(url); err != nil {
		return result, fmt.Errorf("visiting %s: %w", url, err)
	}
	if fetchErr != nil {
		return result, fetchErr
	}

	if html != "" {
		if err := parseStatic(&result, html); err != nil {
			return result, fmt.Errorf("parsing %s: %w", url, err)
		}
	}
	return result, nil
}

// parseStatic pulls the title and a line-per-block text rendering out of
// the HTML.
func parseStatic(page *StaticPage, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, td, address, footer").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		if text := collapseSpace(doc.Find("body").Text()); text != "" {
			lines = append(lines, text)
		}
	}
	page.Text = strings.Join(lines, "\n")
	return nil
}

// collapseSpace normalizes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
