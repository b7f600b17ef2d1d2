// Package consolidate folds the accumulated run files and the existing
// lead store into one deduplicated lead list. A language model does the
// fuzzy grouping when one is available; the pipeline still completes
// without it, keeping every row and relying on the deterministic filter.
package consolidate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/llm"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/normalize"
	"github.com/leadharvest/leadharvest/internal/retry"
	"github.com/leadharvest/leadharvest/internal/store"
)

// URLSeparator joins the source URLs of merged duplicates.
const URLSeparator = "; "

// Config holds consolidation settings.
type Config struct {
	Temperature float64
	MaxTokens   int
	// BatchLimit caps how many rows go into one model call. A pool above
	// the limit skips the model pass entirely rather than merging a
	// truncated view.
	BatchLimit int
	// Timeout bounds each model call.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.2,
		MaxTokens:   8192,
		BatchLimit:  150,
		Timeout:     3 * time.Minute,
	}
}

// Consolidator merges, filters, and reformats lead rows.
type Consolidator struct {
	provider llm.Provider
	policy   retry.Policy
	config   Config
}

// New creates a Consolidator. A nil provider disables the model merge
// pass.
func New(provider llm.Provider, policy retry.Policy, cfg Config) *Consolidator {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultConfig().BatchLimit
	}
	return &Consolidator{provider: provider, policy: policy, config: cfg}
}

// Pool gathers the current lead store plus every run file into one row
// slice. A missing lead store is not an error; a first consolidation
// starts from run files alone.
func Pool(leadsPath, runsDir string) ([]lead.Row, error) {
	rows, err := store.ReadLeads(leadsPath)
	if err != nil {
		return nil, fmt.Errorf("reading lead store: %w", err)
	}

	files, err := store.RunFiles(runsDir)
	if err != nil {
		return nil, fmt.Errorf("listing run files: %w", err)
	}
	for _, file := range files {
		fileRows, err := store.ReadLeads(file)
		if err != nil {
			logger.Warn("skipping unreadable run file", "file", file, "error", err)
			continue
		}
		rows = append(rows, fileRows...)
	}
	logger.Info("consolidation pool assembled", "rows", len(rows), "run_files", len(files))
	return rows, nil
}

// Consolidate merges duplicates in the pool, drops failed and
// contactless rows, and normalizes what remains. The model pass is best
// effort; any failure there degrades to the unmerged pool.
func (c *Consolidator) Consolidate(ctx context.Context, rows []lead.Row, now time.Time) ([]lead.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := rows
	switch {
	case c.provider == nil:
		logger.Info("no model configured, skipping merge pass")
	case len(rows) < 2:
		// Nothing to merge.
	case len(rows) > c.config.BatchLimit:
		logger.Warn("pool exceeds merge batch limit, skipping merge pass",
			"rows", len(rows), "limit", c.config.BatchLimit)
	default:
		m, err := c.mergeWithModel(ctx, rows)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("model merge failed, keeping unmerged pool", "error", err)
		} else {
			logger.Info("model merge applied", "before", len(rows), "after", len(m))
			merged = m
		}
	}

	// Reformat before filtering: the lead test counts a WhatsApp link
	// regenerated from a bare phone number as a contact channel.
	for i := range merged {
		merged[i] = Reformat(merged[i], now)
	}
	kept := Filter(merged)
	logger.Info("consolidation complete", "pool", len(rows), "kept", len(kept))
	return kept, nil
}

// mergeWithModel asks the model to group duplicate rows and returns the
// merged list. Parse failures are retried under the shared policy since
// a fresh completion usually fixes them.
func (c *Consolidator) mergeWithModel(ctx context.Context, rows []lead.Row) ([]lead.Row, error) {
	prompt, err := buildMergePrompt(rows)
	if err != nil {
		return nil, err
	}

	var merged []lead.Row
	err = c.policy.Do(ctx, "lead merge", func(ctx context.Context) error {
		callCtx := ctx
		if c.config.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
			defer cancel()
		}

		resp, err := c.provider.Complete(callCtx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: mergeSystemPrompt},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: c.config.Temperature,
			MaxTokens:   c.config.MaxTokens,
		})
		if err != nil {
			return err
		}

		parsed, err := parseMergedRows(resp.Content)
		if err != nil {
			return err
		}
		merged = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// Filter applies the keep rules: failed scrapes go, already-seen source
// URLs go, and whatever carries no contact signal goes.
func Filter(rows []lead.Row) []lead.Row {
	var kept []lead.Row
	seen := make(map[string]bool)

	for _, r := range rows {
		if lead.IsFailure(lead.Status(r.Status)) {
			continue
		}

		// Merged rows may carry several source URLs. Any overlap with an
		// already kept row makes the whole row a duplicate. Only kept rows
		// claim their URLs, so a thin earlier scrape cannot shadow a later
		// one for the same page that did find contact data.
		urls := splitSourceURLs(r.SourceURL)
		dup := false
		for _, u := range urls {
			if seen[u] {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		if !lead.IsLead(r) {
			continue
		}
		for _, u := range urls {
			seen[u] = true
		}
		kept = append(kept, r)
	}
	return kept
}

// splitSourceURLs breaks a possibly merged source field into normalized
// dedup keys. Placeholder values produce none, leaving such rows outside
// URL dedup entirely.
func splitSourceURLs(field string) []string {
	var urls []string
	for _, part := range strings.Split(field, ";") {
		part = strings.TrimSpace(part)
		if part == "" || part == lead.NA {
			continue
		}
		if key := normalize.CleanURL(part); key != normalize.NotFound {
			urls = append(urls, strings.TrimSuffix(key, "/"))
		}
	}
	return urls
}

// Reformat normalizes one kept row into its final shape: canonical
// phone, regenerated WhatsApp link, cleaned URLs and counts, defaults on
// every empty column.
func Reformat(r lead.Row, now time.Time) lead.Row {
	r.Name = defaultIf(r.Name, lead.UnknownName)
	r.State = defaultIf(r.State, "Prospect")
	r.Client = defaultIf(r.Client, "2")
	r.Supplier = defaultIf(r.Supplier, "0")
	r.CreatedAt = defaultIf(r.CreatedAt, now.Format("02/01/2006"))

	r.Phone = normalize.CanonicalPhone(r.Phone)
	r.WhatsApp = reformatWhatsApp(r.WhatsApp, r.Phone)

	r.Website = cleanOrNotFound(r.Website)
	r.Facebook = cleanOrNotFound(r.Facebook)
	r.Instagram = cleanOrNotFound(r.Instagram)
	r.Email = reformatEmail(r.Email)

	r.Posts = reformatCount(r.Posts)
	r.Followers = reformatCount(r.Followers)
	r.Following = reformatCount(r.Following)

	r.Bio = defaultIf(r.Bio, lead.NA)
	r.Address = defaultIf(r.Address, lead.NotFound)
	r.PageType = defaultIf(r.PageType, lead.NotFound)
	r.Status = defaultIf(r.Status, "Unknown Status")
	return r
}

func reformatWhatsApp(whatsapp, phone string) string {
	if strings.Contains(whatsapp, "wa.me/") {
		return whatsapp
	}
	if phone != lead.NotFound {
		if link := normalize.WhatsAppLink(phone); link != lead.NotGenerated {
			return link
		}
	}
	return lead.NotFound
}

func reformatEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return lead.NotFound
	}
	return strings.ToLower(email)
}

func cleanOrNotFound(raw string) string {
	if cleaned := normalize.CleanURL(raw); cleaned != normalize.NotFound {
		return cleaned
	}
	return lead.NotFound
}

func reformatCount(raw string) string {
	if raw == "" || raw == lead.NA || raw == lead.NotFound {
		return lead.NA
	}
	return normalize.CleanCount(raw)
}

func defaultIf(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
