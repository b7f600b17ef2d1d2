// Package extract turns rendered page text into a structured contact
// record using a tiered strategy: structured region lookup first, a
// model-assisted pass for whatever that left open, and per-field regex
// heuristics as the last resort.
package extract

import (
	"context"
	"errors"
	"time"

	"github.com/leadharvest/leadharvest/internal/llm"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/retry"
)

// ErrUnusableContent reports that the model judged the page content
// uninterpretable (login wall, heavy dynamic shell, nothing relevant).
// Callers convert it into a skip outcome, not an error row.
var ErrUnusableContent = errors.New("content judged unusable for extraction")

// ErrModelUnavailable reports that no extraction model is configured.
var ErrModelUnavailable = errors.New("no extraction model available")

// ErrInvalidModelResponse reports a model reply that is neither the
// unusable sentinel nor parseable JSON.
var ErrInvalidModelResponse = errors.New("model response is not valid JSON")

// Fields holds one extraction pass's findings. The empty string means
// unresolved; sentinels like "Not Found" never appear here, they are
// applied later at the schema-mapping boundary.
type Fields struct {
	Name      string
	Username  string
	PageType  string
	Phone     string
	Email     string
	Website   string
	Facebook  string
	Instagram string
	WhatsApp  string
	Address   string
	Bio       string
	Posts     string
	Followers string
	Following string
}

// Regions are the labeled DOM areas the page scraper already isolated.
// Any of them may be empty when the layout did not match.
type Regions struct {
	// Title is the page heading or profile name element.
	Title string
	// Username is the handle element, when the platform shows one.
	Username string
	// Category is the page-type label (e.g. "Restaurant").
	Category string
	// Intro is the about/intro block text, the richest contact source.
	Intro string
	// Counts is the header area carrying post/follower/following counts.
	Counts string
}

// Result carries the merged findings of a full tiered pass. Direct holds
// values found in the page itself (regions and regex); AI holds values
// the model produced. They stay separate because the canonical mapping
// gives page-found values precedence.
type Result struct {
	Direct Fields
	AI     Fields
	// ModelUsed reports whether a model call contributed to the result.
	ModelUsed bool
	Usage     llm.Usage
}

// Config holds extractor settings.
type Config struct {
	Temperature float64
	MaxTokens   int
	// MaxContentSize bounds how much page text goes into the model
	// prompt. Zero means no limit.
	MaxContentSize int
	// Timeout bounds each model call.
	Timeout time.Duration
	// Retry governs model-call attempts. The zero value makes one
	// attempt; the caller passes the policy it shares with the other
	// remote-calling components.
	Retry retry.Policy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Temperature:    0.1,
		MaxTokens:      4096,
		MaxContentSize: 15000,
		Timeout:        90 * time.Second,
	}
}

// Extractor runs the tier chain. A nil provider disables tier 2; the
// regex tier still runs.
type Extractor struct {
	provider llm.Provider
	config   Config
}

// Option configures the extractor.
type Option func(*Config)

// WithTemperature sets the model temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithMaxTokens sets the maximum tokens for model responses.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithMaxContentSize bounds the page text sent to the model.
func WithMaxContentSize(n int) Option {
	return func(c *Config) { c.MaxContentSize = n }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetryPolicy sets the model-call retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Config) { c.Retry = p }
}

// New creates an Extractor.
func New(provider llm.Provider, opts ...Option) *Extractor {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Extractor{provider: provider, config: cfg}
}

// Extract runs all three tiers over the page text and merges their
// findings. Tier 2 transport and parse failures fall through to tier 3;
// only the unusable-content verdict propagates, as ErrUnusableContent.
func (e *Extractor) Extract(ctx context.Context, content string, regions Regions) (Result, error) {
	res := Result{Direct: fromRegions(regions)}

	if e.provider != nil && !resolved(res.Direct) {
		ai, usage, err := e.extractWithModel(ctx, content)
		res.Usage = usage
		switch {
		case err == nil:
			res.AI = ai
			res.ModelUsed = true
		case errors.Is(err, ErrUnusableContent):
			return res, err
		default:
			// Tier 2 produced nothing; the regex tier covers for it.
			logger.Warn("model extraction failed, falling back to heuristics", "error", err)
		}
	}

	applyHeuristics(&res.Direct, res.AI, content)
	return res, nil
}

// ExtractAI runs tier 2 alone, for pages with no known layout where
// region lookup and regex heuristics have nothing to anchor on.
func (e *Extractor) ExtractAI(ctx context.Context, content string) (Fields, llm.Usage, error) {
	if e.provider == nil {
		return Fields{}, llm.Usage{}, ErrModelUnavailable
	}
	return e.extractWithModel(ctx, content)
}

// fromRegions is tier 1: direct field lookup from pre-identified layout
// regions.
func fromRegions(r Regions) Fields {
	f := Fields{
		Name:     clean(r.Title),
		Username: clean(r.Username),
		PageType: clean(r.Category),
	}
	if r.Counts != "" {
		f.Posts, f.Followers, f.Following = parseCounts(r.Counts)
	}
	return f
}

// resolved reports whether every scalar contact field already has a
// value, making a model call pointless.
func resolved(f Fields) bool {
	return f.Name != "" && f.Phone != "" && f.Email != "" &&
		f.Website != "" && f.Address != "" && f.Bio != ""
}
