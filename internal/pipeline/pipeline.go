// Package pipeline orchestrates a full run: keyword expansion, search
// harvesting, per-page scraping, run-file persistence, and the optional
// consolidation and list-extraction phases.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/leadharvest/leadharvest/internal/consolidate"
	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/lists"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/search"
	"github.com/leadharvest/leadharvest/internal/store"
)

// Harvester yields candidate URLs for keyword combinations.
type Harvester interface {
	Harvest(ctx context.Context, combinations []string) ([]lead.Candidate, error)
}

// PageScraper turns one candidate into a DetailRecord.
type PageScraper interface {
	Scrape(ctx context.Context, cand lead.Candidate) (lead.DetailRecord, error)
}

// Merger folds accumulated rows into the deduplicated lead list.
type Merger interface {
	Consolidate(ctx context.Context, rows []lead.Row, now time.Time) ([]lead.Row, error)
}

// Config holds run settings.
type Config struct {
	// DataDir is the root for run files, the lead store, and the lists.
	DataDir string
	// DelayMin/DelayMax bound the randomized pause between page scrapes.
	DelayMin time.Duration
	DelayMax time.Duration
	// Consolidate folds this run plus previous runs into the lead store
	// after scraping.
	Consolidate bool
	// UpdateLists refreshes the per-channel value lists after
	// consolidation.
	UpdateLists bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:  ".",
		DelayMin: 3 * time.Second,
		DelayMax: 6 * time.Second,
	}
}

// Summary reports what a run produced.
type Summary struct {
	Combinations int
	Candidates   int
	Scraped      int
	RunFile      string
	Consolidated int
	ListsAdded   map[string]int
}

// Pipeline wires the run phases together.
type Pipeline struct {
	harvester Harvester
	scraper   PageScraper
	merger    Merger
	reporter  Reporter
	config    Config
	rng       *rand.Rand
	now       func() time.Time
}

// New creates a Pipeline. merger may be nil when consolidation is off;
// reporter may be nil.
func New(harvester Harvester, scraper PageScraper, merger Merger, reporter Reporter, cfg Config) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	return &Pipeline{
		harvester: harvester,
		scraper:   scraper,
		merger:    merger,
		reporter:  reporter,
		config:    cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Run executes the full process for the given keyword category lists.
func (p *Pipeline) Run(ctx context.Context, keywordLists [][]string) (Summary, error) {
	var sum Summary

	combos := search.Combinations(keywordLists)
	if len(combos) == 0 {
		return sum, fmt.Errorf("no usable keyword combinations")
	}
	sum.Combinations = len(combos)
	logger.Info("run starting", "combinations", len(combos))

	p.reporter.SetProgress(0)
	p.reporter.SetStatus(fmt.Sprintf("Searching %d keyword combinations", len(combos)))

	candidates, err := p.harvester.Harvest(ctx, combos)
	if err != nil {
		return sum, fmt.Errorf("harvesting: %w", err)
	}
	sum.Candidates = len(candidates)

	p.reporter.SetProgress(10)
	p.reporter.SetStatus(fmt.Sprintf("%d URLs found, starting detail scraping", len(candidates)))

	// Shuffling spreads consecutive hits across platforms, which keeps
	// the per-site request rate down.
	p.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	rows := make([]lead.Row, 0, len(candidates))
	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec, err := p.scraper.Scrape(ctx, cand)
		if err != nil {
			return sum, err
		}
		rows = append(rows, lead.MapDetail(rec, p.now()))
		sum.Scraped++

		p.reporter.SetProgress(10 + (i+1)*85/len(candidates))
		p.reporter.SetStatus(fmt.Sprintf("Detail scraping %d/%d: %s", i+1, len(candidates), cand.URL))

		if i < len(candidates)-1 {
			p.pause(ctx)
		}
	}

	if len(rows) > 0 {
		file, err := store.WriteRunResults(p.config.DataDir, rows, p.now())
		if err != nil {
			return sum, fmt.Errorf("saving run results: %w", err)
		}
		sum.RunFile = file
		logger.Info("run results saved", "file", file, "rows", len(rows))
	} else {
		logger.Warn("no pages scraped, nothing to save")
	}

	p.reporter.SetProgress(95)

	if p.config.Consolidate && p.merger != nil {
		p.reporter.SetStatus("Consolidating lead list")
		n, err := p.consolidate(ctx)
		if err != nil {
			return sum, err
		}
		sum.Consolidated = n
	}

	if p.config.UpdateLists {
		p.reporter.SetStatus("Updating value lists")
		added, err := p.updateLists(rows)
		if err != nil {
			return sum, err
		}
		sum.ListsAdded = added
	}

	p.reporter.SetProgress(100)
	p.reporter.SetStatus("Run complete")
	return sum, nil
}

func (p *Pipeline) leadsPath() string {
	return filepath.Join(p.config.DataDir, store.LeadsFileName)
}

func (p *Pipeline) consolidate(ctx context.Context) (int, error) {
	pool, err := consolidate.Pool(p.leadsPath(), p.config.DataDir)
	if err != nil {
		return 0, fmt.Errorf("assembling pool: %w", err)
	}
	if len(pool) == 0 {
		logger.Warn("consolidation pool is empty, skipping")
		return 0, nil
	}

	merged, err := p.merger.Consolidate(ctx, pool, p.now())
	if err != nil {
		return 0, fmt.Errorf("consolidating: %w", err)
	}
	if err := store.WriteLeads(p.leadsPath(), merged); err != nil {
		return 0, fmt.Errorf("writing lead store: %w", err)
	}
	return len(merged), nil
}

// updateLists refreshes the value lists from the lead store, falling
// back to this run's rows when no store exists yet.
func (p *Pipeline) updateLists(runRows []lead.Row) (map[string]int, error) {
	rows, err := store.ReadLeads(p.leadsPath())
	if err != nil {
		return nil, fmt.Errorf("reading lead store: %w", err)
	}
	if rows == nil {
		rows = runRows
	}
	return lists.Update(filepath.Join(p.config.DataDir, lists.DirName), rows)
}

func (p *Pipeline) pause(ctx context.Context) {
	if p.config.DelayMax <= 0 {
		return
	}
	d := p.config.DelayMin
	if spread := p.config.DelayMax - p.config.DelayMin; spread > 0 {
		d += time.Duration(p.rng.Int63n(int64(spread)))
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
