// Package store persists lead rows as CSV files: the consolidated
// leads.csv, and the dated per-run result files the consolidator later
// globs up.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/logger"
)

// LeadsFileName is the consolidated output file at the workspace root.
const LeadsFileName = "leads.csv"

// runDirPrefix names the per-run result folders, dated DDMMYYYY.
const runDirPrefix = "Scraping_Results_"

const runFileBase = "collected_prospects_detailed"

// ReadLeads reads a lead CSV. The file's own header drives column
// lookup, so files written with older or reordered schemas still load;
// missing columns get their sentinel defaults. A missing file is an
// empty store, not an error.
func ReadLeads(path string) ([]lead.Row, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]lead.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				fields[col] = rec[i]
			}
		}
		rows = append(rows, lead.FromFields(fields))
	}
	return rows, nil
}

// WriteLeads overwrites path with rows in the canonical column order.
func WriteLeads(path string, rows []lead.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(lead.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// WriteRunResults deduplicates rows by source URL and writes them to a
// fresh timestamped file under the dated run folder, creating the folder
// if needed. Returns the file path.
func WriteRunResults(baseDir string, rows []lead.Row, now time.Time) (string, error) {
	unique := DedupeBySource(rows)
	if len(unique) == 0 {
		return "", fmt.Errorf("no rows with a usable source URL to save")
	}

	dir := filepath.Join(baseDir, runDirPrefix+now.Format("02012006"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run folder: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", runFileBase, now.Format("02012006_150405")))
	if err := WriteLeads(path, unique); err != nil {
		return "", err
	}
	logger.Info("run results saved", "path", path, "rows", len(unique))
	return path, nil
}

// RunFiles returns every CSV inside the dated run folders under baseDir,
// the pool the consolidator merges with leads.csv.
func RunFiles(baseDir string) ([]string, error) {
	pattern := filepath.Join(baseDir, runDirPrefix+"*", "*.csv")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing run files: %w", err)
	}
	return matches, nil
}

// DedupeBySource keeps the first row for each source URL and drops rows
// without one, logging what it drops.
func DedupeBySource(rows []lead.Row) []lead.Row {
	seen := make(map[string]bool, len(rows))
	unique := make([]lead.Row, 0, len(rows))
	for _, row := range rows {
		url := row.SourceURL
		if url == "" || url == lead.NA {
			logger.Warn("dropping row without a source URL", "name", row.Name)
			continue
		}
		if seen[url] {
			continue
		}
		seen[url] = true
		unique = append(unique, row)
	}
	return unique
}
