// Package lists maintains the per-channel value lists derived from the
// lead store: one CSV per channel, each holding unique sorted values,
// grown incrementally across runs.
package lists

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leadharvest/leadharvest/internal/lead"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/normalize"
)

// DirName is the directory the list files live in, under the data root.
const DirName = "listes"

// fileSpec binds one output file to the row field it collects.
type fileSpec struct {
	Name    string
	Header  string
	Extract func(lead.Row) string
}

var specs = []fileSpec{
	{"facebook_links.csv", "Facebook Link", func(r lead.Row) string { return linkValue(r.Facebook) }},
	{"instagram_links.csv", "Instagram Link", func(r lead.Row) string { return linkValue(r.Instagram) }},
	{"emails.csv", "Email", func(r lead.Row) string { return emailValue(r.Email) }},
	{"phone_numbers.csv", "Phone Number", func(r lead.Row) string { return phoneValue(r.Phone) }},
}

// placeholders that mean "no value", compared lowercased.
var placeholders = map[string]bool{
	"":           true,
	"not found":  true,
	"n/a":        true,
	"non trouvé": true,
}

// Update merges the values found in rows into the list files under dir,
// creating the directory and any missing file. Existing entries are
// kept; the result is the sorted union. Returns new-entry counts per
// file name.
func Update(dir string, rows []lead.Row) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating list dir: %w", err)
	}

	added := make(map[string]int, len(specs))
	for _, spec := range specs {
		path := filepath.Join(dir, spec.Name)
		values, err := readExisting(path, spec.Header)
		if err != nil {
			return nil, err
		}

		before := len(values)
		for _, r := range rows {
			if v := spec.Extract(r); v != "" {
				values[v] = true
			}
		}
		added[spec.Name] = len(values) - before

		if err := writeSorted(path, spec.Header, values); err != nil {
			return nil, err
		}
		logger.Info("list updated", "file", spec.Name, "entries", len(values), "new", added[spec.Name])
	}
	return added, nil
}

// readExisting loads a list file into a set. A missing file is an empty
// set; a header mismatch is worth a warning but the data is kept, the
// rewrite fixes the header.
func readExisting(path, header string) (map[string]bool, error) {
	values := make(map[string]bool)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return values, nil
	}

	if got := records[0][0]; got != header {
		logger.Warn("list file header mismatch, rewriting",
			"file", filepath.Base(path), "got", got, "want", header)
	}
	for _, rec := range records[1:] {
		if len(rec) > 0 {
			if v := strings.TrimSpace(rec[0]); v != "" {
				values[v] = true
			}
		}
	}
	return values, nil
}

func writeSorted(path, header string, values map[string]bool) error {
	sorted := make([]string, 0, len(values))
	for v := range values {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{header}); err != nil {
		return err
	}
	for _, v := range sorted {
		if err := w.Write([]string{v}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func linkValue(v string) string {
	v = strings.TrimSpace(v)
	if placeholders[strings.ToLower(v)] {
		return ""
	}
	return v
}

func emailValue(v string) string {
	v = strings.TrimSpace(v)
	if placeholders[strings.ToLower(v)] || !strings.Contains(v, "@") {
		return ""
	}
	return v
}

// phoneValue reduces a phone to +digits, applying the local-number
// heuristics: a 212 country code gains its plus, a 0-prefixed local
// number is rewritten as +212.
func phoneValue(v string) string {
	v = strings.TrimSpace(v)
	if placeholders[strings.ToLower(v)] {
		return ""
	}

	plus := strings.HasPrefix(v, "+")
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if normalize.DigitCount(cleaned) < 7 {
		return ""
	}
	if plus {
		return "+" + cleaned
	}
	switch {
	case strings.HasPrefix(cleaned, "212") && len(cleaned) >= 11:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0") && (len(cleaned) == 9 || len(cleaned) == 10):
		return "+212" + cleaned[1:]
	default:
		return "+" + cleaned
	}
}
