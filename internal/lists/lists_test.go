package lists

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leadharvest/leadharvest/internal/lead"
)

func listRows() []lead.Row {
	return []lead.Row{
		lead.FromFields(map[string]string{
			"Facebook":  "https://www.facebook.com/atlasbakery",
			"Instagram": "https://www.instagram.com/atlasbakery/",
			"Email":     "contact@atlasbakery.ma",
			"Téléphone": "+212612345678",
		}),
		lead.FromFields(map[string]string{
			"Facebook":  "Not Found",
			"Instagram": "https://www.instagram.com/rifcoffee/",
			"Email":     "N/A",
			"Téléphone": "06 98 76 54 32",
		}),
	}
}

func readList(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func TestUpdateCreatesLists(t *testing.T) {
	dir := t.TempDir()
	added, err := Update(dir, listRows())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := map[string]int{
		"facebook_links.csv":  1,
		"instagram_links.csv": 2,
		"emails.csv":          1,
		"phone_numbers.csv":   2,
	}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("Update() added = %v, want %v", added, want)
	}

	phones := readList(t, filepath.Join(dir, "phone_numbers.csv"))
	if phones[0][0] != "Phone Number" {
		t.Errorf("header = %q", phones[0][0])
	}
	// Sorted: the converted local number first.
	if phones[1][0] != "+212612345678" || phones[2][0] != "+212698765432" {
		t.Errorf("phones = %v", phones[1:])
	}

	emails := readList(t, filepath.Join(dir, "emails.csv"))
	if len(emails) != 2 || emails[1][0] != "contact@atlasbakery.ma" {
		t.Errorf("emails = %v", emails)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	if _, err := Update(dir, listRows()); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}
	added, err := Update(dir, listRows())
	if err != nil {
		t.Fatalf("second Update() error = %v", err)
	}
	for file, n := range added {
		if n != 0 {
			t.Errorf("second pass added %d entries to %s, want 0", n, file)
		}
	}
}

func TestUpdateMergesWithExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emails.csv")
	if err := os.WriteFile(path, []byte("Email\nold@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Update(dir, listRows()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	emails := readList(t, path)
	if len(emails) != 3 {
		t.Fatalf("emails = %v, want header plus 2 entries", emails)
	}
	// Sorted union keeps the pre-existing entry.
	if emails[1][0] != "contact@atlasbakery.ma" || emails[2][0] != "old@example.com" {
		t.Errorf("emails = %v", emails)
	}
}

func TestUpdateRewritesMismatchedHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emails.csv")
	if err := os.WriteFile(path, []byte("Mail\nkept@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Update(dir, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	emails := readList(t, path)
	if emails[0][0] != "Email" {
		t.Errorf("header = %q, want rewritten", emails[0][0])
	}
	if len(emails) != 2 || emails[1][0] != "kept@example.com" {
		t.Errorf("emails = %v, data should survive the header rewrite", emails)
	}
}

func TestPhoneValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+212612345678", "+212612345678"},
		{"0612345678", "+212612345678"},
		{"06 12 34 56 78", "+212612345678"},
		{"212612345678", "+212612345678"},
		{"33123456789", "+33123456789"},
		{"123", ""},
		{"Not Found", ""},
		{"N/A", ""},
	}
	for _, tt := range tests {
		if got := phoneValue(tt.in); got != tt.want {
			t.Errorf("phoneValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
