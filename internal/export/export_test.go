package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/leadharvest/leadharvest/internal/lead"
)

func exportRows() []lead.Row {
	return []lead.Row{
		lead.FromFields(map[string]string{
			"Nom du tiers":           "Atlas Bakery",
			"Téléphone":              "+212612345678",
			"Email":                  "contact@atlasbakery.ma",
			"Whatsapp":               "https://wa.me/212612345678",
			"URL_Originale_Source":   "https://www.facebook.com/atlasbakery",
			"Statut_Scraping_Detail": "Success",
		}),
		lead.FromFields(map[string]string{
			"Nom du tiers":           "Rif Coffee",
			"Instagram":              "https://www.instagram.com/rifcoffee/",
			"Statut_Scraping_Detail": "Success",
		}),
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, exportRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["name"] != "Atlas Bakery" {
		t.Errorf("name = %v", records[0]["name"])
	}
	if _, ok := records[0]["address"]; ok {
		t.Error("placeholder address should be omitted")
	}
	if records[1]["instagram"] != "https://www.instagram.com/rifcoffee/" {
		t.Errorf("instagram = %v", records[1]["instagram"])
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSONL, exportRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line is not JSON: %q", line)
		}
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, exportRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var records []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(records) != 2 || records[0]["phone"] != "+212612345678" {
		t.Errorf("records = %+v", records)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xml"), nil); err == nil {
		t.Error("Write() should reject unknown formats")
	}
}
