package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"pages too low", func(c *Config) { c.Pages = 0 }},
		{"pages too high", func(c *Config) { c.Pages = 21 }},
		{"unknown platform", func(c *Config) { c.Platforms = []string{"myspace"} }},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }},
		{"delay range inverted", func(c *Config) {
			c.DelayMin = 10 * time.Second
			c.DelayMax = 2 * time.Second
		}},
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	payload := `activities:
  - boulangerie
  - patisserie
cities:
  - casablanca
extras: []
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	k, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords() error = %v", err)
	}
	if len(k.Activities) != 2 || len(k.Cities) != 1 || len(k.Extras) != 0 {
		t.Errorf("keywords = %+v", k)
	}
	lists := k.Lists()
	if len(lists) != 3 || lists[0][0] != "boulangerie" {
		t.Errorf("Lists() = %v", lists)
	}
}

func TestLoadKeywordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("activities: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKeywords(path); err == nil {
		t.Error("LoadKeywords() should reject an empty file")
	}
}

func TestLoadKeywordsMissingFile(t *testing.T) {
	if _, err := LoadKeywords(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadKeywords() should fail on a missing file")
	}
}
