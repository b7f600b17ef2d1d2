package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords holds the three keyword categories whose cartesian product
// drives the search phase. Categories may be empty; at least one must
// carry a keyword.
type Keywords struct {
	// Activities are business types: "boulangerie", "coiffeur".
	Activities []string `yaml:"activities"`
	// Cities scope the search geographically.
	Cities []string `yaml:"cities"`
	// Extras are free qualifiers appended to every combination.
	Extras []string `yaml:"extras"`
}

// Lists returns the categories in combination order.
func (k Keywords) Lists() [][]string {
	return [][]string{k.Activities, k.Cities, k.Extras}
}

// Validate checks that at least one category has a usable keyword.
func (k Keywords) Validate() error {
	for _, list := range k.Lists() {
		for _, kw := range list {
			if strings.TrimSpace(kw) != "" {
				return nil
			}
		}
	}
	return fmt.Errorf("keywords file defines no keywords")
}

// LoadKeywords reads and validates a keywords YAML file.
func LoadKeywords(path string) (Keywords, error) {
	var k Keywords
	payload, err := os.ReadFile(path)
	if err != nil {
		return k, fmt.Errorf("reading keywords file: %w", err)
	}
	if err := yaml.Unmarshal(payload, &k); err != nil {
		return k, fmt.Errorf("parsing keywords file: %w", err)
	}
	if err := k.Validate(); err != nil {
		return k, err
	}
	return k, nil
}
