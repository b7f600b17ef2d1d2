// Package export serializes the lead store into machine-readable
// formats for downstream tooling that does not speak the CSV schema.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leadharvest/leadharvest/internal/lead"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// record is the serialized shape of one lead. Field names are stable
// snake_case identifiers rather than the CSV's French headers.
type record struct {
	Name          string `json:"name" yaml:"name"`
	AltName       string `json:"alt_name,omitempty" yaml:"alt_name,omitempty"`
	State         string `json:"state" yaml:"state"`
	Address       string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone         string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website       string `json:"website,omitempty" yaml:"website,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	CreatedAt     string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Facebook      string `json:"facebook,omitempty" yaml:"facebook,omitempty"`
	Instagram     string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	WhatsApp      string `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	SourceURL     string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Bio           string `json:"bio,omitempty" yaml:"bio,omitempty"`
	SourceKeyword string `json:"source_keyword,omitempty" yaml:"source_keyword,omitempty"`
	SourceType    string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
	Posts         string `json:"posts,omitempty" yaml:"posts,omitempty"`
	Followers     string `json:"followers,omitempty" yaml:"followers,omitempty"`
	Following     string `json:"following,omitempty" yaml:"following,omitempty"`
	PageType      string `json:"page_type,omitempty" yaml:"page_type,omitempty"`
}

// fromRow converts a Row, dropping placeholder values so that exports
// carry only real data.
func fromRow(r lead.Row) record {
	real := func(v string, placeholders ...string) string {
		for _, p := range placeholders {
			if v == p {
				return ""
			}
		}
		return v
	}
	return record{
		Name:          r.Name,
		AltName:       real(r.AltName, lead.NotFound, lead.NA),
		State:         r.State,
		Address:       real(r.Address, lead.NotFound, lead.NA),
		Phone:         real(r.Phone, lead.NotFound, lead.NA),
		Website:       real(r.Website, lead.NotFound, lead.NA),
		Email:         real(r.Email, lead.NotFound, lead.NA),
		CreatedAt:     r.CreatedAt,
		Facebook:      real(r.Facebook, lead.NotFound, lead.NA),
		Instagram:     real(r.Instagram, lead.NotFound, lead.NA),
		WhatsApp:      real(r.WhatsApp, lead.NotFound, lead.NA, lead.NotGenerated, lead.InvalidPhoneFormat),
		SourceURL:     real(r.SourceURL, lead.NA),
		Bio:           real(r.Bio, lead.NA, lead.NotFound),
		SourceKeyword: real(r.SourceKeyword, lead.NA),
		SourceType:    real(r.SourceType, lead.NA),
		Status:        r.Status,
		Posts:         real(r.Posts, lead.NA, lead.NotFound),
		Followers:     real(r.Followers, lead.NA, lead.NotFound),
		Following:     real(r.Following, lead.NA, lead.NotFound),
		PageType:      real(r.PageType, lead.NotFound, lead.NA),
	}
}

// Write serializes rows to w in the given format.
func Write(w io.Writer, format Format, rows []lead.Row) error {
	records := make([]record, 0, len(rows))
	for _, r := range rows {
		records = append(records, fromRow(r))
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatJSONL:
		return writeJSONL(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeJSON(w io.Writer, records []record) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func writeJSONL(w io.Writer, records []record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeYAML(w io.Writer, records []record) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(records)
}
