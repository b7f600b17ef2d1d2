package consolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leadharvest/leadharvest/internal/lead"
)

// ErrInvalidMergeReply reports a merge reply that is not a JSON array of
// records. It is retryable; a fresh completion usually parses.
var ErrInvalidMergeReply = errors.New("merge reply is not a JSON record array")

const mergeSystemPrompt = `You are a data deduplication assistant for a business lead list.
You receive a JSON array of lead records. Some records describe the same business, collected from different pages or different runs.

Group records that belong to the same business. Two records match when they share a source URL, or when their names, phone numbers, emails or addresses clearly point to the same place.

Merge each group into one record:
- For every field, prefer a real value over placeholders like "Not Found", "N/A" or "Nom Inconnu".
- When several real values conflict, keep the most complete one.
- Join all distinct "URL_Originale_Source" values with "; ".
- Set "Statut_Scraping_Detail" to the most successful status in the group.
- Drop groups where every record is a failed or skipped scrape.

Respond with ONLY the merged JSON array, using exactly the same field names as the input. No explanations, no markdown fences.`

// buildMergePrompt serializes the pool as the JSON array the merge
// instructions describe.
func buildMergePrompt(rows []lead.Row) (string, error) {
	objects := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, r.Fields())
	}
	payload, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing pool: %w", err)
	}

	var b strings.Builder
	b.WriteString("Merge the following lead records:\n\n")
	b.Write(payload)
	return b.String(), nil
}

// parseMergedRows recovers rows from the model reply, tolerating fences
// and prose around the array. Values that came back as numbers are
// stringified; the CSV schema is all text.
func parseMergedRows(content string) ([]lead.Row, error) {
	content = strings.TrimSpace(stripFences(content))

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in merge reply", ErrInvalidMergeReply)
	}

	var objects []map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &objects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMergeReply, err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: merge reply is an empty array", ErrInvalidMergeReply)
	}

	rows := make([]lead.Row, 0, len(objects))
	for _, obj := range objects {
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case string:
				fields[k] = val
			case float64:
				fields[k] = fmt.Sprintf("%.0f", val)
			case nil:
				// Missing field; FromFields applies the column default.
			default:
				fields[k] = fmt.Sprint(val)
			}
		}
		rows = append(rows, lead.FromFields(fields))
	}
	return rows, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return s
}
