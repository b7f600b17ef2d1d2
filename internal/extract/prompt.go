package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leadharvest/leadharvest/internal/llm"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/retry"
)

const systemPrompt = `You are a contact-data extraction assistant. You analyze the visible text of a web page and identify business contact and profile information for a sales prospect.

Rules:
1. Return valid JSON containing exactly the requested keys
2. Use "Not Found" as the value for any information the text does not contain
3. Use absolute URLs for links
4. Never invent values; extract only what the text states
5. If the page is unusable (requires login, shows a CAPTCHA, or contains no relevant information at all), set "unusable" to true, or respond with ONLY the word: COMPLEX`

// unusableSentinel is the literal the model answers with for content it
// cannot work with. It is interpreted here and nowhere else; callers see
// ErrUnusableContent.
const unusableSentinel = "COMPLEX"

// aiPayload is the JSON contract of the single-record extraction call.
type aiPayload struct {
	Name      string `json:"name"`
	PageType  string `json:"page_type"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Website   string `json:"website"`
	Facebook  string `json:"facebook_url"`
	Instagram string `json:"instagram_url"`
	WhatsApp  string `json:"whatsapp"`
	Address   string `json:"address"`
	Bio       string `json:"bio"`
	Unusable  bool   `json:"unusable"`
}

// extractionSchema mirrors aiPayload for providers with native structured
// output. Constrained replies signal an unusable page through the
// "unusable" flag instead of the COMPLEX sentinel.
func extractionSchema() map[string]any {
	stringFields := []string{
		"name", "page_type", "phone", "email", "website",
		"facebook_url", "instagram_url", "whatsapp", "address", "bio",
	}
	properties := make(map[string]any, len(stringFields)+1)
	required := make([]string, 0, len(stringFields)+1)
	for _, name := range stringFields {
		properties[name] = map[string]any{"type": "string"}
		required = append(required, name)
	}
	properties["unusable"] = map[string]any{"type": "boolean"}
	required = append(required, "unusable")

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func buildExtractionPrompt(content string, maxLen int) string {
	var b strings.Builder
	b.WriteString("Extract the following from the page text below and return ONLY a JSON object with these keys (value \"Not Found\" when absent):\n")
	b.WriteString(`- "name": the business, person or page name
- "page_type": the category of the page (restaurant, shop, ...)
- "phone": the main phone number
- "email": the main contact email address
- "website": the main website URL, if different from the analyzed page
- "facebook_url": the Facebook page URL if mentioned
- "instagram_url": the Instagram profile URL if mentioned
- "whatsapp": a WhatsApp number or wa.me link if mentioned
- "address": the physical address if available
- "bio": a short description or bio if available
- "unusable": true only when the page cannot be analyzed at all
`)
	b.WriteString("\nPage text:\n---\n")
	b.WriteString(truncateContent(content, maxLen))
	b.WriteString("\n---\nRespond ONLY with the JSON object or the word COMPLEX.\n")
	return b.String()
}

func (e *Extractor) extractWithModel(ctx context.Context, content string) (Fields, llm.Usage, error) {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildExtractionPrompt(content, e.config.MaxContentSize)},
		},
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}
	if e.provider.SupportsJSONSchema() {
		req.JSONSchema = extractionSchema()
		req.StrictMode = true
	}

	var fields Fields
	var usage llm.Usage
	err := e.config.Retry.Do(ctx, "page extraction", func(ctx context.Context) error {
		if e.config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
			defer cancel()
		}

		logger.Debug("calling extraction model",
			"provider", e.provider.Name(),
			"structured", req.JSONSchema != nil,
			"content_size", len(content))

		resp, err := e.provider.Complete(ctx, req)
		if err != nil {
			return fmt.Errorf("model call failed: %w", err)
		}
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		f, err := parseModelReply(resp.Content)
		if err != nil {
			// The unusable verdict is an answer, not a transient fault.
			if errors.Is(err, ErrUnusableContent) {
				return &retry.Permanent{Err: err}
			}
			return err
		}
		fields = f
		return nil
	})
	if err != nil {
		return Fields{}, usage, err
	}
	return fields, usage, nil
}

// parseModelReply interprets the raw model output: the unusable sentinel
// becomes ErrUnusableContent, anything else must parse strictly as JSON
// after stripping code fences.
func parseModelReply(raw string) (Fields, error) {
	text := stripFences(strings.TrimSpace(raw))
	if strings.EqualFold(text, unusableSentinel) {
		return Fields{}, ErrUnusableContent
	}

	// Models sometimes pad the object with prose; isolate the outermost
	// braces before parsing.
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var payload aiPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrInvalidModelResponse, err)
	}
	if payload.Unusable {
		return Fields{}, ErrUnusableContent
	}

	return Fields{
		Name:      dropSentinel(payload.Name),
		PageType:  dropSentinel(payload.PageType),
		Phone:     dropSentinel(payload.Phone),
		Email:     dropSentinel(payload.Email),
		Website:   dropSentinel(payload.Website),
		Facebook:  dropSentinel(payload.Facebook),
		Instagram: dropSentinel(payload.Instagram),
		WhatsApp:  dropSentinel(payload.WhatsApp),
		Address:   dropSentinel(payload.Address),
		Bio:       dropSentinel(payload.Bio),
	}, nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// dropSentinel maps the model's textual placeholders to the internal
// "unresolved" representation.
func dropSentinel(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "Not Found", "N/A", "null", "None":
		return ""
	}
	return v
}

func truncateContent(content string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	logger.Warn("content truncated for model prompt",
		"original_bytes", len(content),
		"max_bytes", maxLen)
	return content[:maxLen] + "\n\n[Content truncated due to length...]"
}
