package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Provider answers a vision prompt for an image with free-form text.
// Responses are parsed downstream; a provider never needs to return
// valid JSON.
type Provider interface {
	Name() string
	Describe(ctx context.Context, imagePath string) (string, error)
}

const analysisPrompt = `Analyze this artwork and provide detailed information in JSON format:
{
    "title": "artwork title or 'Untitled'",
    "artist": "artist name or 'Unknown'",
    "medium": "medium/technique used",
    "style": "art style/movement",
    "colors": ["dominant", "colors"],
    "subject_matter": "what the artwork depicts",
    "condition": "condition assessment (mint/excellent/very good/good/fair/poor)",
    "estimated_year": "creation year or estimated period",
    "size_category": "miniature/small/medium/large/oversized",
    "frame_info": "framing details",
    "signature_present": true,
    "authenticity_markers": ["signs", "of", "authenticity"],
    "keywords": ["relevant", "search", "keywords"]
}
Provide your best assessment even if uncertain.`

// HTTPProvider queries an OpenAI-compatible chat completions endpoint
// with the image attached as a base64 data URI.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPProvider builds a provider for an OpenAI-compatible API.
// baseURL is the API root, e.g. "https://api.openai.com/v1".
func NewHTTPProvider(name, baseURL, apiKey, model string) *HTTPProvider {
	return &HTTPProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Describe(ctx context.Context, imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	payload := map[string]any{
		"model": p.model,
		"messages": []map[string]any{{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": analysisPrompt},
				{"type": "image_url", "image_url": map[string]string{
					"url": "data:image/jpeg;base64," + encoded,
				}},
			},
		}},
		"max_tokens": 1000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("vision API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// MockProvider fabricates a deterministic analysis from the filename.
// It keeps demos and the batch pipeline working without API keys.
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Describe(_ context.Context, imagePath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	title := titleCase(strings.ReplaceAll(strings.ReplaceAll(base, "_", " "), "-", " "))

	mock := map[string]any{
		"title":                "Contemporary Abstract Composition - " + title,
		"artist":               "Unknown Artist",
		"medium":               "Acrylic on Canvas",
		"style":                "Abstract Expressionism",
		"colors":               []string{"Blue", "Gold", "White"},
		"subject_matter":       "Abstract geometric composition",
		"condition":            "excellent",
		"estimated_year":       "2020s",
		"size_category":        "medium",
		"frame_info":           "Unframed",
		"signature_present":    true,
		"authenticity_markers": []string{"Signature visible lower right"},
		"keywords":             []string{"abstract", "modern", "contemporary"},
	}

	out, err := json.Marshal(mock)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
