package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicProvider extracts ticket fields through the Anthropic messages
// API. No SDK; the envelope is small enough for a raw client.
type AnthropicProvider struct {
	desc       Descriptor
	httpClient *http.Client
	log        *slog.Logger
}

func NewAnthropicProvider(d Descriptor, log *slog.Logger) *AnthropicProvider {
	d = d.withDefaults()
	if d.BaseURL == "" {
		d.BaseURL = defaultAnthropicBaseURL
	}
	return &AnthropicProvider{
		desc:       d,
		httpClient: &http.Client{Timeout: d.Timeout},
		log:        log,
	}
}

func (p *AnthropicProvider) Name() string { return p.desc.Name }

func (p *AnthropicProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	return extractTicket(ctx, p.log, p.desc, imagePath, p.call)
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []anthropicPart `json:"content"`
}

type anthropicPart struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) call(ctx context.Context, img encodedImage, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     p.desc.Model,
		MaxTokens: 1024,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicPart{
					{
						Type: "image",
						Source: &anthropicSource{
							Type:      "base64",
							MediaType: img.MIME,
							Data:      img.Base64,
						},
					},
					{Type: "text", Text: prompt},
				},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.desc.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.desc.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty content in response")
	}
	return parsed.Content[0].Text, nil
}

// TestConnection lists models with the configured key.
func (p *AnthropicProvider) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.desc.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.desc.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("x-api-key", p.desc.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("vision.test.failed", "provider", p.desc.Name, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
