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

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider extracts ticket fields through OpenRouter's
// OpenAI-compatible chat completions endpoint. Raw HTTP keeps us free to set
// the routing headers the aggregator wants.
type OpenRouterProvider struct {
	desc       Descriptor
	httpClient *http.Client
	log        *slog.Logger
}

func NewOpenRouterProvider(d Descriptor, log *slog.Logger) *OpenRouterProvider {
	d = d.withDefaults()
	if d.BaseURL == "" {
		d.BaseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{
		desc:       d,
		httpClient: &http.Client{Timeout: d.Timeout},
		log:        log,
	}
}

func (p *OpenRouterProvider) Name() string { return p.desc.Name }

func (p *OpenRouterProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	return extractTicket(ctx, p.log, p.desc, imagePath, p.call)
}

type openRouterRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []openRouterMessage `json:"messages"`
}

type openRouterMessage struct {
	Role    string           `json:"role"`
	Content []openRouterPart `json:"content"`
}

type openRouterPart struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterImageURL struct {
	URL string `json:"url"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenRouterProvider) call(ctx context.Context, img encodedImage, prompt string) (string, error) {
	reqBody := openRouterRequest{
		Model:     p.desc.Model,
		MaxTokens: 1024,
		Messages: []openRouterMessage{
			{
				Role: "user",
				Content: []openRouterPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &openRouterImageURL{URL: img.dataURL()}},
				},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.desc.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.desc.APIKey)

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

	var parsed openRouterResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// TestConnection lists models with the configured key.
func (p *OpenRouterProvider) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.desc.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.desc.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.desc.APIKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("vision.test.failed", "provider", p.desc.Name, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}
