package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// GeminiProvider extracts ticket fields through the Gemini generative API.
type GeminiProvider struct {
	desc   Descriptor
	client *genai.Client
	log    *slog.Logger
}

// NewGeminiProvider dials the Gemini API. The client holds its own transport,
// so construction can fail on bad options.
func NewGeminiProvider(ctx context.Context, d Descriptor, log *slog.Logger) (*GeminiProvider, error) {
	d = d.withDefaults()
	client, err := genai.NewClient(ctx, option.WithAPIKey(d.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{desc: d, client: client, log: log}, nil
}

func (p *GeminiProvider) Name() string { return p.desc.Name }

func (p *GeminiProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	return extractTicket(ctx, p.log, p.desc, imagePath, p.call)
}

func (p *GeminiProvider) call(ctx context.Context, img encodedImage, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.desc.Model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData(imageFormat(img.MIME), img.Data),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return b.String(), nil
}

// TestConnection issues a minimal text-only generation.
func (p *GeminiProvider) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.desc.Timeout)
	defer cancel()
	model := p.client.GenerativeModel(p.desc.Model)
	_, err := model.GenerateContent(ctx, genai.Text("ping"))
	if err != nil {
		p.log.Warn("vision.test.failed", "provider", p.desc.Name, "error", err)
		return false
	}
	return true
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// imageFormat maps a sniffed MIME type to the bare format token the genai
// SDK expects ("jpeg", "png", "webp").
func imageFormat(mime string) string {
	return strings.TrimPrefix(mime, "image/")
}
