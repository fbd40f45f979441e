package vision

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// OpenAIProvider extracts ticket fields through the OpenAI chat completions
// API with an inline image part.
type OpenAIProvider struct {
	desc   Descriptor
	client *openai.Client
	log    *slog.Logger
}

func NewOpenAIProvider(d Descriptor, log *slog.Logger) *OpenAIProvider {
	d = d.withDefaults()
	cfg := openai.DefaultConfig(d.APIKey)
	if d.BaseURL != "" {
		cfg.BaseURL = d.BaseURL
	}
	return &OpenAIProvider{
		desc:   d,
		client: openai.NewClientWithConfig(cfg),
		log:    log,
	}
}

func (p *OpenAIProvider) Name() string { return p.desc.Name }

func (p *OpenAIProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	return extractTicket(ctx, p.log, p.desc, imagePath, p.call)
}

func (p *OpenAIProvider) call(ctx context.Context, img encodedImage, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.desc.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.dataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// TestConnection lists models, which exercises auth and reachability without
// burning extraction tokens.
func (p *OpenAIProvider) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.desc.Timeout)
	defer cancel()
	_, err := p.client.ListModels(ctx)
	if err != nil {
		p.log.Warn("vision.test.failed", "provider", p.desc.Name, "error", err)
		return false
	}
	return true
}
