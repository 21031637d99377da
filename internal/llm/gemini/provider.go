package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/config"
	"github.com/formlab/formgen/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Provider implements llm.Provider for Google Gemini
type Provider struct {
	apiKey string
	model  string
}

// NewProvider creates a new Gemini provider
func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// GenerateForm generates a form definition from natural language
func (p *Provider) GenerateForm(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	var temperature float32 = 0.2
	generativeModel.Temperature = &temperature
	generativeModel.ResponseMIMEType = "application/json"
	generativeModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.SystemPrompt)},
	}

	start := time.Now()
	resp, err := generativeModel.GenerateContent(ctx, genai.Text(llm.BuildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		RawJSON:    llm.ExtractJSON(output),
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
