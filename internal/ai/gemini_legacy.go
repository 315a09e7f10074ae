package ai

import (
	"context"
	"fmt"
	"strings"

	legacygenai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiLegacyProvider struct {
	apiKey      string
	temperature *float32
}

type geminiLegacyConfig struct {
	APIKey      string   `json:"api_key"`
	Temperature *float32 `json:"temperature"`
}

func (p *geminiLegacyProvider) Name() string {
	return "gemini_legacy"
}

func (p *geminiLegacyProvider) Generate(ctx context.Context, model string, prompt string, images []Image) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	client, err := legacygenai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	if p.temperature != nil {
		gm.SetTemperature(*p.temperature)
	}
	parts := make([]legacygenai.Part, 0, len(images)+1)
	parts = append(parts, legacygenai.Text(prompt))
	for _, img := range images {
		parts = append(parts, legacygenai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(legacygenai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return strings.TrimSpace(sb.String()), nil
}

func createGeminiLegacyFactory(args interface{}) (IProvider, error) {
	cfg := &geminiLegacyConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiLegacyProvider{
		apiKey:      apiKeyOrEnv(cfg.APIKey, "GEMINI_API_KEY"),
		temperature: cfg.Temperature,
	}, nil
}

func init() {
	Register("gemini_legacy", createGeminiLegacyFactory)
}
