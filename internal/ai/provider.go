package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrUnavailable = errors.New("ai provider unavailable")

// Image is an inline page rendering sent alongside a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string, images []Image) (string, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string, images []Image) (string, error)
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, prompt string, images []Image) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt, images)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}

func apiKeyOrEnv(key string, env string) string {
	key = strings.TrimSpace(key)
	if key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(env))
}
