package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/ai/gemini"
	"github.com/spigell/talent-matcher/internal/ai/ollama"
	"github.com/spigell/talent-matcher/internal/secrets"
)

const (
	providerOllama = "ollama"
	providerGemini = "gemini"
)

// newGateway never fails: a disabled or broken AI setup yields a gateway that always falls back.
func newGateway(ctx context.Context, cfg *AIConfig, log *zap.Logger) ai.Gateway {
	if cfg == nil || !cfg.Enabled {
		return ai.Disabled("ai is disabled in configuration")
	}

	provider, generator, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Warn("ai provider unavailable, shortlists will be ranked by match score",
			zap.String("provider", cfg.Provider),
			zap.Error(err),
		)
		return ai.Disabled(err.Error())
	}

	return ai.NewGateway(provider, generator, ai.GatewayOptions{
		Timeout:      cfg.Timeout,
		MaxLogLength: cfg.MaxLogLength,
	}, log)
}

func newGenerator(ctx context.Context, cfg *AIConfig) (string, ai.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = providerOllama
	}

	switch provider {
	case providerOllama:
		o := cfg.Ollama
		if o == nil {
			o = &OllamaConfig{}
		}
		return provider, ollama.NewGenerator(o.BaseURL, o.Model), nil

	case providerGemini:
		g := cfg.Gemini
		if g == nil {
			g = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  g.APIKeyFile,
			Value: g.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return provider, nil, err
		}
		generator, err := gemini.NewGenerator(ctx, apiKey, g.Model)
		if err != nil {
			return provider, nil, err
		}
		return provider, generator, nil

	default:
		return provider, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
