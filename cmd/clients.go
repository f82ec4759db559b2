package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/ai"
	"github.com/spigell/eo-scorer/internal/ai/anthropic"
	"github.com/spigell/eo-scorer/internal/ai/gemini"
	"github.com/spigell/eo-scorer/internal/enrichlayer"
	"github.com/spigell/eo-scorer/internal/enrichment"
	"github.com/spigell/eo-scorer/internal/secrets"
)

func newEnrichLayer(cfg *EnrichLayerConfig, logger *zap.Logger) (*enrichlayer.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name:  "enrichlayer api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   envEnrichLayerKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set %s or enrichlayer.api-key-file)", err, envEnrichLayerKey)
	}

	client := enrichlayer.New(logger, token)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		client.APIURL = base
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return client, nil
}

func newEnricher(client *enrichlayer.Client, cfg *EnrichLayerConfig, logger *zap.Logger) *enrichment.Enricher {
	sleep := cfg.SleepBetween
	if sleep < 0 {
		sleep = 0
	}

	return enrichment.New(client, sleep, logger)
}

// newScorer builds the configured scorer. Missing credentials are not fatal:
// every profile then gets the degraded "LLM not working" score.
func newScorer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Scorer, error) {
	prompt, err := ai.LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   envGeminiKey,
		})
		if err != nil {
			logger.Warn("scorer is not available, profiles will get a stub score",
				zap.Error(err),
				zap.String("hint", "set "+envGeminiKey+" or ai.gemini.api-key-file"),
			)
			return ai.Unavailable{}, nil
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger)
		if err != nil {
			return nil, err
		}

		return gemini.NewScorer(generator, prompt, logger, cfg.Gemini.MaxLogLength), nil

	case ai.ProviderAnthropic:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: cfg.Anthropic.APIKey,
			File:  cfg.Anthropic.APIKeyFile,
			Env:   envAnthropicKey,
		})
		if err != nil {
			logger.Warn("scorer is not available, profiles will get a stub score",
				zap.Error(err),
				zap.String("hint", "set "+envAnthropicKey+" or ai.anthropic.api-key-file"),
			)
			return ai.Unavailable{}, nil
		}

		return anthropic.NewScorer(apiKey, cfg.Anthropic.Model, prompt, logger, cfg.Anthropic.MaxLogLength,
			option.WithMaxRetries(2),
		)

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
