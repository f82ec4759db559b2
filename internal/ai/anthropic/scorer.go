// Package anthropic scores profiles with Claude models through the Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/ai"
	"github.com/spigell/eo-scorer/internal/logger"
	"github.com/spigell/eo-scorer/internal/utils"
)

const (
	defaultModel        = "claude-sonnet-4-5-20250929"
	defaultMaxTokens    = 1024
	defaultMaxLogLength = 200
)

// Scorer rates profiles with a Claude model.
type Scorer struct {
	client    sdk.Client
	model     string
	prompt    string
	logger    *zap.Logger
	maxLogLen int
}

// NewScorer builds a scorer. Extra request options (base URL, retries) are passed to the SDK client.
func NewScorer(apiKey, model, prompt string, logger *zap.Logger, maxLogLength int, opts ...option.RequestOption) (*Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if prompt == "" {
		prompt = ai.DefaultPrompt()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		client:    sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:     model,
		prompt:    prompt,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

func (s *Scorer) Model() string {
	return s.model
}

// Score asks the model for a rubric score. Transport errors are returned;
// unusable answers become a degraded score.
func (s *Scorer) Score(ctx context.Context, profile map[string]any) (*ai.Score, error) {
	if profile == nil {
		return nil, eris.New("anthropic: profile is required")
	}

	message, err := ai.BuildUserMessage(profile)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(s.logger, logger.ModelFields(ai.ProviderAnthropic, s.model)...)
	log.Debug("anthropic create message request",
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, s.maxLogLen)),
	)

	msg, err := s.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(s.model),
		MaxTokens:   defaultMaxTokens,
		System:      []sdk.TextBlockParam{{Text: s.prompt}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(message))},
		Temperature: sdk.Float(0),
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	raw := messageText(msg)
	log.Debug("anthropic create message response",
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return ai.ParseScore(raw), nil
}

func messageText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		builder.WriteString(block.Text)
	}

	return strings.TrimSpace(builder.String())
}
