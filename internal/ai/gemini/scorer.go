package gemini

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/ai"
	"github.com/spigell/eo-scorer/internal/logger"
	"github.com/spigell/eo-scorer/internal/utils"
)

const defaultMaxLogLength = 200

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Scorer rates profiles with a Gemini model.
type Scorer struct {
	generator jsonGenerator
	prompt    string
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator jsonGenerator, prompt string, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if prompt == "" {
		prompt = ai.DefaultPrompt()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		prompt:    prompt,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score asks the model for a rubric score. Transport errors are returned;
// unusable answers become a degraded score.
func (s *Scorer) Score(ctx context.Context, profile map[string]any) (*ai.Score, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	message, err := ai.BuildUserMessage(profile)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(s.logger, logger.ModelFields(ai.ProviderGemini, s.generator.Model())...)

	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, s.prompt, message)
	if err != nil {
		return nil, err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return ai.ParseScore(raw), nil
}
