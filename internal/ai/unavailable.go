package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Unavailable is used when no model provider is configured. Every profile gets
// the degraded "LLM not working" result so a batch can still be written.
type Unavailable struct{}

func (Unavailable) Score(context.Context, map[string]any) (*Score, error) {
	return Degraded(ReasonLLMNotWorking), nil
}

// LoadPrompt reads a rubric from path, or returns the built-in one when path is empty.
func LoadPrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPrompt(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}

	return prompt, nil
}
