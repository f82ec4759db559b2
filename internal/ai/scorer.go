package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Band names by score.
const (
	BandNone        = "No/Negative"
	BandLow         = "Low"
	BandModerate    = "Moderate"
	BandStrong      = "Strong"
	BandExceptional = "Exceptional"
)

const (
	MinScore = 0
	MaxScore = 4

	defaultConfidence  = 0.6
	degradedConfidence = 0.2
)

// Supported model providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Reasons used by degraded scores.
const (
	ReasonParseError    = "Parse error"
	ReasonLLMNotWorking = "LLM not working"
)

var bands = map[int]string{
	0: BandNone,
	1: BandLow,
	2: BandModerate,
	3: BandStrong,
	4: BandExceptional,
}

//go:embed prompt.md
var defaultPrompt string

// DefaultPrompt returns the built-in scoring rubric used as the system prompt.
func DefaultPrompt() string {
	return defaultPrompt
}

// Score is the rubric result for one profile.
type Score struct {
	Score        int      `json:"score"`
	Band         string   `json:"band"`
	Reasons      []string `json:"reasons"`
	MatchedRules []string `json:"matched_rules"`
	Evidence     []string `json:"evidence"`
	Confidence   float64  `json:"confidence"`
	Raw          string   `json:"-"`
}

// Scorer rates an enriched profile.
type Scorer interface {
	Score(ctx context.Context, profile map[string]any) (*Score, error)
}

// Degraded is the fixed result returned when no usable model answer exists.
func Degraded(reason string) *Score {
	return &Score{
		Score:        MinScore,
		Band:         BandNone,
		Reasons:      []string{reason},
		MatchedRules: []string{},
		Evidence:     []string{},
		Confidence:   degradedConfidence,
	}
}

// BandFor returns the band name for a score, clamping it first.
func BandFor(score int) string {
	return bands[clampInt(score, MinScore, MaxScore)]
}

// rawScore keeps the lists untyped; stringList renders their items.
type rawScore struct {
	Score        *float64 `mapstructure:"score"`
	Band         string   `mapstructure:"band"`
	Reasons      any      `mapstructure:"reasons"`
	MatchedRules any      `mapstructure:"matched_rules"`
	Evidence     any      `mapstructure:"evidence"`
	Confidence   *float64 `mapstructure:"confidence"`
}

// ParseScore decodes a model answer. Invalid JSON or an unreadable score or
// confidence yields Degraded(ReasonParseError).
func ParseScore(raw string) *Score {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil || data == nil {
		return withRaw(Degraded(ReasonParseError), raw)
	}

	var parsed rawScore
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &parsed,
	})
	if err != nil {
		return withRaw(Degraded(ReasonParseError), raw)
	}
	if err := decoder.Decode(data); err != nil {
		return withRaw(Degraded(ReasonParseError), raw)
	}

	score := 0
	if parsed.Score != nil {
		score = int(*parsed.Score)
	}
	score = clampInt(score, MinScore, MaxScore)

	band := strings.TrimSpace(parsed.Band)
	if band == "" {
		band = BandFor(score)
	}

	confidence := defaultConfidence
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	confidence = clampFloat(confidence, 0, 1)

	return &Score{
		Score:        score,
		Band:         band,
		Reasons:      stringList(parsed.Reasons),
		MatchedRules: stringList(parsed.MatchedRules),
		Evidence:     stringList(parsed.Evidence),
		Confidence:   confidence,
		Raw:          raw,
	}
}

// BuildUserMessage wraps the profile JSON in the instruction sent with the rubric.
func BuildUserMessage(profile map[string]any) (string, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	return "Analyze the following EnrichLayer profile JSON for entrepreneurial orientation " +
		"using the scoring rubric. The profile may contain per-experience 'company_enrichment' " +
		"objects from the EnrichLayer Company API. Return JSON only.\n\nPROFILE_JSON:\n" +
		string(payload), nil
}

// JoinReasons renders reasons for a single CSV cell.
func JoinReasons(reasons []string) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r = strings.TrimSpace(r); r != "" {
			parts = append(parts, r)
		}
	}
	if len(parts) == 0 {
		return "(no reason)"
	}

	return strings.Join(parts, " | ")
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func withRaw(s *Score, raw string) *Score {
	s.Raw = raw
	return s
}

// stringList renders a decoded JSON value as a list of strings. A single
// scalar becomes a one-item list; objects and arrays are kept as compact JSON.
func stringList(v any) []string {
	switch items := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := itemString(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := itemString(items); ok {
			return []string{s}
		}
		return []string{}
	}
}

func itemString(v any) (string, bool) {
	switch v.(type) {
	case nil:
		return "", false
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(data), true
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
