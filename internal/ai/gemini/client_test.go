package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu      sync.Mutex
	calls   int
	model   string
	config  *genai.GenerateContentConfig
	prompt  string
	results []fakeResult
}

type fakeResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}

	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx].resp, f.results[idx].err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newTestGenerator(models contentModels) *Generator {
	g := newGenerator(models, "", 3, zap.NewNop())
	g.delay = 0
	return g
}

func TestGenerateJSON(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []fakeResult{{resp: textResponse(`{"score": 2}`)}}}
	g := newTestGenerator(models)

	out, err := g.GenerateJSON(context.Background(), "  rubric  ", " profile ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"score": 2}` {
		t.Fatalf("unexpected output %q", out)
	}

	if models.model != defaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if models.prompt != "profile" {
		t.Fatalf("unexpected prompt %q", models.prompt)
	}
	if models.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response type, got %q", models.config.ResponseMIMEType)
	}
	if models.config.Temperature == nil || *models.config.Temperature != 0 {
		t.Fatalf("expected zero temperature")
	}
	if models.config.SystemInstruction == nil || models.config.SystemInstruction.Parts[0].Text != "rubric" {
		t.Fatalf("expected system instruction to carry the rubric")
	}
}

func TestGenerateJSONRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []fakeResult{
		{err: genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}},
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		{resp: textResponse(`{"score": 1}`)},
	}}
	g := newTestGenerator(models)

	out, err := g.GenerateJSON(context.Background(), "", "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"score": 1}` {
		t.Fatalf("unexpected output %q", out)
	}
	if models.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", models.calls)
	}
	if models.config.SystemInstruction != nil {
		t.Fatalf("blank system prompt should not be sent")
	}
}

func TestGenerateJSONDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []fakeResult{
		{err: genai.APIError{Code: http.StatusBadRequest, Message: "invalid argument"}},
	}}
	g := newTestGenerator(models)

	_, err := g.GenerateJSON(context.Background(), "", "profile")
	if err == nil {
		t.Fatalf("expected error")
	}
	if models.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", models.calls)
	}
}

func TestGenerateJSONEmptyResponse(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []fakeResult{{resp: textResponse("  ")}}}
	g := newTestGenerator(models)

	if _, err := g.GenerateJSON(context.Background(), "", "profile"); err == nil {
		t.Fatalf("expected error for empty response")
	}
}

func TestGenerateJSONValidation(t *testing.T) {
	t.Parallel()

	var nilGenerator *Generator
	if _, err := nilGenerator.GenerateJSON(context.Background(), "", "x"); err == nil {
		t.Fatalf("expected error for nil generator")
	}

	g := newTestGenerator(&fakeModels{})
	if _, err := g.GenerateJSON(context.Background(), "", "   "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(context.Background(), "  ", "", 0, nil); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		nil,
		{Content: nil},
		{Content: &genai.Content{Parts: []*genai.Part{nil, {Text: " first "}, {Text: "second"}}}},
		{Content: &genai.Content{Parts: []*genai.Part{{Text: "other candidate"}}}},
	}}

	if got := responseText(resp); got != "first\nsecond" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("expected empty text for nil response, got %q", got)
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{err: genai.APIError{Code: http.StatusTooManyRequests}, want: true},
		{err: genai.APIError{Code: http.StatusInternalServerError}, want: true},
		{err: &genai.APIError{Code: http.StatusBadGateway}, want: true},
		{err: genai.APIError{Code: http.StatusForbidden}, want: false},
		{err: errors.New("plain"), want: false},
	}

	for _, tc := range cases {
		if got := isTransient(tc.err); got != tc.want {
			t.Fatalf("isTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
