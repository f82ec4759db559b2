package ai

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want *Score
	}{
		{
			name: "complete answer",
			raw: `{"score": 3, "band": "Strong", "reasons": ["Co-founded a funded startup"],
				"matched_rules": ["R1", "R3"], "evidence": ["Co-Founder at Acme"], "confidence": 0.85}`,
			want: &Score{
				Score:        3,
				Band:         BandStrong,
				Reasons:      []string{"Co-founded a funded startup"},
				MatchedRules: []string{"R1", "R3"},
				Evidence:     []string{"Co-Founder at Acme"},
				Confidence:   0.85,
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"score\": 2, \"reasons\": [\"Founder\"]}\n```",
			want: &Score{
				Score:        2,
				Band:         BandModerate,
				Reasons:      []string{"Founder"},
				MatchedRules: []string{},
				Evidence:     []string{},
				Confidence:   defaultConfidence,
			},
		},
		{
			name: "string reasons and numeric strings",
			raw:  `{"score": "4", "reasons": "Serial founder", "confidence": "0.9"}`,
			want: &Score{
				Score:        4,
				Band:         BandExceptional,
				Reasons:      []string{"Serial founder"},
				MatchedRules: []string{},
				Evidence:     []string{},
				Confidence:   0.9,
			},
		},
		{
			name: "clamped",
			raw:  `{"score": 9, "confidence": 1.7}`,
			want: &Score{
				Score:        MaxScore,
				Band:         BandExceptional,
				Reasons:      []string{},
				MatchedRules: []string{},
				Evidence:     []string{},
				Confidence:   1,
			},
		},
		{
			name: "negative clamped",
			raw:  `{"score": -2, "confidence": -0.5, "reasons": null}`,
			want: &Score{
				Score:        MinScore,
				Band:         BandNone,
				Reasons:      []string{},
				MatchedRules: []string{},
				Evidence:     []string{},
				Confidence:   0,
			},
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: &Score{
				Score:        0,
				Band:         BandNone,
				Reasons:      []string{},
				MatchedRules: []string{},
				Evidence:     []string{},
				Confidence:   defaultConfidence,
			},
		},
		{
			name: "object evidence",
			raw: `{"score": 3, "band": "Strong", "reasons": ["founded X"], "matched_rules": ["R1", 5],
				"evidence": [{"quote": "Founder at X"}, "Seed round", null], "confidence": 0.8}`,
			want: &Score{
				Score:        3,
				Band:         BandStrong,
				Reasons:      []string{"founded X"},
				MatchedRules: []string{"R1", "5"},
				Evidence:     []string{`{"quote":"Founder at X"}`, "Seed round"},
				Confidence:   0.8,
			},
		},
		{
			name: "object instead of list",
			raw:  `{"score": 1, "evidence": {"quote": "Side project"}}`,
			want: &Score{
				Score:        1,
				Band:         BandLow,
				Reasons:      []string{},
				MatchedRules: []string{},
				Evidence:     []string{`{"quote":"Side project"}`},
				Confidence:   defaultConfidence,
			},
		},
		{name: "bad confidence type", raw: `{"score": 2, "confidence": "sure"}`, want: Degraded(ReasonParseError)},
		{name: "not json", raw: "I think this person is a founder", want: Degraded(ReasonParseError)},
		{name: "array", raw: `[1, 2, 3]`, want: Degraded(ReasonParseError)},
		{name: "null", raw: `null`, want: Degraded(ReasonParseError)},
		{name: "bad score type", raw: `{"score": "high"}`, want: Degraded(ReasonParseError)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseScore(tc.raw)
			if diff := cmp.Diff(tc.want, got, cmpopts.IgnoreFields(Score{}, "Raw")); diff != "" {
				t.Fatalf("unexpected score (-want +got):\n%s", diff)
			}
			if got.Raw != tc.raw {
				t.Fatalf("expected raw answer to be kept")
			}
		})
	}
}

func TestDegraded(t *testing.T) {
	t.Parallel()

	got := Degraded(ReasonParseError)
	if got.Score != 0 || got.Band != BandNone || got.Confidence != 0.2 {
		t.Fatalf("unexpected degraded score %+v", got)
	}
	if len(got.Reasons) != 1 || got.Reasons[0] != "Parse error" {
		t.Fatalf("unexpected reasons %v", got.Reasons)
	}

	// Each call returns its own value.
	got.Reasons[0] = "changed"
	if Degraded(ReasonParseError).Reasons[0] != "Parse error" {
		t.Fatalf("degraded results must not share state")
	}
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	want := map[int]string{
		-1: BandNone,
		0:  BandNone,
		1:  BandLow,
		2:  BandModerate,
		3:  BandStrong,
		4:  BandExceptional,
		5:  BandExceptional,
	}
	for score, band := range want {
		if got := BandFor(score); got != band {
			t.Fatalf("BandFor(%d) = %q, want %q", score, got, band)
		}
	}
}

func TestJoinReasons(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   []string
		want string
	}{
		"nil":        {in: nil, want: "(no reason)"},
		"blank only": {in: []string{" ", ""}, want: "(no reason)"},
		"single":     {in: []string{"Founder"}, want: "Founder"},
		"several":    {in: []string{"Founder", " Funded ", ""}, want: "Founder | Funded"},
	}

	for name, tc := range cases {
		if got := JoinReasons(tc.in); got != tc.want {
			t.Fatalf("%s: got %q, want %q", name, got, tc.want)
		}
	}
}

func TestBuildUserMessage(t *testing.T) {
	t.Parallel()

	msg, err := BuildUserMessage(map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(msg, "PROFILE_JSON:\n{\"full_name\":\"Ada\"}") {
		t.Fatalf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "Return JSON only.") {
		t.Fatalf("expected JSON-only instruction")
	}

	if _, err := BuildUserMessage(map[string]any{"bad": make(chan int)}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	got, err := Unavailable{}.Score(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Reasons[0] != ReasonLLMNotWorking || got.Confidence != 0.2 {
		t.Fatalf("unexpected score %+v", got)
	}
}

func TestLoadPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := LoadPrompt("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "matched_rules") {
		t.Fatalf("built-in prompt should describe the answer schema")
	}

	dir := t.TempDir()
	custom := filepath.Join(dir, "rubric.md")
	if err := os.WriteFile(custom, []byte("  custom rubric \n"), 0o600); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	prompt, err = LoadPrompt(custom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "custom rubric" {
		t.Fatalf("unexpected prompt %q", prompt)
	}

	empty := filepath.Join(dir, "empty.md")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	if _, err := LoadPrompt(empty); err == nil {
		t.Fatalf("expected error for empty prompt file")
	}
	if _, err := LoadPrompt(filepath.Join(dir, "missing.md")); err == nil {
		t.Fatalf("expected error for missing prompt file")
	}
}
