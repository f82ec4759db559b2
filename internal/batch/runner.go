// Package batch scores a CSV of LinkedIn profile URLs row by row.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/eo-scorer/internal/ai"
	"github.com/spigell/eo-scorer/internal/enrichment"
	"github.com/spigell/eo-scorer/internal/logger"
	"github.com/spigell/eo-scorer/internal/utils"
)

// DefaultRowDelay spaces out profile fetches of consecutive rows.
const DefaultRowDelay = 200 * time.Millisecond

// FieldPipelineError is set on a profile when enrichment as a whole blew up.
const FieldPipelineError = "company_enrichment_pipeline_error"

const (
	reasonNoURL = "No URL"
	// Confidence reported for rows that never reached the model.
	fallbackConfidence = 0.2
)

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, profileURL string) (map[string]any, error)
}

type ProfileEnricher interface {
	Enrich(ctx context.Context, profile enrichment.Profile) enrichment.Report
}

// Result is one scored row.
type Result struct {
	Row        Row
	Score      int
	Reason     string
	Band       string
	Confidence float64
}

type Runner struct {
	fetcher  ProfileFetcher
	enricher ProfileEnricher
	scorer   ai.Scorer
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewRunner(fetcher ProfileFetcher, enricher ProfileEnricher, scorer ai.Scorer, rowDelay time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if rowDelay > 0 {
		limit = rate.Every(rowDelay)
	}

	return &Runner{
		fetcher:  fetcher,
		enricher: enricher,
		scorer:   scorer,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Run processes rows in order. It stops early only when ctx is done and then
// returns the results gathered so far together with the context error.
func (r *Runner) Run(ctx context.Context, table *Table) ([]Result, error) {
	results := make([]Result, 0, len(table.Rows))

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := r.process(ctx, row, table.URLColumn)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

func (r *Runner) process(ctx context.Context, row Row, urlColumn string) (Result, error) {
	profileURL := row.URL(urlColumn)
	log := logger.WithRow(r.logger, row.Number, profileURL)

	if profileURL == "" {
		log.Info("row has no profile url")
		return fallback(row, reasonNoURL), nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	log.Info("fetching profile")
	profile, err := r.fetcher.FetchProfile(ctx, profileURL)
	if err != nil {
		log.Warn("profile fetch failed", zap.Error(err))
		return fallback(row, fmt.Sprintf("Fetch error: %s", utils.RedactSecrets(err.Error()))), nil
	}
	if profile == nil {
		profile = map[string]any{}
	}

	report := r.enrich(ctx, profile, log)
	log.Info("profile enriched",
		zap.Int("experiences", report.Experiences),
		zap.Int("companies_fetched", report.Fetched),
		zap.Int("companies_failed", report.Failed),
	)

	score, err := r.scorer.Score(ctx, profile)
	if err != nil {
		log.Warn("scoring failed", zap.Error(err))
		return fallback(row, fmt.Sprintf("LLM error: %s", utils.RedactSecrets(err.Error()))), nil
	}

	log.Info("profile scored",
		zap.Int("score", score.Score),
		zap.String("band", score.Band),
		zap.Float64("confidence", score.Confidence),
	)

	return Result{
		Row:        row,
		Score:      score.Score,
		Reason:     ai.JoinReasons(score.Reasons),
		Band:       score.Band,
		Confidence: score.Confidence,
	}, nil
}

// enrich never fails the row: a panic escaping the enricher is recorded on the
// profile and scoring goes on with whatever was attached before it.
func (r *Runner) enrich(ctx context.Context, profile map[string]any, log *zap.Logger) (report enrichment.Report) {
	defer func() {
		if v := recover(); v != nil {
			diag := enrichment.Diagnose(&enrichment.PanicError{Value: v})
			profile[FieldPipelineError] = diag
			log.Error("company enrichment aborted", zap.String("error", diag))
		}
	}()

	return r.enricher.Enrich(ctx, profile)
}

func fallback(row Row, reason string) Result {
	return Result{
		Row:        row,
		Score:      ai.MinScore,
		Reason:     reason,
		Band:       ai.BandNone,
		Confidence: fallbackConfidence,
	}
}
