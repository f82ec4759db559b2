// Package enrichment attaches compacted company data to the experiences of a
// fetched profile.
//
// Employers are de-duplicated by canonical company URL, so each company is
// fetched at most once per profile. Employers that also appear in the
// profile's volunteer work are never fetched. A failed company never stops
// the rest of the profile: the failure is written next to the experience it
// belongs to.
package enrichment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/canon"
	"github.com/spigell/eo-scorer/internal/company"
	"github.com/spigell/eo-scorer/internal/jsontree"
	"github.com/spigell/eo-scorer/internal/utils"
)

// Profile keys read or written by the enricher.
const (
	FieldExperiences     = "experiences"
	FieldVolunteerWork   = "volunteer_work"
	FieldCompany         = "company"
	FieldCompanyURL      = "company_linkedin_profile_url"
	FieldEnrichment      = "company_enrichment"
	FieldEnrichmentError = "company_enrichment_error"
)

// DefaultSleepBetween is the pause after every company fetch.
const DefaultSleepBetween = 200 * time.Millisecond

// Profile is a decoded profile document. It is mutated in place.
type Profile = map[string]any

// CompanyFetcher returns the raw company record for a canonical company URL.
type CompanyFetcher interface {
	FetchCompany(ctx context.Context, companyURL string) (map[string]any, error)
}

// Outcome is the result of the single fetch made for one company.
type Outcome struct {
	Payload *company.Payload
	Err     error
}

// Cache maps canonical company URLs to fetch outcomes. A Cache belongs to one
// profile; do not share it between profiles.
type Cache map[string]Outcome

func NewCache() Cache {
	return make(Cache)
}

// Report counts what happened to the experiences of one profile.
type Report struct {
	Experiences int
	Fetched     int
	Reused      int
	Volunteer   int
	Unresolved  int
	Failed      int
}

type Enricher struct {
	fetcher      CompanyFetcher
	sleepBetween time.Duration
	logger       *zap.Logger
	wait         func(context.Context, time.Duration) error
}

// New returns an Enricher that pauses sleepBetween after each company fetch.
func New(fetcher CompanyFetcher, sleepBetween time.Duration, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Enricher{
		fetcher:      fetcher,
		sleepBetween: sleepBetween,
		logger:       logger,
		wait:         utils.WaitFor,
	}
}

// Enrich enriches profile with a fresh cache and returns the report.
func (e *Enricher) Enrich(ctx context.Context, profile Profile) Report {
	return e.EnrichWithCache(ctx, profile, NewCache())
}

// EnrichWithCache enriches profile, reading and filling cache.
func (e *Enricher) EnrichWithCache(ctx context.Context, profile Profile, cache Cache) Report {
	if cache == nil {
		cache = NewCache()
	}

	volunteer := volunteerCompanies(profile)
	experiences := jsontree.Slice(profile, FieldExperiences)

	report := Report{Experiences: len(experiences)}

	for idx, item := range experiences {
		entry, ok := item.(map[string]any)
		if !ok {
			report.Unresolved++
			continue
		}

		rawURL, ok := ResolveCompanyURL(entry)
		if !ok {
			report.Unresolved++
			continue
		}

		key := canon.Company(rawURL)
		if _, skip := volunteer[key]; skip {
			e.logger.Debug("skipping volunteer company",
				zap.Int("experience", idx),
				zap.String("company_url", key),
			)
			report.Volunteer++
			continue
		}

		outcome, cached := cache[key]
		if cached {
			report.Reused++
		} else {
			outcome = e.fetch(ctx, key)
			cache[key] = outcome
			report.Fetched++

			if err := e.wait(ctx, e.sleepBetween); err != nil {
				e.logger.Debug("pause between company fetches interrupted", zap.Error(err))
			}
		}

		if outcome.Err != nil {
			entry[FieldEnrichmentError] = Diagnose(outcome.Err)
			report.Failed++

			e.logger.Warn("company enrichment failed",
				zap.Int("experience", idx),
				zap.String("company_url", key),
				zap.Bool("cached", cached),
				zap.Error(outcome.Err),
			)
			continue
		}

		entry[FieldEnrichment] = outcome.Payload
	}

	e.logger.Debug("company enrichment completed",
		zap.Int("experiences", report.Experiences),
		zap.Int("fetched", report.Fetched),
		zap.Int("reused", report.Reused),
		zap.Int("volunteer", report.Volunteer),
		zap.Int("unresolved", report.Unresolved),
		zap.Int("failed", report.Failed),
	)

	return report
}

// fetch makes the one attempt for a company. A panic in the fetcher or the
// compactor is turned into a failed outcome.
func (e *Enricher) fetch(ctx context.Context, companyURL string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &PanicError{Value: r}}
		}
	}()

	raw, err := e.fetcher.FetchCompany(ctx, companyURL)
	if err != nil {
		return Outcome{Err: err}
	}

	payload := company.Compact(raw, companyURL)
	return Outcome{Payload: &payload}
}

// ResolveCompanyURL finds the employer URL of an experience or volunteer
// entry: the direct field first, then the nested company object.
func ResolveCompanyURL(entry map[string]any) (string, bool) {
	for _, path := range [][]string{
		{FieldCompanyURL},
		{FieldCompany, FieldCompanyURL},
	} {
		if u := jsontree.String(entry, path...); u != nil && *u != "" {
			return *u, true
		}
	}

	return "", false
}

func volunteerCompanies(profile Profile) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range jsontree.Slice(profile, FieldVolunteerWork) {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if u, ok := ResolveCompanyURL(entry); ok {
			set[canon.Company(u)] = struct{}{}
		}
	}

	return set
}
