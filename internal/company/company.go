// Package company reduces raw EnrichLayer company records to the compact
// payload attached to profile experiences.
package company

import (
	"github.com/spigell/eo-scorer/internal/jsontree"
)

const maxCategories = 10

// Payload is the fixed-shape company summary. Unknown scalars stay nil and
// serialize as JSON null.
type Payload struct {
	QueryLinkedInURL *string        `json:"query_linkedin_url"`
	Name             *string        `json:"name"`
	Description      *string        `json:"description"`
	Website          *string        `json:"website"`
	Industry         *string        `json:"industry"`
	Categories       []string       `json:"categories"`
	CompanySize      any            `json:"company_size"`
	CompanyType      *string        `json:"company_type"`
	FoundedYear      *int64         `json:"founded_year"`
	HQ               HQ             `json:"hq"`
	FollowerCount    *int64         `json:"follower_count"`
	PublicMarkets    PublicMarkets  `json:"public_markets"`
	ExternalRefs     ExternalRefs   `json:"external_refs"`
	FundingSummary   FundingSummary `json:"funding_summary"`
	FundingRounds    []FundingRound `json:"funding_rounds"`
}

type HQ struct {
	Country *string `json:"country"`
	State   *string `json:"state"`
	City    *string `json:"city"`
}

type PublicMarkets struct {
	IPOStatus   *string `json:"ipo_status"`
	StockSymbol *string `json:"stock_symbol"`
	IPODate     any     `json:"ipo_date"`
}

type ExternalRefs struct {
	CrunchbaseProfileURL *string `json:"crunchbase_profile_url"`
}

type FundingSummary struct {
	NumberOfFundingRounds *int64 `json:"number_of_funding_rounds"`
	TotalFundingAmount    *int64 `json:"total_funding_amount"`
	NumberOfInvestors     *int64 `json:"number_of_investors"`
}

// FundingRound mirrors one entry of the provider's funding_data list.
type FundingRound struct {
	FundingType       *string    `json:"funding_type"`
	MoneyRaised       *int64     `json:"money_raised"`
	AnnouncedDate     any        `json:"announced_date"`
	NumberOfInvestors *int64     `json:"number_of_investor"`
	Investors         []Investor `json:"investor_list"`
}

type Investor struct {
	Name               *string `json:"name"`
	Type               *string `json:"type"`
	LinkedInProfileURL *string `json:"linkedin_profile_url"`
}

// Compact projects raw into a Payload. It never fails: anything missing or of
// an unexpected shape ends up as an unknown value.
func Compact(raw map[string]any, sourceURL string) Payload {
	p := Payload{
		Name:        jsontree.String(raw, "name"),
		Description: jsontree.String(raw, "description"),
		Website:     jsontree.String(raw, "website"),
		Industry:    jsontree.String(raw, "industry"),
		Categories:  categories(raw),
		CompanySize: jsontree.GetOr(raw, nil, "company_size"),
		CompanyType: jsontree.String(raw, "company_type"),
		FoundedYear: foundedYear(raw),
		HQ: HQ{
			Country: jsontree.String(raw, "hq", "country"),
			State:   jsontree.String(raw, "hq", "state"),
			City:    jsontree.String(raw, "hq", "city"),
		},
		FollowerCount: jsontree.Int(raw, "follower_count"),
		PublicMarkets: PublicMarkets{
			IPOStatus:   jsontree.String(raw, "extra", "ipo_status"),
			StockSymbol: jsontree.String(raw, "extra", "stock_symbol"),
			IPODate:     jsontree.GetOr(raw, nil, "extra", "ipo_date"),
		},
		ExternalRefs: ExternalRefs{
			CrunchbaseProfileURL: jsontree.String(raw, "extra", "crunchbase_profile_url"),
		},
		FundingSummary: FundingSummary{
			NumberOfFundingRounds: jsontree.Int(raw, "extra", "number_of_funding_rounds"),
			TotalFundingAmount:    jsontree.Int(raw, "extra", "total_funding_amount"),
			NumberOfInvestors:     jsontree.Int(raw, "extra", "number_of_investors"),
		},
		FundingRounds: fundingRounds(raw),
	}

	if sourceURL != "" {
		p.QueryLinkedInURL = &sourceURL
	}

	return p
}

// categories keeps the first ten raw items; those that are not strings are dropped.
func categories(raw map[string]any) []string {
	items := jsontree.Slice(raw, "categories")
	if len(items) > maxCategories {
		items = items[:maxCategories]
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := jsontree.String(item); s != nil {
			out = append(out, *s)
		}
	}

	return out
}

// foundedYear prefers the top-level value and falls back to
// extra.founding_date.year when that is unknown or zero.
func foundedYear(raw map[string]any) *int64 {
	if year := jsontree.Int(raw, "founded_year"); year != nil && *year != 0 {
		return year
	}

	return jsontree.Int(raw, "extra", "founding_date", "year")
}

func fundingRounds(raw map[string]any) []FundingRound {
	items := jsontree.Slice(raw, "funding_data")
	out := make([]FundingRound, 0, len(items))

	for _, item := range items {
		round, ok := item.(map[string]any)
		if !ok {
			continue
		}

		out = append(out, FundingRound{
			FundingType:       jsontree.String(round, "funding_type"),
			MoneyRaised:       jsontree.Int(round, "money_raised"),
			AnnouncedDate:     jsontree.GetOr(round, nil, "announced_date"),
			NumberOfInvestors: jsontree.Int(round, "number_of_investor"),
			Investors:         investors(round),
		})
	}

	return out
}

func investors(round map[string]any) []Investor {
	items := jsontree.Slice(round, "investor_list")
	out := make([]Investor, 0, len(items))

	for _, item := range items {
		inv, ok := item.(map[string]any)
		if !ok {
			continue
		}

		out = append(out, Investor{
			Name:               jsontree.String(inv, "name"),
			Type:               jsontree.String(inv, "type"),
			LinkedInProfileURL: jsontree.String(inv, "linkedin_profile_url"),
		})
	}

	return out
}
