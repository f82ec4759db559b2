// Package enrichlayer is a small client for the EnrichLayer profile and company APIs.
package enrichlayer

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/canon"
)

const (
	apiURL      = "https://enrichlayer.com"
	profilePath = "/api/v2/profile"
	companyPath = "/api/v2/company"
	userAgent   = "spigell/eo-scorer"

	// DefaultTimeout bounds a single profile or company request.
	DefaultTimeout = 60 * time.Second
)

const (
	include         = "include"
	useCache        = "if-present"
	fallbackToCache = "on-error"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// FetchProfile returns the raw person profile for a LinkedIn profile URL.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (map[string]any, error) {
	q := url.Values{}
	q.Set("profile_url", canon.Profile(profileURL))
	for _, key := range []string{
		"extra",
		"github_profile_id",
		"facebook_profile_id",
		"twitter_profile_id",
		"personal_contact_number",
		"personal_email",
		"inferred_salary",
		"skills",
	} {
		q.Set(key, include)
	}
	// live_fetch=force is left out on purpose: it makes every call slow.
	setCacheParams(q)

	return c.getObject(ctx, c.APIURL+profilePath, q)
}

// FetchCompany returns the raw company record for a LinkedIn company URL.
func (c *Client) FetchCompany(ctx context.Context, companyURL string) (map[string]any, error) {
	q := url.Values{}
	q.Set("url", canon.Company(companyURL))
	for _, key := range []string{
		"categories",
		"funding_data",
		"exit_data",
		"acquisitions",
		"extra",
	} {
		q.Set(key, include)
	}
	setCacheParams(q)

	return c.getObject(ctx, c.APIURL+companyPath, q)
}

func setCacheParams(q url.Values) {
	q.Set("use_cache", useCache)
	q.Set("fallback_to_cache", fallbackToCache)
}
