// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tomtom215/gamescore/internal/config"
)

// SearchHit is one candidate returned by the review aggregator search.
// Dist is the provider's string distance to the query; lower is closer.
type SearchHit struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Dist float64 `json:"dist"`
}

// Company is a developer or publisher credit.
type Company struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ImagePair holds the original and small rendition of an image.
type ImagePair struct {
	OG string `json:"og,omitempty"`
	SM string `json:"sm,omitempty"`
}

// Images holds the artwork attached to a detail record.
type Images struct {
	Box    *ImagePair `json:"box,omitempty"`
	Banner *ImagePair `json:"banner,omitempty"`
}

// DetailRecord is the review aggregator's game detail.
// TopCriticScore and PercentRecommended are -1 when the game has too few reviews.
type DetailRecord struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	FirstReleaseDate   string    `json:"firstReleaseDate,omitempty"`
	Companies          []Company `json:"Companies,omitempty"`
	PercentRecommended float64   `json:"percentRecommended"`
	TopCriticScore     float64   `json:"topCriticScore"`
	Tier               string    `json:"tier,omitempty"`
	NumReviews         int       `json:"numReviews"`
	Images             Images    `json:"images"`
	URL                string    `json:"url,omitempty"`
}

// ReviewsClient talks to the critic-review aggregator. Searches and details
// have separate daily quotas.
type ReviewsClient struct {
	*client
	baseURL     string
	searchQuota *rate.Limiter
	detailQuota *rate.Limiter
}

// NewReviewsClient creates a review aggregator client.
func NewReviewsClient(cfg config.ReviewsConfig, bcfg config.BreakerConfig) *ReviewsClient {
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set(cfg.APIKeyHeader, cfg.APIKey)
		if host := hostOf(cfg.BaseURL); host != "" {
			header.Set("X-RapidAPI-Host", host)
		}
	}
	return &ReviewsClient{
		client:      newClient(ProviderReviews, cfg.Timeout, bcfg, header),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		searchQuota: DailyQuota(cfg.SearchQuota),
		detailQuota: DailyQuota(cfg.DetailQuota),
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Search returns the candidates for criteria in provider order.
func (c *ReviewsClient) Search(ctx context.Context, criteria string) ([]SearchHit, error) {
	reqURL := c.baseURL + "/game/search?" + url.Values{"criteria": {criteria}}.Encode()
	hits, err := getJSON[[]SearchHit](ctx, c.client, "search", reqURL, c.searchQuota)
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// Detail returns the detail record of id.
func (c *ReviewsClient) Detail(ctx context.Context, id int64) (*DetailRecord, error) {
	reqURL := c.baseURL + "/game/" + strconv.FormatInt(id, 10)
	rec, err := getJSON[DetailRecord](ctx, c.client, "detail", reqURL, c.detailQuota)
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 || strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("%s detail %d: missing id or name: %w", c.provider, id, ErrMalformed)
	}
	return &rec, nil
}
