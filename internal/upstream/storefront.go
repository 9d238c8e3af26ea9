// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamescore/internal/config"
)

// App is one storefront catalog entry.
type App struct {
	ID   int64  `json:"appid"`
	Name string `json:"name"`
}

// AppPage is one page of the storefront catalog. LastID is the cursor for
// the next page.
type AppPage struct {
	Apps     []App `json:"apps"`
	HaveMore bool  `json:"have_more_results"`
	LastID   int64 `json:"last_appid"`
}

// Price is the storefront price in minor currency units.
type Price struct {
	Currency        string `json:"currency"`
	Initial         int    `json:"initial"`
	Final           int    `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
	FinalFormatted  string `json:"final_formatted"`
}

// ReleaseDate is the storefront release information.
type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// Genre is a storefront genre tag.
type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// AppDetails is the storefront detail of an app.
type AppDetails struct {
	AppID            int64       `json:"steam_appid"`
	Type             string      `json:"type"`
	Name             string      `json:"name"`
	IsFree           bool        `json:"is_free"`
	ShortDescription string      `json:"short_description,omitempty"`
	HeaderImage      string      `json:"header_image,omitempty"`
	Developers       []string    `json:"developers,omitempty"`
	Publishers       []string    `json:"publishers,omitempty"`
	Price            *Price      `json:"price_overview,omitempty"`
	ReleaseDate      ReleaseDate `json:"release_date"`
	Genres           []Genre     `json:"genres,omitempty"`
}

// ReviewSummary is the storefront user review summary.
type ReviewSummary struct {
	NumReviews      int    `json:"num_reviews"`
	ReviewScore     int    `json:"review_score"`
	ReviewScoreDesc string `json:"review_score_desc"`
	TotalPositive   int    `json:"total_positive"`
	TotalNegative   int    `json:"total_negative"`
	TotalReviews    int    `json:"total_reviews"`
}

// StorefrontClient talks to the storefront web API and store endpoints.
type StorefrontClient struct {
	*client
	apiBaseURL   string
	storeBaseURL string
	apiKey       string
	pageSize     int
	country      string
	language     string
}

// NewStorefrontClient creates a storefront client.
func NewStorefrontClient(cfg config.StorefrontConfig, bcfg config.BreakerConfig) *StorefrontClient {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50000
	}
	return &StorefrontClient{
		client:       newClient(ProviderStorefront, cfg.Timeout, bcfg, nil),
		apiBaseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		storeBaseURL: strings.TrimRight(cfg.StoreBaseURL, "/"),
		apiKey:       cfg.APIKey,
		pageSize:     pageSize,
		country:      cfg.Country,
		language:     cfg.Language,
	}
}

// ListApps returns the catalog page after lastID. Pass 0 for the first page.
func (c *StorefrontClient) ListApps(ctx context.Context, lastID int64) (AppPage, error) {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	q.Set("max_results", strconv.Itoa(c.pageSize))
	q.Set("include_games", "true")
	if lastID > 0 {
		q.Set("last_appid", strconv.FormatInt(lastID, 10))
	}
	reqURL := c.apiBaseURL + "/IStoreService/GetAppList/v1/?" + q.Encode()

	resp, err := getJSON[struct {
		Response AppPage `json:"response"`
	}](ctx, c.client, "applist", reqURL, nil)
	if err != nil {
		return AppPage{}, err
	}
	return resp.Response, nil
}

// AppDetails returns the store detail of appid.
func (c *StorefrontClient) AppDetails(ctx context.Context, appid int64) (*AppDetails, error) {
	id := strconv.FormatInt(appid, 10)
	q := url.Values{"appids": {id}}
	if c.country != "" {
		q.Set("cc", c.country)
	}
	if c.language != "" {
		q.Set("l", c.language)
	}
	reqURL := c.storeBaseURL + "/api/appdetails?" + q.Encode()

	// The response is keyed by the requested app id.
	resp, err := getJSON[map[string]struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}](ctx, c.client, "appdetails", reqURL, nil)
	if err != nil {
		return nil, err
	}
	entry, ok := resp[id]
	if !ok {
		return nil, fmt.Errorf("%s appdetails %d: missing entry: %w", c.provider, appid, ErrMalformed)
	}
	if !entry.Success {
		return nil, fmt.Errorf("%s appdetails %d: %w", c.provider, appid, ErrNotFound)
	}

	var details AppDetails
	if err := json.Unmarshal(entry.Data, &details); err != nil {
		return nil, fmt.Errorf("%s appdetails %d: decode: %w: %w", c.provider, appid, ErrMalformed, err)
	}
	if details.Name == "" {
		return nil, fmt.Errorf("%s appdetails %d: missing name: %w", c.provider, appid, ErrMalformed)
	}
	if details.AppID == 0 {
		details.AppID = appid
	}
	return &details, nil
}

// AppReviews returns the user review summary of appid.
func (c *StorefrontClient) AppReviews(ctx context.Context, appid int64) (*ReviewSummary, error) {
	q := url.Values{
		"json":          {"1"},
		"language":      {"all"},
		"purchase_type": {"all"},
		"num_per_page":  {"0"},
	}
	reqURL := c.storeBaseURL + "/appreviews/" + strconv.FormatInt(appid, 10) + "?" + q.Encode()

	resp, err := getJSON[struct {
		Success      int            `json:"success"`
		QuerySummary *ReviewSummary `json:"query_summary"`
	}](ctx, c.client, "appreviews", reqURL, nil)
	if err != nil {
		return nil, err
	}
	if resp.Success != 1 || resp.QuerySummary == nil {
		return nil, fmt.Errorf("%s appreviews %d: missing query_summary: %w", c.provider, appid, ErrMalformed)
	}
	return resp.QuerySummary, nil
}

// CurrentPlayers returns the number of players in game right now.
func (c *StorefrontClient) CurrentPlayers(ctx context.Context, appid int64) (int, error) {
	q := url.Values{"appid": {strconv.FormatInt(appid, 10)}}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	reqURL := c.apiBaseURL + "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/?" + q.Encode()

	resp, err := getJSON[struct {
		Response struct {
			PlayerCount int `json:"player_count"`
			Result      int `json:"result"`
		} `json:"response"`
	}](ctx, c.client, "players", reqURL, nil)
	if err != nil {
		return 0, err
	}
	if resp.Response.Result != 1 {
		return 0, fmt.Errorf("%s players %d: result %d: %w", c.provider, appid, resp.Response.Result, ErrNotFound)
	}
	return resp.Response.PlayerCount, nil
}
