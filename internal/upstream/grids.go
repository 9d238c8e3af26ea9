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
	"time"

	"github.com/tomtom215/gamescore/internal/config"
)

// GridGame is a game known to the grid provider. ReleaseDate is a unix
// timestamp, zero when unknown.
type GridGame struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ReleaseDate int64  `json:"release_date,omitempty"`
	Verified    bool   `json:"verified"`
}

// ReleaseYear returns the UTC release year, or 0 when unknown.
func (g GridGame) ReleaseYear() int {
	if g.ReleaseDate <= 0 {
		return 0
	}
	return time.Unix(g.ReleaseDate, 0).UTC().Year()
}

// Grid is one piece of grid artwork.
type Grid struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Thumb  string `json:"thumb"`
	Style  string `json:"style,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// GridFilters narrows a grid lookup. Empty fields are not sent.
type GridFilters struct {
	Dimensions []string
	Styles     []string
}

// gridEnvelope is the provider's response wrapper.
type gridEnvelope[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Errors  []string `json:"errors,omitempty"`
}

// GridsClient talks to the grid artwork provider with bearer auth.
type GridsClient struct {
	*client
	baseURL  string
	defaults GridFilters
}

// NewGridsClient creates a grid artwork client. cfg's dimensions and styles
// become the default filters.
func NewGridsClient(cfg config.GridsConfig, bcfg config.BreakerConfig) *GridsClient {
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return &GridsClient{
		client:   newClient(ProviderGrids, cfg.Timeout, bcfg, header),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		defaults: GridFilters{Dimensions: cfg.Dimensions, Styles: cfg.Styles},
	}
}

// DefaultFilters returns the configured grid filters.
func (c *GridsClient) DefaultFilters() GridFilters {
	return c.defaults
}

// SearchGame returns the games matching name.
func (c *GridsClient) SearchGame(ctx context.Context, name string) ([]GridGame, error) {
	reqURL := c.baseURL + "/search/autocomplete/" + url.PathEscape(name)
	resp, err := getJSON[gridEnvelope[[]GridGame]](ctx, c.client, "grid_search", reqURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s grid_search: %v: %w", c.provider, resp.Errors, ErrMalformed)
	}
	return resp.Data, nil
}

// GetGrids returns the grids of game id matching filters.
func (c *GridsClient) GetGrids(ctx context.Context, id int64, filters GridFilters) ([]Grid, error) {
	q := url.Values{}
	if len(filters.Dimensions) > 0 {
		q.Set("dimensions", strings.Join(filters.Dimensions, ","))
	}
	if len(filters.Styles) > 0 {
		q.Set("styles", strings.Join(filters.Styles, ","))
	}
	reqURL := c.baseURL + "/grids/game/" + strconv.FormatInt(id, 10)
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	resp, err := getJSON[gridEnvelope[[]Grid]](ctx, c.client, "grids", reqURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s grids %d: %v: %w", c.provider, id, resp.Errors, ErrMalformed)
	}
	return resp.Data, nil
}
