// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"strconv"

	"github.com/tomtom215/gamescore/internal/normalize"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// GridImage is the chosen grid artwork of a game.
type GridImage struct {
	GameID   int64  `json:"game_id"`
	GameName string `json:"game_name"`
	URL      string `json:"url"`
	Thumb    string `json:"thumb,omitempty"`
}

// PickGridGame returns the first game released in year, or the first game
// when year is zero or nothing matches.
func PickGridGame(games []upstream.GridGame, year int) (upstream.GridGame, bool) {
	if len(games) == 0 {
		return upstream.GridGame{}, false
	}
	if year > 0 {
		for _, g := range games {
			if g.ReleaseYear() == year {
				return g, true
			}
		}
	}
	return games[0], true
}

// FetchGrid returns grid artwork for a game name. year, when positive,
// disambiguates games sharing a name.
func (o *Orchestrator) FetchGrid(ctx context.Context, name string, year int) Result[GridImage] {
	key := normalize.Key(name)
	if key == "" {
		return record(DatasetGrids, notFound[GridImage](ErrEmptyKey))
	}
	if year > 0 {
		key += ":" + strconv.Itoa(year)
	}

	if img, ok := o.gridImages.Get(key); ok {
		return record(DatasetGrids, found(img))
	}
	if r, ok := fromGuard[GridImage](o.gridsGuard, key); ok {
		return record(DatasetGrids, r)
	}

	r := flight(ctx, o, DatasetGrids, key, func(ctx context.Context) Result[GridImage] {
		return o.fetchGrid(ctx, name, year, key)
	})
	return record(DatasetGrids, r)
}

func (o *Orchestrator) fetchGrid(ctx context.Context, name string, year int, key string) Result[GridImage] {
	if img, ok := o.gridImages.Peek(key); ok {
		return found(img)
	}

	games, err := o.grids.SearchGame(ctx, normalize.Normalize(name, normalize.Options{SearchMode: true}))
	if err != nil {
		return miss[GridImage](ctx, o, o.gridsGuard, DatasetGrids, key, err)
	}
	game, ok := PickGridGame(games, year)
	if !ok {
		o.gridsGuard.RememberNotFound(key)
		return notFound[GridImage](ErrNoMatch)
	}

	grids, err := o.grids.GetGrids(ctx, game.ID, o.cfg.GridFilters)
	if err != nil {
		return miss[GridImage](ctx, o, o.gridsGuard, DatasetGrids, key, err)
	}
	for _, g := range grids {
		if g.URL == "" {
			continue
		}
		img := GridImage{GameID: game.ID, GameName: game.Name, URL: g.URL, Thumb: g.Thumb}
		o.gridImages.Set(key, img, o.cfg.Grids.HitTTL, o.cfg.Grids.MaxBytes)
		return found(img)
	}

	o.gridsGuard.RememberNotFound(key)
	return notFound[GridImage](ErrNoMatch)
}
