// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package cache

import (
	"github.com/goccy/go-json"
)

// EstimateSize returns the byte length of m serialized as a JSON object.
// It is O(n) in the number of entries; TTLCache keeps an incremental
// counter that always matches it.
func EstimateSize[V any](m map[string]V) (int, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// entryCost is the number of bytes one key/value pair contributes inside a
// JSON object, excluding the separating comma. A value that cannot be
// encoded contributes only its key.
func entryCost[V any](key string, value V) int {
	k, err := json.Marshal(key)
	if err != nil {
		return len(key) + 3
	}
	v, err := json.Marshal(value)
	if err != nil {
		return len(k)
	}
	return len(k) + 1 + len(v)
}

// objectSize is the size of a JSON object holding n entries whose costs sum
// to total: braces plus n-1 commas.
func objectSize(n, total int) int {
	if n == 0 {
		return 2
	}
	return 2 + total + n - 1
}
