// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package validation validates API request structs with go-playground/validator.
//
// A single validator instance is shared by all handlers; it caches struct
// reflection data and is safe for concurrent use. Failed rules are reported
// under the request parameter name taken from the `query` struct tag.
//
// Besides the built-in rules, the package registers:
//
//	gamename  the value normalizes to a non-empty cache key
//
// Example:
//
//	type gridRequest struct {
//	    Name string `query:"name" validate:"required,max=200,gamename"`
//	    Year int    `query:"year" validate:"omitempty,gte=1970,lte=2100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code == "VALIDATION_FAILED"
//	    ...
//	}
package validation
