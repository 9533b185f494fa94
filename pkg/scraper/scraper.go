// YANFOE Core
// Copyright (c) 2026 The YANFOE Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of YANFOE Core.
//
// YANFOE Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YANFOE Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YANFOE Core.  If not, see <http://www.gnu.org/licenses/>.

// Package scraper coordinates pluggable metadata sources: searching them
// for candidates, picking an identity and populating record fields with a
// per-field source priority.
package scraper

import (
	"context"
	"slices"

	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

// SearchMethod is a way a source can look up candidates.
type SearchMethod string

const (
	// MethodBing goes through the web search proxy restricted to the
	// provider's site.
	MethodBing SearchMethod = "bing"
	// MethodNative uses the provider's own search API.
	MethodNative SearchMethod = "native"
)

// MediaKind tells a source whether it is looking for a movie or a show.
type MediaKind string

const (
	MediaMovie MediaKind = "movie"
	MediaTV    MediaKind = "tv"
)

// Query contains search parameters. Method and Source, when set, restrict
// the search to that method or source.
type Query struct {
	Title  string
	Kind   MediaKind
	Method SearchMethod
	Source string
	Year   int
}

// Candidate is one search hit on one source.
type Candidate struct {
	ID     string
	Title  string
	URL    string
	Source string
	Method SearchMethod
	Year   int
}

// Source is a metadata provider. ScrapeField returns a nil or empty value
// with a nil error when the provider's page has no such field; any error
// means the attempt failed.
type Source interface {
	Name() string
	SearchMethods() []SearchMethod
	Fields() []metadata.FieldID
	Search(ctx context.Context, q Query, m SearchMethod) ([]Candidate, error)
	ScrapeField(ctx context.Context, f metadata.FieldID, id string, s *Session) (metadata.Value, error)
}

// Supports reports whether src declares field.
func Supports(src Source, field metadata.FieldID) bool {
	return slices.Contains(src.Fields(), field)
}

// SupportsMethod reports whether src can search with m.
func SupportsMethod(src Source, m SearchMethod) bool {
	return slices.Contains(src.SearchMethods(), m)
}

// Identity maps a source name to the candidate id chosen on it.
type Identity map[string]string
