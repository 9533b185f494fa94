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

package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

const (
	AutoPickFirst     = "first"
	AutoPickBestTitle = "best_title"

	DefaultMinSimilarity  = 0.8
	DefaultFieldWorkers   = 4
	DefaultItemWorkers    = 2
	DefaultTimeoutSeconds = 30
	DefaultRetries        = 2
)

var (
	defaultMovieSources = []string{"allocine", "tmdb"}
	defaultTVSources    = []string{"tmdb"}
)

// Scraper holds the [scraper] section. Unset values fall back to the
// defaults above through the getters.
type Scraper struct {
	FieldPriorities   map[string][]string `toml:"field_priorities,omitempty"`
	MinSimilarity     *float64            `toml:"min_similarity,omitempty" validate:"omitempty,gte=0,lte=1"`
	FallbackOnAbsent  *bool               `toml:"fallback_on_absent,omitempty"`
	Retries           *int                `toml:"retries,omitempty" validate:"omitempty,gte=0,lte=10"`
	AutoPick          string              `toml:"auto_pick,omitempty" validate:"omitempty,oneof=first best_title"`
	UserAgent         string              `toml:"user_agent,omitempty"`
	MovieSources      []string            `toml:"movie_sources,omitempty"`
	TVSources         []string            `toml:"tv_sources,omitempty"`
	SearchMethods     []string            `toml:"search_methods,omitempty"`
	FieldWorkers      int                 `toml:"field_workers,omitempty" validate:"gte=0"`
	ItemWorkers       int                 `toml:"item_workers,omitempty" validate:"gte=0"`
	TimeoutSeconds    int                 `toml:"timeout_seconds,omitempty" validate:"gte=0"`
	RequestsPerSecond float64             `toml:"requests_per_second,omitempty" validate:"gte=0"`
}

// MovieSources returns the movie source names in priority order.
func (c *Instance) MovieSources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Scraper.MovieSources) == 0 {
		return slices.Clone(defaultMovieSources)
	}
	return slices.Clone(c.vals.Scraper.MovieSources)
}

// TVSources returns the TV source names in priority order.
func (c *Instance) TVSources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Scraper.TVSources) == 0 {
		return slices.Clone(defaultTVSources)
	}
	return slices.Clone(c.vals.Scraper.TVSources)
}

func (c *Instance) SetMovieSources(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scraper.MovieSources = slices.Clone(names)
}

func (c *Instance) SetTVSources(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scraper.TVSources = slices.Clone(names)
}

// FieldPriorities returns the per-field source order overrides. Unknown
// field names are logged and dropped.
func (c *Instance) FieldPriorities() map[metadata.FieldID][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[metadata.FieldID][]string, len(c.vals.Scraper.FieldPriorities))
	for name, sources := range c.vals.Scraper.FieldPriorities {
		field, err := metadata.ParseField(name)
		if err != nil {
			log.Warn().Err(err).Str("field", name).Msg("ignoring field priority")
			continue
		}
		out[field] = slices.Clone(sources)
	}
	return out
}

// SearchMethods returns the configured search methods, empty for all.
func (c *Instance) SearchMethods() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Scraper.SearchMethods)
}

func (c *Instance) AutoPick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.AutoPick == "" {
		return AutoPickBestTitle
	}
	return c.vals.Scraper.AutoPick
}

func (c *Instance) SetAutoPick(name string) error {
	if name != AutoPickFirst && name != AutoPickBestTitle {
		return fmt.Errorf("unknown auto pick mode: %s", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scraper.AutoPick = name
	return nil
}

func (c *Instance) MinSimilarity() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.MinSimilarity == nil {
		return DefaultMinSimilarity
	}
	return *c.vals.Scraper.MinSimilarity
}

func (c *Instance) FallbackOnAbsent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.FallbackOnAbsent == nil {
		return false
	}
	return *c.vals.Scraper.FallbackOnAbsent
}

func (c *Instance) SetFallbackOnAbsent(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scraper.FallbackOnAbsent = &enabled
}

func (c *Instance) FieldWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.FieldWorkers <= 0 {
		return DefaultFieldWorkers
	}
	return c.vals.Scraper.FieldWorkers
}

func (c *Instance) ItemWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.ItemWorkers <= 0 {
		return DefaultItemWorkers
	}
	return c.vals.Scraper.ItemWorkers
}

func (c *Instance) ScrapeTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.vals.Scraper.TimeoutSeconds) * time.Second
}

// Retries is how often an idempotent fetch is retried. Zero is allowed.
func (c *Instance) Retries() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.Retries == nil {
		return DefaultRetries
	}
	return *c.vals.Scraper.Retries
}

// RequestsPerSecond overrides every source's own rate limit when above
// zero.
func (c *Instance) RequestsPerSecond() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.RequestsPerSecond
}

// UserAgent returns the configured user agent, empty for the client
// default.
func (c *Instance) UserAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.UserAgent
}
