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

package cli

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/config"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/allocine"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/tmdb"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/websearch"
	"github.com/yanfoe/yanfoe-core/pkg/shared/httpclient"
)

// clientFor builds the fetcher of one source. requests_per_second in the
// config replaces the provider's own rate when set.
func clientFor(cfg *config.Instance, transport http.RoundTripper, providerRate float64) *httpclient.Client {
	opts := httpclient.DefaultOptions()
	opts.Transport = transport
	opts.Timeout = cfg.ScrapeTimeout()
	opts.Retries = cfg.Retries()
	opts.RequestsPerSecond = providerRate
	if rps := cfg.RequestsPerSecond(); rps > 0 {
		opts.RequestsPerSecond = rps
	}
	if ua := cfg.UserAgent(); ua != "" {
		opts.UserAgent = ua
	}
	return httpclient.NewClientWithOptions(opts)
}

// BuildRegistry registers every bundled source. A nil transport uses the
// default one.
func BuildRegistry(
	cfg *config.Instance,
	scfg *scraper.ScraperConfig,
	transport http.RoundTripper,
) (*scraper.Registry, error) {
	allocineClient := clientFor(cfg, transport, allocine.RequestsPerSecond)
	bing := websearch.NewBing(allocineClient, scfg.Source("bing").BaseURL)

	overrides, err := scfg.RuleOverrides(allocine.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read allocine rule overrides: %w", err)
	}
	allocineSrc, err := allocine.New(allocineClient, bing, scfg.Source(allocine.Name), overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocine source: %w", err)
	}

	tmdbCfg := scfg.Source(tmdb.Name)
	if tmdbCfg.APIKey == "" {
		log.Info().Msg("tmdb api key not set, tmdb lookups will fail")
	}
	tmdbSrc := tmdb.New(clientFor(cfg, transport, tmdb.RequestsPerSecond), tmdbCfg)

	reg, err := scraper.NewRegistry(allocineSrc, tmdbSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create source registry: %w", err)
	}
	return reg, nil
}

// NewArtworkStorage returns the artwork downloader. Image hosts are not
// rate limited beyond the config's requests_per_second.
func NewArtworkStorage(cfg *config.Instance, transport http.RoundTripper) *scraper.MediaStorage {
	return scraper.NewMediaStorage(clientFor(cfg, transport, 0))
}
