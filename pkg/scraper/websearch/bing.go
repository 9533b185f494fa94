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

// Package websearch looks up provider pages through a general web search
// engine, for providers without a usable search of their own.
package websearch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/shared/httpclient"
)

const DefaultBingURL = "https://www.bing.com/search"

// Result is one search hit that matched the requested prefix.
type Result struct {
	URL   string
	Title string
	ID    string
}

// Bing scrapes the Bing result page. Only organic results are read.
type Bing struct {
	fetcher httpclient.Fetcher
	baseURL string
}

func NewBing(fetcher httpclient.Fetcher, baseURL string) *Bing {
	if baseURL == "" {
		baseURL = DefaultBingURL
	}
	return &Bing{fetcher: fetcher, baseURL: baseURL}
}

// SearchURL returns the result page address for query.
func (b *Bing) SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	return b.baseURL + "?" + v.Encode()
}

// Search runs query and keeps the links starting with prefix, ignoring the
// scheme. When idPattern is set its first capture group becomes the
// result's id and links it does not match are dropped. Results keep the
// engine's order with duplicate URLs removed.
func (b *Bing) Search(ctx context.Context, query, prefix string, idPattern *regexp.Regexp) ([]Result, error) {
	searchURL := b.SearchURL(query)
	body, err := b.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("bing search: %w", err)
	}

	results, err := ParseResults(body, prefix, idPattern)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("query", query).
		Str("prefix", prefix).
		Int("results", len(results)).
		Msg("bing search finished")
	return results, nil
}

// ParseResults extracts matching result links from a Bing result page.
func ParseResults(page []byte, prefix string, idPattern *regexp.Regexp) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bing results: %w", err)
	}

	want := stripScheme(prefix)
	seen := make(map[string]struct{})
	var out []Result
	doc.Find("li.b_algo h2 a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(strings.ToLower(stripScheme(href)), strings.ToLower(want)) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}

		r := Result{URL: href, Title: strings.Join(strings.Fields(s.Text()), " ")}
		if idPattern != nil {
			m := idPattern.FindStringSubmatch(href)
			if len(m) < 2 || m[1] == "" {
				return
			}
			r.ID = m[1]
		}
		seen[href] = struct{}{}
		out = append(out, r)
	})
	return out, nil
}

func stripScheme(u string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if len(u) >= len(scheme) && strings.EqualFold(u[:len(scheme)], scheme) {
			return u[len(scheme):]
		}
	}
	return u
}
