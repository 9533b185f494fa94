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

// Package allocine scrapes film metadata from allocine.fr. Candidates are
// found through Bing restricted to the site; fields are read from the film
// pages with the bundled extraction rules.
package allocine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/extract"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/websearch"
	"github.com/yanfoe/yanfoe-core/pkg/shared/httpclient"
)

const (
	Name           = "allocine"
	DefaultBaseURL = "https://www.allocine.fr"
	// RequestsPerSecond is the polite rate for allocine.fr.
	RequestsPerSecond = 2
)

// Page kinds rules refer to.
const (
	PageMain   = "main"
	PageCast   = "cast"
	PagePoster = "poster"
)

var pagePaths = map[string]string{
	PageMain:   "/film/fichefilm_gen_cfilm=%s.html",
	PageCast:   "/film/fichefilm-%s/casting/",
	PagePoster: "/film/fichefilm-%s/photos/affiches/",
}

var (
	//go:embed rules.toml
	defaultRules []byte

	idRe        = regexp.MustCompile(`cfilm=(\d+)\.html`)
	validIDRe   = regexp.MustCompile(`^\d+$`)
	titleYearRe = regexp.MustCompile(`\s+-\s+film\s+(\d{4})`)
	siteSuffix  = regexp.MustCompile(`(?i)\s+-\s+allocin[ée]\s*$`)
)

var (
	ErrBadID       = errors.New("bad allocine film id")
	ErrUnknownPage = errors.New("unknown allocine page")
)

// DefaultRules returns the bundled rule set.
func DefaultRules() (extract.RuleSet, error) {
	rs, err := extract.ParseRuleSet(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("allocine rules: %w", err)
	}
	return rs, nil
}

// Source is the allocine scrape source.
type Source struct {
	fetcher httpclient.Fetcher
	bing    *websearch.Bing
	rules   extract.RuleSet
	baseURL string
}

// New builds the source. cfg.BaseURL replaces the site address and
// overrides replace bundled rules field by field.
func New(
	fetcher httpclient.Fetcher,
	bing *websearch.Bing,
	cfg scraper.SourceConfig,
	overrides extract.RuleSet,
) (*Source, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	rules, err = rules.Merge(overrides)
	if err != nil {
		return nil, fmt.Errorf("allocine rules: %w", err)
	}
	for field, rule := range rules {
		if _, ok := pagePaths[rule.Page]; !ok {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownPage, rule.Page, field)
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if bing == nil {
		bing = websearch.NewBing(fetcher, "")
	}
	return &Source{
		fetcher: fetcher,
		bing:    bing,
		rules:   rules,
		baseURL: baseURL,
	}, nil
}

func (*Source) Name() string {
	return Name
}

func (*Source) SearchMethods() []scraper.SearchMethod {
	return []scraper.SearchMethod{scraper.MethodBing}
}

func (s *Source) Fields() []metadata.FieldID {
	return s.rules.Fields()
}

// PageURL returns the address of page for film id.
func (s *Source) PageURL(page, id string) (string, error) {
	path, ok := pagePaths[page]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	if !validIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return s.baseURL + fmt.Sprintf(path, id), nil
}

func (s *Source) host() string {
	h := s.baseURL
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	return h
}

// Search looks the film up through Bing. Only films are listed on the
// film pages, so TV queries return no candidates.
func (s *Source) Search(ctx context.Context, q scraper.Query, m scraper.SearchMethod) ([]scraper.Candidate, error) {
	if m != scraper.MethodBing {
		return nil, fmt.Errorf("allocine: unsupported search method %s", m)
	}
	if q.Kind == scraper.MediaTV {
		return []scraper.Candidate{}, nil
	}

	query := fmt.Sprintf("site:%s %s", s.host(), strings.TrimSpace(q.Title))
	if q.Year > 0 {
		query += " " + strconv.Itoa(q.Year)
	}

	prefix := s.baseURL + strings.TrimSuffix(pagePaths[PageMain], "%s.html")
	results, err := s.bing.Search(ctx, query, prefix, idRe)
	if err != nil {
		return nil, fmt.Errorf("allocine: %w", err)
	}

	cands := make([]scraper.Candidate, 0, len(results))
	for _, r := range results {
		c := scraper.Candidate{ID: r.ID, URL: r.URL, Source: Name, Method: m}
		c.Title, c.Year = splitResultTitle(r.Title)
		cands = append(cands, c)
	}
	return cands, nil
}

// splitResultTitle turns "Alien - film 1979 - AlloCiné" into its title and
// year.
func splitResultTitle(t string) (string, int) {
	t = siteSuffix.ReplaceAllString(t, "")
	year := 0
	if m := titleYearRe.FindStringSubmatchIndex(t); m != nil {
		year, _ = strconv.Atoi(t[m[2]:m[3]])
		t = t[:m[0]]
	}
	return strings.TrimSpace(t), year
}

// ScrapeField reads field from the page its rule names, fetched at most
// once per session.
func (s *Source) ScrapeField(
	ctx context.Context,
	field metadata.FieldID,
	id string,
	sess *scraper.Session,
) (metadata.Value, error) {
	rule, ok := s.rules[field]
	if !ok {
		return nil, fmt.Errorf("allocine: no rule for %s", field)
	}
	pageURL, err := s.PageURL(rule.Page, id)
	if err != nil {
		return nil, err
	}

	doc, err := sess.Document(ctx, Name, rule.Page, id, func(ctx context.Context) ([]byte, error) {
		log.Debug().Str("url", pageURL).Str("page", rule.Page).Msg("fetching allocine page")
		return s.fetcher.Fetch(ctx, pageURL)
	})
	if err != nil {
		return nil, fmt.Errorf("allocine: %w", err)
	}

	v, err := extract.Field(field, doc, rule, pageURL)
	if err != nil {
		return nil, fmt.Errorf("allocine %s: %w", field, err)
	}
	return v, nil
}
