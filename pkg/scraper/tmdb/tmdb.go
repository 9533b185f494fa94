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

// Package tmdb implements a scrape source backed by The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/shared/httpclient"
)

const (
	Name            = "tmdb"
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultImageURL = "https://image.tmdb.org/t/p/original"
	DefaultLanguage = "en-US"
	// RequestsPerSecond stays under the API's documented limit.
	RequestsPerSecond = 20
)

var (
	ErrNoAPIKey = errors.New("tmdb api key not configured")
	ErrBadID    = errors.New("bad tmdb id")
)

// ids are "movie/<n>" or "tv/<n>", the API path of the item
var idRe = regexp.MustCompile(`^(movie|tv)/(\d+)$`)

var fields = []metadata.FieldID{
	metadata.FieldTitle,
	metadata.FieldOriginalTitle,
	metadata.FieldYear,
	metadata.FieldRating,
	metadata.FieldDirector,
	metadata.FieldPlot,
	metadata.FieldTagline,
	metadata.FieldCountry,
	metadata.FieldGenre,
	metadata.FieldCast,
	metadata.FieldStudio,
	metadata.FieldReleaseDate,
	metadata.FieldRuntime,
	metadata.FieldPoster,
	metadata.FieldFanart,
}

// TMDB is the tmdb scrape source.
type TMDB struct {
	fetcher  httpclient.Fetcher
	apiKey   string
	baseURL  string
	imageURL string
	language string
}

// New builds the source from its scraper.toml settings.
func New(fetcher httpclient.Fetcher, cfg scraper.SourceConfig) *TMDB {
	t := &TMDB{
		fetcher:  fetcher,
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		imageURL: DefaultImageURL,
		language: cfg.Language,
	}
	if t.baseURL == "" {
		t.baseURL = DefaultBaseURL
	}
	if t.language == "" {
		t.language = DefaultLanguage
	}
	return t
}

func (*TMDB) Name() string {
	return Name
}

func (*TMDB) SearchMethods() []scraper.SearchMethod {
	return []scraper.SearchMethod{scraper.MethodNative}
}

func (*TMDB) Fields() []metadata.FieldID {
	out := make([]metadata.FieldID, len(fields))
	copy(out, fields)
	return out
}

func (t *TMDB) buildURL(path string, params url.Values) (string, error) {
	if t.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.apiKey)
	params.Set("language", t.language)
	return t.baseURL + path + "?" + params.Encode(), nil
}

// Search queries /search/movie or /search/tv.
func (t *TMDB) Search(ctx context.Context, q scraper.Query, m scraper.SearchMethod) ([]scraper.Candidate, error) {
	if m != scraper.MethodNative {
		return nil, fmt.Errorf("tmdb: unsupported search method %s", m)
	}

	kind := "movie"
	yearParam := "year"
	if q.Kind == scraper.MediaTV {
		kind = "tv"
		yearParam = "first_air_date_year"
	}

	params := url.Values{}
	params.Set("query", strings.TrimSpace(q.Title))
	if q.Year > 0 {
		params.Set(yearParam, strconv.Itoa(q.Year))
	}
	searchURL, err := t.buildURL("/search/"+kind, params)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("kind", kind).Str("title", q.Title).Msg("tmdb search request")

	body, err := t.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	cands := make([]scraper.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Title
		date := r.ReleaseDate
		if kind == "tv" {
			title, date = r.Name, r.FirstAirDate
		}
		cands = append(cands, scraper.Candidate{
			ID:     kind + "/" + strconv.Itoa(r.ID),
			Title:  title,
			Year:   yearOf(date),
			Source: Name,
			Method: m,
		})
	}
	return cands, nil
}

// details fetches the item once per session with credits and images.
func (t *TMDB) details(ctx context.Context, id string, sess *scraper.Session) (*Details, error) {
	if !idRe.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrBadID, id)
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,images")
	params.Set("include_image_language", "en,null")
	detailsURL, err := t.buildURL("/"+id, params)
	if err != nil {
		return nil, err
	}

	doc, err := sess.Document(ctx, Name, "details", id, func(ctx context.Context) ([]byte, error) {
		log.Debug().Str("id", id).Msg("tmdb details request")
		return t.fetcher.Fetch(ctx, detailsURL)
	})
	if err != nil {
		return nil, fmt.Errorf("tmdb: %w", err)
	}

	var d Details
	if err := json.Unmarshal(doc.Bytes(), &d); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &d, nil
}

// ScrapeField maps one field of the item's details. Missing or zero
// values give a nil value.
func (t *TMDB) ScrapeField(
	ctx context.Context,
	field metadata.FieldID,
	id string,
	sess *scraper.Session,
) (metadata.Value, error) {
	d, err := t.details(ctx, id, sess)
	if err != nil {
		return nil, err
	}

	switch field {
	case metadata.FieldTitle:
		return text(d.title()), nil
	case metadata.FieldOriginalTitle:
		return text(d.originalTitle()), nil
	case metadata.FieldYear:
		if y := yearOf(d.date()); y > 0 {
			return metadata.Number(y), nil
		}
		return nil, nil
	case metadata.FieldRating:
		if d.VoteAverage <= 0 {
			return nil, nil
		}
		return metadata.Decimal(math.Round(d.VoteAverage*100) / 100), nil
	case metadata.FieldDirector:
		var directors metadata.List
		for _, c := range d.Credits.Crew {
			if c.Job == "Director" {
				directors = append(directors, c.Name)
			}
		}
		if len(directors) == 0 {
			directors = names(d.CreatedBy)
		}
		return list(directors), nil
	case metadata.FieldPlot:
		return text(d.Overview), nil
	case metadata.FieldTagline:
		return text(d.Tagline), nil
	case metadata.FieldCountry:
		return list(names(d.ProductionCountries)), nil
	case metadata.FieldGenre:
		return list(names(d.Genres)), nil
	case metadata.FieldStudio:
		return list(names(d.ProductionCompanies)), nil
	case metadata.FieldCast:
		return t.cast(d), nil
	case metadata.FieldReleaseDate:
		date, err := time.Parse(time.DateOnly, d.date())
		if err != nil {
			return nil, nil
		}
		return metadata.NewDate(date.Year(), date.Month(), date.Day()), nil
	case metadata.FieldRuntime:
		if rt := d.runtime(); rt > 0 {
			return metadata.Number(rt), nil
		}
		return nil, nil
	case metadata.FieldPoster:
		return t.images(d.PosterPath, d.Images.Posters), nil
	case metadata.FieldFanart:
		return t.images(d.BackdropPath, d.Images.Backdrops), nil
	default:
		return nil, fmt.Errorf("tmdb: unsupported field %s", field)
	}
}

func (t *TMDB) cast(d *Details) metadata.Value {
	var out metadata.People
	for _, c := range d.Credits.Cast {
		if c.Name == "" {
			continue
		}
		p := metadata.Person{Name: c.Name, Role: c.Character}
		if c.ProfilePath != "" {
			p.ImageURL = t.imageURL + c.ProfilePath
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// images lists the main image first, then the rest of the gallery.
func (t *TMDB) images(primary string, gallery []ImageEntry) metadata.Value {
	var out metadata.Images
	seen := make(map[string]struct{})
	add := func(path string, w, h int) {
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, metadata.Image{URL: t.imageURL + path, Width: w, Height: h})
	}
	add(primary, 0, 0)
	for _, img := range gallery {
		add(img.FilePath, img.Width, img.Height)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func text(s string) metadata.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return metadata.Text(s)
}

func list(items []string) metadata.Value {
	if len(items) == 0 {
		return nil
	}
	return metadata.List(items)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
