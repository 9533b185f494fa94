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

package scraper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
	"golang.org/x/sync/errgroup"
)

// SearchResults holds the merged candidates per source and the units that
// failed. A source whose every unit failed has no entry in Candidates.
type SearchResults struct {
	Candidates map[string][]Candidate
	Failures   []*SearchError
}

// Err joins the failures, or returns nil when every unit succeeded.
func (r *SearchResults) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// SearchOptions tunes a SearchOrchestrator.
type SearchOptions struct {
	// Methods limits the methods used; empty means all a source declares.
	Methods []SearchMethod
	// Workers bounds concurrent units; zero means one per unit.
	Workers int
}

// SearchOrchestrator queries every enabled (source, method) pair at once.
// A failing unit never cancels its siblings.
type SearchOrchestrator struct {
	sources []Source
	methods []SearchMethod
	workers int
}

func NewSearchOrchestrator(sources []Source, opts SearchOptions) *SearchOrchestrator {
	return &SearchOrchestrator{
		sources: slices.Clone(sources),
		methods: slices.Clone(opts.Methods),
		workers: opts.Workers,
	}
}

type searchUnit struct {
	src    Source
	method SearchMethod
}

func (o *SearchOrchestrator) units(q Query) []searchUnit {
	var units []searchUnit
	for _, src := range o.sources {
		if q.Source != "" && !strings.EqualFold(src.Name(), q.Source) {
			continue
		}
		for _, m := range src.SearchMethods() {
			if q.Method != "" && m != q.Method {
				continue
			}
			if len(o.methods) > 0 && !slices.Contains(o.methods, m) {
				continue
			}
			units = append(units, searchUnit{src: src, method: m})
		}
	}
	return units
}

// Search runs the query. Per-call timeouts come from the sources' http
// clients; ctx cancellation surfaces as unit failures.
func (o *SearchOrchestrator) Search(ctx context.Context, q Query) *SearchResults {
	units := o.units(q)
	results := &SearchResults{Candidates: make(map[string][]Candidate)}
	if len(units) == 0 {
		return results
	}

	perUnit := make([][]Candidate, len(units))
	failed := make([]bool, len(units))
	var mu syncutil.Mutex

	var g errgroup.Group
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	for i, u := range units {
		g.Go(func() error {
			cands, err := runSearch(ctx, u, q)
			if err != nil {
				serr := &SearchError{Source: u.src.Name(), Method: u.method, Err: err}
				log.Warn().Err(err).
					Str("source", serr.Source).
					Str("method", string(serr.Method)).
					Str("title", q.Title).
					Msg("search failed")
				mu.Lock()
				results.Failures = append(results.Failures, serr)
				mu.Unlock()
				failed[i] = true
				return nil
			}
			perUnit[i] = cands
			return nil
		})
	}
	_ = g.Wait()

	// units are grouped by source in declared method order, so merging in
	// index order keeps that order
	for i, u := range units {
		if failed[i] {
			continue
		}
		name := u.src.Name()
		merged, ok := results.Candidates[name]
		if !ok {
			merged = []Candidate{}
		}
		for _, c := range perUnit[i] {
			if c.Source == "" {
				c.Source = name
			}
			if c.Method == "" {
				c.Method = u.method
			}
			if slices.ContainsFunc(merged, func(x Candidate) bool { return x.ID == c.ID }) {
				continue
			}
			merged = append(merged, c)
		}
		results.Candidates[name] = merged
	}

	slices.SortFunc(results.Failures, func(a, b *SearchError) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(string(a.Method), string(b.Method))
	})

	log.Debug().
		Str("title", q.Title).
		Int("units", len(units)).
		Int("sources", len(results.Candidates)).
		Int("failures", len(results.Failures)).
		Msg("search finished")

	return results
}

func runSearch(ctx context.Context, u searchUnit, q Query) (cands []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	q.Method = u.method
	cands, err = u.src.Search(ctx, q, u.method)
	if err != nil {
		return nil, err
	}
	return cands, nil
}
