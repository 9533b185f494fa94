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
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
)

const DefaultMinSimilarity = 0.8

// Picker chooses one candidate from one source's results.
type Picker interface {
	Pick(q Query, candidates []Candidate) (Candidate, bool)
}

// FirstResult trusts the source's own ranking.
type FirstResult struct{}

func (FirstResult) Pick(_ Query, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

// BestTitle ranks candidates by Jaro-Winkler similarity of normalized
// titles. A matching year breaks ties; candidates below MinSimilarity are
// never picked.
type BestTitle struct {
	MinSimilarity float64
}

const tieEpsilon = 1e-6

func (b BestTitle) Pick(q Query, candidates []Candidate) (Candidate, bool) {
	want := helpers.NormalizeTitle(q.Title)
	if want == "" {
		return FirstResult{}.Pick(q, candidates)
	}

	var (
		best      Candidate
		bestScore = -1.0
		bestYear  bool
		found     bool
	)
	for _, c := range candidates {
		score := TitleSimilarity(want, helpers.NormalizeTitle(c.Title))
		if score < b.MinSimilarity {
			continue
		}
		yearMatch := q.Year > 0 && c.Year == q.Year
		switch {
		case score > bestScore+tieEpsilon:
		case score > bestScore-tieEpsilon && yearMatch && !bestYear:
		default:
			continue
		}
		best, bestScore, bestYear, found = c, score, yearMatch, true
	}
	return best, found
}

// TitleSimilarity returns the Jaro-Winkler similarity of two already
// normalized titles.
func TitleSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return float64(edlib.JaroWinklerSimilarity(a, b))
}

// NewPicker builds a picker from its config name.
func NewPicker(name string, minSimilarity float64) (Picker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return FirstResult{}, nil
	case "best_title":
		if minSimilarity <= 0 {
			minSimilarity = DefaultMinSimilarity
		}
		return BestTitle{MinSimilarity: minSimilarity}, nil
	default:
		return nil, fmt.Errorf("unknown picker: %q", name)
	}
}

// Pick applies p to every source's results and returns the chosen ids.
func Pick(q Query, results *SearchResults, p Picker) Identity {
	id := make(Identity)
	if results == nil {
		return id
	}
	for source, cands := range results.Candidates {
		if c, ok := p.Pick(q, cands); ok && c.ID != "" {
			id[source] = c.ID
		}
	}
	return id
}
