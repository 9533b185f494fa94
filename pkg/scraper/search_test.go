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

package scraper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/testing/mocks"
)

var alienQuery = scraper.Query{Title: "Alien", Year: 1979, Kind: scraper.MediaMovie}

func TestSearchZeroSources(t *testing.T) {
	t.Parallel()

	res := scraper.NewSearchOrchestrator(nil, scraper.SearchOptions{}).Search(context.Background(), alienQuery)
	require.NotNil(t, res)
	assert.Empty(t, res.Candidates)
	assert.NoError(t, res.Err())
}

func TestSearchMergesMethodsInDeclaredOrder(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing, scraper.MethodNative}, metadata.FieldTitle)
	src.SetupSearch(scraper.MethodBing, []scraper.Candidate{
		{ID: "62", Title: "Alien, le huitième passager"},
		{ID: "1234", Title: "Alien 3"},
	})
	src.SetupSearch(scraper.MethodNative, []scraper.Candidate{
		{ID: "9999", Title: "Aliens"},
		{ID: "62", Title: "Alien"},
	})

	res := scraper.NewSearchOrchestrator([]scraper.Source{src}, scraper.SearchOptions{}).
		Search(context.Background(), alienQuery)
	require.NoError(t, res.Err())

	cands := res.Candidates["allocine"]
	require.Len(t, cands, 3)
	assert.Equal(t, "62", cands[0].ID)
	assert.Equal(t, scraper.MethodBing, cands[0].Method)
	assert.Equal(t, "allocine", cands[0].Source)
	assert.Equal(t, "1234", cands[1].ID)
	assert.Equal(t, "9999", cands[2].ID)
	assert.Equal(t, scraper.MethodNative, cands[2].Method)
}

func TestSearchFailureIsolated(t *testing.T) {
	t.Parallel()

	failing := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	failing.SetupSearchError(scraper.MethodBing, errors.New("bing blocked"))
	good := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	good.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "348", Title: "Alien", Year: 1979}})

	res := scraper.NewSearchOrchestrator([]scraper.Source{failing, good}, scraper.SearchOptions{}).
		Search(context.Background(), alienQuery)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "allocine", res.Failures[0].Source)
	assert.Equal(t, scraper.MethodBing, res.Failures[0].Method)
	require.ErrorIs(t, res.Err(), scraper.ErrSearchFailed)

	_, ok := res.Candidates["allocine"]
	assert.False(t, ok)
	assert.Equal(t, []scraper.Candidate{{
		ID: "348", Title: "Alien", Year: 1979, Source: "tmdb", Method: scraper.MethodNative,
	}}, res.Candidates["tmdb"])
}

func TestSearchPanicIsolated(t *testing.T) {
	t.Parallel()

	panicky := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	panicky.On("Search", mock.Anything, mock.Anything, scraper.MethodBing).
		Run(func(mock.Arguments) { panic("index out of range") })
	good := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	good.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "348"}})

	res := scraper.NewSearchOrchestrator([]scraper.Source{panicky, good}, scraper.SearchOptions{}).
		Search(context.Background(), alienQuery)
	require.Len(t, res.Failures, 1)
	assert.Len(t, res.Candidates["tmdb"], 1)
}

func TestSearchEmptyResultKeepsEntry(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	src.SetupSearch(scraper.MethodNative, nil)

	res := scraper.NewSearchOrchestrator([]scraper.Source{src}, scraper.SearchOptions{}).
		Search(context.Background(), alienQuery)
	cands, ok := res.Candidates["tmdb"]
	require.True(t, ok)
	assert.Empty(t, cands)
}

func TestSearchRestrictions(t *testing.T) {
	t.Parallel()

	allocine := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing, scraper.MethodNative}, metadata.FieldTitle)
	allocine.SetupSearch(scraper.MethodBing, []scraper.Candidate{{ID: "62"}})
	allocine.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "63"}})
	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	tmdb.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "348"}})

	orch := scraper.NewSearchOrchestrator([]scraper.Source{allocine, tmdb}, scraper.SearchOptions{})

	q := alienQuery
	q.Method = scraper.MethodBing
	res := orch.Search(context.Background(), q)
	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, "62", res.Candidates["allocine"][0].ID)

	q = alienQuery
	q.Source = "TMDB"
	res = orch.Search(context.Background(), q)
	assert.Len(t, res.Candidates, 1)
	assert.Contains(t, res.Candidates, "tmdb")

	limited := scraper.NewSearchOrchestrator([]scraper.Source{allocine, tmdb}, scraper.SearchOptions{
		Methods: []scraper.SearchMethod{scraper.MethodNative},
		Workers: 1,
	})
	res = limited.Search(context.Background(), alienQuery)
	assert.Equal(t, "63", res.Candidates["allocine"][0].ID)
	assert.Equal(t, "348", res.Candidates["tmdb"][0].ID)
}

func TestSearchPassesMethodInQuery(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	src.On("Search", mock.Anything, mock.MatchedBy(func(q scraper.Query) bool {
		return q.Method == scraper.MethodNative && q.Title == "Alien"
	}), scraper.MethodNative).Return([]scraper.Candidate{{ID: "348"}}, nil)

	res := scraper.NewSearchOrchestrator([]scraper.Source{src}, scraper.SearchOptions{}).
		Search(context.Background(), alienQuery)
	require.NoError(t, res.Err())
	src.AssertExpectations(t)
}
