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
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yanfoe/yanfoe-core/pkg/library"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/testing/mocks"
)

func titleRequest() scraper.Request {
	return scraper.Request{Fields: []metadata.FieldID{metadata.FieldTitle}}
}

func newRunner(src *mocks.MockSource, clock clockwork.Clock) *scraper.BatchRunner {
	sources := []scraper.Source{src}
	return scraper.NewBatchRunner(
		scraper.NewSearchOrchestrator(sources, scraper.SearchOptions{}),
		scraper.NewFieldOrchestrator(sources, scraper.FieldOptions{}),
		scraper.BatchOptions{Clock: clock, Workers: 1},
	)
}

func TestBatchSearchesPicksAndStoresCandidate(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	src.SetupSearch(scraper.MethodBing, []scraper.Candidate{{ID: "62", Title: "Alien"}}).Once()
	src.SetupField(metadata.FieldTitle, "62", metadata.Text("Alien"))

	movie := library.NewMovie("/films/Alien (1979)/alien.mkv")
	runner := newRunner(src, clockwork.NewFakeClock())

	item := scraper.Item{Target: movie, Query: scraper.Query{Title: "Alien"}, Request: titleRequest()}
	results, err := runner.Run(context.Background(), []scraper.Item{item})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, scraper.Identity{"allocine": "62"}, results[0].Identity)
	assert.Equal(t, []metadata.FieldID{metadata.FieldTitle}, results[0].Report.Populated())

	id, ok := movie.Candidate("allocine")
	require.True(t, ok)
	assert.Equal(t, "62", id)

	// the stored candidate means no second search
	results, err = runner.Run(context.Background(), []scraper.Item{item})
	require.NoError(t, err)
	assert.Nil(t, results[0].Search)
	src.AssertNumberOfCalls(t, "Search", 1)
}

func TestBatchNoIdentity(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	src.SetupSearchError(scraper.MethodBing, errors.New("blocked"))

	runner := newRunner(src, clockwork.NewFakeClock())
	results, err := runner.Run(context.Background(), []scraper.Item{{
		Target: library.NewMovie(), Query: scraper.Query{Title: "Alien"}, Request: titleRequest(),
	}})
	require.NoError(t, err)
	require.ErrorIs(t, results[0].Err, scraper.ErrNoIdentity)
	require.ErrorIs(t, results[0].Err, scraper.ErrSearchFailed)

	p := runner.Progress()
	assert.Equal(t, 1, p.ErrorCount)
	assert.Equal(t, scraper.ProgressCompleted, p.Status)
}

func TestBatchProgressEstimate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	src := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	src.SetupField(metadata.FieldTitle, "62", metadata.Text("Alien")).
		Run(func(mock.Arguments) { clock.Advance(10 * time.Second) })

	items := make([]scraper.Item, 3)
	for i := range items {
		m := library.NewMovie()
		m.SetCandidate("allocine", "62")
		items[i] = scraper.Item{Target: m, Query: scraper.Query{Title: "Alien"}, Request: titleRequest()}
	}

	runner := newRunner(src, clock)
	assert.Equal(t, scraper.ProgressIdle, runner.Progress().Status)

	_, err := runner.Run(context.Background(), items)
	require.NoError(t, err)

	p := runner.Progress()
	assert.Equal(t, 3, p.Processed)
	assert.Equal(t, 3, p.Total)
	assert.False(t, p.IsRunning)
	require.NotNil(t, p.StartTime)
	assert.Equal(t, start, *p.StartTime)
	require.NotNil(t, p.EstimatedEnd)
	assert.Equal(t, start.Add(30*time.Second), *p.EstimatedEnd)
}

func TestBatchCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	src := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	runner := newRunner(src, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := runner.Run(ctx, []scraper.Item{
		{Target: library.NewMovie(), Query: scraper.Query{Title: "Alien"}},
		{Target: library.NewMovie(), Query: scraper.Query{Title: "Heat"}},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		require.ErrorIs(t, r.Err, context.Canceled)
		assert.NotEmpty(t, r.ItemID)
	}
	assert.Equal(t, scraper.ProgressCancelled, runner.Progress().Status)
	src.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
