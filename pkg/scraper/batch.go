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
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
	"golang.org/x/sync/errgroup"
)

const DefaultItemWorkers = 2

// ErrNoIdentity is reported for an item no source could identify.
var ErrNoIdentity = errors.New("no candidate picked on any source")

// CandidateHolder is implemented by records that remember the candidate
// picked per source, so later runs skip the search.
type CandidateHolder interface {
	Candidates() map[string]string
	SetCandidate(source, id string)
}

// Item is one record to scrape.
type Item struct {
	Target  Target
	Query   Query
	Request Request
}

// ItemResult is what happened to one item.
type ItemResult struct {
	Err      error
	Search   *SearchResults
	Report   *Report
	Identity Identity
	ItemID   string
}

// Status values reported by Progress.
const (
	ProgressIdle      = "idle"
	ProgressRunning   = "running"
	ProgressCompleted = "completed"
	ProgressCancelled = "cancelled"
)

// Progress is a snapshot of a batch run.
type Progress struct {
	StartTime    *time.Time
	EstimatedEnd *time.Time
	CurrentItem  string
	Status       string
	Processed    int
	Total        int
	ErrorCount   int
	IsRunning    bool
}

// BatchOptions tunes a BatchRunner.
type BatchOptions struct {
	Picker  Picker
	Clock   clockwork.Clock
	Workers int
}

// BatchRunner scrapes many items: search when no identity is known yet,
// pick, then populate fields. Cancellation is checked before each item
// starts; items already running finish.
type BatchRunner struct {
	search   *SearchOrchestrator
	fields   *FieldOrchestrator
	picker   Picker
	clock    clockwork.Clock
	progress Progress
	workers  int
	mu       syncutil.RWMutex
}

func NewBatchRunner(search *SearchOrchestrator, fields *FieldOrchestrator, opts BatchOptions) *BatchRunner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultItemWorkers
	}
	if opts.Picker == nil {
		opts.Picker = FirstResult{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &BatchRunner{
		search:   search,
		fields:   fields,
		picker:   opts.Picker,
		clock:    opts.Clock,
		workers:  opts.Workers,
		progress: Progress{Status: ProgressIdle},
	}
}

// Progress returns a copy of the current progress.
func (b *BatchRunner) Progress() Progress {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.progress
}

// Run processes items and returns one result per item in input order.
// Items not started because ctx ended carry ctx's error.
func (b *BatchRunner) Run(ctx context.Context, items []Item) ([]ItemResult, error) {
	start := b.clock.Now()
	b.mu.Lock()
	b.progress = Progress{
		StartTime: &start,
		Total:     len(items),
		Status:    ProgressRunning,
		IsRunning: true,
	}
	b.mu.Unlock()

	log.Info().Int("items", len(items)).Int("workers", b.workers).Msg("batch scrape started")

	results := make([]ItemResult, len(items))
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, item := range items {
		results[i].ItemID = item.Target.ItemID()
		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("not started: %w", err)
			continue
		}
		g.Go(func() error {
			// the slot may have been waited for past cancellation
			if err := ctx.Err(); err != nil {
				results[i].Err = fmt.Errorf("not started: %w", err)
				return nil
			}
			results[i] = b.runItem(ctx, item)
			b.itemDone(results[i])
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	b.progress.IsRunning = false
	b.progress.CurrentItem = ""
	if ctx.Err() != nil {
		b.progress.Status = ProgressCancelled
	} else {
		b.progress.Status = ProgressCompleted
	}
	p := b.progress
	b.mu.Unlock()

	log.Info().
		Int("processed", p.Processed).
		Int("errors", p.ErrorCount).
		Str("status", p.Status).
		Dur("elapsed", b.clock.Since(start)).
		Msg("batch scrape finished")

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch scrape: %w", err)
	}
	return results, nil
}

func (b *BatchRunner) runItem(ctx context.Context, item Item) ItemResult {
	res := ItemResult{ItemID: item.Target.ItemID()}

	b.mu.Lock()
	b.progress.CurrentItem = item.Query.Title
	b.mu.Unlock()

	holder, canHold := item.Target.(CandidateHolder)
	if canHold {
		res.Identity = Identity(holder.Candidates())
	}

	if len(res.Identity) == 0 {
		res.Search = b.search.Search(ctx, item.Query)
		res.Identity = Pick(item.Query, res.Search, b.picker)
		if canHold {
			for source, id := range res.Identity {
				holder.SetCandidate(source, id)
			}
		}
	}

	if len(res.Identity) == 0 {
		res.Err = fmt.Errorf("%s: %w", item.Query.Title, ErrNoIdentity)
		if res.Search != nil {
			if err := res.Search.Err(); err != nil {
				res.Err = fmt.Errorf("%w: %w", res.Err, err)
			}
		}
		return res
	}

	report, err := b.fields.Populate(ctx, item.Target, res.Identity, item.Request)
	res.Report = report
	res.Err = err
	return res
}

func (b *BatchRunner) itemDone(res ItemResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.progress.Processed++
	if res.Err != nil {
		b.progress.ErrorCount++
	}

	if b.progress.StartTime == nil || b.progress.Processed == 0 {
		return
	}
	elapsed := b.clock.Since(*b.progress.StartTime)
	perItem := elapsed / time.Duration(b.progress.Processed)
	remaining := time.Duration(b.progress.Total-b.progress.Processed) * perItem
	end := b.clock.Now().Add(remaining)
	b.progress.EstimatedEnd = &end
}
