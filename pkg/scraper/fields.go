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
	"fmt"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"golang.org/x/sync/errgroup"
)

const DefaultFieldWorkers = 4

// Target is the record the field orchestrator writes to.
type Target interface {
	ItemID() string
	IsOverridden(field metadata.FieldID) bool
	ApplyScraped(fv metadata.FieldValue, force bool) bool
}

// Request selects fields to populate. An empty Fields means every field.
// Overridden fields are skipped unless listed in Retrigger.
type Request struct {
	Fields    []metadata.FieldID
	Retrigger []metadata.FieldID
}

// FieldStatus is the final state of one requested field.
type FieldStatus string

const (
	// StatusPopulated means a source returned a value that was written.
	StatusPopulated FieldStatus = "populated"
	// StatusAbsent means a source answered that it has no such field.
	StatusAbsent FieldStatus = "absent"
	// StatusUnset means every eligible source failed or none was eligible.
	StatusUnset FieldStatus = "unset"
	// StatusSkipped means the field is overridden and was not retriggered.
	StatusSkipped FieldStatus = "skipped"
)

type FieldOutcome struct {
	Field    metadata.FieldID
	Status   FieldStatus
	Source   string
	Attempts []Attempt
}

// Report summarises one populate run.
type Report struct {
	ItemID   string
	Fields   []FieldOutcome
	Cache    CacheStats
	ThreadID uint64
}

func (r *Report) Outcome(f metadata.FieldID) (FieldOutcome, bool) {
	for _, o := range r.Fields {
		if o.Field == f {
			return o, true
		}
	}
	return FieldOutcome{}, false
}

func (r *Report) withStatus(statuses ...FieldStatus) []metadata.FieldID {
	var out []metadata.FieldID
	for _, o := range r.Fields {
		if slices.Contains(statuses, o.Status) {
			out = append(out, o.Field)
		}
	}
	return out
}

// Populated lists fields that received a value.
func (r *Report) Populated() []metadata.FieldID {
	return r.withStatus(StatusPopulated)
}

// Unset lists fields left without a value, absent ones included.
func (r *Report) Unset() []metadata.FieldID {
	return r.withStatus(StatusUnset, StatusAbsent)
}

// FieldOptions tunes a FieldOrchestrator.
type FieldOptions struct {
	Observer Observer
	Clock    clockwork.Clock
	// Priorities overrides the source order for single fields.
	Priorities map[metadata.FieldID][]string
	Workers    int
	// FallbackOnAbsent keeps trying lower priority sources after one
	// reports the field absent.
	FallbackOnAbsent bool
}

// FieldOrchestrator fills record fields from sources in priority order.
// Fields are independent and run concurrently; the sources for one field
// are always tried one after another.
type FieldOrchestrator struct {
	observer         Observer
	clock            clockwork.Clock
	priorities       map[metadata.FieldID][]Source
	sources          []Source
	workers          int
	fallbackOnAbsent bool
}

// NewFieldOrchestrator takes the enabled sources in default priority order.
// Priority overrides naming sources outside that list ignore those names.
func NewFieldOrchestrator(sources []Source, opts FieldOptions) *FieldOrchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultFieldWorkers
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	o := &FieldOrchestrator{
		sources:          slices.Clone(sources),
		priorities:       make(map[metadata.FieldID][]Source),
		workers:          opts.Workers,
		fallbackOnAbsent: opts.FallbackOnAbsent,
		observer:         opts.Observer,
		clock:            opts.Clock,
	}

	for field, names := range opts.Priorities {
		var ordered []Source
		for _, name := range names {
			i := slices.IndexFunc(o.sources, func(s Source) bool { return strings.EqualFold(s.Name(), name) })
			if i < 0 {
				log.Warn().Str("field", string(field)).Str("source", name).
					Msg("field priority names a source that is not enabled")
				continue
			}
			if !slices.Contains(ordered, o.sources[i]) {
				ordered = append(ordered, o.sources[i])
			}
		}
		o.priorities[field] = ordered
	}

	return o
}

// SourcesFor returns the priority order used for field.
func (o *FieldOrchestrator) SourcesFor(field metadata.FieldID) []Source {
	if ordered, ok := o.priorities[field]; ok {
		return ordered
	}
	return o.sources
}

// Populate runs one session for target. The returned error is only set
// when ctx ends; the report is returned either way.
func (o *FieldOrchestrator) Populate(ctx context.Context, target Target, id Identity, req Request) (*Report, error) {
	session := NewSession(target.ItemID())
	defer session.Close()

	fields := req.Fields
	if len(fields) == 0 {
		fields = metadata.AllFields()
	}
	fields = dedupeFields(fields)

	report := &Report{
		ItemID:   session.ItemID,
		ThreadID: session.ThreadID,
		Fields:   make([]FieldOutcome, len(fields)),
	}

	log.Debug().
		Str("item_id", session.ItemID).
		Uint64("thread_id", session.ThreadID).
		Int("fields", len(fields)).
		Msg("populating fields")

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, field := range fields {
		retrigger := slices.Contains(req.Retrigger, field)
		g.Go(func() error {
			report.Fields[i] = o.populateField(ctx, session, target, id, field, retrigger)
			return nil
		})
	}
	_ = g.Wait()

	report.Cache = session.Cache().Stats()
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("populate %s: %w", session.ItemID, err)
	}
	return report, nil
}

func dedupeFields(fields []metadata.FieldID) []metadata.FieldID {
	out := make([]metadata.FieldID, 0, len(fields))
	for _, f := range fields {
		if f.Valid() && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func (o *FieldOrchestrator) populateField(
	ctx context.Context,
	session *Session,
	target Target,
	id Identity,
	field metadata.FieldID,
	retrigger bool,
) FieldOutcome {
	outcome := FieldOutcome{Field: field, Status: StatusUnset}

	if target.IsOverridden(field) && !retrigger {
		outcome.Status = StatusSkipped
		return outcome
	}

	for _, src := range o.SourcesFor(field) {
		if ctx.Err() != nil {
			break
		}
		if !Supports(src, field) {
			continue
		}
		candidateID := id[src.Name()]
		if candidateID == "" {
			continue
		}

		value, attempt := o.attempt(ctx, session, src, field, candidateID)
		outcome.Attempts = append(outcome.Attempts, attempt)

		switch attempt.Outcome {
		case OutcomeFailed:
			continue
		case OutcomeAbsent:
			outcome.Status = StatusAbsent
			outcome.Source = src.Name()
			if o.fallbackOnAbsent {
				continue
			}
			return outcome
		case OutcomePopulated:
			target.ApplyScraped(metadata.FieldValue{
				Field:     field,
				Value:     value,
				Source:    src.Name(),
				UpdatedAt: o.clock.Now(),
			}, retrigger)
			outcome.Status = StatusPopulated
			outcome.Source = src.Name()
			return outcome
		}
	}

	return outcome
}

func (o *FieldOrchestrator) attempt(
	ctx context.Context,
	session *Session,
	src Source,
	field metadata.FieldID,
	candidateID string,
) (value metadata.Value, attempt Attempt) {
	start := o.clock.Now()
	attempt.Source = src.Name()

	defer func() {
		if r := recover(); r != nil {
			value = nil
			attempt.Outcome = OutcomeFailed
			attempt.Err = fmt.Errorf("panic: %v", r)
		}
		if attempt.Err != nil {
			attempt.Err = &ScrapeError{Source: src.Name(), Field: field, ItemID: session.ItemID, Err: attempt.Err}
		}
		attempt.Duration = o.clock.Since(start)
		o.emit(Event{
			ItemID:   session.ItemID,
			ThreadID: session.ThreadID,
			Source:   src.Name(),
			Field:    field,
			Outcome:  attempt.Outcome,
			Err:      attempt.Err,
			Duration: attempt.Duration,
		})
	}()

	value, err := src.ScrapeField(ctx, field, candidateID, session)
	switch {
	case err != nil:
		attempt.Outcome = OutcomeFailed
		attempt.Err = err
		return nil, attempt
	case metadata.IsEmpty(value):
		attempt.Outcome = OutcomeAbsent
		return nil, attempt
	case !field.Accepts(value):
		attempt.Outcome = OutcomeFailed
		attempt.Err = fmt.Errorf("%w: %s got %s", ErrKindMismatch, field, value.Kind())
		return nil, attempt
	default:
		attempt.Outcome = OutcomePopulated
		return value, attempt
	}
}

func (o *FieldOrchestrator) emit(e Event) {
	logAttempt(e)
	if o.observer != nil {
		o.observer.OnAttempt(e)
	}
}
