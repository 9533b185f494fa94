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
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

// Outcome is the result of one field attempt on one source.
type Outcome string

const (
	OutcomePopulated Outcome = "populated"
	OutcomeAbsent    Outcome = "absent"
	OutcomeFailed    Outcome = "failed"
)

// Attempt records one source tried for one field.
type Attempt struct {
	Err      error
	Source   string
	Outcome  Outcome
	Duration time.Duration
}

// Event is delivered to an Observer after every attempt.
type Event struct {
	Err      error
	ItemID   string
	Source   string
	Field    metadata.FieldID
	Outcome  Outcome
	ThreadID uint64
	Duration time.Duration
}

// Observer receives scrape attempt events. Implementations must be safe
// for concurrent use since fields run in parallel.
type Observer interface {
	OnAttempt(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnAttempt(e Event) {
	f(e)
}

func logAttempt(e Event) {
	var ev *zerolog.Event
	if e.Outcome == OutcomeFailed {
		ev = log.Warn().Err(e.Err)
	} else {
		ev = log.Debug()
	}
	ev.Str("source", e.Source).
		Str("field", string(e.Field)).
		Str("item_id", e.ItemID).
		Uint64("thread_id", e.ThreadID).
		Str("outcome", string(e.Outcome)).
		Dur("duration", e.Duration).
		Msg("scrape attempt")
}
