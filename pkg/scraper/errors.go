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
	"errors"
	"fmt"

	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

var (
	ErrSearchFailed  = errors.New("search failed")
	ErrScrapeFailed  = errors.New("scrape failed")
	ErrSessionClosed = errors.New("scrape session closed")
	ErrUnknownSource = errors.New("unknown source")
	ErrKindMismatch  = errors.New("value kind does not match field")
)

// SearchError is one failed (source, method) search unit.
type SearchError struct {
	Err    error
	Source string
	Method SearchMethod
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s via %s: %v", e.Source, e.Method, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func (*SearchError) Is(target error) bool {
	return target == ErrSearchFailed
}

// ScrapeError is one failed field attempt on one source.
type ScrapeError struct {
	Err    error
	Source string
	Field  metadata.FieldID
	ItemID string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s from %s for %s: %v", e.Field, e.Source, e.ItemID, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func (*ScrapeError) Is(target error) bool {
	return target == ErrScrapeFailed
}
