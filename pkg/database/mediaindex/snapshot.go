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

package mediaindex

import (
	"slices"
	"time"

	"github.com/yanfoe/yanfoe-core/pkg/helpers"
)

// Snapshot is an immutable set of normalized paths. A nil Snapshot is
// empty.
type Snapshot struct {
	builtAt    time.Time
	paths      map[string]struct{}
	generation uint64
}

func newSnapshot(paths []string, generation uint64, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		paths:      make(map[string]struct{}, len(paths)),
		generation: generation,
		builtAt:    builtAt,
	}
	for _, p := range paths {
		if key := helpers.NormalizePath(p); key != "" {
			s.paths[key] = struct{}{}
		}
	}
	return s
}

// Contains reports whether p, after normalization, is in the snapshot.
func (s *Snapshot) Contains(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[helpers.NormalizePath(p)]
	return ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Generation counts builds in start order. The empty initial snapshot is
// generation 0.
func (s *Snapshot) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation
}

func (s *Snapshot) BuiltAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.builtAt
}

// Paths returns the normalized paths in sorted order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
