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

package library

import (
	"maps"

	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

// Movie is a movie record plus the candidate id picked for it on each
// scrape source.
type Movie struct {
	*Record
	candidates map[string]string
	cmu        syncutil.RWMutex
}

func NewMovie(paths ...string) *Movie {
	m := &Movie{
		Record:     NewRecord(KindMovie),
		candidates: make(map[string]string),
	}
	for _, p := range paths {
		m.AddPath(p)
	}
	return m
}

// SetCandidate records the id chosen on source. An empty id forgets it.
func (m *Movie) SetCandidate(source, id string) {
	m.cmu.Lock()
	defer m.cmu.Unlock()
	if id == "" {
		delete(m.candidates, source)
		return
	}
	m.candidates[source] = id
}

func (m *Movie) Candidate(source string) (string, bool) {
	m.cmu.RLock()
	defer m.cmu.RUnlock()
	id, ok := m.candidates[source]
	return id, ok
}

// Candidates returns a copy of the per-source ids.
func (m *Movie) Candidates() map[string]string {
	m.cmu.RLock()
	defer m.cmu.RUnlock()
	return maps.Clone(m.candidates)
}
