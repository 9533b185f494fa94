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
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

// Library owns the movie and series collections. It is safe for concurrent
// use. Change listeners run after the library lock is released.
type Library struct {
	listeners  map[int]func()
	movies     []*Movie
	series     []*Series
	mu         syncutil.RWMutex
	nextListen int
	batchDepth int
	pending    bool
}

func New() *Library {
	return &Library{
		listeners: make(map[int]func()),
	}
}

// OnChange registers fn to be called after every mutation, or once at the
// end of a Batch. The returned function unregisters it.
func (l *Library) OnChange(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextListen
	l.nextListen++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

// Batch runs fn with change notifications held back, then fires them once
// if anything changed. Batches nest.
func (l *Library) Batch(fn func()) {
	l.mu.Lock()
	l.batchDepth++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.batchDepth--
		fire := l.batchDepth == 0 && l.pending
		if fire {
			l.pending = false
		}
		l.mu.Unlock()
		if fire {
			l.notify()
		}
	}()

	fn()
}

// MarkChanged fires change listeners for mutations made on records the
// library already owns, such as new episodes on an existing season.
func (l *Library) MarkChanged() {
	l.changed()
}

func (l *Library) changed() {
	l.mu.Lock()
	if l.batchDepth > 0 {
		l.pending = true
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.notify()
}

func (l *Library) notify() {
	l.mu.RLock()
	fns := make([]func(), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// AddMovie adds m. It reports false when a movie with the same id is
// already present.
func (l *Library) AddMovie(m *Movie) bool {
	l.mu.Lock()
	if slices.ContainsFunc(l.movies, func(x *Movie) bool { return x.ID() == m.ID() }) {
		l.mu.Unlock()
		return false
	}
	l.movies = append(l.movies, m)
	l.mu.Unlock()

	log.Debug().Str("item_id", m.ItemID()).Strs("paths", m.Paths()).Msg("movie added to library")
	l.changed()
	return true
}

func (l *Library) RemoveMovie(id uuid.UUID) bool {
	l.mu.Lock()
	i := slices.IndexFunc(l.movies, func(x *Movie) bool { return x.ID() == id })
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.movies = slices.Delete(l.movies, i, i+1)
	l.mu.Unlock()

	l.changed()
	return true
}

func (l *Library) AddSeries(s *Series) bool {
	l.mu.Lock()
	if slices.ContainsFunc(l.series, func(x *Series) bool { return x.ID() == s.ID() }) {
		l.mu.Unlock()
		return false
	}
	l.series = append(l.series, s)
	l.mu.Unlock()

	log.Debug().Str("item_id", s.ItemID()).Str("root", s.Path()).Msg("series added to library")
	l.changed()
	return true
}

func (l *Library) RemoveSeries(id uuid.UUID) bool {
	l.mu.Lock()
	i := slices.IndexFunc(l.series, func(x *Series) bool { return x.ID() == id })
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.series = slices.Delete(l.series, i, i+1)
	l.mu.Unlock()

	l.changed()
	return true
}

func (l *Library) Movies() []*Movie {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.movies)
}

func (l *Library) Series() []*Series {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.series)
}

// FindMovieByPath returns the movie holding p.
func (l *Library) FindMovieByPath(p string) (*Movie, bool) {
	norm := helpers.NormalizePath(p)
	for _, m := range l.Movies() {
		if m.HasPath(norm) {
			return m, true
		}
	}
	return nil, false
}

// FindSeriesByRoot returns the series whose root folder is root.
func (l *Library) FindSeriesByRoot(root string) (*Series, bool) {
	norm := helpers.NormalizePath(root)
	for _, s := range l.Series() {
		if s.HasPath(norm) {
			return s, true
		}
	}
	return nil, false
}

// MoviePaths returns every file path of every movie.
func (l *Library) MoviePaths() []string {
	var out []string
	for _, m := range l.Movies() {
		out = append(out, m.Paths()...)
	}
	return out
}

// EpisodePaths returns every episode file path of every series.
func (l *Library) EpisodePaths() []string {
	var out []string
	for _, s := range l.Series() {
		out = append(out, s.EpisodePaths()...)
	}
	return out
}
