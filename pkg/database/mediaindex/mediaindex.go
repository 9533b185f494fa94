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
	"context"

	"github.com/yanfoe/yanfoe-core/pkg/library"
)

const (
	MoviesIndexName = "movies"
	TVIndexName     = "tv"
)

// MediaIndex pairs the movie and TV indexes of one library.
type MediaIndex struct {
	Movies *Index
	TV     *Index
}

// NewMediaIndex builds indexes fed from lib's movie files and episode
// files.
func NewMediaIndex(lib *library.Library, opts ...Option) *MediaIndex {
	return &MediaIndex{
		Movies: New(MoviesIndexName, func(context.Context) ([]string, error) {
			return lib.MoviePaths(), nil
		}, opts...),
		TV: New(TVIndexName, func(context.Context) ([]string, error) {
			return lib.EpisodePaths(), nil
		}, opts...),
	}
}

// Contains reports whether either index knows p.
func (m *MediaIndex) Contains(p string) bool {
	return m.Movies.Contains(p) || m.TV.Contains(p)
}

// RebuildAll requests a rebuild of both indexes.
func (m *MediaIndex) RebuildAll() (movies, tv *Task) {
	return m.Movies.Rebuild(), m.TV.Rebuild()
}

// Wait waits for every task, such as the pair RebuildAll returns, and
// returns the first error.
func Wait(ctx context.Context, tasks ...*Task) error {
	for _, t := range tasks {
		if _, err := t.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AutoRebuild rebuilds both indexes after every library change. The
// returned function stops it.
func (m *MediaIndex) AutoRebuild(lib *library.Library) func() {
	return lib.OnChange(func() {
		m.RebuildAll()
	})
}

func (m *MediaIndex) Close() {
	m.Movies.Close()
	m.TV.Close()
}
