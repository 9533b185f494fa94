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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanfoe/yanfoe-core/pkg/library"
)

func TestMediaIndexAutoRebuild(t *testing.T) {
	t.Parallel()

	lib := library.New()
	idx := NewMediaIndex(lib)
	t.Cleanup(idx.Close)
	stop := idx.AutoRebuild(lib)
	t.Cleanup(stop)

	lib.AddMovie(library.NewMovie("/lib/movies/Alien (1979)/Alien.mkv"))

	series := library.NewSeries("/lib/tv/Dexter")
	require.NoError(t, series.AddSeason(1).AddEpisode(
		library.NewEpisode(1, 1, "/lib/tv/Dexter/Season 1/Dexter.S01E01.mkv"),
	))
	lib.AddSeries(series)

	// the change hooks may still be building; a fresh request runs after them
	movies, tv := idx.RebuildAll()
	require.NoError(t, Wait(waitCtx(t), movies, tv))

	assert.True(t, idx.Movies.Contains("/lib/movies/Alien (1979)/Alien.mkv"))
	assert.False(t, idx.TV.Contains("/lib/movies/Alien (1979)/Alien.mkv"))
	assert.True(t, idx.TV.Contains("/lib/tv/Dexter/Season 1/Dexter.S01E01.mkv"))
	assert.True(t, idx.Contains("/lib/tv/Dexter/Season 1/Dexter.S01E01.mkv"))
	assert.False(t, idx.Contains("/lib/tv/Dexter/Season 1/Dexter.S01E02.mkv"))
}

func TestMediaIndexStopAutoRebuild(t *testing.T) {
	t.Parallel()

	lib := library.New()
	idx := NewMediaIndex(lib)
	t.Cleanup(idx.Close)
	stop := idx.AutoRebuild(lib)
	stop()

	lib.AddMovie(library.NewMovie("/lib/movies/Heat.mkv"))
	assert.Equal(t, uint64(0), idx.Movies.Snapshot().Generation())

	movies, tv := idx.RebuildAll()
	require.NoError(t, Wait(waitCtx(t), movies, tv))
	assert.True(t, idx.Contains("/lib/movies/Heat.mkv"))
}
