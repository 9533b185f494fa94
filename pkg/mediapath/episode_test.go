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

package mediapath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanfoe/yanfoe-core/pkg/library"
)

func TestParseEpisode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   EpisodeRef
		wantOK bool
	}{
		{name: "SxxEyy", input: "Show.S01E02.720p.mkv", want: EpisodeRef{Season: 1, Episodes: []int{2}}, wantOK: true},
		{name: "short lower case", input: "show s1e2e3.avi", want: EpisodeRef{Season: 1, Episodes: []int{2, 3}}, wantOK: true},
		{name: "space before e", input: "Show S02 E10.mkv", want: EpisodeRef{Season: 2, Episodes: []int{10}}, wantOK: true},
		{name: "x form", input: "Show - 1x02 - Pilot.mkv", want: EpisodeRef{Season: 1, Episodes: []int{2}}, wantOK: true},
		{name: "x double", input: "Show 3x04x05.mkv", want: EpisodeRef{Season: 3, Episodes: []int{4, 5}}, wantOK: true},
		{name: "directory ignored", input: "/tv/S01E09/movie.mkv", wantOK: false},
		{name: "movie", input: "Alien.1979.1080p.x264.mkv", wantOK: false},
		{name: "resolution", input: "Heat 1920x1080.mkv", wantOK: false},
		{name: "title with digit e", input: "Se7en.mkv", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseEpisode(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSeasonFolderNumber(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]int{"Season 1": 1, "season.02": 2, "Saison 3": 3, "S04": 4, "Staffel_5": 5} {
		n, ok := SeasonFolderNumber(name)
		require.True(t, ok, name)
		assert.Equal(t, want, n, name)
	}
	_, ok := SeasonFolderNumber("Specials")
	assert.False(t, ok)
}

func TestSeasonUnitAdd(t *testing.T) {
	t.Parallel()

	u := NewSeasonUnit(1)
	require.NoError(t, u.Add(2, "/tv/a/e2.mkv"))
	require.NoError(t, u.Add(1, "/tv/a/e1.mkv"))
	require.NoError(t, u.Add(2, "/tv/a/e2.mkv"), "same path again")

	err := u.Add(2, "/tv/a/e2.copy.mkv")
	require.ErrorIs(t, err, library.ErrDuplicateEpisode)
	assert.Equal(t, "/tv/a/e2.mkv", u.Files[2], "first file wins")
	assert.Equal(t, []int{1, 2}, u.EpisodeNumbers())

	s := u.Season()
	assert.Equal(t, 1, s.Number())
	assert.Len(t, s.Episodes(), 2)
}

func TestGroup(t *testing.T) {
	t.Parallel()

	g := Group([]string{
		"/tv/The.Expanse/Season 1/The.Expanse.S01E02.mkv",
		"/movies/Alien (1979)/Alien.mkv",
		"/tv/The.Expanse/Season 1/The.Expanse.S01E01.mkv",
		"/tv/The.Expanse/Season 2/The.Expanse.S02E01E02.mkv",
		"/tv/The.Expanse/Season 1/The.Expanse.S01E01.REPACK.mkv",
		"/tv/Loose/Loose.1x05.avi",
	})

	assert.Equal(t, []string{"/movies/Alien (1979)/Alien.mkv"}, g.Movies)
	require.Len(t, g.Series, 2)

	expanse := g.Series[0]
	assert.Equal(t, "/tv/The.Expanse", expanse.Root)
	assert.Equal(t, "The Expanse", expanse.Name)
	assert.Equal(t, []int{1, 2}, expanse.SeasonNumbers())
	assert.Equal(t, []int{1, 2}, expanse.Seasons[1].EpisodeNumbers())
	assert.Equal(t, []int{1, 2}, expanse.Seasons[2].EpisodeNumbers())
	assert.Equal(t, expanse.Seasons[2].Files[1], expanse.Seasons[2].Files[2])

	require.Len(t, g.Conflicts, 1)
	assert.Equal(t, Conflict{
		Path:     "/tv/The.Expanse/Season 1/The.Expanse.S01E01.REPACK.mkv",
		Existing: "/tv/The.Expanse/Season 1/The.Expanse.S01E01.mkv",
		Season:   1,
		Episode:  1,
	}, g.Conflicts[0])

	loose := g.Series[1]
	assert.Equal(t, "/tv/Loose", loose.Root)
	assert.Equal(t, []int{5}, loose.Seasons[1].EpisodeNumbers())

	series := expanse.Series()
	assert.Len(t, series.Seasons(), 2)
	assert.Len(t, series.EpisodePaths(), 4)
}

func TestGroupDVDEpisodes(t *testing.T) {
	t.Parallel()

	g := Group([]string{`D:\TV\Show\Season 1\Show S01E01\VIDEO_TS\VTS_01_1.VOB`})
	// the marker sits on the folder, not the file
	assert.Len(t, g.Movies, 1)
	assert.Empty(t, g.Series)
}
