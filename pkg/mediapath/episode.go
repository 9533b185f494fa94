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
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/library"
)

var (
	// S01E02, s1e2e3, S01 E02 and 1x02 forms, not preceded by a digit
	episodeRe  = helpers.CachedMustCompile(`(?i)(?:^|[^0-9])s?([0-9]{1,2})((?:\s?e[0-9]+)+|(?:x[0-9]+)+)`)
	digitsRe   = helpers.CachedMustCompile(`[0-9]+`)
	seasonRe   = helpers.CachedMustCompile(`(?i)^(?:season|saison|series|staffel)[\s._-]*([0-9]{1,3})$|^s([0-9]{1,3})$`)
	titleNoise = helpers.CachedMustCompile(`[._]+`)
)

// EpisodeRef is a season and the episode numbers one file carries.
type EpisodeRef struct {
	Episodes []int
	Season   int
}

// ParseEpisode finds the season and episode numbers in a file name.
func ParseEpisode(name string) (EpisodeRef, bool) {
	m := episodeRe.FindStringSubmatch(helpers.Base(name))
	if m == nil {
		return EpisodeRef{}, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeRef{}, false
	}

	ref := EpisodeRef{Season: season}
	for _, d := range digitsRe.FindAllString(m[2], -1) {
		n, err := strconv.Atoi(d)
		if err != nil || slices.Contains(ref.Episodes, n) {
			continue
		}
		ref.Episodes = append(ref.Episodes, n)
	}
	if len(ref.Episodes) == 0 {
		return EpisodeRef{}, false
	}
	return ref, true
}

// SeasonFolderNumber returns N for a "Season N", "Saison N" or "S0N"
// folder name.
func SeasonFolderNumber(name string) (int, bool) {
	m := seasonRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

// Conflict is a file whose episode number was already taken in its season.
type Conflict struct {
	Path     string
	Existing string
	Season   int
	Episode  int
}

// SeasonUnit collects the files of one season.
type SeasonUnit struct {
	Files  map[int]string
	Number int
}

func NewSeasonUnit(number int) *SeasonUnit {
	return &SeasonUnit{Number: number, Files: make(map[int]string)}
}

// Add assigns path to episode. The first file for an episode number wins;
// a second one fails with library.ErrDuplicateEpisode. Adding the same
// path again is a no-op.
func (u *SeasonUnit) Add(episode int, path string) error {
	if existing, ok := u.Files[episode]; ok {
		if existing == path {
			return nil
		}
		return fmt.Errorf("season %d episode %d: %w", u.Number, episode, library.ErrDuplicateEpisode)
	}
	u.Files[episode] = path
	return nil
}

// EpisodeNumbers lists the collected episode numbers in order.
func (u *SeasonUnit) EpisodeNumbers() []int {
	return slices.Sorted(maps.Keys(u.Files))
}

func (u *SeasonUnit) fill(s *library.Season) {
	for _, n := range u.EpisodeNumbers() {
		// numbers are unique keys, so AddEpisode cannot fail here
		_ = s.AddEpisode(library.NewEpisode(u.Number, n, u.Files[n]))
	}
}

// Season turns the unit into a library season.
func (u *SeasonUnit) Season() *library.Season {
	s := library.NewSeason(u.Number)
	u.fill(s)
	return s
}

// SeriesGroup is the seasons found under one series folder.
type SeriesGroup struct {
	Seasons map[int]*SeasonUnit
	Name    string
	Root    string
}

// SeasonNumbers lists the season numbers in order.
func (g *SeriesGroup) SeasonNumbers() []int {
	return slices.Sorted(maps.Keys(g.Seasons))
}

// Series turns the group into a library series.
func (g *SeriesGroup) Series() *library.Series {
	series := library.NewSeries(g.Root)
	for _, n := range g.SeasonNumbers() {
		g.Seasons[n].fill(series.AddSeason(n))
	}
	return series
}

// Grouping is the result of Group.
type Grouping struct {
	Series    []*SeriesGroup
	Movies    []string
	Conflicts []Conflict
}

// seriesRoot is the folder above a season folder, or the episode's own
// season folder when it is not named like one.
func seriesRoot(p string) string {
	dir := SeasonDir(p)
	if _, ok := SeasonFolderNumber(helpers.Base(dir)); ok {
		return helpers.Dir(dir)
	}
	return dir
}

// SeriesName cleans a series folder name for display and searching.
func SeriesName(root string) string {
	name := titleNoise.ReplaceAllString(helpers.Base(root), " ")
	return strings.Join(strings.Fields(name), " ")
}

// Group sorts file paths into series and seasons by their episode
// markers. Files without one are movies. Series keep the order their first
// file appeared in.
func Group(paths []string) *Grouping {
	out := &Grouping{}
	byRoot := make(map[string]*SeriesGroup)

	for _, p := range paths {
		ref, ok := ParseEpisode(p)
		if !ok {
			out.Movies = append(out.Movies, p)
			continue
		}

		root := seriesRoot(p)
		key := helpers.NormalizePath(root)
		g, ok := byRoot[key]
		if !ok {
			g = &SeriesGroup{Root: root, Name: SeriesName(root), Seasons: make(map[int]*SeasonUnit)}
			byRoot[key] = g
			out.Series = append(out.Series, g)
		}

		unit, ok := g.Seasons[ref.Season]
		if !ok {
			unit = NewSeasonUnit(ref.Season)
			g.Seasons[ref.Season] = unit
		}
		for _, ep := range ref.Episodes {
			if err := unit.Add(ep, p); err != nil {
				log.Debug().Err(err).Str("path", p).Msg("episode already has a file")
				out.Conflicts = append(out.Conflicts, Conflict{
					Path:     p,
					Existing: unit.Files[ep],
					Season:   ref.Season,
					Episode:  ep,
				})
			}
		}
	}
	return out
}
