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
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

var ErrDuplicateEpisode = errors.New("duplicate episode number")

// Episode is one episode file of a season.
type Episode struct {
	*Record
	seasonNumber int
	number       int
}

func NewEpisode(seasonNumber, number int, path string) *Episode {
	ep := &Episode{
		Record:       NewRecord(KindEpisode),
		seasonNumber: seasonNumber,
		number:       number,
	}
	if path != "" {
		ep.AddPath(path)
	}
	return ep
}

func (e *Episode) SeasonNumber() int {
	return e.seasonNumber
}

func (e *Episode) Number() int {
	return e.number
}

// FilePath is the episode's primary file, empty when it has none.
func (e *Episode) FilePath() string {
	return e.Path()
}

// EpisodeFile pairs an episode number with its primary file path.
type EpisodeFile struct {
	Path   string
	Number int
}

// Season keeps its episodes ordered by episode number.
type Season struct {
	*Record
	episodes []*Episode
	emu      syncutil.RWMutex
	number   int
}

func NewSeason(number int) *Season {
	return &Season{
		Record: NewRecord(KindSeason),
		number: number,
	}
}

func (s *Season) Number() int {
	return s.number
}

// AddEpisode inserts ep in episode order. A second episode with the same
// number is rejected and the first one kept.
func (s *Season) AddEpisode(ep *Episode) error {
	s.emu.Lock()
	defer s.emu.Unlock()

	i, found := slices.BinarySearchFunc(s.episodes, ep.number, func(e *Episode, n int) int {
		return e.number - n
	})
	if found {
		return fmt.Errorf("season %d episode %d: %w", s.number, ep.number, ErrDuplicateEpisode)
	}
	s.episodes = slices.Insert(s.episodes, i, ep)
	return nil
}

func (s *Season) RemoveEpisode(number int) bool {
	s.emu.Lock()
	defer s.emu.Unlock()
	i := slices.IndexFunc(s.episodes, func(e *Episode) bool { return e.number == number })
	if i < 0 {
		return false
	}
	s.episodes = slices.Delete(s.episodes, i, i+1)
	return true
}

func (s *Season) Episode(number int) (*Episode, bool) {
	s.emu.RLock()
	defer s.emu.RUnlock()
	for _, e := range s.episodes {
		if e.number == number {
			return e, true
		}
	}
	return nil, false
}

func (s *Season) Episodes() []*Episode {
	s.emu.RLock()
	defer s.emu.RUnlock()
	return slices.Clone(s.episodes)
}

func (s *Season) EpisodeFiles() []EpisodeFile {
	s.emu.RLock()
	defer s.emu.RUnlock()
	out := make([]EpisodeFile, 0, len(s.episodes))
	for _, e := range s.episodes {
		out = append(out, EpisodeFile{Number: e.number, Path: e.FilePath()})
	}
	return out
}

// ContainsChangedEpisodes reports whether any episode has a changed field.
func (s *Season) ContainsChangedEpisodes() bool {
	for _, e := range s.Episodes() {
		if len(e.ChangedFields()) > 0 {
			return true
		}
	}
	return false
}

// Series groups seasons by number.
type Series struct {
	*Record
	seasons map[int]*Season
	smu     syncutil.RWMutex
}

func NewSeries(root string) *Series {
	s := &Series{
		Record:  NewRecord(KindSeries),
		seasons: make(map[int]*Season),
	}
	if root != "" {
		s.AddPath(root)
	}
	return s
}

// AddSeason returns the season with the given number, creating it first
// if needed.
func (s *Series) AddSeason(number int) *Season {
	s.smu.Lock()
	defer s.smu.Unlock()
	if season, ok := s.seasons[number]; ok {
		return season
	}
	season := NewSeason(number)
	s.seasons[number] = season
	return season
}

func (s *Series) Season(number int) (*Season, bool) {
	s.smu.RLock()
	defer s.smu.RUnlock()
	season, ok := s.seasons[number]
	return season, ok
}

// Seasons returns the seasons ordered by number.
func (s *Series) Seasons() []*Season {
	s.smu.RLock()
	defer s.smu.RUnlock()
	numbers := slices.Sorted(maps.Keys(s.seasons))
	out := make([]*Season, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, s.seasons[n])
	}
	return out
}

// EpisodePaths lists every episode file across all seasons.
func (s *Series) EpisodePaths() []string {
	var out []string
	for _, season := range s.Seasons() {
		for _, ep := range season.Episodes() {
			out = append(out, ep.Paths()...)
		}
	}
	return out
}
