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

// Package mediapath works out where seasons and episodes live on disk:
// season folders from scattered episode files, DVD and Blu-ray layouts,
// missing episodes, and grouping of loose files into series and seasons.
package mediapath

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/library"
)

const (
	dvdFolder    = "VIDEO_TS"
	blurayFolder = "BDMV"
)

// disc folders hold one disc of a multi-disc season: "Disc 1", "DVD2", "D1"
var discFolderRe = helpers.CachedMustCompile(`(?i)^(?:(?:dis[ck]|dvd|bd|blu-?ray)\s*[-_.]?\s*\d*|d\d+)$`)

// SeasonFiles is what the season helpers need from a season record.
type SeasonFiles interface {
	Number() int
	EpisodeFiles() []library.EpisodeFile
}

func markerIndex(segs []string, marker string) int {
	for i := len(segs) - 1; i >= 0; i-- {
		if strings.EqualFold(segs[i], marker) {
			return i
		}
	}
	return -1
}

// IsDVD reports whether p lies inside a VIDEO_TS folder.
func IsDVD(p string) bool {
	_, segs := helpers.SplitPath(p)
	return markerIndex(segs[:max(len(segs)-1, 0)], dvdFolder) >= 0
}

// IsBluRay reports whether p lies inside a BDMV folder.
func IsBluRay(p string) bool {
	_, segs := helpers.SplitPath(p)
	return markerIndex(segs[:max(len(segs)-1, 0)], blurayFolder) >= 0
}

// IsDiscFolder reports whether name looks like a per-disc folder.
func IsDiscFolder(name string) bool {
	return discFolderRe.MatchString(strings.TrimSpace(name))
}

// SeasonDir returns the season folder holding an episode file. Disc
// layouts are cut at their VIDEO_TS or BDMV folder, and at a disc folder
// right above it, so `Season\Disc\VIDEO_TS\file` and
// `Season\Disc\BDMV\STREAM\file` both give `Season`. Any other file gives
// its directory. The path's own separator style is kept.
func SeasonDir(p string) string {
	root, segs := helpers.SplitPath(p)
	if len(segs) == 0 {
		return root
	}
	sep := helpers.Separator(p)

	parents := segs[:len(segs)-1]
	cut := markerIndex(parents, dvdFolder)
	if cut < 0 {
		cut = markerIndex(parents, blurayFolder)
	}
	if cut < 0 {
		return helpers.JoinPath(root, sep, parents)
	}
	if cut > 1 && IsDiscFolder(segs[cut-1]) {
		cut--
	}
	return helpers.JoinPath(root, sep, segs[:cut])
}

// SyntheticSeasonPath is the folder a season would get under seriesPath.
func SyntheticSeasonPath(seriesPath string, seasonNumber int) string {
	root, segs := helpers.SplitPath(seriesPath)
	segs = append(segs, fmt.Sprintf("Season %d", seasonNumber))
	return helpers.JoinPath(root, helpers.Separator(seriesPath), segs)
}

func exists(fsys afero.Fs, p string) bool {
	if p == "" {
		return false
	}
	ok, err := afero.Exists(fsys, p)
	return err == nil && ok
}

// ResolveSeasonPath returns the season folder of the first episode path
// that exists, or `<seriesPath><sep>Season <N>` when none does.
func ResolveSeasonPath(fsys afero.Fs, episodePaths []string, seriesPath string, seasonNumber int) string {
	for _, p := range episodePaths {
		if exists(fsys, p) {
			return SeasonDir(p)
		}
	}
	return SyntheticSeasonPath(seriesPath, seasonNumber)
}

func filePaths(s SeasonFiles) []string {
	files := s.EpisodeFiles()
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

// SeasonPath resolves the folder of season s of the series at seriesPath.
func SeasonPath(fsys afero.Fs, s SeasonFiles, seriesPath string) string {
	return ResolveSeasonPath(fsys, filePaths(s), seriesPath, s.Number())
}

// FirstExistingEpisode returns the first episode file, in episode order,
// that exists on disk.
func FirstExistingEpisode(fsys afero.Fs, s SeasonFiles) string {
	for _, p := range filePaths(s) {
		if exists(fsys, p) {
			return p
		}
	}
	return ""
}

// SeasonName is the name of the folder holding the first existing
// episode, empty when no episode exists.
func SeasonName(fsys afero.Fs, s SeasonFiles) string {
	p := FirstExistingEpisode(fsys, s)
	if p == "" {
		return ""
	}
	return helpers.Base(helpers.Dir(p))
}

// CountMissingEpisodes counts episodes without a path or whose file is
// gone.
func CountMissingEpisodes(fsys afero.Fs, s SeasonFiles) int {
	n := 0
	for _, p := range filePaths(s) {
		if !exists(fsys, p) {
			n++
		}
	}
	return n
}

// HasMissingEpisodes reports whether any episode lacks its file.
func HasMissingEpisodes(fsys afero.Fs, s SeasonFiles) bool {
	return CountMissingEpisodes(fsys, s) > 0
}

// ContainsEpisodesWithFiles reports whether at least one episode file
// exists.
func ContainsEpisodesWithFiles(fsys afero.Fs, s SeasonFiles) bool {
	return FirstExistingEpisode(fsys, s) != ""
}

// IsComplete reports whether episodes 1 to expected all exist on disk.
func IsComplete(fsys afero.Fs, s SeasonFiles, expected int) bool {
	if expected <= 0 {
		return false
	}
	have := make(map[int]bool, expected)
	for _, f := range s.EpisodeFiles() {
		if exists(fsys, f.Path) {
			have[f.Number] = true
		}
	}
	for n := 1; n <= expected; n++ {
		if !have[n] {
			return false
		}
	}
	return true
}
