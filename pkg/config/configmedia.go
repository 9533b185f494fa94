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

package config

import (
	"slices"
	"strings"
)

var defaultVideoExtensions = []string{
	".avi", ".divx", ".iso", ".m2ts", ".m4v", ".mkv", ".mov", ".mp4",
	".mpeg", ".mpg", ".ogm", ".ts", ".vob", ".webm", ".wmv",
}

type Media struct {
	MoviePaths      []string `toml:"movie_paths,omitempty,multiline"`
	TVPaths         []string `toml:"tv_paths,omitempty,multiline"`
	VideoExtensions []string `toml:"video_extensions,omitempty" validate:"dive,startswith=."`
}

func (c *Instance) MoviePaths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Media.MoviePaths)
}

func (c *Instance) SetMoviePaths(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Media.MoviePaths = slices.Clone(paths)
}

func (c *Instance) TVPaths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Media.TVPaths)
}

func (c *Instance) SetTVPaths(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Media.TVPaths = slices.Clone(paths)
}

// MediaPaths returns the movie paths followed by the TV paths, without
// duplicates.
func (c *Instance) MediaPaths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, p := range append(slices.Clone(c.vals.Media.MoviePaths), c.vals.Media.TVPaths...) {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// VideoExtensions returns the lower-cased file extensions scans look for.
func (c *Instance) VideoExtensions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exts := c.vals.Media.VideoExtensions
	if len(exts) == 0 {
		exts = defaultVideoExtensions
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, strings.ToLower(e))
	}
	return out
}
