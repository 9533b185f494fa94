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

package helpers

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzBase checks Base with random paths in either separator style.
func FuzzBase(f *testing.F) {
	f.Add("/movies/Alien (1979)/Alien.mkv")
	f.Add(`C:\TV\Show\Season 1\Show.S01E01.avi`)
	f.Add(`\\nas\media\film.mkv`)
	f.Add("/movies/")
	f.Add("file.mkv")
	f.Add("")
	f.Add("/")
	f.Add(`\`)
	f.Add("///multiple///slashes///")
	f.Add(`C:/mixed\separators/file.mkv`)

	f.Fuzz(func(t *testing.T, path string) {
		result := Base(path)

		if utf8.ValidString(path) && !utf8.ValidString(result) {
			t.Errorf("Invalid UTF-8 in base: %q from path: %q", result, path)
		}
		if strings.ContainsAny(result, `/\`) {
			t.Errorf("Base contains separator: %q from path: %q", result, path)
		}
		if len(result) > len(path) {
			t.Errorf("Base longer than path: input=%d, output=%d", len(path), len(result))
		}
		if result != "" && !strings.HasSuffix(strings.TrimRight(path, `/\`), result) {
			t.Errorf("Base %q is not the tail of %q", result, path)
		}
	})
}

// FuzzDir checks that Dir drops exactly the last segment and keeps the root.
func FuzzDir(f *testing.F) {
	f.Add("/movies/Alien (1979)/Alien.mkv")
	f.Add(`C:\TV\Show\Season 1\VIDEO_TS\VTS_01_1.VOB`)
	f.Add(`\\nas\media\film.mkv`)
	f.Add("/file")
	f.Add("file")
	f.Add("")
	f.Add("/")
	f.Add("relative/dir/")

	f.Fuzz(func(t *testing.T, path string) {
		dir := Dir(path)
		root, segs := SplitPath(path)
		dirRoot, dirSegs := SplitPath(dir)

		if len(segs) == 0 {
			if dir != root {
				t.Errorf("Dir of %q should be its root %q, got %q", path, root, dir)
			}
			return
		}
		if root == "/" && Separator(path) == '\\' {
			return
		}
		if dirRoot != root {
			t.Errorf("Dir changed the root of %q: %q -> %q", path, root, dirRoot)
		}
		if len(dirSegs) != len(segs)-1 {
			t.Errorf("Dir of %q should drop one segment, got %q", path, dir)
		}
	})
}
