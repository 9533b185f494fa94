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
	"path/filepath"
	"regexp"
	"strings"
)

// Library files written on Windows are shared with other hosts, so a path
// with a drive letter or UNC prefix keeps its backslash form everywhere
// instead of being run through the host's filepath rules.
var windowsPathRe = regexp.MustCompile(`^(?:[A-Za-z]:(?:[\\/]|$)|\\\\)`)

// IsWindowsPath reports whether p has a drive letter or UNC prefix.
func IsWindowsPath(p string) bool {
	return windowsPathRe.MatchString(p)
}

// Separator returns the separator style p is written in. Mixed or
// separator-free paths fall back to the Windows style for Windows paths and
// to the host separator otherwise.
func Separator(p string) byte {
	hasBack := strings.Contains(p, `\`)
	hasFwd := strings.Contains(p, "/")
	switch {
	case hasBack && !hasFwd:
		return '\\'
	case hasFwd && !hasBack:
		return '/'
	case IsWindowsPath(p):
		return '\\'
	default:
		return filepath.Separator
	}
}

func isSep(r rune) bool {
	return r == '/' || r == '\\'
}

// SplitPath splits p on both separators. Root is "/" for a POSIX absolute
// path, `\\` for a UNC path and empty otherwise; a drive letter stays as the
// first segment. Empty segments are dropped.
func SplitPath(p string) (root string, segments []string) {
	switch {
	case strings.HasPrefix(p, `\\`):
		root = `\\`
	case strings.HasPrefix(p, "/"):
		root = "/"
	}
	return root, strings.FieldsFunc(p, isSep)
}

// JoinPath is the inverse of SplitPath using sep between segments.
func JoinPath(root string, sep byte, segments []string) string {
	joined := strings.Join(segments, string(sep))
	if root == "" {
		return joined
	}
	if root == "/" && sep == '\\' {
		root = `\`
	}
	return root + joined
}

// Base returns the last segment of p regardless of its separator style.
func Base(p string) string {
	_, segs := SplitPath(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Dir returns p without its last segment, keeping p's separator style.
func Dir(p string) string {
	root, segs := SplitPath(p)
	if len(segs) == 0 {
		return root
	}
	return JoinPath(root, Separator(p), segs[:len(segs)-1])
}

// NormalizePath returns the canonical absolute form used as a library and
// index key. Windows paths are cleaned segment by segment with backslashes;
// everything else goes through filepath.Abs on the host.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	if !IsWindowsPath(p) {
		cleaned := filepath.Clean(p)
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return cleaned
		}
		return abs
	}

	root, segs := SplitPath(p)
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		// Windows drops trailing spaces from names
		seg = strings.TrimRight(seg, " ")
		switch {
		case seg == "" || seg == ".":
			continue
		case seg == "..":
			// never climb above the drive or UNC share
			minLen := 1
			if root == `\\` {
				minLen = 2
			}
			if len(out) > minLen {
				out = out[:len(out)-1]
			}
		case i == 0 && root == "" && len(seg) == 2 && seg[1] == ':':
			out = append(out, strings.ToUpper(seg[:1])+":")
		default:
			out = append(out, seg)
		}
	}

	if root == "" && len(out) == 1 {
		return out[0] + `\`
	}
	return JoinPath(root, '\\', out)
}

// PathHasPrefix reports whether p lies inside dir (or equals it), comparing
// normalized segments so separator style does not matter.
func PathHasPrefix(p, dir string) bool {
	pr, ps := SplitPath(NormalizePath(p))
	dr, ds := SplitPath(NormalizePath(dir))
	if pr != dr || len(ds) > len(ps) {
		return false
	}
	for i := range ds {
		if !strings.EqualFold(ps[i], ds[i]) {
			return false
		}
	}
	return true
}
