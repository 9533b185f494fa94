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

	"pgregory.net/rapid"
)

// ============================================================================
// NormalizePath Property Tests
// ============================================================================

// TestPropertyNormalizePathIdempotent verifies normalizing twice gives same result.
func TestPropertyNormalizePathIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		path := rapid.StringMatching(`[a-zA-Z0-9_\-./\\]{0,50}`).Draw(t, "path")

		once := NormalizePath(path)
		twice := NormalizePath(once)

		if once != twice {
			t.Fatalf("Not idempotent: first=%q, second=%q", once, twice)
		}
	})
}

// TestPropertyNormalizeWindowsPathIdempotent covers the drive letter branch.
func TestPropertyNormalizeWindowsPathIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		drive := rapid.StringMatching(`[a-zA-Z]`).Draw(t, "drive")
		rest := rapid.StringMatching(`[a-zA-Z0-9_\-./\\ ]{0,40}`).Draw(t, "rest")
		path := drive + `:\` + rest

		once := NormalizePath(path)
		twice := NormalizePath(once)

		if once != twice {
			t.Fatalf("Not idempotent: first=%q, second=%q", once, twice)
		}
		if strings.Contains(once, "/") {
			t.Fatalf("Windows path kept forward slash: %q", once)
		}
		if !IsWindowsPath(once) {
			t.Fatalf("Normalized path lost its drive: %q", once)
		}
	})
}

// ============================================================================
// SplitPath / JoinPath Property Tests
// ============================================================================

// TestPropertySplitPathNoEmptySegments verifies separators never leak into segments.
func TestPropertySplitPathNoEmptySegments(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		path := rapid.StringMatching(`[a-zA-Z0-9/\\]{0,50}`).Draw(t, "path")

		_, segs := SplitPath(path)
		for _, s := range segs {
			if s == "" || strings.ContainsAny(s, `/\`) {
				t.Fatalf("Bad segment %q in %q", s, path)
			}
		}
	})
}

// TestPropertyJoinSplitRoundTrip verifies split then join keeps the segments.
func TestPropertyJoinSplitRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		segs := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z0-9 ]{1,10}`), 1, 6).Draw(t, "segs")
		sep := rapid.SampledFrom([]byte{'/', '\\'}).Draw(t, "sep")

		joined := JoinPath("", sep, segs)
		_, got := SplitPath(joined)

		if strings.Join(got, "|") != strings.Join(segs, "|") {
			t.Fatalf("Round trip mismatch: %v vs %v", got, segs)
		}
	})
}

// ============================================================================
// NormalizeTitle Property Tests
// ============================================================================

// TestPropertyNormalizeTitleCollapsed verifies output is trimmed with single spaces.
func TestPropertyNormalizeTitleCollapsed(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")

		got := NormalizeTitle(title)

		if strings.TrimSpace(got) != got {
			t.Fatalf("Untrimmed output %q", got)
		}
		if strings.Contains(got, "  ") {
			t.Fatalf("Double space in %q", got)
		}
	})
}
