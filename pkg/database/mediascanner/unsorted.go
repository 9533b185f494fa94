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

package mediascanner

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/mediapath"
)

// Lookup is the part of the media index a scan needs.
type Lookup interface {
	Contains(path string) bool
}

// UnsortedFile is a video file no library record owns yet.
type UnsortedFile struct {
	Added time.Time
	Path  string
	Root  string
	TV    bool
}

// PathSummary describes one watched folder after a scan.
type PathSummary struct {
	Err       error
	Path      string
	FileCount int
	Unsorted  int
}

// ScanResult is the outcome of ScanUnsorted.
type ScanResult struct {
	Files []UnsortedFile
	Paths []PathSummary
}

// Movies returns the unsorted files without an episode marker.
func (r *ScanResult) Movies() []UnsortedFile {
	return r.filter(false)
}

// Episodes returns the unsorted files with an episode marker.
func (r *ScanResult) Episodes() []UnsortedFile {
	return r.filter(true)
}

func (r *ScanResult) filter(tv bool) []UnsortedFile {
	var out []UnsortedFile
	for _, f := range r.Files {
		if f.TV == tv {
			out = append(out, f)
		}
	}
	return out
}

// ScanUnsorted walks every root and collects the files index does not
// contain. A root that cannot be walked is reported in its PathSummary and
// does not stop the others; only cancellation fails the whole scan.
func ScanUnsorted(ctx context.Context, roots []string, index Lookup, exts []string) (*ScanResult, error) {
	result := &ScanResult{}
	for _, root := range roots {
		files, err := GetFiles(ctx, root, exts)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		summary := PathSummary{Path: root, Err: err, FileCount: len(files)}
		if err != nil {
			log.Warn().Err(err).Str("root", root).Msg("failed to scan media path")
		}

		for _, p := range files {
			if index != nil && index.Contains(p) {
				continue
			}
			_, tv := mediapath.ParseEpisode(p)
			f := UnsortedFile{Path: p, Root: root, TV: tv}
			if info, err := os.Stat(p); err == nil {
				f.Added = info.ModTime()
			}
			result.Files = append(result.Files, f)
			summary.Unsorted++
		}
		result.Paths = append(result.Paths, summary)

		log.Debug().Str("root", root).Int("files", summary.FileCount).Int("unsorted", summary.Unsorted).
			Msg("scanned media path")
	}
	return result, nil
}
