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
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

type unsortedRow struct {
	Path  string `csv:"path"`
	Root  string `csv:"root"`
	Kind  string `csv:"kind"`
	Added string `csv:"added"`
}

// WriteCSV writes files as CSV with a header row. Times are RFC 3339 in
// UTC, empty when unknown.
func WriteCSV(w io.Writer, files []UnsortedFile) error {
	rows := make([]*unsortedRow, 0, len(files))
	for _, f := range files {
		row := &unsortedRow{Path: f.Path, Root: f.Root, Kind: "movie"}
		if f.TV {
			row.Kind = "tv"
		}
		if !f.Added.IsZero() {
			row.Added = f.Added.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write unsorted files csv: %w", err)
	}
	return nil
}
