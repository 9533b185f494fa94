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

package mediaindex

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyContainsDuringRebuild checks readers racing a rebuild never
// miss a path that is in both the old and the new path set, and the new
// snapshot is complete once published.
func TestPropertyContainsDuringRebuild(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.IntRange(0, 500), 1, 60, rapid.ID[int]).Draw(t, "ids")
		keep := rapid.IntRange(0, len(ids)).Draw(t, "keep")
		added := rapid.IntRange(0, 30).Draw(t, "added")

		var before, after []string
		for i, id := range ids {
			p := fmt.Sprintf("/lib/%d.mkv", id)
			before = append(before, p)
			if i < keep {
				after = append(after, p)
			}
		}
		for i := range added {
			after = append(after, fmt.Sprintf("/lib/new/%d.mkv", i))
		}
		stable := after[:keep]

		var current atomic.Pointer[[]string]
		current.Store(&before)
		idx := New(MoviesIndexName, func(context.Context) ([]string, error) {
			return *current.Load(), nil
		})
		defer idx.Close()

		if _, err := idx.Rebuild().Wait(context.Background()); err != nil {
			t.Fatalf("initial build: %v", err)
		}
		current.Store(&after)

		var wg sync.WaitGroup
		var missed atomic.Int32
		stop := make(chan struct{})
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					for _, p := range stable {
						if !idx.Contains(p) {
							missed.Add(1)
						}
					}
				}
			}()
		}

		snap, err := idx.Rebuild().Wait(context.Background())
		close(stop)
		wg.Wait()
		if err != nil {
			t.Fatalf("rebuild: %v", err)
		}
		if n := missed.Load(); n > 0 {
			t.Fatalf("%d lookups missed a stable path", n)
		}
		if snap.Len() != len(after) {
			t.Fatalf("snapshot has %d paths, want %d", snap.Len(), len(after))
		}
		for _, p := range after {
			if !snap.Contains(p) {
				t.Fatalf("snapshot is missing %s", p)
			}
		}
	})
}
