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
)

// Task is one requested rebuild. Requests merged into the same build
// share a Task.
type Task struct {
	done chan struct{}
	snap *Snapshot
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) finish(snap *Snapshot, err error) {
	t.snap = snap
	t.err = err
	close(t.done)
}

// Done is closed when the build has finished or failed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the build error once Done is closed, nil before.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Snapshot returns the snapshot the build published, nil before it
// finishes or when it failed.
func (t *Task) Snapshot() *Snapshot {
	select {
	case <-t.done:
		return t.snap
	default:
		return nil
	}
}

// Wait blocks until the build finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (*Snapshot, error) {
	select {
	case <-t.done:
		return t.snap, t.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for index rebuild: %w", ctx.Err())
	}
}
