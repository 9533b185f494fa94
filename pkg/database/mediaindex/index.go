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

// Package mediaindex keeps in-memory sets of the file paths the library
// already knows, so scans can tell new files from sorted ones. Lookups read
// an immutable snapshot and never block on a rebuild.
package mediaindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

var (
	ErrIndexRebuildFailed = errors.New("media index rebuild failed")
	ErrIndexClosed        = errors.New("media index closed")
)

// PathSource enumerates the paths an index is built from. It is called off
// to the side of readers, once per build.
type PathSource func(ctx context.Context) ([]string, error)

type Option func(*Index)

// WithClock sets the clock used to stamp snapshots.
func WithClock(clock clockwork.Clock) Option {
	return func(i *Index) {
		i.clock = clock
	}
}

// Index is a path set rebuilt in the background. At most one build runs at
// a time; rebuild requests made while one runs are merged into a single
// pending build that starts when the running one finishes.
type Index struct {
	clock      clockwork.Clock
	ctx        context.Context
	source     PathSource
	current    atomic.Pointer[Snapshot]
	cancel     context.CancelFunc
	running    *Task
	pending    *Task
	name       string
	wg         sync.WaitGroup
	mu         syncutil.Mutex
	generation uint64
	closed     bool
}

func New(name string, source PathSource, opts ...Option) *Index {
	ctx, cancel := context.WithCancel(context.Background())
	i := &Index{
		name:   name,
		source: source,
		clock:  clockwork.NewRealClock(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.current.Store(newSnapshot(nil, 0, i.clock.Now()))
	return i
}

func (i *Index) Name() string {
	return i.name
}

// Contains reports whether p is in the current snapshot.
func (i *Index) Contains(p string) bool {
	return i.current.Load().Contains(p)
}

// Snapshot returns the current snapshot.
func (i *Index) Snapshot() *Snapshot {
	return i.current.Load()
}

// Rebuild requests a build and returns its task. It never blocks.
func (i *Index) Rebuild() *Task {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		t := newTask()
		t.finish(nil, ErrIndexClosed)
		return t
	}
	if i.running == nil {
		i.running = newTask()
		i.wg.Add(1)
		go i.run(i.running)
		return i.running
	}
	if i.pending == nil {
		i.pending = newTask()
	}
	return i.pending
}

func (i *Index) run(t *Task) {
	defer i.wg.Done()
	for t != nil {
		snap, err := i.build()
		if err == nil {
			i.current.Store(snap)
		}
		t.finish(snap, err)

		i.mu.Lock()
		t = i.pending
		i.pending = nil
		if i.closed {
			t = nil
		}
		i.running = t
		i.mu.Unlock()
	}
}

func (i *Index) build() (*Snapshot, error) {
	i.mu.Lock()
	i.generation++
	gen := i.generation
	i.mu.Unlock()

	log.Debug().Str("index", i.name).Uint64("generation", gen).Msg("rebuilding media index")

	paths, err := i.source(i.ctx)
	if err == nil {
		err = i.ctx.Err()
	}
	if err != nil {
		if i.ctx.Err() != nil {
			return nil, ErrIndexClosed
		}
		log.Warn().Err(err).Str("index", i.name).Msg("media index rebuild failed, keeping previous snapshot")
		return nil, fmt.Errorf("%w: %s: %w", ErrIndexRebuildFailed, i.name, err)
	}

	snap := newSnapshot(paths, gen, i.clock.Now())
	log.Debug().Str("index", i.name).Uint64("generation", gen).Int("paths", snap.Len()).
		Msg("media index rebuilt")
	return snap, nil
}

// Close stops the index. A pending build fails with ErrIndexClosed, a
// running one is cancelled, and later Rebuild calls fail immediately.
// Contains keeps answering from the last snapshot.
func (i *Index) Close() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	pending := i.pending
	i.pending = nil
	i.mu.Unlock()

	if pending != nil {
		pending.finish(nil, ErrIndexClosed)
	}
	i.cancel()
	i.wg.Wait()
}
