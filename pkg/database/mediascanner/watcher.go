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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long a watcher waits after the last change
// before it reports.
const DefaultDebounce = 2 * time.Second

type WatcherOption func(*Watcher)

// WithWatcherClock sets the clock the debounce timer runs on.
func WithWatcherClock(clock clockwork.Clock) WatcherOption {
	return func(w *Watcher) {
		w.clock = clock
	}
}

// WithDebounce sets the quiet period before onChange is called.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches media folders recursively and calls onChange once a
// burst of changes has settled. New folders are watched as they appear.
type Watcher struct {
	clock    clockwork.Clock
	watcher  *fsnotify.Watcher
	onChange func()
	done     chan struct{}
	wg       sync.WaitGroup
	debounce time.Duration
	once     sync.Once
}

func NewWatcher(roots []string, onChange func(), opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		clock:    clockwork.NewRealClock(),
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, root := range roots {
		path, err := FindPath(root)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
		if err := w.addTree(path); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// addTree watches dir and every non-hidden folder below it.
func (w *Watcher) addTree(dir string) error {
	conf := fastwalk.Config{Follow: true}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("failed to watch folder")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) handle(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.Warn().Err(err).Msg("failed to watch new folder")
			}
		}
	}
	log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("media folder changed")
	return true
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer clockwork.Timer
	var fire <-chan time.Time
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = nil
		fire = nil
	}

	for {
		select {
		case <-w.done:
			stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				stop()
				return
			}
			if !w.handle(event) {
				continue
			}
			stop()
			timer = w.clock.NewTimer(w.debounce)
			fire = timer.Chan()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				stop()
				return
			}
			log.Error().Err(err).Msg("file watcher error")
		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	if err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	return nil
}

// Wait blocks until ctx is done, then closes the watcher.
func (w *Watcher) Wait(ctx context.Context) error {
	<-ctx.Done()
	return w.Close()
}
