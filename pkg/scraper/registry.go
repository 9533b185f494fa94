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

package scraper

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

// Registry holds sources by lower-cased name.
type Registry struct {
	sources map[string]Source
	mu      syncutil.RWMutex
}

func NewRegistry(sources ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds src. Nil sources, empty names and duplicates are rejected.
func (r *Registry) Register(src Source) error {
	if src == nil {
		return errors.New("cannot register nil source")
	}
	key := strings.ToLower(strings.TrimSpace(src.Name()))
	if key == "" {
		return errors.New("cannot register source with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[key]; exists {
		return fmt.Errorf("source %q already registered", key)
	}
	r.sources[key] = src
	return nil
}

func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]
	return src, ok
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Ordered resolves a priority list to sources, skipping repeats. Unknown
// names are reported together in the error while known ones are still
// returned.
func (r *Registry) Ordered(names []string) ([]Source, error) {
	out := make([]Source, 0, len(names))
	seen := make(map[string]bool, len(names))
	var unknown []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		seen[key] = true
		src, ok := r.Get(key)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, src)
	}
	if len(unknown) > 0 {
		return out, fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(unknown, ", "))
	}
	return out, nil
}
