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
	"fmt"
	"regexp"

	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

// RegexCache holds compiled extraction patterns. Rule sets are loaded from
// config, so the same pattern string is compiled once per process no matter
// how many sessions or fields use it.
type RegexCache struct {
	cache map[string]*regexp.Regexp
	mu    syncutil.RWMutex
}

// GlobalRegexCache is shared by the extractors and the filename parsers.
var GlobalRegexCache = NewRegexCache()

func NewRegexCache() *RegexCache {
	return &RegexCache{
		cache: make(map[string]*regexp.Regexp),
	}
}

// Compile returns the cached regexp for pattern, compiling it on first use.
func (rc *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	rc.mu.RLock()
	if re, exists := rc.cache[pattern]; exists {
		rc.mu.RUnlock()
		return re, nil
	}
	rc.mu.RUnlock()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	// another caller may have compiled it while we waited
	if re, exists := rc.cache[pattern]; exists {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile regex pattern %q: %w", pattern, err)
	}

	rc.cache[pattern] = re
	return re, nil
}

// MustCompile is Compile for patterns that are constants in the source.
func (rc *RegexCache) MustCompile(pattern string) *regexp.Regexp {
	re, err := rc.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

func (rc *RegexCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cache = make(map[string]*regexp.Regexp)
}

func (rc *RegexCache) Size() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.cache)
}

func CachedCompile(pattern string) (*regexp.Regexp, error) {
	return GlobalRegexCache.Compile(pattern)
}

func CachedMustCompile(pattern string) *regexp.Regexp {
	return GlobalRegexCache.MustCompile(pattern)
}
