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
	"context"
	"fmt"
	"sync/atomic"

	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/extract"
	"golang.org/x/sync/singleflight"
)

// DocKey identifies one fetched page within a session. ItemID is the
// provider's id for the item the page belongs to.
type DocKey struct {
	Source string
	Page   string
	ItemID string
}

func (k DocKey) String() string {
	return k.Source + "\x00" + k.Page + "\x00" + k.ItemID
}

// FetchFunc loads a page body on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// CacheStats counts lookups on a DocumentCache. Joining an in-flight fetch
// counts as a miss without a fetch.
type CacheStats struct {
	Hits     int64
	Misses   int64
	Fetches  int64
	Failures int64
}

// DocumentCache holds the pages fetched during one session. Concurrent
// callers for the same key share a single fetch; the map lock is only held
// around lookups and stores. Failed fetches are not stored.
type DocumentCache struct {
	docs     map[DocKey]*extract.Document
	group    singleflight.Group
	hits     atomic.Int64
	misses   atomic.Int64
	fetches  atomic.Int64
	failures atomic.Int64
	mu       syncutil.Mutex
	closed   bool
}

func NewDocumentCache() *DocumentCache {
	return &DocumentCache{docs: make(map[DocKey]*extract.Document)}
}

func (c *DocumentCache) lookup(key DocKey) (*extract.Document, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrSessionClosed
	}
	doc, ok := c.docs[key]
	return doc, ok, nil
}

// Get returns the cached document for key or fetches it.
func (c *DocumentCache) Get(ctx context.Context, key DocKey, fetch FetchFunc) (*extract.Document, error) {
	doc, ok, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if ok {
		c.hits.Add(1)
		return doc, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// a flight that finished between our lookup and Do already stored it
		if doc, ok, err := c.lookup(key); err != nil || ok {
			return doc, err
		}

		c.fetches.Add(1)
		body, err := fetch(ctx)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}

		doc := extract.NewDocument(body)
		c.mu.Lock()
		if !c.closed {
			c.docs[key] = doc
		}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", key.Source, key.Page, err)
	}

	doc, ok = v.(*extract.Document)
	if !ok {
		return nil, fmt.Errorf("fetch %s/%s: no document", key.Source, key.Page)
	}
	return doc, nil
}

// Len returns the number of stored documents.
func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *DocumentCache) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Fetches:  c.fetches.Load(),
		Failures: c.failures.Load(),
	}
}

// Close drops every document. Later Gets fail with ErrSessionClosed.
func (c *DocumentCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.docs)
}

var threadCounter atomic.Uint64

// Session is one orchestration run for one item. It must not be shared
// across items.
type Session struct {
	cache    *DocumentCache
	ItemID   string
	ThreadID uint64
}

func NewSession(itemID string) *Session {
	return &Session{
		cache:    NewDocumentCache(),
		ItemID:   itemID,
		ThreadID: threadCounter.Add(1),
	}
}

func (s *Session) Cache() *DocumentCache {
	return s.cache
}

// Document returns the page of source for the candidate id.
func (s *Session) Document(
	ctx context.Context,
	source, page, id string,
	fetch FetchFunc,
) (*extract.Document, error) {
	return s.cache.Get(ctx, DocKey{Source: source, Page: page, ItemID: id}, fetch)
}

func (s *Session) Close() {
	s.cache.Close()
}
