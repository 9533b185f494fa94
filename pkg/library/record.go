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

// Package library holds the in-memory movie and TV records that scrapers
// populate and the media index is built from.
package library

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindSeason  Kind = "season"
	KindEpisode Kind = "episode"
)

// ImageGroup is a class of artwork whose change is tracked on its own so a
// UI can refresh only what moved.
type ImageGroup string

const (
	ImagePoster ImageGroup = "poster"
	ImageFanart ImageGroup = "fanart"
	ImageBanner ImageGroup = "banner"
)

var imageFields = map[metadata.FieldID]ImageGroup{
	metadata.FieldPoster: ImagePoster,
	metadata.FieldFanart: ImageFanart,
}

// ImageRef points at either a remote URL or a downloaded local file, never
// both: setting one clears the other.
type ImageRef struct {
	URL  string
	Path string
}

// Record is the shared part of every library entry. All methods are safe
// for concurrent use; a writer never exposes a half-applied update.
type Record struct {
	now          func() time.Time
	fields       map[metadata.FieldID]metadata.FieldValue
	changed      map[metadata.FieldID]bool
	images       map[ImageGroup]ImageRef
	imageChanged map[ImageGroup]bool
	paths        []string
	mu           syncutil.RWMutex
	kind         Kind
	id           uuid.UUID
}

func NewRecord(kind Kind) *Record {
	return &Record{
		id:           uuid.New(),
		kind:         kind,
		now:          time.Now,
		fields:       make(map[metadata.FieldID]metadata.FieldValue),
		changed:      make(map[metadata.FieldID]bool),
		images:       make(map[ImageGroup]ImageRef),
		imageChanged: make(map[ImageGroup]bool),
	}
}

func (r *Record) ID() uuid.UUID {
	return r.id
}

// ItemID is the record id as used in logs and scrape sessions.
func (r *Record) ItemID() string {
	return r.id.String()
}

func (r *Record) Kind() Kind {
	return r.kind
}

// AddPath stores the normalized form of p. It reports false when the path
// is empty or already present.
func (r *Record) AddPath(p string) bool {
	norm := helpers.NormalizePath(p)
	if norm == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.paths, norm) {
		return false
	}
	r.paths = append(r.paths, norm)
	return true
}

func (r *Record) RemovePath(p string) bool {
	norm := helpers.NormalizePath(p)

	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.paths, norm)
	if i < 0 {
		return false
	}
	r.paths = slices.Delete(r.paths, i, i+1)
	return true
}

func (r *Record) HasPath(p string) bool {
	norm := helpers.NormalizePath(p)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.paths, norm)
}

func (r *Record) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.paths)
}

// Path returns the first stored path, or an empty string.
func (r *Record) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[0]
}

// ApplyScraped writes a scraped value. An overridden field is left alone
// unless force is set. Values of the wrong kind are rejected. It reports
// whether the record changed.
func (r *Record) ApplyScraped(fv metadata.FieldValue, force bool) bool {
	if !fv.Field.Valid() || !fv.Field.Accepts(fv.Value) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.fields[fv.Field]; ok && cur.Overridden && !force {
		return false
	}

	fv.Overridden = false
	r.setLocked(fv)
	return true
}

// Override stores a manual edit that scrapes will not replace.
func (r *Record) Override(field metadata.FieldID, value metadata.Value) bool {
	if !field.Valid() || !field.Accepts(value) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(metadata.FieldValue{
		Field:      field,
		Value:      value,
		Source:     "user",
		Overridden: true,
	})
	return true
}

// ClearOverride makes the current value eligible for replacement again.
func (r *Record) ClearOverride(field metadata.FieldID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.fields[field]; ok {
		cur.Overridden = false
		r.fields[field] = cur
	}
}

// setLocked stores fv, stamping it only when the caller did not.
func (r *Record) setLocked(fv metadata.FieldValue) {
	if fv.UpdatedAt.IsZero() {
		fv.UpdatedAt = r.now()
	}
	r.fields[fv.Field] = fv
	r.changed[fv.Field] = true

	group, ok := imageFields[fv.Field]
	if !ok {
		return
	}
	url := ""
	if imgs, isImages := fv.Value.(metadata.Images); isImages {
		url = imgs.First().URL
	}
	r.images[group] = ImageRef{URL: url}
	r.imageChanged[group] = true
}

func (r *Record) Field(id metadata.FieldID) (metadata.FieldValue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fv, ok := r.fields[id]
	return fv, ok
}

func (r *Record) IsOverridden(id metadata.FieldID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fields[id].Overridden
}

func (r *Record) Changed(id metadata.FieldID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.changed[id]
}

// ChangedFields lists changed fields in canonical order.
func (r *Record) ChangedFields() []metadata.FieldID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]metadata.FieldID, 0, len(r.changed))
	for _, f := range metadata.AllFields() {
		if r.changed[f] {
			out = append(out, f)
		}
	}
	return out
}

// ClearChanged resets the changed flags of ids, or of every field and image
// group when no id is given.
func (r *Record) ClearChanged(ids ...metadata.FieldID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(ids) == 0 {
		clear(r.changed)
		clear(r.imageChanged)
		return
	}
	for _, id := range ids {
		delete(r.changed, id)
		if group, ok := imageFields[id]; ok {
			delete(r.imageChanged, group)
		}
	}
}

func (r *Record) Image(group ImageGroup) ImageRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.images[group]
}

// SetImageURL points the group at a remote image and forgets any local copy.
func (r *Record) SetImageURL(group ImageGroup, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[group] = ImageRef{URL: url}
	r.imageChanged[group] = true
}

// SetImagePath points the group at a local file and forgets the URL.
func (r *Record) SetImagePath(group ImageGroup, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[group] = ImageRef{Path: path}
	r.imageChanged[group] = true
}

func (r *Record) ImageChanged(group ImageGroup) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.imageChanged[group]
}

// View is a point-in-time copy of a record.
type View struct {
	Fields       map[metadata.FieldID]metadata.FieldValue
	Images       map[ImageGroup]ImageRef
	ImageChanged map[ImageGroup]bool
	Kind         Kind
	Paths        []string
	Changed      []metadata.FieldID
	ID           uuid.UUID
}

// View copies the whole record under one read lock.
func (r *Record) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changed := make([]metadata.FieldID, 0, len(r.changed))
	for _, f := range metadata.AllFields() {
		if r.changed[f] {
			changed = append(changed, f)
		}
	}

	return View{
		ID:           r.id,
		Kind:         r.kind,
		Paths:        slices.Clone(r.paths),
		Fields:       maps.Clone(r.fields),
		Changed:      changed,
		Images:       maps.Clone(r.images),
		ImageChanged: maps.Clone(r.imageChanged),
	}
}

// Title returns the title field as plain text.
func (r *Record) Title() string {
	fv, ok := r.Field(metadata.FieldTitle)
	if !ok || fv.Value == nil {
		return ""
	}
	return fv.Value.String()
}
