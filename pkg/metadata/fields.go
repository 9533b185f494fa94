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

// Package metadata defines the logical fields a library record carries and
// the typed values scrapers produce for them.
package metadata

import "fmt"

// FieldID names one logical metadata field.
type FieldID string

const (
	FieldTitle         FieldID = "title"
	FieldOriginalTitle FieldID = "original_title"
	FieldYear          FieldID = "year"
	FieldRating        FieldID = "rating"
	FieldDirector      FieldID = "director"
	FieldPlot          FieldID = "plot"
	FieldTagline       FieldID = "tagline"
	FieldCountry       FieldID = "country"
	FieldGenre         FieldID = "genre"
	FieldCast          FieldID = "cast"
	FieldStudio        FieldID = "studio"
	FieldReleaseDate   FieldID = "release_date"
	FieldRuntime       FieldID = "runtime"
	FieldPoster        FieldID = "poster"
	FieldFanart        FieldID = "fanart"
)

// Kind is the value type a field accepts.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDecimal
	KindDate
	KindList
	KindPeople
	KindImages
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindPeople:
		return "people"
	case KindImages:
		return "images"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var fieldKinds = map[FieldID]Kind{
	FieldTitle:         KindText,
	FieldOriginalTitle: KindText,
	FieldYear:          KindNumber,
	FieldRating:        KindDecimal,
	FieldDirector:      KindList,
	FieldPlot:          KindText,
	FieldTagline:       KindText,
	FieldCountry:       KindList,
	FieldGenre:         KindList,
	FieldCast:          KindPeople,
	FieldStudio:        KindList,
	FieldReleaseDate:   KindDate,
	FieldRuntime:       KindNumber,
	FieldPoster:        KindImages,
	FieldFanart:        KindImages,
}

var allFields = []FieldID{
	FieldTitle,
	FieldOriginalTitle,
	FieldYear,
	FieldRating,
	FieldDirector,
	FieldPlot,
	FieldTagline,
	FieldCountry,
	FieldGenre,
	FieldCast,
	FieldStudio,
	FieldReleaseDate,
	FieldRuntime,
	FieldPoster,
	FieldFanart,
}

// AllFields returns every known field in canonical order. The slice is a
// copy and may be modified by the caller.
func AllFields() []FieldID {
	out := make([]FieldID, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField converts a config or CLI name into a FieldID.
func ParseField(name string) (FieldID, error) {
	f := FieldID(name)
	if !f.Valid() {
		return "", fmt.Errorf("unknown metadata field: %q", name)
	}
	return f, nil
}

func (f FieldID) Valid() bool {
	_, ok := fieldKinds[f]
	return ok
}

// Kind returns the value kind the field accepts. Unknown fields report
// KindText.
func (f FieldID) Kind() Kind {
	return fieldKinds[f]
}

// IsImage reports whether the field belongs to an image group whose change
// is tracked separately on a record.
func (f FieldID) IsImage() bool {
	return f.Kind() == KindImages
}

// Accepts reports whether v is of the kind the field holds. A nil value is
// accepted since it clears the field.
func (f FieldID) Accepts(v Value) bool {
	if v == nil {
		return true
	}
	return f.Valid() && v.Kind() == f.Kind()
}
