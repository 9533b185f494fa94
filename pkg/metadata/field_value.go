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

package metadata

import "time"

// FieldValue is the stored state of one field on a record: the value plus
// where it came from.
type FieldValue struct {
	UpdatedAt  time.Time
	Value      Value
	Field      FieldID
	Source     string
	Overridden bool
}

// IsSet reports whether the field holds a non-empty value.
func (fv FieldValue) IsSet() bool {
	return !IsEmpty(fv.Value)
}

// As returns the value as T when it holds one.
func As[T Value](fv FieldValue) (T, bool) {
	v, ok := fv.Value.(T)
	return v, ok
}
