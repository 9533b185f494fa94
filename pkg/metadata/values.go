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

import (
	"strconv"
	"strings"
	"time"
)

// Value is one typed metadata value. Implementations are immutable once
// handed to a record.
type Value interface {
	Kind() Kind
	IsEmpty() bool
	String() string
}

// IsEmpty reports whether v is nil or has no content.
func IsEmpty(v Value) bool {
	return v == nil || v.IsEmpty()
}

type Text string

func (Text) Kind() Kind { return KindText }
func (t Text) IsEmpty() bool { return strings.TrimSpace(string(t)) == "" }
func (t Text) String() string { return string(t) }

type Number int

func (Number) Kind() Kind { return KindNumber }
func (n Number) IsEmpty() bool { return n == 0 }
func (n Number) String() string { return strconv.Itoa(int(n)) }

type Decimal float64

func (Decimal) Kind() Kind { return KindDecimal }
func (d Decimal) IsEmpty() bool { return d == 0 }
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (Date) Kind() Kind { return KindDate }
func (d Date) IsEmpty() bool { return d.IsZero() }
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

type List []string

func (List) Kind() Kind { return KindList }
func (l List) IsEmpty() bool { return len(l) == 0 }
func (l List) String() string {
	return strings.Join(l, ", ")
}

// Person is a cast or crew member.
type Person struct {
	Name     string
	Role     string
	ImageURL string
}

type People []Person

func (People) Kind() Kind { return KindPeople }
func (p People) IsEmpty() bool { return len(p) == 0 }
func (p People) String() string {
	parts := make([]string, 0, len(p))
	for _, person := range p {
		if person.Role != "" {
			parts = append(parts, person.Name+" ("+person.Role+")")
			continue
		}
		parts = append(parts, person.Name)
	}
	return strings.Join(parts, ", ")
}

// Image is a remote artwork reference. Width and Height are zero when the
// provider does not report them.
type Image struct {
	URL    string
	Width  int
	Height int
}

type Images []Image

func (Images) Kind() Kind { return KindImages }
func (i Images) IsEmpty() bool { return len(i) == 0 }
func (i Images) String() string {
	urls := make([]string, 0, len(i))
	for _, img := range i {
		urls = append(urls, img.URL)
	}
	return strings.Join(urls, ", ")
}

// First returns the first image, or a zero Image when there are none.
func (i Images) First() Image {
	if len(i) == 0 {
		return Image{}
	}
	return i[0]
}
