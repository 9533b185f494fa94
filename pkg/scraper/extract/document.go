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

package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Document is one fetched page. The DOM is parsed lazily, at most once,
// the first time a selector rule needs it.
type Document struct {
	dom    *goquery.Document
	domErr error
	raw    string
	once   sync.Once
}

func NewDocument(body []byte) *Document {
	return &Document{raw: string(body)}
}

func (d *Document) Raw() string {
	return d.raw
}

func (d *Document) Bytes() []byte {
	return []byte(d.raw)
}

func (d *Document) Len() int {
	return len(d.raw)
}

// DOM returns the parsed HTML tree.
func (d *Document) DOM() (*goquery.Document, error) {
	d.once.Do(func() {
		d.dom, d.domErr = goquery.NewDocumentFromReader(strings.NewReader(d.raw))
		if d.domErr != nil {
			d.domErr = fmt.Errorf("failed to parse html: %w", d.domErr)
		}
	})
	return d.dom, d.domErr
}
