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
	"html"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

// capture is one rule match: the designated value plus every named group.
type capture struct {
	groups map[string]string
	value  string
}

func (c capture) group(name string) string {
	return c.groups[name]
}

func (r *Rule) captures(doc *Document) ([]capture, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Pattern != "" {
		return r.regexCaptures(doc)
	}
	return r.selectorCaptures(doc)
}

func (r *Rule) regexCaptures(doc *Document) ([]capture, error) {
	re, err := r.regexp()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRule, err)
	}

	valueIdx := 0
	switch {
	case r.Group != "":
		valueIdx, err = groupIndex(re, r.Group)
		if err != nil {
			return nil, err
		}
	case re.NumSubexp() > 0:
		valueIdx = 1
	}

	names := re.SubexpNames()
	matches := re.FindAllStringSubmatch(doc.Raw(), -1)
	out := make([]capture, 0, len(matches))
	for _, m := range matches {
		c := capture{value: m[valueIdx], groups: make(map[string]string)}
		for i, name := range names {
			if name != "" {
				c.groups[name] = m[i]
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Rule) selectorCaptures(doc *Document) ([]capture, error) {
	dom, err := doc.DOM()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var out []capture
	dom.Find(r.Selector).Each(func(_ int, s *goquery.Selection) {
		var v string
		if r.Attr != "" {
			attr, ok := s.Attr(r.Attr)
			if !ok {
				return
			}
			v = attr
		} else {
			v = s.Text()
		}
		c := capture{value: v, groups: map[string]string{"value": v}}
		if r.Attr != "" {
			c.groups["url"] = v
		} else {
			c.groups["name"] = v
		}
		out = append(out, c)
	})
	return out, nil
}

func pick(caps []capture, mode MatchMode) []capture {
	if len(caps) == 0 {
		return nil
	}
	switch mode {
	case MatchFirst:
		return caps[:1]
	case MatchLast:
		return caps[len(caps)-1:]
	default:
		return caps
	}
}

// scalar returns the single capture scalar kinds work from, or false when
// the page has no match.
func (r *Rule) scalar(doc *Document) (capture, bool, error) {
	caps, err := r.captures(doc)
	if err != nil {
		return capture{}, false, err
	}
	mode := r.mode(false)
	if mode == MatchAll {
		mode = MatchLast
	}
	selected := pick(caps, mode)
	if len(selected) == 0 {
		return capture{}, false, nil
	}
	return selected[0], true, nil
}

var (
	tagRe     = helpers.CachedMustCompile(`<[^>]*>`)
	integerRe = helpers.CachedMustCompile(`-?\d+`)
	decimalRe = helpers.CachedMustCompile(`-?\d+(?:\.\d+)?`)
	hourMinRe = helpers.CachedMustCompile(`(?i)(\d+)\s*h\s*(\d*)`)
)

// CleanText strips markup, unescapes entities and collapses whitespace.
func CleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Text extracts a text value. No match gives a nil value.
func Text(doc *Document, rule Rule) (metadata.Value, error) {
	c, ok, err := rule.scalar(doc)
	if err != nil || !ok {
		return nil, err
	}
	t := CleanText(c.value)
	if t == "" {
		return nil, nil
	}
	return metadata.Text(t), nil
}

// Number extracts an integer value from the first run of digits in the
// capture.
func Number(doc *Document, rule Rule) (metadata.Value, error) {
	c, ok, err := rule.scalar(doc)
	if err != nil || !ok {
		return nil, err
	}
	text := CleanText(c.value)
	digits := integerRe.FindString(strings.ReplaceAll(text, " ", ""))
	if digits == "" {
		return nil, fmt.Errorf("%w: no integer in %q", ErrParse, text)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if rule.Scale > 0 {
		n = int(math.Round(float64(n) * rule.Scale))
	}
	return metadata.Number(n), nil
}

// ParseDecimal reads a number written with either decimal separator.
func ParseDecimal(s string) (float64, error) {
	text := strings.ReplaceAll(CleanText(s), ",", ".")
	num := decimalRe.FindString(text)
	if num == "" {
		return 0, fmt.Errorf("%w: no number in %q", ErrParse, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return v, nil
}

// Decimal extracts a decimal, multiplied by the rule's scale when set and
// rounded to two places.
func Decimal(doc *Document, rule Rule) (metadata.Value, error) {
	c, ok, err := rule.scalar(doc)
	if err != nil || !ok {
		return nil, err
	}
	v, err := ParseDecimal(c.value)
	if err != nil {
		return nil, err
	}
	if rule.Scale > 0 {
		v *= rule.Scale
	}
	return metadata.Decimal(math.Round(v*100) / 100), nil
}

// List extracts every selected match, optionally splitting each on the
// rule's separator. Duplicates are dropped and order kept.
func List(doc *Document, rule Rule) (metadata.Value, error) {
	caps, err := rule.captures(doc)
	if err != nil {
		return nil, err
	}

	var out metadata.List
	add := func(s string) {
		s = CleanText(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, c := range pick(caps, rule.mode(true)) {
		if rule.Split == "" {
			add(c.value)
			continue
		}
		for _, part := range strings.Split(c.value, rule.Split) {
			add(part)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

var fallbackLayouts = []string{time.DateOnly, "02/01/2006", "2 January 2006", "January 2, 2006"}

// Date extracts a date from year/month/day groups, or parses the value
// with the rule's layout.
func Date(doc *Document, rule Rule) (metadata.Value, error) {
	c, ok, err := rule.scalar(doc)
	if err != nil || !ok {
		return nil, err
	}

	if y := c.group("year"); y != "" {
		year, errY := strconv.Atoi(y)
		month, errM := atoiDefault(c.group("month"), 1)
		day, errD := atoiDefault(c.group("day"), 1)
		if errY != nil || errM != nil || errD != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			return nil, fmt.Errorf("%w: bad date %s-%s-%s", ErrParse, y, c.group("month"), c.group("day"))
		}
		return metadata.NewDate(year, time.Month(month), day), nil
	}

	text := CleanText(c.value)
	layouts := fallbackLayouts
	if rule.Layout != "" {
		layouts = []string{rule.Layout}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return metadata.NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognised date %q", ErrParse, text)
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return n, nil
}

// ParseRuntime reads "1h45min", "01h 45" or a bare minute count.
func ParseRuntime(s string) (int, error) {
	text := CleanText(s)
	if m := hourMinRe.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		return hours*60 + minutes, nil
	}
	digits := integerRe.FindString(text)
	if digits == "" {
		return 0, fmt.Errorf("%w: no runtime in %q", ErrParse, text)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return n, nil
}

// Runtime extracts a running time in minutes.
func Runtime(doc *Document, rule Rule) (metadata.Value, error) {
	c, ok, err := rule.scalar(doc)
	if err != nil || !ok {
		return nil, err
	}

	if h, m := c.group("hour"), c.group("minute"); h != "" || m != "" {
		hours, errH := atoiDefault(h, 0)
		minutes, errM := atoiDefault(m, 0)
		if errH != nil || errM != nil {
			return nil, fmt.Errorf("%w: bad runtime %sh%s", ErrParse, h, m)
		}
		return metadata.Number(hours*60 + minutes), nil
	}
	if m := c.group("minutes"); m != "" {
		minutes, err := atoiDefault(m, 0)
		if err != nil {
			return nil, err
		}
		return metadata.Number(minutes), nil
	}

	minutes, err := ParseRuntime(c.value)
	if err != nil {
		return nil, err
	}
	return metadata.Number(minutes), nil
}

// People extracts cast members from name/role/image groups. Selector rules
// produce names only.
func People(doc *Document, rule Rule, base string) (metadata.Value, error) {
	caps, err := rule.captures(doc)
	if err != nil {
		return nil, err
	}

	var out metadata.People
	for _, c := range pick(caps, rule.mode(true)) {
		name := CleanText(c.group("name"))
		if name == "" {
			name = CleanText(c.value)
		}
		if name == "" {
			continue
		}
		p := metadata.Person{
			Name:     name,
			Role:     CleanText(c.group("role")),
			ImageURL: resolveURL(base, c.group("image")),
		}
		if slices.ContainsFunc(out, func(x metadata.Person) bool { return x.Name == p.Name && x.Role == p.Role }) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Images extracts artwork URLs resolved against base.
func Images(doc *Document, rule Rule, base string) (metadata.Value, error) {
	caps, err := rule.captures(doc)
	if err != nil {
		return nil, err
	}

	var out metadata.Images
	for _, c := range pick(caps, rule.mode(true)) {
		raw := c.group("url")
		if raw == "" {
			raw = c.value
		}
		u := resolveURL(base, raw)
		if u == "" || slices.ContainsFunc(out, func(x metadata.Image) bool { return x.URL == u }) {
			continue
		}
		w, _ := atoiDefault(c.group("width"), 0)
		h, _ := atoiDefault(c.group("height"), 0)
		out = append(out, metadata.Image{URL: u, Width: w, Height: h})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func resolveURL(base, ref string) string {
	ref = html.UnescapeString(strings.TrimSpace(ref))
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == "" || refURL.IsAbs() {
		return refURL.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return refURL.String()
	}
	return baseURL.ResolveReference(refURL).String()
}

// Field runs rule against doc with the extractor matching the field's kind.
func Field(field metadata.FieldID, doc *Document, rule Rule, base string) (metadata.Value, error) {
	switch field.Kind() {
	case metadata.KindText:
		return Text(doc, rule)
	case metadata.KindNumber:
		if field == metadata.FieldRuntime {
			return Runtime(doc, rule)
		}
		return Number(doc, rule)
	case metadata.KindDecimal:
		return Decimal(doc, rule)
	case metadata.KindDate:
		return Date(doc, rule)
	case metadata.KindList:
		return List(doc, rule)
	case metadata.KindPeople:
		return People(doc, rule, base)
	case metadata.KindImages:
		return Images(doc, rule, base)
	default:
		return nil, fmt.Errorf("%w: field %s has no extractor", ErrBadRule, field)
	}
}
