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

// Package extract turns fetched provider pages into typed metadata values
// using declarative rules: a regular expression with named capture groups,
// or a CSS selector.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
)

var (
	ErrBadRule = errors.New("bad extraction rule")
	ErrParse   = errors.New("unparsable extracted value")
)

// MatchMode selects which of several matches a rule keeps.
type MatchMode string

const (
	MatchFirst MatchMode = "first"
	MatchLast  MatchMode = "last"
	MatchAll   MatchMode = "all"
)

// Rule describes where one field lives on one provider page. Exactly one of
// Pattern or Selector is set.
//
// Pattern rules run against the raw page. Group names the capture holding
// the value; when empty the first capture group is used, or the whole
// match for a pattern without groups. Multi-part kinds read their parts
// from fixed group names: year/month/day for dates, hour/minute (or
// minutes) for runtimes, name/role/image for people, url/width/height for
// images.
type Rule struct {
	Page       string    `toml:"page" validate:"required"`
	Pattern    string    `toml:"pattern" validate:"required_without=Selector,excluded_with=Selector"`
	Group      string    `toml:"group"`
	Selector   string    `toml:"selector" validate:"required_without=Pattern"`
	Attr       string    `toml:"attr"`
	Match      MatchMode `toml:"match" validate:"omitempty,oneof=first last all"`
	Layout     string    `toml:"layout"`
	Split      string    `toml:"split"`
	Scale      float64   `toml:"scale" validate:"gte=0"`
	IgnoreCase bool      `toml:"ignore_case"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the rule's shape and that its pattern compiles.
func (r *Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRule, err)
	}
	if r.Pattern == "" {
		return nil
	}
	re, err := r.regexp()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRule, err)
	}
	if r.Group != "" {
		if _, err := groupIndex(re, r.Group); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rule) regexp() (*regexp.Regexp, error) {
	pattern := r.Pattern
	if r.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := helpers.CachedCompile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule pattern: %w", err)
	}
	return re, nil
}

// mode returns the effective match mode. Kinds holding several values
// default to every match, scalars to the last one.
func (r *Rule) mode(multi bool) MatchMode {
	if r.Match != "" {
		return r.Match
	}
	if multi {
		return MatchAll
	}
	return MatchLast
}

func groupIndex(re *regexp.Regexp, group string) (int, error) {
	if n, err := strconv.Atoi(group); err == nil {
		if n < 0 || n > re.NumSubexp() {
			return 0, fmt.Errorf("%w: group %d out of range", ErrBadRule, n)
		}
		return n, nil
	}
	idx := re.SubexpIndex(group)
	if idx < 0 {
		return 0, fmt.Errorf("%w: no capture group named %q", ErrBadRule, group)
	}
	return idx, nil
}
