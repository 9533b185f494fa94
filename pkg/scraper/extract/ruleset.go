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
	"maps"

	"github.com/BurntSushi/toml"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
)

// RuleSet maps each field a provider page can fill to its rule.
type RuleSet map[metadata.FieldID]Rule

// ParseRuleSet decodes a TOML document of [field] tables into a RuleSet
// and validates every rule.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var raw map[string]Rule
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}

	rs := make(RuleSet, len(raw))
	for name, rule := range raw {
		field, err := metadata.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRule, err)
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		rs[field] = rule
	}
	return rs, nil
}

// Merge returns a copy of rs with overrides applied. An override without a
// page keeps the page of the rule it replaces.
func (rs RuleSet) Merge(overrides RuleSet) (RuleSet, error) {
	out := maps.Clone(rs)
	if out == nil {
		out = make(RuleSet)
	}
	for field, rule := range overrides {
		if rule.Page == "" {
			rule.Page = rs[field].Page
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("override for %s: %w", field, err)
		}
		out[field] = rule
	}
	return out, nil
}

// Fields lists the fields the set covers in canonical order.
func (rs RuleSet) Fields() []metadata.FieldID {
	var out []metadata.FieldID
	for _, f := range metadata.AllFields() {
		if _, ok := rs[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
