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

package mocks

import (
	"context"
	"slices"

	"github.com/stretchr/testify/mock"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
)

// MockSource is a mock implementation of scraper.Source for testing. Its
// name, methods and fields are fixed at construction; Search and
// ScrapeField go through testify expectations.
type MockSource struct {
	mock.Mock
	name    string
	methods []scraper.SearchMethod
	fields  []metadata.FieldID
}

// NewMockSource creates a mock source declaring the given fields.
func NewMockSource(name string, methods []scraper.SearchMethod, fields ...metadata.FieldID) *MockSource {
	return &MockSource{
		name:    name,
		methods: slices.Clone(methods),
		fields:  slices.Clone(fields),
	}
}

func (m *MockSource) Name() string {
	return m.name
}

func (m *MockSource) SearchMethods() []scraper.SearchMethod {
	return slices.Clone(m.methods)
}

func (m *MockSource) Fields() []metadata.FieldID {
	return slices.Clone(m.fields)
}

// Search mocks a candidate search.
func (m *MockSource) Search(
	ctx context.Context,
	q scraper.Query,
	method scraper.SearchMethod,
) ([]scraper.Candidate, error) {
	args := m.Called(ctx, q, method)
	cands, _ := args.Get(0).([]scraper.Candidate)
	return cands, args.Error(1)
}

// ScrapeField mocks a field scrape.
func (m *MockSource) ScrapeField(
	ctx context.Context,
	field metadata.FieldID,
	id string,
	s *scraper.Session,
) (metadata.Value, error) {
	args := m.Called(ctx, field, id, s)
	v, _ := args.Get(0).(metadata.Value)
	return v, args.Error(1)
}

// SetupField configures the mock to return value for field on candidate id.
func (m *MockSource) SetupField(field metadata.FieldID, id string, value metadata.Value) *mock.Call {
	return m.On("ScrapeField", mock.Anything, field, id, mock.Anything).Return(value, nil)
}

// SetupFieldError configures the mock to fail field on candidate id.
func (m *MockSource) SetupFieldError(field metadata.FieldID, id string, err error) *mock.Call {
	return m.On("ScrapeField", mock.Anything, field, id, mock.Anything).Return(nil, err)
}

// SetupSearch configures the mock to return cands for method.
func (m *MockSource) SetupSearch(method scraper.SearchMethod, cands []scraper.Candidate) *mock.Call {
	return m.On("Search", mock.Anything, mock.Anything, method).Return(cands, nil)
}

// SetupSearchError configures the mock to fail searches with method.
func (m *MockSource) SetupSearchError(method scraper.SearchMethod, err error) *mock.Call {
	return m.On("Search", mock.Anything, mock.Anything, method).Return(nil, err)
}
