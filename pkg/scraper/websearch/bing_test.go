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

package websearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allocinePrefix = "http://www.allocine.fr/film/fichefilm_gen_cfilm="

var allocineID = regexp.MustCompile(`cfilm=(\d+)\.html`)

type stubFetcher struct {
	err  error
	body []byte
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	s.urls = append(s.urls, u)
	return s.body, s.err
}

func fixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "bing_alien.html"))
	require.NoError(t, err)
	return b
}

func TestParseResults(t *testing.T) {
	t.Parallel()

	results, err := ParseResults(fixture(t), allocinePrefix, allocineID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "62", results[0].ID)
	assert.Equal(t, "Alien, le huitième passager - film 1979 - AlloCiné", results[0].Title)
	assert.Equal(t, "1234", results[1].ID)
	assert.Equal(t, "http://www.allocine.fr/film/fichefilm_gen_cfilm=1234.html", results[1].URL)
}

func TestParseResultsWithoutPattern(t *testing.T) {
	t.Parallel()

	results, err := ParseResults(fixture(t), "https://www.allocine.fr/film/", nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r.ID)
	}
}

func TestParseResultsEmptyPage(t *testing.T) {
	t.Parallel()

	results, err := ParseResults([]byte("<html></html>"), allocinePrefix, allocineID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBingSearch(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{body: fixture(t)}
	b := NewBing(f, "")
	results, err := b.Search(context.Background(), "site:www.allocine.fr Alien 1979", allocinePrefix, allocineID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	require.Len(t, f.urls, 1)
	assert.Equal(t, DefaultBingURL+"?q=site%3Awww.allocine.fr+Alien+1979", f.urls[0])
}

func TestBingSearchFetchError(t *testing.T) {
	t.Parallel()

	errBlocked := errors.New("blocked")
	b := NewBing(&stubFetcher{err: errBlocked}, "http://127.0.0.1/search")
	_, err := b.Search(context.Background(), "Alien", allocinePrefix, allocineID)
	require.ErrorIs(t, err, errBlocked)
}
