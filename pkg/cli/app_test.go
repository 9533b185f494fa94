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

package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yanfoe/yanfoe-core/pkg/config"
	"github.com/yanfoe/yanfoe-core/pkg/database/mediascanner"
	"github.com/yanfoe/yanfoe-core/pkg/library"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
	"github.com/yanfoe/yanfoe-core/pkg/testing/mocks"
)

// lockedBuffer lets a test read output a background command is writing.
type lockedBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

// lineFields splits output into whitespace separated columns per line.
func lineFields(out string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			lines = append(lines, f)
		}
	}
	return lines
}

func TestAppScan(t *testing.T) {
	t.Parallel()

	movies := t.TempDir()
	tv := t.TempDir()
	writeFiles(t, movies, "Alien (1979)/Alien.mkv", "notes.txt", ".hidden/Secret.mkv")
	writeFiles(t, tv, "The Expanse/Season 1/The.Expanse.S01E02.mkv")

	cfg := newTestConfig(t)
	cfg.SetMoviePaths([]string{movies})
	cfg.SetTVPaths([]string{tv, filepath.Join(tv, "missing")})

	var out bytes.Buffer
	app := &App{Config: cfg, Library: library.New(), Out: &out}
	require.NoError(t, app.Scan(t.Context()))

	got := out.String()
	assert.Contains(t, got, "Unsorted Movies (1)")
	assert.Contains(t, got, "Unsorted TV (1)")
	assert.Contains(t, got, filepath.Join(movies, "Alien (1979)", "Alien.mkv"))
	assert.Contains(t, got, filepath.Join(tv, "The Expanse", "Season 1", "The.Expanse.S01E02.mkv"))
	assert.NotContains(t, got, "Secret.mkv")
	assert.NotContains(t, got, "notes.txt")

	lines := lineFields(got)
	require.NotEmpty(t, lines)
	assert.Equal(t, []string{"PATH", "FILES", "UNSORTED", "ERROR"}, lines[0])
	assert.Equal(t, []string{movies, "1", "1"}, lines[1])
	assert.Equal(t, []string{tv, "1", "1"}, lines[2])
	assert.Greater(t, len(lines[3]), 3, "missing root reports its error")
}

func TestAppScanSkipsKnownFiles(t *testing.T) {
	t.Parallel()

	movies := t.TempDir()
	writeFiles(t, movies, "Alien.mkv", "Aliens.mkv")

	cfg := newTestConfig(t)
	cfg.SetMoviePaths([]string{movies})

	lib := library.New()
	lib.AddMovie(library.NewMovie(filepath.Join(movies, "Alien.mkv")))

	var out bytes.Buffer
	app := &App{Config: cfg, Library: lib, Out: &out}
	require.NoError(t, app.Scan(t.Context()))

	assert.Contains(t, out.String(), "Unsorted Movies (1)")
	assert.Contains(t, out.String(), filepath.Join(movies, "Aliens.mkv"))
	assert.NotContains(t, out.String(), filepath.Join(movies, "Alien.mkv")+" ")
}

func TestAppExport(t *testing.T) {
	t.Parallel()

	movies := t.TempDir()
	writeFiles(t, movies, "Alien.mkv", "The.Expanse.S01E02.mkv")

	cfg := newTestConfig(t)
	cfg.SetMoviePaths([]string{movies})

	dest := filepath.Join(t.TempDir(), "unsorted.csv")
	app := &App{Config: cfg, Library: library.New(), Out: &bytes.Buffer{}}
	require.NoError(t, app.Export(t.Context(), dest))

	f, err := os.Open(dest) //nolint:gosec // test file
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"path", "root", "kind", "added"}, rows[0])
	assert.Equal(t, filepath.Join(movies, "Alien.mkv"), rows[1][0])
	assert.Equal(t, "movie", rows[1][2])
	assert.Equal(t, "tv", rows[2][2])
}

func TestAppExportBadDestination(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	app := &App{Config: cfg, Library: library.New(), Out: &bytes.Buffer{}}
	err := app.Export(t.Context(), filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
}

func TestAppWatchRescans(t *testing.T) {
	t.Parallel()

	movies := t.TempDir()
	writeFiles(t, movies, "Alien.mkv")

	cfg := newTestConfig(t)
	cfg.SetMoviePaths([]string{movies})

	out := &lockedBuffer{}
	app := &App{
		Config:         cfg,
		Library:        library.New(),
		Out:            out,
		WatcherOptions: []mediascanner.WatcherOption{mediascanner.WithDebounce(20 * time.Millisecond)},
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Unsorted Movies (1)")
	}, 2*time.Second, 10*time.Millisecond)

	writeFiles(t, movies, "Aliens.mkv")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Unsorted Movies (2)")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func newSearchApp(t *testing.T, sources ...scraper.Source) (*App, *bytes.Buffer) {
	t.Helper()
	reg, err := scraper.NewRegistry(sources...)
	require.NoError(t, err)
	var out bytes.Buffer
	return &App{Config: newTestConfig(t), Registry: reg, Library: library.New(), Out: &out}, &out
}

func TestAppSearchPrintsProvenance(t *testing.T) {
	t.Parallel()

	allocine := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing},
		metadata.FieldTitle, metadata.FieldYear)
	allocine.SetupSearch(scraper.MethodBing, []scraper.Candidate{{ID: "62", Title: "Alien", Year: 1979}})
	allocine.SetupField(metadata.FieldTitle, "62", metadata.Text("Alien, le huitième passager"))
	allocine.SetupField(metadata.FieldYear, "62", metadata.Number(1979))

	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative},
		metadata.FieldYear, metadata.FieldPlot)
	tmdb.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "movie/348", Title: "Alien", Year: 1979}})
	tmdb.SetupField(metadata.FieldPlot, "movie/348", metadata.Text("In space\nno one can hear you scream."))

	app, out := newSearchApp(t, allocine, tmdb)
	require.NoError(t, app.Search(t.Context(), SearchRequest{Title: "Alien", Year: 1979}))

	lines := lineFields(out.String())
	assert.Contains(t, lines, []string{"id", "allocine", "62"})
	assert.Contains(t, lines, []string{"id", "tmdb", "movie/348"})
	assert.Contains(t, lines, []string{"title", "allocine", "Alien,", "le", "huitième", "passager"})
	assert.Contains(t, lines, []string{"year", "allocine", "1979"})
	assert.Contains(t, lines, []string{"plot", "tmdb", "In", "space", "no", "one", "can", "hear", "you", "scream."})
	assert.Contains(t, lines, []string{"cast", "-"})

	allocine.AssertExpectations(t)
	tmdb.AssertExpectations(t)
	tmdb.AssertNotCalled(t, "ScrapeField", mock.Anything, metadata.FieldYear, mock.Anything, mock.Anything)
}

func TestAppSearchTVUsesTVSources(t *testing.T) {
	t.Parallel()

	allocine := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing}, metadata.FieldTitle)
	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	tmdb.On("Search", mock.Anything, mock.MatchedBy(func(q scraper.Query) bool {
		return q.Kind == scraper.MediaTV && q.Title == "The Expanse"
	}), scraper.MethodNative).Return([]scraper.Candidate{{ID: "tv/63639", Title: "The Expanse"}}, nil)
	tmdb.SetupField(metadata.FieldTitle, "tv/63639", metadata.Text("The Expanse"))

	app, out := newSearchApp(t, allocine, tmdb)
	require.NoError(t, app.Search(t.Context(), SearchRequest{Title: "The Expanse", TV: true}))

	assert.Contains(t, lineFields(out.String()), []string{"title", "tmdb", "The", "Expanse"})
	tmdb.AssertExpectations(t)
	allocine.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppSearchUnitsRunTogether(t *testing.T) {
	t.Parallel()

	var arrived atomic.Int32
	var timedOut atomic.Bool
	together := make(chan struct{})
	meet := func(mock.Arguments) {
		if arrived.Add(1) == 2 {
			close(together)
		}
		select {
		case <-together:
		case <-time.After(2 * time.Second):
			timedOut.Store(true)
		}
	}

	allocine := mocks.NewMockSource("allocine", []scraper.SearchMethod{scraper.MethodBing})
	allocine.SetupSearch(scraper.MethodBing, []scraper.Candidate{{ID: "62", Title: "Alien"}}).Run(meet)
	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative})
	tmdb.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "movie/348", Title: "Alien"}}).Run(meet)

	defaults := config.BaseDefaults
	defaults.Scraper.FieldWorkers = 1
	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)

	app, _ := newSearchApp(t, allocine, tmdb)
	app.Config = cfg
	require.NoError(t, app.Search(t.Context(), SearchRequest{Title: "Alien"}))
	assert.False(t, timedOut.Load(), "field_workers must not bound the search fan-out")
}

func TestAppSearchNoMatch(t *testing.T) {
	t.Parallel()

	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative}, metadata.FieldTitle)
	tmdb.On("Search", mock.Anything, mock.Anything, scraper.MethodNative).
		Return(nil, errors.New("boom"))

	app, _ := newSearchApp(t, tmdb)
	app.Config.SetMovieSources([]string{"tmdb"})
	err := app.Search(t.Context(), SearchRequest{Title: "Nothing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrNoIdentity)
	assert.ErrorIs(t, err, scraper.ErrSearchFailed)
}

func TestAppSearchNoSources(t *testing.T) {
	t.Parallel()

	app, _ := newSearchApp(t)
	app.Config.SetMovieSources([]string{"imdb"})
	err := app.Search(t.Context(), SearchRequest{Title: "Alien"})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestAppSearchDownloadsArtwork(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	tmdb := mocks.NewMockSource("tmdb", []scraper.SearchMethod{scraper.MethodNative},
		metadata.FieldTitle, metadata.FieldPoster)
	tmdb.SetupSearch(scraper.MethodNative, []scraper.Candidate{{ID: "movie/348", Title: "Alien"}})
	tmdb.SetupField(metadata.FieldTitle, "movie/348", metadata.Text("Alien"))
	tmdb.SetupField(metadata.FieldPoster, "movie/348", metadata.Images{{URL: srv.URL + "/poster.jpg"}})

	app, out := newSearchApp(t, tmdb)
	app.Config.SetMovieSources([]string{"tmdb"})
	app.Artwork = NewArtworkStorage(app.Config, nil)

	dir := t.TempDir()
	file := filepath.Join(dir, "Alien.mkv")
	require.NoError(t, app.Search(t.Context(), SearchRequest{Title: "Alien", File: file}))

	poster := filepath.Join(dir, "Alien-poster.jpg")
	assert.FileExists(t, poster)
	assert.Contains(t, lineFields(out.String()), []string{"poster", "file", poster})
}
