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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/config"
	"github.com/yanfoe/yanfoe-core/pkg/database/mediaindex"
	"github.com/yanfoe/yanfoe-core/pkg/database/mediascanner"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
	"github.com/yanfoe/yanfoe-core/pkg/library"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
)

// ErrNoSources is returned when none of the configured source names is
// registered.
var ErrNoSources = errors.New("no scrape sources enabled")

// App runs the CLI commands against one loaded config.
type App struct {
	Config   *config.Instance
	Registry *scraper.Registry
	Library  *library.Library
	Out      io.Writer
	// Artwork downloads images next to the searched file when set.
	Artwork *scraper.MediaStorage
	// WatcherOptions are passed to the media path watcher.
	WatcherOptions []mediascanner.WatcherOption
}

// Scan prints the unsorted files of every media path.
func (a *App) Scan(ctx context.Context) error {
	result, err := a.scan(ctx)
	if err != nil {
		return err
	}
	return a.printScan(result)
}

func (a *App) scan(ctx context.Context) (*mediascanner.ScanResult, error) {
	idx := mediaindex.NewMediaIndex(a.Library)
	defer idx.Close()

	movies, tv := idx.RebuildAll()
	if err := mediaindex.Wait(ctx, movies, tv); err != nil {
		return nil, fmt.Errorf("failed to build media index: %w", err)
	}

	result, err := mediascanner.ScanUnsorted(ctx, a.Config.MediaPaths(), idx, a.Config.VideoExtensions())
	if err != nil {
		return nil, fmt.Errorf("failed to scan media paths: %w", err)
	}
	return result, nil
}

func (a *App) printScan(result *mediascanner.ScanResult) error {
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tFILES\tUNSORTED\tERROR")
	for _, p := range result.Paths {
		errText := ""
		if p.Err != nil {
			errText = p.Err.Error()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.Path, p.FileCount, p.Unsorted, errText)
	}
	_, _ = fmt.Fprintln(tw)

	printGroup := func(title string, files []mediascanner.UnsortedFile) {
		_, _ = fmt.Fprintf(tw, "%s (%d)\n", title, len(files))
		for _, f := range files {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", f.Path, f.Added.Format(time.DateTime))
		}
	}
	printGroup("Unsorted Movies", result.Movies())
	printGroup("Unsorted TV", result.Episodes())

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write scan result: %w", err)
	}
	return nil
}

// Export scans the media paths and writes the unsorted files to path.
func (a *App) Export(ctx context.Context, path string) error {
	result, err := a.scan(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304 - path given on the command line
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := mediascanner.WriteCSV(f, result.Files); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to export unsorted files: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	log.Info().Str("path", path).Int("files", len(result.Files)).Msg("exported unsorted files")
	return nil
}

// Watch scans once, then again after every settled change under the media
// paths, until ctx ends.
func (a *App) Watch(ctx context.Context) error {
	if err := a.Scan(ctx); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	w, err := mediascanner.NewWatcher(a.Config.MediaPaths(), func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, a.WatcherOptions...)
	if err != nil {
		return fmt.Errorf("failed to watch media paths: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug().Msg("media paths changed, rescanning")
			if err := a.Scan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("rescan failed")
			}
		}
	}
}

// SearchRequest is one -search invocation. File, when set, is the movie
// file or show folder the result belongs to.
type SearchRequest struct {
	Title string
	File  string
	Year  int
	TV    bool
}

// Search resolves the title on the enabled sources, populates a fresh
// record and prints every set field with the source it came from.
func (a *App) Search(ctx context.Context, req SearchRequest) error {
	kind, names := scraper.MediaMovie, a.Config.MovieSources()
	if req.TV {
		kind, names = scraper.MediaTV, a.Config.TVSources()
	}

	sources, err := a.Registry.Ordered(names)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unknown sources")
	}
	if len(sources) == 0 {
		return ErrNoSources
	}

	methods := make([]scraper.SearchMethod, 0, len(a.Config.SearchMethods()))
	for _, m := range a.Config.SearchMethods() {
		methods = append(methods, scraper.SearchMethod(strings.ToLower(m)))
	}
	picker, err := scraper.NewPicker(a.Config.AutoPick(), a.Config.MinSimilarity())
	if err != nil {
		return fmt.Errorf("failed to create picker: %w", err)
	}

	search := scraper.NewSearchOrchestrator(sources, scraper.SearchOptions{Methods: methods})
	fields := scraper.NewFieldOrchestrator(sources, scraper.FieldOptions{
		Priorities:       a.Config.FieldPriorities(),
		Workers:          a.Config.FieldWorkers(),
		FallbackOnAbsent: a.Config.FallbackOnAbsent(),
	})
	runner := scraper.NewBatchRunner(search, fields, scraper.BatchOptions{
		Picker:  picker,
		Workers: a.Config.ItemWorkers(),
	})

	var record *library.Record
	var target scraper.Target
	if req.TV {
		s := library.NewSeries(req.File)
		record, target = s.Record, s
	} else {
		var paths []string
		if req.File != "" {
			paths = append(paths, req.File)
		}
		m := library.NewMovie(paths...)
		record, target = m.Record, m
	}

	results, err := runner.Run(ctx, []scraper.Item{{
		Target: target,
		Query:  scraper.Query{Title: req.Title, Year: req.Year, Kind: kind},
	}})
	if err != nil {
		return fmt.Errorf("search aborted: %w", err)
	}
	res := results[0]
	if res.Err != nil {
		return fmt.Errorf("failed to scrape %q: %w", req.Title, res.Err)
	}

	if req.File != "" && a.Artwork != nil {
		if _, err := a.Artwork.Download(ctx, record, false); err != nil {
			log.Warn().Err(err).Str("file", req.File).Msg("some artwork could not be downloaded")
		}
	}
	return a.printRecord(record, res)
}

func (a *App) printRecord(record *library.Record, res scraper.ItemResult) error {
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	for _, source := range helpers.AlphaMapKeys(map[string]string(res.Identity)) {
		_, _ = fmt.Fprintf(tw, "id\t%s\t%s\n", source, res.Identity[source])
	}

	view := record.View()
	for _, field := range metadata.AllFields() {
		fv, ok := view.Fields[field]
		if !ok || !fv.IsSet() {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", field, fv.Source, oneLine(fv.Value.String()))
	}
	for _, group := range scraper.ArtworkGroups {
		if ref := record.Image(group); ref.Path != "" {
			_, _ = fmt.Fprintf(tw, "%s\tfile\t%s\n", group, ref.Path)
		}
	}
	if res.Report != nil {
		for _, field := range res.Report.Unset() {
			_, _ = fmt.Fprintf(tw, "%s\t-\t\n", field)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
