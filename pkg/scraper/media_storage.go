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

package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/library"
	"github.com/yanfoe/yanfoe-core/pkg/mediapath"
	"github.com/yanfoe/yanfoe-core/pkg/shared/httpclient"
)

// ErrNoMediaPath is returned for a record with no file or folder to store
// artwork next to.
var ErrNoMediaPath = errors.New("record has no media path")

const defaultImageExt = ".jpg"

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ArtworkGroups are the image groups MediaStorage downloads, in order.
var ArtworkGroups = []library.ImageGroup{
	library.ImagePoster,
	library.ImageFanart,
	library.ImageBanner,
}

// Downloader fetches a remote file to a local path.
type Downloader interface {
	DownloadFile(ctx context.Context, args httpclient.DownloadFileArgs) error
}

// MediaStorage stores downloaded artwork next to the media it belongs to,
// using the layout media centers read: "<movie>-poster.jpg" beside a movie
// file, "poster.jpg" in a show folder or a disc folder.
type MediaStorage struct {
	downloader Downloader
}

func NewMediaStorage(d Downloader) *MediaStorage {
	return &MediaStorage{downloader: d}
}

// GetMediaPath returns where the artwork of group goes for a record stored
// at recordPath.
func GetMediaPath(recordPath string, kind library.Kind, group library.ImageGroup, extension string) (string, error) {
	if recordPath == "" {
		return "", ErrNoMediaPath
	}

	extension = strings.ToLower(extension)
	if extension == "" {
		extension = defaultImageExt
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	switch {
	case kind == library.KindSeries || kind == library.KindSeason:
		return filepath.Join(recordPath, string(group)+extension), nil
	case mediapath.IsDVD(recordPath) || mediapath.IsBluRay(recordPath):
		return filepath.Join(mediapath.SeasonDir(recordPath), string(group)+extension), nil
	default:
		base := filepath.Base(recordPath)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(filepath.Dir(recordPath), stem+"-"+string(group)+extension), nil
	}
}

// imageExtension picks the file extension from an artwork URL, falling back
// to .jpg for anything that does not look like an image.
func imageExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultImageExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !imageExts[ext] {
		return defaultImageExt
	}
	return ext
}

// EnsureMediaDirectory creates the folder mediaPath goes in.
func EnsureMediaDirectory(mediaPath string) error {
	if err := os.MkdirAll(filepath.Dir(mediaPath), 0o750); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	return nil
}

// MediaExists checks if a media file already exists
func MediaExists(mediaPath string) (bool, error) {
	_, err := os.Stat(mediaPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat media file: %w", err)
	}
	return true, nil
}

// Download fetches every artwork group of record that points at a URL and
// records the local file on it. A file already on disk is reused unless
// force is set. One failing group does not stop the others.
func (ms *MediaStorage) Download(ctx context.Context, record *library.Record, force bool) ([]library.ImageGroup, error) {
	var (
		stored []library.ImageGroup
		errs   []error
	)
	for _, group := range ArtworkGroups {
		ref := record.Image(group)
		if ref.URL == "" {
			continue
		}
		dest, err := GetMediaPath(record.Path(), record.Kind(), group, imageExtension(ref.URL))
		if err != nil {
			return stored, err
		}

		exists, err := MediaExists(dest)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", group, err))
			continue
		}
		if exists && !force {
			log.Debug().Str("path", dest).Msg("artwork already on disk")
			record.SetImagePath(group, dest)
			stored = append(stored, group)
			continue
		}

		if err := EnsureMediaDirectory(dest); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", group, err))
			continue
		}
		err = ms.downloader.DownloadFile(ctx, httpclient.DownloadFileArgs{
			URL:        ref.URL,
			OutputPath: dest,
			TempPath:   dest + ".part",
		})
		if err != nil {
			log.Warn().Err(err).Str("group", string(group)).Str("url", ref.URL).Msg("artwork download failed")
			errs = append(errs, fmt.Errorf("%s: %w", group, err))
			continue
		}

		log.Info().Str("group", string(group)).Str("path", dest).Msg("artwork downloaded")
		record.SetImagePath(group, dest)
		stored = append(stored, group)
	}
	return stored, errors.Join(errs...)
}
