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

// Package mediascanner walks the watched media folders, reports the video
// files the library does not know yet and rescans when the folders change.
package mediascanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
)

var ErrNotDirectory = errors.New("not a directory")

// DefaultVideoExtensions is used when a scan is given no extensions.
var DefaultVideoExtensions = []string{
	".avi", ".divx", ".iso", ".m2ts", ".m4v", ".mkv", ".mov", ".mp4",
	".mpeg", ".mpg", ".ogm", ".ts", ".vob", ".webm", ".wmv",
}

// FindPath case-insensitively finds a file or folder at a path and returns
// it absolute, spelled the way the filesystem spells it. An exact match is
// preferred over a case-insensitive one.
func FindPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to make path absolute: %w", err)
	}

	volume := filepath.VolumeName(abs)
	current := volume + string(filepath.Separator)
	rest := strings.TrimPrefix(abs[len(volume):], string(filepath.Separator))
	if rest == "" {
		if _, err := os.Stat(current); err != nil {
			return "", fmt.Errorf("failed to stat root: %w", err)
		}
		return current, nil
	}

	for _, name := range strings.Split(rest, string(filepath.Separator)) {
		next, err := matchEntry(current, name)
		if err != nil {
			// unreadable parent, let the OS resolve the rest
			if _, statErr := os.Stat(abs); statErr == nil {
				return abs, nil
			}
			return "", fmt.Errorf("file match not found: %s: %w", path, err)
		}
		current = next
	}
	return current, nil
}

func matchEntry(parent, name string) (string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", parent, err)
	}
	var folded string
	for _, e := range entries {
		switch target := e.Name(); {
		case target == name:
			return filepath.Join(parent, target), nil
		case folded == "" && strings.EqualFold(target, name):
			folded = target
		}
	}
	if folded != "" {
		return filepath.Join(parent, folded), nil
	}
	// names the listing cannot show, such as 8.3 short names
	candidate := filepath.Join(parent, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fs.ErrNotExist
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// HasExtension reports whether name ends in one of exts, ignoring case.
// An empty exts means DefaultVideoExtensions.
func HasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultVideoExtensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), ext)
	})
}

// GetFiles returns every file under root whose extension is in exts,
// sorted. Hidden files and folders are skipped. Symlinks are followed,
// including a symlinked root, without looping, and results are reported
// under root rather than the link target.
func GetFiles(ctx context.Context, root string, exts []string) ([]string, error) {
	path, err := FindPath(root)
	if err != nil {
		return nil, err
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(realPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", realPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}

	var mu sync.Mutex
	var files []string
	conf := fastwalk.Config{Follow: true}
	err = fastwalk.Walk(&conf, realPath, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("skipping unreadable path")
			return nil
		}
		if p != realPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !HasExtension(d.Name(), exts) {
			return nil
		}
		if realPath != path {
			p = filepath.Join(path, strings.TrimPrefix(p, realPath))
		}
		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	slices.Sort(files)
	return files, nil
}
