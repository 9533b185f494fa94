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

package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// CreateFile writes content to path, creating parent directories. Paths
// are used verbatim so Windows style names work on MemMapFs.
func (h *FSHelper) CreateFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := h.Fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CreateFiles creates an empty file for every path.
func (h *FSHelper) CreateFiles(paths ...string) error {
	for _, p := range paths {
		if err := h.CreateFile(p, []byte("x")); err != nil {
			return err
		}
	}
	return nil
}
