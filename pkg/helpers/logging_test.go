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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// InitLogging swaps the global logger so these tests do not run in parallel.

func TestInitLogging(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs", "nested")
	var buf bytes.Buffer

	err := InitLogging(logDir, true, &buf)
	require.NoError(t, err)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("source", "allocine").Msg("scrape attempt")
	assert.Contains(t, buf.String(), `"source":"allocine"`)
	assert.Contains(t, buf.String(), "scrape attempt")

	info, err := os.Stat(filepath.Join(logDir, LogFile))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.NotNil(t, LogWriter())
}

func TestInitLoggingInfoLevel(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, InitLogging(t.TempDir(), false, &buf))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitLoggingEmptyDir(t *testing.T) {
	err := InitLogging("", false)
	require.Error(t, err)
}
