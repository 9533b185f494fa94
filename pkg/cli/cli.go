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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/internal/telemetry"
	"github.com/yanfoe/yanfoe-core/pkg/config"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
)

// ErrNeedsSearch is returned when -year or -file is given without -search.
var ErrNeedsSearch = errors.New("-year and -file require -search")

type Flags struct {
	ConfigDir *string
	Export    *string
	Search    *string
	File      *string
	Year      *int
	Scan      *bool
	Watch     *bool
	TV        *bool
	Version   *bool
}

// DefaultConfigDir is where config.toml and scraper.toml live unless
// -config says otherwise.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DefaultLogDir holds the rotating log file.
func DefaultLogDir() string {
	return filepath.Join(xdg.StateHome, config.AppName)
}

// SetupFlags defines the CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigDir: fs.String(
			"config",
			DefaultConfigDir(),
			"directory holding config.toml and scraper.toml",
		),
		Scan: fs.Bool(
			"scan",
			false,
			"print video files in the media paths not in the library",
		),
		Export: fs.String(
			"export",
			"",
			"write unsorted files to a CSV file",
		),
		Watch: fs.Bool(
			"watch",
			false,
			"rescan the media paths whenever they change",
		),
		Search: fs.String(
			"search",
			"",
			"search the sources for a title and print the scraped fields",
		),
		Year: fs.Int(
			"year",
			0,
			"release year used to narrow -search",
		),
		File: fs.String(
			"file",
			"",
			"movie file or show folder for -search; artwork is saved next to it",
		),
		TV: fs.Bool(
			"tv",
			false,
			"search for a TV show instead of a movie",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func isFlagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and actions the flags that need no setup. It reports
// whether the program should exit.
func (f *Flags) Pre(fs *flag.FlagSet, args []string, out io.Writer) (bool, error) {
	if err := fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(out, "YANFOE v%s\n", config.AppVersion)
		return true, nil
	}

	if *f.Search == "" && (isFlagPassed(fs, "year") || isFlagPassed(fs, "file")) {
		return true, ErrNeedsSearch
	}
	return false, nil
}

// Setup initialises logging, loads the config and enables error reporting
// when the user opted in.
func Setup(configDir, logDir string, defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	err := helpers.InitLogging(logDir, false, writers...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.TelemetryDSN(),
		AppVersion: config.AppVersion,
		SessionID:  uuid.NewString(),
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}

// ConsoleWriter is the human readable stderr log sink used by the CLI.
func ConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}
}
