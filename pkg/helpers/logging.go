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
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const LogFile = "yanfoe.log"

var logWriter atomic.Value

// LogWriter returns the writer the global logger was last initialised with,
// so other sinks (telemetry) can be layered on top without losing it.
func LogWriter() io.Writer {
	if w, ok := logWriter.Load().(io.Writer); ok {
		return w
	}
	return os.Stderr
}

// InitLogging points the global zerolog logger at a rotating file in logDir
// plus any extra writers (usually a console writer for the CLI).
func InitLogging(logDir string, debug bool, writers ...io.Writer) error {
	if logDir == "" {
		return fmt.Errorf("log directory not set")
	}
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logWriters := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}}

	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	w := io.MultiWriter(logWriters...)
	logWriter.Store(w)

	log.Logger = log.Output(w).
		With().Timestamp().Caller().Logger()

	return nil
}
