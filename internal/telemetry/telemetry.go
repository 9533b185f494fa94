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

// Package telemetry sends opt-in error reports to a user supplied Sentry
// DSN. Error level log events are forwarded once Init has run; user names
// are stripped from every path in a report before it leaves the machine.
package telemetry

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers"
)

const flushTimeout = 2 * time.Second

var ErrNoDSN = errors.New("error reporting enabled without a dsn")

var (
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once
	mu           sync.Mutex
	enabled      bool

	// Patterns to strip usernames from file paths
	homePathRe    = regexp.MustCompile(`(?i)/home/[^/]+/`)
	usersPathRe   = regexp.MustCompile(`(?i)/Users/[^/]+/`)
	windowsUserRe = regexp.MustCompile(`(?i)([a-z]):\\Users\\[^\\]+\\`)
)

// Options configures Init.
type Options struct {
	// Transport replaces the Sentry HTTP transport, used by tests.
	Transport   sentry.Transport
	DSN         string
	AppVersion  string
	Environment string
	// SessionID identifies one run; it is not tied to the user.
	SessionID string
	Enabled   bool
}

func Init(opts Options) error {
	if !opts.Enabled {
		log.Debug().Msg("error reporting disabled")
		return nil
	}
	if opts.DSN == "" {
		return ErrNoDSN
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          "yanfoe-core@" + opts.AppVersion,
		Environment:      opts.Environment,
		AttachStacktrace: true,
		// Privacy: explicitly disable PII collection
		SendDefaultPII: false,
		ServerName:     "",
		MaxBreadcrumbs: 0,
		Transport:      opts.Transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return sanitizeEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		if opts.SessionID != "" {
			scope.SetTag("session", opts.SessionID)
		}
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
	})

	w, err := sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout:    flushTimeout,
		WithBreadcrumbs: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	mu.Lock()
	sentryWriter = w
	enabled = true
	mu.Unlock()

	// Add Sentry writer alongside the existing log writer
	log.Logger = log.Output(zerolog.MultiLevelWriter(
		helpers.LogWriter(),
		w,
	)).With().Caller().Logger()

	log.Info().Msg("error reporting enabled")
	return nil
}

func Close() {
	if !Enabled() {
		return
	}
	closeOnce.Do(func() {
		mu.Lock()
		w := sentryWriter
		mu.Unlock()
		_ = w.Close()
		sentry.Flush(flushTimeout)
	})
}

func Flush() {
	if !Enabled() {
		return
	}
	sentry.Flush(flushTimeout)
}

func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

func sanitizeEvent(event *sentry.Event) *sentry.Event {
	// Clear server name (hostname) - SDK may populate despite ServerName: ""
	event.ServerName = ""

	for i := range event.Exception {
		event.Exception[i].Value = sanitizePath(event.Exception[i].Value)
		if event.Exception[i].Stacktrace == nil {
			continue
		}
		for j := range event.Exception[i].Stacktrace.Frames {
			frame := &event.Exception[i].Stacktrace.Frames[j]
			frame.AbsPath = sanitizePath(frame.AbsPath)
			frame.Filename = sanitizePath(frame.Filename)
		}
	}

	event.Message = sanitizePath(event.Message)

	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = sanitizePath(s)
		}
	}
	for k, v := range event.Tags {
		event.Tags[k] = sanitizePath(v)
	}

	return event
}

func sanitizePath(path string) string {
	if path == "" {
		return path
	}

	result := homePathRe.ReplaceAllString(path, "/home/<user>/")
	result = usersPathRe.ReplaceAllString(result, "/Users/<user>/")
	result = windowsUserRe.ReplaceAllStringFunc(result, func(m string) string {
		return string(m[0]&^0x20) + `:\Users\<user>\`
	})

	return result
}
