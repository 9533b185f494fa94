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

//go:build deadlock

// Package syncutil holds the lock types used by every package that guards
// shared library state. Building with -tags=deadlock swaps them for the
// go-deadlock implementations.
package syncutil

import (
	"os"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = true

// TimeoutEnv overrides how long a lock may be waited on before the detector
// reports it, e.g. YANFOE_DEADLOCK_TIMEOUT=2m for slow scrape batches.
const TimeoutEnv = "YANFOE_DEADLOCK_TIMEOUT"

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
	if v := os.Getenv(TimeoutEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			deadlock.Opts.DeadlockTimeout = d
		}
	}
}

type Mutex struct {
	deadlock.Mutex
}

type RWMutex struct {
	deadlock.RWMutex
}
