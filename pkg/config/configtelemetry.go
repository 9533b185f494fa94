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

package config

// Telemetry controls opt-in error reporting. Reports are only sent when
// ErrorReporting is on and a DSN is set.
type Telemetry struct {
	DSN            string `toml:"dsn,omitempty" validate:"omitempty,url"`
	ErrorReporting bool   `toml:"error_reporting"`
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.ErrorReporting && c.vals.Telemetry.DSN != ""
}

func (c *Instance) SetErrorReporting(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Telemetry.ErrorReporting = enabled
}

func (c *Instance) TelemetryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.DSN
}
