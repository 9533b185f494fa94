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

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
)

const (
	SchemaVersion = 1
	CfgEnv        = "YANFOE_CFG"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Scraper      Scraper   `toml:"scraper,omitempty"`
	Media        Media     `toml:"media,omitempty"`
	Telemetry    Telemetry `toml:"telemetry,omitempty"`
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Media: Media{
		VideoExtensions: defaultVideoExtensions,
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// ErrNoPath is returned by Load and Save on an Instance without a file.
var ErrNoPath = errors.New("config has no file path")

// NewConfig loads config.toml from configDir, or from the path in
// YANFOE_CFG, writing the defaults first when the file is missing.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	if cfgPath != "" {
		log.Debug().Str("path", cfgPath).Msgf("config path taken from %s", CfgEnv)
	} else {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	switch _, err := os.Stat(cfgPath); {
	case errors.Is(err, fs.ErrNotExist):
		if err := cfg.writeDefaults(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Instance) writeDefaults() error {
	log.Info().Str("path", c.cfgPath).Msg("writing default config")
	if err := os.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return c.Save()
}

func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

// Load replaces the current values with the file's, layered over the
// defaults. A file from another schema version or one that fails
// validation leaves the current values untouched.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return ErrNoPath
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	vals := c.defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("parse %s: %w", c.cfgPath, err)
	}

	if vals.ConfigSchema != SchemaVersion {
		log.Error().
			Str("path", c.cfgPath).
			Int("schema", vals.ConfigSchema).
			Int("want", SchemaVersion).
			Msg("unsupported config schema")
		return fmt.Errorf("%w: %d", ErrSchemaMismatch, vals.ConfigSchema)
	}

	if err := validate.Struct(&vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = vals
	return nil
}

// Save writes the current values, stamped with the running schema.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return ErrNoPath
	}

	c.vals.ConfigSchema = SchemaVersion
	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
