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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yanfoe/yanfoe-core/pkg/metadata"
	"github.com/yanfoe/yanfoe-core/pkg/scraper/extract"
)

const ConfigFile = "scraper.toml"

// SourceConfig holds the per-source settings of scraper.toml.
type SourceConfig struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// ScraperConfig is the content of scraper.toml. Rules holds extraction
// rule overrides keyed by source then field, merged over the rules each
// source ships with.
type ScraperConfig struct {
	Sources map[string]SourceConfig            `toml:"sources"`
	Rules   map[string]map[string]extract.Rule `toml:"rules"`
}

func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		Sources: map[string]SourceConfig{
			"allocine": {},
			"tmdb":     {Language: "en-US"},
		},
		Rules: map[string]map[string]extract.Rule{},
	}
}

// LoadConfig loads scraper configuration from the config directory,
// writing the defaults first when the file does not exist.
func LoadConfig(configDir string) (*ScraperConfig, error) {
	configPath := filepath.Join(configDir, ConfigFile)
	cfg := DefaultScraperConfig()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := SaveConfig(configDir, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default scraper config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode scraper config: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves scraper configuration to the config directory
func SaveConfig(configDir string, cfg *ScraperConfig) error {
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFile)
	file, err := os.Create(configPath) // #nosec G304 - path built from the config dir
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode scraper config: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close config file: %w", err)
	}
	return nil
}

// Source returns the settings for name, zero when unset.
func (c *ScraperConfig) Source(name string) SourceConfig {
	if c == nil {
		return SourceConfig{}
	}
	return c.Sources[strings.ToLower(name)]
}

// RuleOverrides returns the overrides configured for source.
func (c *ScraperConfig) RuleOverrides(source string) (extract.RuleSet, error) {
	if c == nil {
		return nil, nil
	}
	raw := c.Rules[strings.ToLower(source)]
	rs := make(extract.RuleSet, len(raw))
	for name, rule := range raw {
		field, err := metadata.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("rules.%s: %w", source, err)
		}
		rs[field] = rule
	}
	return rs, nil
}
