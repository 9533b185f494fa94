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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/internal/telemetry"
	"github.com/yanfoe/yanfoe-core/pkg/cli"
	"github.com/yanfoe/yanfoe-core/pkg/config"
	"github.com/yanfoe/yanfoe-core/pkg/library"
	"github.com/yanfoe/yanfoe-core/pkg/scraper"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.CommandLine
	flags := cli.SetupFlags(fs)
	verbose := fs.Bool(
		"verbose",
		false,
		"also write logs to stderr",
	)

	exit, err := flags.Pre(fs, os.Args[1:], os.Stdout)
	if err != nil || exit {
		return err
	}

	var logWriters []io.Writer
	if *verbose {
		logWriters = []io.Writer{cli.ConsoleWriter()}
	}

	cfg, err := cli.Setup(*flags.ConfigDir, cli.DefaultLogDir(), config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			telemetry.Flush()
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	scfg, err := scraper.LoadConfig(*flags.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load scraper config: %w", err)
	}
	reg, err := cli.BuildRegistry(cfg, scfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Config:   cfg,
		Registry: reg,
		Library:  library.New(),
		Out:      os.Stdout,
		Artwork:  cli.NewArtworkStorage(cfg, nil),
	}
	err = flags.Post(ctx, app)
	if errors.Is(err, cli.ErrNoCommand) {
		fs.Usage()
	}
	return err
}
