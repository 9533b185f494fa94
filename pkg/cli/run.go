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
	"context"
	"errors"
)

// ErrNoCommand is returned when no command flag was given.
var ErrNoCommand = errors.New("nothing to do: pass -scan, -export, -watch or -search")

// Post runs the command selected by the flags. -search wins over the scan
// commands; -export and -watch imply a scan.
func (f *Flags) Post(ctx context.Context, app *App) error {
	switch {
	case *f.Search != "":
		return app.Search(ctx, SearchRequest{
			Title: *f.Search,
			File:  *f.File,
			Year:  *f.Year,
			TV:    *f.TV,
		})
	case *f.Export != "":
		return app.Export(ctx, *f.Export)
	case *f.Watch:
		return app.Watch(ctx)
	case *f.Scan:
		return app.Scan(ctx)
	default:
		return ErrNoCommand
	}
}
