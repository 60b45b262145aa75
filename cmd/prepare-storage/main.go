// jigsaw.go - a jigsaw puzzle placement and history engine.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

// Prepare the jigsaw storage system for use
package main

import (
	"github.com/ancientHacker/jigsaw.go/dbprep"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("ensuring database schema and stock data...")
	if err := dbprep.EnsureData(); err != nil {
		log.Fatal().Err(err).Msg("couldn't prepare storage")
	}
	version, err := dbprep.SchemaVersion()
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't read schema version")
	}
	log.Info().Uint("version", version).Msg("storage ready")
}
