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

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ancientHacker/jigsaw.go/puzzle"
	"github.com/bytedance/sonic"
	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"
)

/*

layout entries

*/

// A layoutEntry represents the stored form of a puzzle layout:
// the starting point of every session built on that layout.  It
// is JSON serializable so it can go into the cache as well as
// the database.
type layoutEntry struct {
	LayoutId string // the layout's content hash
	Name     string // user-facing name of the layout
	Width    int32
	Height   int32
	Pieces   []byte // the piece list, serialized as JSON
}

// newLayoutEntry: build the storable form of a layout summary.
// The summary's strategy and moves are deliberately not part of
// the entry; those belong to sessions, not layouts.
func newLayoutEntry(summary *puzzle.Summary) *layoutEntry {
	id, err := summary.Hash()
	if err != nil {
		panic(fmt.Errorf("Failed to hash layout %q: %v", summary.Name, err))
	}
	bytes, err := sonic.Marshal(summary.Pieces)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal pieces of layout %q: %v", summary.Name, err))
	}
	return &layoutEntry{
		LayoutId: id,
		Name:     summary.Name,
		Width:    int32(summary.Width),
		Height:   int32(summary.Height),
		Pieces:   bytes,
	}
}

// loadLayoutEntry first checks the cache, then the database, to
// find the layout's entry.  If it loads from the database, it
// caches the result.  Panics if there is no such stored entry.
func loadLayoutEntry(id string) *layoutEntry {
	le := &layoutEntry{LayoutId: id}
	if le.cacheLoad() {
		return le
	}
	// cache miss, load from database and save to cache
	le.databaseLoad()
	le.cacheInsert()
	return le
}

// makeSummary: reconstitute the layout summary stored in an
// entry.  The result has no strategy and no moves; callers
// overlay those from their session before building the puzzle.
func (le *layoutEntry) makeSummary() *puzzle.Summary {
	var pieces []puzzle.PieceSummary
	if err := sonic.Unmarshal(le.Pieces, &pieces); err != nil {
		panic(fmt.Errorf("Failed to unmarshal pieces of layout %q: %v", le.LayoutId, err))
	}
	return &puzzle.Summary{
		Name:   le.Name,
		Width:  int(le.Width),
		Height: int(le.Height),
		Pieces: pieces,
	}
}

// SaveLayout stores a layout so later sessions can be started on
// it, and returns its content-addressed id.  Saving an
// already-stored layout just refreshes the cache.
func SaveLayout(summary *puzzle.Summary) string {
	le := newLayoutEntry(summary)
	if !le.databaseExists() {
		le.databaseInsert()
	}
	le.cacheInsert()
	return le.LayoutId
}

// key: compute the cache key for a layoutEntry.
func (le *layoutEntry) key() string {
	return "LID:" + le.LayoutId
}

// cacheLoad: load an already cached layout entry.  Returns
// whether the entry was found in the cache.
func (le *layoutEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", le.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading layoutEntry %q: %v", le.LayoutId, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sle *layoutEntry
	err := sonic.Unmarshal(bytes, &sle)
	if err != nil {
		panic(fmt.Errorf("Failed to unmarshal layoutEntry %q: %v", le.LayoutId, err))
	}
	if sle.LayoutId != le.LayoutId {
		panic(fmt.Errorf("Cached layoutEntry (id: %q) found for layout %q!",
			sle.LayoutId, le.LayoutId))
	}
	*le = *sle
	return true
}

// databaseExists: report whether the database holds an entry
// with this layout's id, without loading it.
func (le *layoutEntry) databaseExists() bool {
	var count int64
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM layouts WHERE layoutId = $1", le.LayoutId)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("Failure checking layout %q: %v", le.LayoutId, err)
		}
		return nil
	}
	pgExecute(body)
	return count > 0
}

// databaseLoad: load a layout entry from the database.  Panics
// if there is no saved entry with the given id.
func (le *layoutEntry) databaseLoad() {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT name, width, height, pieceList FROM layouts "+
				"WHERE layoutId = $1", le.LayoutId)
		if err := row.Scan(&le.Name, &le.Width, &le.Height, &le.Pieces); err != nil {
			return fmt.Errorf("Failure looking up layout %q: %v", le.LayoutId, err)
		}
		return nil
	}
	pgExecute(body)
}

// cacheInsert: insert a layout entry into the cache. Replaces
// any existing entry with the same id.
func (le *layoutEntry) cacheInsert() {
	bytes, e := sonic.Marshal(le)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal layoutEntry %q: %v", le.LayoutId, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", le.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving layout entry %q: %v", le.LayoutId, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a new layout entry into the database.
// Panics if there is already a saved entry with the given id.
func (le *layoutEntry) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO layouts (layoutId, name, width, height, pieceList, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6)",
			le.LayoutId, le.Name, le.Width, le.Height, le.Pieces, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving layout entry %q: %v", le.LayoutId, err)
		}
		return
	}
	pgExecute(body)
}

/*

layout directory

*/

// A LayoutInfo is the exported form of a stored layout, enough
// for a client to offer a pick list.
type LayoutInfo struct {
	LayoutId string `json:"layoutId"`
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// LookupLayouts returns the info for every stored layout,
// ordered by name.
func LookupLayouts() []LayoutInfo {
	var infos []LayoutInfo
	body := func(tx pgx.Tx) error {
		rows, err := tx.Query(context.Background(),
			"SELECT layoutId, name, width, height FROM layouts ORDER BY name")
		if err != nil {
			return fmt.Errorf("Failure listing layouts: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var info LayoutInfo
			var width, height int32
			if err := rows.Scan(&info.LayoutId, &info.Name, &width, &height); err != nil {
				return fmt.Errorf("Failure scanning layout row: %v", err)
			}
			info.Width, info.Height = int(width), int(height)
			infos = append(infos, info)
		}
		return rows.Err()
	}
	pgExecute(body)
	return infos
}

// LookupLayoutByName returns the id of the stored layout with
// the given name, or the empty string if there is none.
func LookupLayoutByName(name string) string {
	var id string
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT layoutId FROM layouts WHERE name = $1", name)
		if err := row.Scan(&id); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return fmt.Errorf("Failure looking up layout name %q: %v", name, err)
		}
		return nil
	}
	pgExecute(body)
	return id
}
