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

package dbprep

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ancientHacker/jigsaw.go/puzzle"
	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

/*

entries

*/

type dataFunction func(pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertStockLayouts,
	}
	downFunctions = []dataFunction{
		deleteStockLayouts,
	}
)

// DataUp: load the stock layouts into the database.  You should
// do this after you get the schema up!
func DataUp() error {
	return applyFunctions(upFunctions)
}

// DataDown: remove the stock layouts from the database.  You
// should do this before you tear the schema down!
func DataDown() error {
	return applyFunctions(downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(fns []dataFunction) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/jigsaw?sslmode=disable"
	}
	ctx := context.Background()

	// open the database, defer the close
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(ctx)
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("%v failed: %v", fn, err)
		}
	}
	return nil
}

/*

stock layouts

Every deployment gets the same starter set, generated from fixed
seeds so the content hashes (and therefore the layout ids) are
the same everywhere.

*/

// DefaultLayoutName is the name of the layout sessions fall back
// to when they don't name one.
const DefaultLayoutName = "starter 4x4"

// the seeds and shapes of the stock set
var stockShapes = []struct {
	name          string
	width, height int
	seed          int64
}{
	{DefaultLayoutName, 4, 4, 40416},
	{"starter 5x5", 5, 5, 50525},
	{"landscape 8x5", 8, 5, 80558},
	{"challenge 10x8", 10, 8, 100810},
	{"marathon 16x12", 16, 12, 161216},
}

var (
	stockLayouts []*puzzle.Summary
	stockHashes  []string // see init
)

// initialize the layouts and their hashes from the stock shapes
func init() {
	stockLayouts = make([]*puzzle.Summary, len(stockShapes))
	stockHashes = make([]string, len(stockShapes))
	for i, shape := range stockShapes {
		summary, err := puzzle.Generate(shape.name, shape.width, shape.height, shape.seed, true)
		if err != nil {
			panic(fmt.Errorf("Can't happen! Stock shape %d is invalid: %v", i, err))
		}
		stockLayouts[i] = summary
		hash, err := summary.Hash()
		if err != nil {
			panic(fmt.Errorf("Can't happen! Stock layout %d won't hash: %v", i, err))
		}
		stockHashes[i] = hash
	}
}

// Create and insert the stock layouts
func insertStockLayouts(tx pgx.Tx) error {
	ctx := context.Background()

	// idempotency: if the default layout already exists, we are done
	var count int64
	row := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM layouts WHERE name = $1", DefaultLayoutName)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("Database error looking for layout %q: %v", DefaultLayoutName, err)
	}
	if count > 0 {
		return nil
	}

	// get the timestamp of this load
	now := time.Now()

	for i, sum := range stockLayouts {
		pieces, err := sonic.Marshal(sum.Pieces)
		if err != nil {
			return fmt.Errorf("Failed to marshal pieces of stock layout %d: %v", i, err)
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO layouts (layoutId, name, width, height, pieceList, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6)",
			stockHashes[i], sum.Name, int32(sum.Width), int32(sum.Height), pieces, now)
		if err != nil {
			return fmt.Errorf("Database error saving stock layout %d: %v", i, err)
		}
	}
	return nil
}

// Delete the stock layouts
func deleteStockLayouts(tx pgx.Tx) error {
	ctx := context.Background()
	for i, hash := range stockHashes {
		_, err := tx.Exec(ctx, "DELETE from layouts where layoutId = $1", hash)
		if err != nil {
			return fmt.Errorf("Database error deleting stock layout %d: %v", i, err)
		}
	}
	return nil
}
