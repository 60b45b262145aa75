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

	"github.com/ancientHacker/jigsaw.go/dbprep"
	"github.com/ancientHacker/jigsaw.go/puzzle"
	"github.com/bytedance/sonic"
	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"
)

// DefaultLayoutName is the stock layout a session starts on when
// it doesn't name one.
const DefaultLayoutName = dbprep.DefaultLayoutName

// A Session tracks one user's work on one layout.  The session
// hash and the move list live in the cache; the layout and the
// move list are also persisted durably, so a flushed cache can
// always be rebuilt from the database.  The move list is the
// engine's undo stack: the redo stack is deliberately not
// persisted, since a reloaded session starts with a clean redo
// chain anyway.
type Session struct {
	// these elements are persisted in the session hash
	SID      string // session ID
	LID      string // ID of the layout in play
	Strategy string // matching strategy in force
	Created  string // RFC3339 time when the session was created
	Saved    string // RFC3339 time when the session was last saved

	// the live engine state, rebuilt on load rather than persisted
	Puzzle *puzzle.Session `redis:"-" json:"-"`
}

/*

session manipulation

*/

// StartLayout: set the layout for the session and clear any
// prior moves.  If the given layout ID is empty, try the
// session's current layout.  If the given ID is the special
// value "default" (or unknown), use the default layout.
func (s *Session) StartLayout(lid string) {
	if lid == "" {
		lid = s.LID
	} else if lid == "default" {
		lid = LookupLayoutByName(DefaultLayoutName)
	}
	le := &layoutEntry{LayoutId: lid}
	if lid == "" || !le.cacheLoad() && !le.databaseExists() {
		lid = LookupLayoutByName(DefaultLayoutName)
		if lid == "" {
			panic(fmt.Errorf("No default layout %q in the database", DefaultLayoutName))
		}
	}
	s.LID = lid
	if s.Created == "" {
		s.Created = time.Now().Format(time.RFC3339)
	}
	s.buildPuzzle(nil)

	// update the cache and the database
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = tx.Do("DEL", s.movesKey())
		if err != nil {
			err = fmt.Errorf("Cache failure resetting session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(nil)
	stLog.Info().Str("sid", s.SID).Str("lid", s.LID).Msg("session reset to new layout")
}

// Lookup: find the session hash in the cache for the session's
// ID.  Returns whether the session was found; when it was, the
// live puzzle is rebuilt from the stored layout and moves.
func (s *Session) Lookup() (found bool) {
	body := func(tx redis.Conn) error {
		vals, err := redis.Values(tx.Do("HGETALL", s.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, s); err != nil {
				return fmt.Errorf("Cache failure parsing saved session %q: %v", s.SID, err)
			}
			found = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("Cache failure on lookup of session %q: %v", s.SID, err)
		}
		return nil
	}
	rdExecute(body)
	if found {
		s.loadActivePuzzle()
	}
	return
}

// loadActivePuzzle: rebuild the live puzzle for a session loaded
// from storage.  The cached move list is authoritative when it
// agrees with the database; when it doesn't (typically because
// the cache was flushed), the database's list is replayed into
// the cache first.
func (s *Session) loadActivePuzzle() {
	dbMoves := s.databaseMoves()
	if s.countMoves() != len(dbMoves) {
		s.reloadMoves(dbMoves)
	}
	s.buildPuzzle(s.cachedMoves())
}

// buildPuzzle: make the live engine session from the session's
// layout, strategy, and the given move list.
func (s *Session) buildPuzzle(moves []puzzle.Move) {
	summary := loadLayoutEntry(s.LID).makeSummary()
	summary.Strategy = s.Strategy
	summary.Moves = moves
	p, err := puzzle.New(summary)
	if err != nil {
		panic(fmt.Errorf("Failed to build session %q puzzle from layout %q: %v",
			s.SID, s.LID, err))
	}
	s.Puzzle = p
}

/*

move recording

The engine operation happens first; only a successful operation
touches storage.  Failed operations leave both the engine and
the stored record exactly as they were.

*/

// Place: place a piece through the engine and persist the move.
func (s *Session) Place(id puzzle.PieceID, pos puzzle.Position) error {
	if err := s.Puzzle.PlacePiece(id, pos); err != nil {
		return err
	}
	s.recordMove()
	return nil
}

// Remove: empty a cell through the engine and persist the move.
// Emptying an already empty cell records nothing.
func (s *Session) Remove(pos puzzle.Position) (puzzle.PieceID, error) {
	before := len(s.Puzzle.Moves())
	id, err := s.Puzzle.RemovePiece(pos)
	if err != nil {
		return id, err
	}
	if len(s.Puzzle.Moves()) != before {
		s.recordMove()
	}
	return id, nil
}

// Rotate: rotate a piece through the engine and persist the
// move.
func (s *Session) Rotate(id puzzle.PieceID) error {
	if err := s.Puzzle.RotatePiece(id); err != nil {
		return err
	}
	s.recordMove()
	return nil
}

// Undo: undo through the engine and drop the last persisted
// move.
func (s *Session) Undo() bool {
	if !s.Puzzle.Undo() {
		return false
	}
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = tx.Do("LTRIM", s.movesKey(), 0, -2)
		if err != nil {
			err = fmt.Errorf("Cache failure removing move of session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(s.Puzzle.Moves())
	return true
}

// Redo: redo through the engine and re-persist the re-applied
// move.
func (s *Session) Redo() bool {
	if !s.Puzzle.Redo() {
		return false
	}
	s.recordMove()
	return true
}

// SetStrategy: change the matching strategy through the engine
// and persist the change.
func (s *Session) SetStrategy(name string) error {
	if err := s.Puzzle.SetStrategy(name); err != nil {
		return err
	}
	s.Strategy = s.Puzzle.StrategyName()
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		if err != nil {
			err = fmt.Errorf("Cache failure saving session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(s.Puzzle.Moves())
	return nil
}

// RemoveAllMoves: restore the session's layout to its starting
// point, keeping the layout and strategy.
func (s *Session) RemoveAllMoves() {
	if len(s.Puzzle.Moves()) == 0 {
		return
	}
	s.buildPuzzle(nil)
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = tx.Do("DEL", s.movesKey())
		if err != nil {
			err = fmt.Errorf("Cache failure clearing moves of session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(nil)
	stLog.Info().Str("sid", s.SID).Str("lid", s.LID).Msg("session moves cleared")
}

// Sync: bring the persisted record in line with the engine,
// for servers that drive the engine through its own handlers
// rather than through this session's wrappers.  A one-move
// growth is pushed incrementally; any other change rewrites the
// cached list.
func (s *Session) Sync() {
	moves := s.Puzzle.Moves()
	cached := s.countMoves()
	strategy := s.Puzzle.StrategyName()
	if len(moves) == cached && strategy == s.Strategy {
		return
	}
	s.Strategy = strategy
	if len(moves) == cached+1 {
		s.recordMove()
		return
	}
	if len(moves) != cached {
		s.reloadMoves(moves)
	}
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		if err != nil {
			err = fmt.Errorf("Cache failure saving session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(moves)
}

// recordMove: persist the engine's newest move: push it on the
// cached list and rewrite the database's copy of the full list.
func (s *Session) recordMove() {
	moves := s.Puzzle.Moves()
	last := moves[len(moves)-1]
	bytes, err := sonic.Marshal(last)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal move of session %q: %v", s.SID, err))
	}
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = tx.Do("RPUSH", s.movesKey(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving move of session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
	s.databaseUpsert(moves)
}

/*

the cached move list

*/

// countMoves: return the number of cached moves.
func (s *Session) countMoves() int {
	var count int
	body := func(tx redis.Conn) (err error) {
		count, err = redis.Int(tx.Do("LLEN", s.movesKey()))
		if err != nil {
			err = fmt.Errorf("Cache failure reading move count: %v", err)
		}
		return
	}
	rdExecute(body)
	return count
}

// cachedMoves: return the cached move list, oldest first.
func (s *Session) cachedMoves() []puzzle.Move {
	var raw [][]byte
	body := func(tx redis.Conn) (err error) {
		raw, err = redis.ByteSlices(tx.Do("LRANGE", s.movesKey(), 0, -1))
		if err != nil {
			err = fmt.Errorf("Cache failure reading moves: %v", err)
		}
		return
	}
	rdExecute(body)
	moves := make([]puzzle.Move, len(raw))
	for i, bytes := range raw {
		if err := sonic.Unmarshal(bytes, &moves[i]); err != nil {
			panic(fmt.Errorf("Failed to unmarshal cached move %d of session %q: %v",
				i, s.SID, err))
		}
	}
	return moves
}

// reloadMoves: replace the cached move list with the given one.
func (s *Session) reloadMoves(moves []puzzle.Move) {
	body := func(tx redis.Conn) (err error) {
		tx.Send("DEL", s.movesKey())
		for _, m := range moves {
			bytes, e := sonic.Marshal(m)
			if e != nil {
				return fmt.Errorf("Failed to marshal move for reload: %v", e)
			}
			tx.Send("RPUSH", s.movesKey(), bytes)
		}
		_, err = tx.Do("")
		if err != nil {
			err = fmt.Errorf("Cache failure reloading moves of session %q: %v", s.SID, err)
		}
		return
	}
	rdExecute(body)
}

/*

the durable session row

*/

// databaseUpsert: write the session row, replacing any existing
// row for this session ID.
func (s *Session) databaseUpsert(moves []puzzle.Move) {
	if moves == nil {
		moves = []puzzle.Move{}
	}
	bytes, err := sonic.Marshal(moves)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal moves of session %q: %v", s.SID, err))
	}
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO sessions (sessionId, layoutId, strategy, moveList, created, updated) "+
				"VALUES ($1, $2, $3, $4, $5, $6) "+
				"ON CONFLICT (sessionId) DO UPDATE "+
				"SET layoutId = $2, strategy = $3, moveList = $4, updated = $6",
			s.SID, s.LID, s.Strategy, bytes, time.Now(), time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving session %q: %v", s.SID, err)
		}
		return
	}
	pgExecute(body)
}

// databaseMoves: read the durable copy of the session's move
// list.  A session with no database row has no moves.
func (s *Session) databaseMoves() []puzzle.Move {
	var bytes []byte
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT moveList FROM sessions WHERE sessionId = $1", s.SID)
		if err := row.Scan(&bytes); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return fmt.Errorf("Failure looking up session %q: %v", s.SID, err)
		}
		return nil
	}
	pgExecute(body)
	if len(bytes) == 0 {
		return nil
	}
	var moves []puzzle.Move
	if err := sonic.Unmarshal(bytes, &moves); err != nil {
		panic(fmt.Errorf("Failed to unmarshal stored moves of session %q: %v", s.SID, err))
	}
	return moves
}

/*

session key generation

*/

// key - returns the session key
func (s *Session) key() string {
	return "SID:" + s.SID
}

// movesKey - returns the key for the session's move list
func (s *Session) movesKey() string {
	return s.key() + ":Moves"
}
