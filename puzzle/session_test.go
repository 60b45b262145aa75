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

package puzzle

/*

Tests for session construction and the session operations.

*/

import (
	"reflect"
	"testing"
)

/*

construction

*/

func TestNewValidation(t *testing.T) {
	type test struct {
		tamper    func(*Summary)
		condition ErrorCondition
	}
	tests := []test{
		{func(sum *Summary) { sum.Width = 1 }, TooSmallCondition},
		{func(sum *Summary) { sum.Height = 1000 }, TooLargeCondition},
		{func(sum *Summary) { sum.Pieces = sum.Pieces[:3] }, WrongPieceCountCondition},
		{func(sum *Summary) { sum.Strategy = "no-such-strategy" }, UnknownStrategyCondition},
		{func(sum *Summary) { sum.Pieces[0].ID = 9 }, UnknownPieceCondition},
		{func(sum *Summary) { sum.Pieces[1].ID = 1 }, DuplicatePieceCondition},
		{func(sum *Summary) { sum.Pieces[0].Home = Position{Row: 5, Col: 0} }, OutOfBoundsCondition},
		{func(sum *Summary) { sum.Pieces[1].Home = sum.Pieces[0].Home }, DuplicateHomeCondition},
		{func(sum *Summary) { sum.Pieces[0].Rotation = 45 }, InvalidRotationCondition},
		{func(sum *Summary) { sum.Pieces[0].Rotation = 360 }, InvalidRotationCondition},
		{func(sum *Summary) {
			pos := Position{Row: 0, Col: 0}
			sum.Moves = []Move{{Piece: 9, To: &pos}}
		}, ReplayFailureCondition},
		{func(sum *Summary) {
			pos := Position{Row: 0, Col: 0}
			sum.Moves = []Move{{Piece: 1, To: &pos}, {Piece: 2, To: &pos}}
		}, ReplayFailureCondition},
	}
	for i, test := range tests {
		sum := helperSummary2x2()
		test.tamper(sum)
		_, e := New(sum)
		if e == nil {
			t.Errorf("test %d: creation from tampered summary succeeded", i)
			continue
		}
		err, ok := e.(Error)
		if !ok {
			t.Errorf("test %d: got untyped error %v", i, e)
			continue
		}
		if err.Condition != test.condition {
			t.Errorf("test %d: got condition %d (%v), expected %d",
				i, err.Condition, err, test.condition)
		}
	}

	if _, e := New(nil); e == nil {
		t.Errorf("Creation from nil summary succeeded")
	}
}

func TestNewReplaysMoves(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.RotatePiece(2); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	if e := s.PlacePiece(3, Position{Row: 1, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if _, e := s.RemovePiece(Position{Row: 1, Col: 0}); e != nil {
		t.Fatalf("Removal failed: %v", e)
	}

	rebuilt := helperSession(t, s.Summary())
	if got, expected := rebuilt.State(), s.State(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Rebuilt state: got %+v, expected %+v", got, expected)
	}

	// the rebuilt history must be undoable just like the original
	if !rebuilt.Undo() || !rebuilt.Undo() {
		t.Errorf("Rebuilt session history is not undoable")
	}
}

func TestSummaryIsImmutableLayout(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.RotatePiece(1); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	sum := s.Summary()
	// the layout keeps the original orientation; the rotation
	// lives in the move list
	if got := sum.Pieces[0].Rotation; got != 0 {
		t.Errorf("Layout rotation of rotated piece: got %d, expected 0", got)
	}
	if len(sum.Moves) != 1 {
		t.Fatalf("Move count: got %d, expected 1", len(sum.Moves))
	}
	if got := sum.Moves[0].RotationAfter; got != 90 {
		t.Errorf("Recorded rotation: got %d, expected 90", got)
	}
}

/*

operations

*/

func TestPlacePiece(t *testing.T) {
	s := helperSession(t, helperSummary2x2())

	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if got := s.PieceAt(Position{Row: 0, Col: 0}); got != 1 {
		t.Errorf("Piece at (0, 0): got %d, expected 1", got)
	}

	type test struct {
		piece     PieceID
		pos       Position
		condition ErrorCondition
	}
	tests := []test{
		{9, Position{Row: 0, Col: 1}, UnknownPieceCondition},
		{1, Position{Row: 0, Col: 1}, AlreadyPlacedCondition},
		{2, Position{Row: 0, Col: 5}, OutOfBoundsCondition},
		{2, Position{Row: 0, Col: 0}, OccupiedCondition},
		// piece 3's left edge is flat, which can't mate 1's tab
		{3, Position{Row: 0, Col: 1}, EdgeMismatchCondition},
	}
	for i, test := range tests {
		before := s.State()
		e := s.PlacePiece(test.piece, test.pos)
		if e == nil {
			t.Errorf("test %d: invalid placement succeeded", i)
			continue
		}
		err, ok := e.(Error)
		if !ok || err.Condition != test.condition {
			t.Errorf("test %d: got error %v, expected condition %d", i, e, test.condition)
		}
		if got := s.State(); !reflect.DeepEqual(got, before) {
			t.Errorf("test %d: failed placement changed session state", i)
		}
	}
}

func TestRemovePiece(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}

	id, e := s.RemovePiece(Position{Row: 0, Col: 0})
	if e != nil || id != 1 {
		t.Errorf("Removal: got (%d, %v), expected (1, nil)", id, e)
	}

	// removing from an empty cell is a quiet no-op with no history
	depth := s.State().UndoDepth
	id, e = s.RemovePiece(Position{Row: 0, Col: 0})
	if e != nil || id != NoPiece {
		t.Errorf("Empty-cell removal: got (%d, %v), expected (0, nil)", id, e)
	}
	if got := s.State().UndoDepth; got != depth {
		t.Errorf("Empty-cell removal recorded history: depth %d, expected %d", got, depth)
	}

	// out of bounds is a caller error
	if _, e := s.RemovePiece(Position{Row: 5, Col: 5}); e == nil {
		t.Errorf("Out-of-bounds removal succeeded")
	}
}

func TestRotatePiece(t *testing.T) {
	s := helperSession(t, helperSummary2x2())

	// rotating a loose piece
	if e := s.RotatePiece(1); e != nil {
		t.Fatalf("Rotation of loose piece failed: %v", e)
	}
	ps, e := s.Piece(1)
	if e != nil || ps.Rotation != 90 {
		t.Errorf("Rotation after one turn: got %d, expected 90", ps.Rotation)
	}

	// four turns restore the generated orientation
	for i := 0; i < 3; i++ {
		if e := s.RotatePiece(1); e != nil {
			t.Fatalf("Rotation failed: %v", e)
		}
	}
	ps, _ = s.Piece(1)
	if ps.Rotation != 0 {
		t.Errorf("Rotation after four turns: got %d, expected 0", ps.Rotation)
	}

	// rotating a placed piece is legal even when it breaks
	// agreement with its neighbors
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.RotatePiece(1); e != nil {
		t.Errorf("Rotation of placed piece failed: %v", e)
	}

	if e := s.RotatePiece(9); e == nil {
		t.Errorf("Rotation of unknown piece succeeded")
	}
}

func TestSetStrategy(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if got := s.StrategyName(); got != ExactMatchStrategyName {
		t.Errorf("Default strategy: got %q, expected %q", got, ExactMatchStrategyName)
	}
	if e := s.SetStrategy(HybridStrategyName); e != nil {
		t.Fatalf("Strategy change failed: %v", e)
	}
	if got := s.StrategyName(); got != HybridStrategyName {
		t.Errorf("Strategy after change: got %q, expected %q", got, HybridStrategyName)
	}
	if e := s.SetStrategy("no-such-strategy"); e == nil {
		t.Errorf("Change to unknown strategy succeeded")
	}
	if got := s.StrategyName(); got != HybridStrategyName {
		t.Errorf("Failed change clobbered the strategy: got %q", got)
	}
}

/*

completion

*/

func TestCompletion(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	homes := []Position{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, pos := range homes {
		if s.Complete() {
			t.Fatalf("Session complete with %d pieces placed", i)
		}
		if e := s.PlacePiece(PieceID(i+1), pos); e != nil {
			t.Fatalf("Placement of piece %d failed: %v", i+1, e)
		}
	}
	if !s.Complete() {
		t.Errorf("Session with all pieces home not complete")
	}
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress when complete: got %v, expected 100", got)
	}

	// rotating a placed piece un-completes the puzzle; three more
	// turns complete it again
	if e := s.RotatePiece(4); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	if s.Complete() {
		t.Errorf("Session complete with a rotated piece")
	}
	for i := 0; i < 3; i++ {
		if e := s.RotatePiece(4); e != nil {
			t.Fatalf("Rotation failed: %v", e)
		}
	}
	if !s.Complete() {
		t.Errorf("Session not complete after restoring rotation")
	}
}

// A full board is not a solved board: the 2x2 layout's flat edges
// let whole columns be swapped without any edge mismatch.
func TestFullButNotComplete(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	swapped := []struct {
		piece PieceID
		pos   Position
	}{
		{1, Position{Row: 0, Col: 1}},
		{2, Position{Row: 0, Col: 0}},
		{3, Position{Row: 1, Col: 1}},
		{4, Position{Row: 1, Col: 0}},
	}
	for _, sp := range swapped {
		if e := s.PlacePiece(sp.piece, sp.pos); e != nil {
			t.Fatalf("Swapped placement of piece %d failed: %v", sp.piece, e)
		}
	}
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress of full board: got %v, expected 100", got)
	}
	if s.Complete() {
		t.Errorf("Full board with swapped pieces reported complete")
	}
}

/*

events

*/

// helperEventCollector subscribes a collector and returns the
// slice it appends to.
func helperEventCollector(s *Session) *[]Event {
	var events []Event
	s.Subscribe(func(e Event) {
		events = append(events, e)
	})
	return &events
}

func TestEventSequence(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	events := helperEventCollector(s)

	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.RotatePiece(2); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	if _, e := s.RemovePiece(Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Removal failed: %v", e)
	}
	if !s.Undo() {
		t.Fatalf("Undo failed")
	}
	if !s.Redo() {
		t.Fatalf("Redo failed")
	}
	if _, ok := s.Hint(); !ok {
		t.Fatalf("Hint failed")
	}

	expected := []EventType{
		PiecePlacedEvent,
		PieceRotatedEvent,
		PieceRemovedEvent,
		MoveUndoneEvent,
		MoveRedoneEvent,
		HintGeneratedEvent,
	}
	if len(*events) != len(expected) {
		t.Fatalf("Event count: got %d (%v), expected %d", len(*events), *events, len(expected))
	}
	for i, e := range *events {
		if e.Type != expected[i] {
			t.Errorf("event %d: got %v, expected %v", i, e.Type, expected[i])
		}
	}
}

func TestInvalidPlacementEvents(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	events := helperEventCollector(s)

	type test struct {
		piece  PieceID
		pos    Position
		reason string
	}
	tests := []test{
		{2, Position{Row: 0, Col: 5}, "OutOfBounds"},
		{2, Position{Row: 0, Col: 0}, "PositionOccupied"},
		{3, Position{Row: 0, Col: 1}, "EdgeMismatch"},
	}
	for i, test := range tests {
		if e := s.PlacePiece(test.piece, test.pos); e == nil {
			t.Fatalf("test %d: invalid placement succeeded", i)
		}
		if len(*events) != i+1 {
			t.Fatalf("test %d: event count %d, expected %d", i, len(*events), i+1)
		}
		got := (*events)[i]
		if got.Type != InvalidPlacementEvent || got.Reason != test.reason {
			t.Errorf("test %d: got event %+v, expected reason %q", i, got, test.reason)
		}
	}

	// a rejected piece id produces an error but no event, since
	// there is no placement to describe
	if e := s.PlacePiece(9, Position{Row: 0, Col: 1}); e == nil {
		t.Fatalf("Placement of unknown piece succeeded")
	}
	if len(*events) != len(tests) {
		t.Errorf("Unknown-piece error emitted an event: %v", (*events)[len(*events)-1])
	}
}

func TestCompletionEvent(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	events := helperEventCollector(s)
	homes := []Position{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, pos := range homes {
		if e := s.PlacePiece(PieceID(i+1), pos); e != nil {
			t.Fatalf("Placement of piece %d failed: %v", i+1, e)
		}
	}
	last := (*events)[len(*events)-1]
	if last.Type != PuzzleCompleteEvent {
		t.Errorf("Last event after solving: got %v, expected %v", last.Type, PuzzleCompleteEvent)
	}

	// undoing off the solved state and redoing back emits the
	// completion event again
	if !s.Undo() {
		t.Fatalf("Undo failed")
	}
	if !s.Redo() {
		t.Fatalf("Redo failed")
	}
	last = (*events)[len(*events)-1]
	if last.Type != PuzzleCompleteEvent {
		t.Errorf("Last event after redo to solved: got %v, expected %v", last.Type, PuzzleCompleteEvent)
	}
}

/*

queries

*/

func TestQueries(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if got := s.Name(); got != "test-2x2" {
		t.Errorf("Name: got %q", got)
	}
	if got := s.PieceCount(); got != 4 {
		t.Errorf("Piece count: got %d, expected 4", got)
	}
	if _, e := s.Piece(9); e == nil {
		t.Errorf("Query of unknown piece succeeded")
	}
	if got := s.PieceAt(Position{Row: 5, Col: 5}); got != NoPiece {
		t.Errorf("Piece at out-of-bounds cell: got %d, expected 0", got)
	}

	st := s.State()
	if st.Width != 2 || st.Height != 2 || len(st.Cells) != 4 || len(st.Pieces) != 4 {
		t.Errorf("State shape: %+v", st)
	}
	if st.Strategy != ExactMatchStrategyName {
		t.Errorf("State strategy: got %q", st.Strategy)
	}

	// state snapshots are independent of later mutations
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if st.Cells[0] != NoPiece || st.Placed != 0 {
		t.Errorf("Earlier snapshot changed by a later placement: %+v", st)
	}
}
