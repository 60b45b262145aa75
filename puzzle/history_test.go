package puzzle

/*

Tests for the move history.

*/

import (
	"reflect"
	"testing"
)

func TestExecuteMoveRecordsOnlySuccess(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	h := &s.history

	pos := Position{Row: 0, Col: 0}
	m := Move{Piece: 1, To: &pos}
	if e := h.executeMove(m, func() error { return s.board.place(1, pos) }); e != nil {
		t.Fatalf("Execute failed: %v", e)
	}
	if len(h.undo) != 1 {
		t.Errorf("Undo depth after success: got %d, expected 1", len(h.undo))
	}

	// a failing apply records nothing
	bad := Move{Piece: 2, To: &pos}
	if e := h.executeMove(bad, func() error { return s.board.place(2, pos) }); e == nil {
		t.Fatalf("Execute into occupied cell succeeded")
	}
	if len(h.undo) != 1 {
		t.Errorf("Undo depth after failure: got %d, expected 1", len(h.undo))
	}
}

func TestExecuteMoveClearsRedo(t *testing.T) {
	s := helperSession(t, helperSummary2x2())

	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if !s.Undo() {
		t.Fatalf("Undo of placement failed")
	}
	if len(s.history.redo) != 1 {
		t.Fatalf("Redo depth after undo: got %d, expected 1", len(s.history.redo))
	}

	// any new move discards the redo chain
	if e := s.PlacePiece(2, Position{Row: 0, Col: 1}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if len(s.history.redo) != 0 {
		t.Errorf("Redo depth after new move: got %d, expected 0", len(s.history.redo))
	}
	if s.Redo() {
		t.Errorf("Redo succeeded after the chain was discarded")
	}

	// but a failed move preserves it
	if !s.Undo() {
		t.Fatalf("Undo of second placement failed")
	}
	if e := s.PlacePiece(9, Position{Row: 0, Col: 1}); e == nil {
		t.Fatalf("Placement of unknown piece succeeded")
	}
	if !s.Redo() {
		t.Errorf("Redo chain lost to a failed move")
	}
}

func TestUndoRedoEmptyStacks(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if s.Undo() {
		t.Errorf("Undo on a fresh session succeeded")
	}
	if s.Redo() {
		t.Errorf("Redo on a fresh session succeeded")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	initial := s.State()

	// a mixed run of placements, a rotation, and a removal
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.PlacePiece(2, Position{Row: 0, Col: 1}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.RotatePiece(3); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	if _, e := s.RemovePiece(Position{Row: 0, Col: 1}); e != nil {
		t.Fatalf("Removal failed: %v", e)
	}
	final := s.State()
	if final.UndoDepth != 4 {
		t.Fatalf("Undo depth after four moves: got %d", final.UndoDepth)
	}

	// unwind everything and compare against the initial snapshot
	for i := 0; i < 4; i++ {
		if !s.Undo() {
			t.Fatalf("Undo %d failed", i+1)
		}
	}
	got := s.State()
	got.RedoDepth = initial.RedoDepth // only expected difference
	if !reflect.DeepEqual(got, initial) {
		t.Errorf("State after full undo: got %+v, expected %+v", got, initial)
	}

	// replay everything and compare against the final snapshot
	for i := 0; i < 4; i++ {
		if !s.Redo() {
			t.Fatalf("Redo %d failed", i+1)
		}
	}
	if got := s.State(); !reflect.DeepEqual(got, final) {
		t.Errorf("State after full redo: got %+v, expected %+v", got, final)
	}
}

func TestUndoRestoresRotation(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	if e := s.RotatePiece(1); e != nil {
		t.Fatalf("Rotation failed: %v", e)
	}
	if r := s.board.piece(1).rotation; r != 90 {
		t.Fatalf("Rotation after turn: got %d, expected 90", r)
	}
	if !s.Undo() {
		t.Fatalf("Undo of rotation failed")
	}
	p := s.board.piece(1)
	if p.rotation != 0 {
		t.Errorf("Rotation after undo: got %d, expected 0", p.rotation)
	}
	if !p.placed() || p.at != (Position{Row: 0, Col: 0}) {
		t.Errorf("Undo of a rotation moved the piece: %+v", p.state())
	}
}

func TestMovesAreCopied(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	if e := s.PlacePiece(1, Position{Row: 0, Col: 0}); e != nil {
		t.Fatalf("Placement failed: %v", e)
	}
	moves := s.Moves()
	if len(moves) != 1 {
		t.Fatalf("Move count: got %d, expected 1", len(moves))
	}
	moves[0].Piece = 99
	if s.history.undo[0].Piece != 1 {
		t.Errorf("Mutating the returned moves changed the history")
	}
}

func TestReentrantHistoryPanics(t *testing.T) {
	var h history
	h.undo = append(h.undo, Move{Piece: 1})
	defer func() {
		if recover() == nil {
			t.Errorf("Re-entrant history operation did not panic")
		}
	}()
	// an apply function calling back into the history mid-flight
	// is a bug in the caller and must be caught, not recorded
	h.executeMove(Move{Piece: 2}, func() error {
		h.undoMove(nil)
		return nil
	})
}
