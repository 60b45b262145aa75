package puzzle

/*

Tests for the hint engine.

*/

import (
	"testing"
)

// helperPlaceAll drops the given pieces into their home cells
// through the board primitives, bypassing strategy checks.
func helperPlaceAll(t *testing.T, b *board, ids ...PieceID) {
	for _, id := range ids {
		if e := b.place(id, b.piece(id).home); e != nil {
			t.Fatalf("Placement of piece %d failed: %v", id, e)
		}
	}
}

func TestCornerHint(t *testing.T) {
	summary, e := Generate("hint-test", 4, 4, 7, false)
	if e != nil {
		t.Fatalf("Generation failed: %v", e)
	}
	s := helperSession(t, summary)

	// on an untouched board the hint is the first loose corner
	// piece aimed at the top-left corner, with full confidence
	h, ok := s.Hint()
	if !ok {
		t.Fatalf("No hint for an untouched board")
	}
	expected := Hint{Piece: 1, Target: Position{Row: 0, Col: 0}, Confidence: 1.0}
	if h != expected {
		t.Errorf("Untouched board hint: got %+v, expected %+v", h, expected)
	}

	// fill the top-left corner: the hint moves to the next empty
	// corner in scan order (top-right)
	helperPlaceAll(t, s.board, 1)
	h, ok = s.Hint()
	if !ok {
		t.Fatalf("No hint with three empty corners")
	}
	expected = Hint{Piece: 4, Target: Position{Row: 0, Col: 3}, Confidence: 1.0}
	if h != expected {
		t.Errorf("Second corner hint: got %+v, expected %+v", h, expected)
	}
}

func TestBorderHint(t *testing.T) {
	summary, e := Generate("hint-test", 4, 4, 7, false)
	if e != nil {
		t.Fatalf("Generation failed: %v", e)
	}
	s := helperSession(t, summary)

	// fill all four corners; the corner tier is exhausted, so the
	// hint drops to the border tier: the first loose border piece,
	// the first empty non-corner rim cell, 0.9 confidence
	helperPlaceAll(t, s.board, 1, 4, 13, 16)
	h, ok := s.Hint()
	if !ok {
		t.Fatalf("No hint with corners filled")
	}
	expected := Hint{Piece: 2, Target: Position{Row: 0, Col: 1}, Confidence: 0.9}
	if h != expected {
		t.Errorf("Border hint: got %+v, expected %+v", h, expected)
	}
}

func TestInteriorHint(t *testing.T) {
	summary, e := Generate("hint-test", 4, 4, 7, false)
	if e != nil {
		t.Fatalf("Generation failed: %v", e)
	}
	s := helperSession(t, summary)

	// fill the whole perimeter; the interior tier pairs the lowest
	// loose interior id with the empty interior cell that has the
	// most placed neighbors, first in reading order on ties.
	// Every interior cell of an empty interior touches exactly two
	// placed rim pieces, so (1, 1) wins with confidence 2/4.
	helperPlaceAll(t, s.board, 1, 2, 3, 4, 5, 8, 9, 12, 13, 14, 15, 16)
	h, ok := s.Hint()
	if !ok {
		t.Fatalf("No hint with perimeter filled")
	}
	expected := Hint{Piece: 6, Target: Position{Row: 1, Col: 1}, Confidence: 0.5}
	if h != expected {
		t.Errorf("Interior hint: got %+v, expected %+v", h, expected)
	}

	// placing that piece makes (1, 2) the best cell: three placed
	// neighbors, confidence capped at the interior ceiling
	helperPlaceAll(t, s.board, 6)
	h, ok = s.Hint()
	if !ok {
		t.Fatalf("No hint with one interior piece placed")
	}
	expected = Hint{Piece: 7, Target: Position{Row: 1, Col: 2}, Confidence: 0.75}
	if h != expected {
		t.Errorf("Second interior hint: got %+v, expected %+v", h, expected)
	}
}

func TestInteriorConfidenceCeiling(t *testing.T) {
	summary, e := Generate("hint-test", 3, 3, 7, false)
	if e != nil {
		t.Fatalf("Generation failed: %v", e)
	}
	s := helperSession(t, summary)

	// with the full perimeter of a 3x3 placed, the single interior
	// cell has four placed neighbors; confidence must cap at 0.8
	// rather than reach 1.0
	helperPlaceAll(t, s.board, 1, 2, 3, 4, 6, 7, 8, 9)
	h, ok := s.Hint()
	if !ok {
		t.Fatalf("No hint with perimeter filled")
	}
	expected := Hint{Piece: 5, Target: Position{Row: 1, Col: 1}, Confidence: 0.8}
	if h != expected {
		t.Errorf("Capped interior hint: got %+v, expected %+v", h, expected)
	}
}

func TestFallbackHint(t *testing.T) {
	// a layout of nothing but interior pieces on a 2x2 board has
	// no corner pieces, no border pieces, and no interior cells,
	// so only the fallback tier can produce anything
	summary := helperSummary2x2()
	for i := range summary.Pieces {
		summary.Pieces[i].Patterns = [4]EdgePattern{Top: Socket, Right: Tab, Bottom: Socket, Left: Tab}
	}
	s := helperSession(t, summary)
	h, ok := s.Hint()
	if !ok {
		t.Fatalf("No fallback hint")
	}
	expected := Hint{Piece: 1, Target: Position{Row: 0, Col: 0}, Confidence: 0.5}
	if h != expected {
		t.Errorf("Fallback hint: got %+v, expected %+v", h, expected)
	}
}

func TestNoHintWhenNoLoosePieces(t *testing.T) {
	s := helperSession(t, helperSummary2x2())
	helperPlaceAll(t, s.board, 1, 2, 3, 4)
	if h, ok := s.Hint(); ok {
		t.Errorf("Hint for a board with no loose pieces: got %+v", h)
	}
}

func TestHintNeverMutates(t *testing.T) {
	summary, e := Generate("hint-test", 3, 3, 7, false)
	if e != nil {
		t.Fatalf("Generation failed: %v", e)
	}
	s := helperSession(t, summary)
	before := s.State()
	for i := 0; i < 3; i++ {
		if _, ok := s.Hint(); !ok {
			t.Fatalf("No hint on an untouched board")
		}
	}
	after := s.State()
	if len(before.Cells) != len(after.Cells) || before.Placed != after.Placed ||
		before.UndoDepth != after.UndoDepth || before.RedoDepth != after.RedoDepth {
		t.Errorf("Hint mutated session state: before %+v, after %+v", before, after)
	}
}
