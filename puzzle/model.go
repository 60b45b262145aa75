package puzzle

/*

Jigsaw puzzle representation

*/

import (
	"fmt"
)

/*

Pieces

*/

// A piece is our internal representation of one jigsaw piece.
// Its edges are indexed by the direction they currently face, so
// rotating the piece cyclically reassigns the slice.  Placement
// has a single source of truth: the at/onBoard pair.  Everything
// else ("placed", corner/border/interior class, correctness) is
// derived.
type piece struct {
	id       PieceID
	edges    [4]Edge  // indexed by Direction
	rotation int      // degrees clockwise from generated orientation
	home     Position // cell this piece occupies in the solved layout
	at       Position // current cell; meaningful only when onBoard
	onBoard  bool
}

// placed reports whether the piece occupies a board cell.
func (p *piece) placed() bool {
	return p.onBoard
}

// rotateClockwise turns the piece a quarter turn: the edge that
// faced left now faces top, top goes to right, right to bottom,
// bottom to left.  Each edge's stored direction is updated to
// its new slot.  Rotation always succeeds and has no placement
// precondition.
func (p *piece) rotateClockwise() {
	p.edges[Top], p.edges[Right], p.edges[Bottom], p.edges[Left] =
		p.edges[Left], p.edges[Top], p.edges[Right], p.edges[Bottom]
	for d := Top; d < directionCount; d++ {
		p.edges[d].Direction = d
	}
	p.rotation = (p.rotation + 90) % 360
}

// rotateCounterClockwise is three clockwise quarter turns, so
// the undo machinery only ever needs the clockwise primitive.
func (p *piece) rotateCounterClockwise() {
	p.rotateClockwise()
	p.rotateClockwise()
	p.rotateClockwise()
}

// flatCount returns the number of flat edges on the piece.  The
// count is invariant under rotation because rotation permutes
// the edges without changing their patterns.
func (p *piece) flatCount() (count int) {
	for d := Top; d < directionCount; d++ {
		if p.edges[d].Pattern == Flat {
			count++
		}
	}
	return
}

// isCorner: exactly two flat edges.
func (p *piece) isCorner() bool { return p.flatCount() == 2 }

// isBorder: exactly one flat edge.
func (p *piece) isBorder() bool { return p.flatCount() == 1 }

// isInterior: no flat edges.
func (p *piece) isInterior() bool { return p.flatCount() == 0 }

// correctlyPlaced reports whether the piece sits in its home
// cell in the generated orientation.  The solved orientation is
// rotation 0 by construction.
func (p *piece) correctlyPlaced() bool {
	return p.onBoard && p.at == p.home && p.rotation == 0
}

// state returns the exported form of the piece.
func (p *piece) state() PieceState {
	ps := PieceState{
		ID:       p.id,
		Edges:    p.edges,
		Rotation: p.rotation,
		Home:     p.home,
	}
	if p.onBoard {
		at := p.at
		ps.At = &at
	}
	return ps
}

/*

The board

*/

// A neighbor pairs a direction with the id of the placed piece
// found one cell away in that direction.
type neighbor struct {
	direction Direction
	id        PieceID
}

// A board is a fixed-size grid of cells, each empty or holding a
// piece id, plus the arena of pieces those ids resolve through.
// Cells hold ids rather than piece pointers so there are no
// reference cycles between the grid and the pieces; the arena is
// 1-based, indexed directly by id.
type board struct {
	width, height int
	cells         []PieceID // row-major; NoPiece means empty
	placedCount   int
	pieces        []*piece // 1-based indexing
}

// newBoard makes an empty board of the given dimensions with an
// arena sized for width*height pieces.
func newBoard(width, height int) *board {
	return &board{
		width:  width,
		height: height,
		cells:  make([]PieceID, width*height),
		pieces: make([]*piece, width*height+1), // 1-based indexing
	}
}

// inBounds reports whether a position is on the board.
func (b *board) inBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.height && pos.Col >= 0 && pos.Col < b.width
}

// cellIndex maps a position to its row-major cell index.
// Callers must bounds-check first.
func (b *board) cellIndex(pos Position) int {
	return pos.Row*b.width + pos.Col
}

// at returns the id in a cell, or NoPiece if the cell is empty
// or out of bounds.
func (b *board) at(pos Position) PieceID {
	if !b.inBounds(pos) {
		return NoPiece
	}
	return b.cells[b.cellIndex(pos)]
}

// piece resolves an id through the arena.  Returns nil for ids
// that were never registered.
func (b *board) piece(id PieceID) *piece {
	if id < 1 || int(id) >= len(b.pieces) {
		return nil
	}
	return b.pieces[id]
}

// place puts a piece into a cell, updating the cell, the piece's
// position, and the placed count together.  Fails with an
// out-of-bounds or occupied Error and changes nothing on
// failure.  The caller is responsible for strategy validation;
// place enforces only the board invariants.
func (b *board) place(id PieceID, pos Position) error {
	if !b.inBounds(pos) {
		return boundsError(pos, b.width, b.height)
	}
	if holder := b.cells[b.cellIndex(pos)]; holder != NoPiece {
		return occupiedError(pos, holder)
	}
	p := b.piece(id)
	if p == nil {
		return pieceError(id, UnknownPieceCondition)
	}
	if p.onBoard {
		return pieceError(id, AlreadyPlacedCondition, p.at)
	}
	b.cells[b.cellIndex(pos)] = id
	p.at, p.onBoard = pos, true
	b.placedCount++
	return nil
}

// remove clears a cell, returning the id that was there and
// whether the cell was occupied.  Removing from an empty or
// out-of-bounds cell is a no-op.
func (b *board) remove(pos Position) (PieceID, bool) {
	if !b.inBounds(pos) {
		return NoPiece, false
	}
	id := b.cells[b.cellIndex(pos)]
	if id == NoPiece {
		return NoPiece, false
	}
	p := b.piece(id)
	b.cells[b.cellIndex(pos)] = NoPiece
	p.at, p.onBoard = Position{}, false
	b.placedCount--
	return id, true
}

// neighborAt returns the id of the placed piece one cell away in
// the given direction, if any.  Cells past the board rim have no
// neighbor.
func (b *board) neighborAt(pos Position, d Direction) (PieceID, bool) {
	dr, dc := d.delta()
	id := b.at(Position{Row: pos.Row + dr, Col: pos.Col + dc})
	return id, id != NoPiece
}

// placedNeighbors enumerates all four directions from a cell and
// returns the ones where a placed piece was found.
func (b *board) placedNeighbors(pos Position) []neighbor {
	var ns []neighbor
	for d := Top; d < directionCount; d++ {
		if id, ok := b.neighborAt(pos, d); ok {
			ns = append(ns, neighbor{d, id})
		}
	}
	return ns
}

// progress returns the percentage of cells filled.
func (b *board) progress() float64 {
	return float64(b.placedCount) / float64(b.width*b.height) * 100
}

// full reports whether every cell holds a piece.
func (b *board) full() bool {
	return b.placedCount == b.width*b.height
}

// solved reports whether the board is full and every piece is in
// its home cell at rotation 0.  A full board with pieces swapped
// among mutually compatible cells is not solved.
func (b *board) solved() bool {
	if !b.full() {
		return false
	}
	for i := 1; i < len(b.pieces); i++ {
		if !b.pieces[i].correctlyPlaced() {
			return false
		}
	}
	return true
}

// checkInvariants panics if the cell grid and the piece arena
// disagree.  A failure here is a bug in this package, not a bad
// request, which is why it doesn't return an Error.
func (b *board) checkInvariants() {
	placed := 0
	for i := 1; i < len(b.pieces); i++ {
		p := b.pieces[i]
		if p.onBoard {
			placed++
			if b.at(p.at) != p.id {
				panic(fmt.Errorf("piece %d thinks it is at %v but the cell holds %d",
					p.id, p.at, b.at(p.at)))
			}
		}
	}
	cellCount := 0
	for _, id := range b.cells {
		if id != NoPiece {
			cellCount++
		}
	}
	if placed != b.placedCount || cellCount != b.placedCount {
		panic(fmt.Errorf("placedCount %d disagrees with pieces (%d) or cells (%d)",
			b.placedCount, placed, cellCount))
	}
}

/*

Signature similarity

*/

// signatureSimilarity scores two edge signatures as the fraction
// of positionally equal tokens.  Signatures of different lengths
// or empty signatures score 0.
func signatureSimilarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	same := 0
	for i := 0; i < len(a); i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(len(a))
}
