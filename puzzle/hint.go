package puzzle

/*

Hint generation

The hint engine is a read-only search over the loose pieces and
the empty cells.  It works in strict priority tiers, the way
human solvers do: corners first, then the border frame, then
interior pieces next to already-placed work, and finally any
piece anywhere.  Each tier is attempted only when every earlier
tier produced nothing, and the confidence attached to a hint
reflects the tier that produced it.

Ties in the interior tier are broken deterministically: the
first empty cell in reading order wins, and within a cell the
lowest piece id wins.

*/

// Confidence values by tier.
const (
	cornerConfidence   = 1.0
	borderConfidence   = 0.9
	interiorConfidence = 0.8 // ceiling; scaled by placed-neighbor count
	fallbackConfidence = 0.5
)

// generateHint searches for the best next placement.  It never
// mutates board or piece state and is safe to call at any time.
// The only case with no hint at all is a tray with no loose
// pieces.
func generateHint(b *board) (Hint, bool) {
	loose := loosePieces(b)
	if len(loose) == 0 {
		return Hint{}, false
	}
	if h, ok := cornerHint(b, loose); ok {
		return h, true
	}
	if h, ok := borderHint(b, loose); ok {
		return h, true
	}
	if h, ok := interiorHint(b, loose); ok {
		return h, true
	}
	return fallbackHint(b, loose)
}

// loosePieces returns the unplaced pieces in id order.
func loosePieces(b *board) []*piece {
	var loose []*piece
	for i := 1; i < len(b.pieces); i++ {
		if !b.pieces[i].placed() {
			loose = append(loose, b.pieces[i])
		}
	}
	return loose
}

// cornerHint suggests any loose corner piece for the first empty
// board corner, scanning top-left, top-right, bottom-left,
// bottom-right.
func cornerHint(b *board, loose []*piece) (Hint, bool) {
	var candidate *piece
	for _, p := range loose {
		if p.isCorner() {
			candidate = p
			break
		}
	}
	if candidate == nil {
		return Hint{}, false
	}
	corners := []Position{
		{Row: 0, Col: 0},
		{Row: 0, Col: b.width - 1},
		{Row: b.height - 1, Col: 0},
		{Row: b.height - 1, Col: b.width - 1},
	}
	for _, pos := range corners {
		if b.at(pos) == NoPiece {
			return Hint{Piece: candidate.id, Target: pos, Confidence: cornerConfidence}, true
		}
	}
	return Hint{}, false
}

// borderHint suggests any loose border (non-corner) piece for
// the first empty perimeter cell that is not a corner, scanning
// row-major.
func borderHint(b *board, loose []*piece) (Hint, bool) {
	var candidate *piece
	for _, p := range loose {
		if p.isBorder() {
			candidate = p
			break
		}
	}
	if candidate == nil {
		return Hint{}, false
	}
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			pos := Position{Row: row, Col: col}
			if !onPerimeter(b, pos) || isCornerCell(b, pos) {
				continue
			}
			if b.at(pos) == NoPiece {
				return Hint{Piece: candidate.id, Target: pos, Confidence: borderConfidence}, true
			}
		}
	}
	return Hint{}, false
}

// interiorHint pairs every loose interior piece with every empty
// interior cell and picks the pair with the most placed
// neighbors.  Confidence is the neighbor count over four, capped
// at the interior ceiling.
func interiorHint(b *board, loose []*piece) (Hint, bool) {
	var interior []*piece
	for _, p := range loose {
		if p.isInterior() {
			interior = append(interior, p)
		}
	}
	if len(interior) == 0 {
		return Hint{}, false
	}
	best, bestCount, found := Hint{}, -1, false
	for row := 1; row < b.height-1; row++ {
		for col := 1; col < b.width-1; col++ {
			pos := Position{Row: row, Col: col}
			if b.at(pos) != NoPiece {
				continue
			}
			count := len(b.placedNeighbors(pos))
			if count <= bestCount {
				continue
			}
			confidence := float64(count) / 4
			if confidence > interiorConfidence {
				confidence = interiorConfidence
			}
			// interior[0] has the lowest loose interior id, which
			// is the documented tie-break within a cell
			best = Hint{Piece: interior[0].id, Target: pos, Confidence: confidence}
			bestCount, found = count, true
		}
	}
	return best, found
}

// fallbackHint pairs the first loose piece with the first empty
// cell in reading order.  With a loose piece in hand the board
// can't be full, so the scan always finds a cell.
func fallbackHint(b *board, loose []*piece) (Hint, bool) {
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			pos := Position{Row: row, Col: col}
			if b.at(pos) == NoPiece {
				return Hint{Piece: loose[0].id, Target: pos, Confidence: fallbackConfidence}, true
			}
		}
	}
	return Hint{}, false
}

// onPerimeter reports whether a cell is on the board rim.
func onPerimeter(b *board, pos Position) bool {
	return pos.Row == 0 || pos.Row == b.height-1 || pos.Col == 0 || pos.Col == b.width-1
}

// isCornerCell reports whether a cell is one of the four board corners.
func isCornerCell(b *board, pos Position) bool {
	return (pos.Row == 0 || pos.Row == b.height-1) && (pos.Col == 0 || pos.Col == b.width-1)
}
