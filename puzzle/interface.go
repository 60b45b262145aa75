// Copyright 2016 Daniel C. Brotsky.  All rights reserved.

// Package puzzle provides a model for jigsaw puzzles and
// operations on them.  It supports both a golang interface and a
// web interface to the puzzles.
//
// In this package, jigsaw puzzles are made of pieces which are
// either loose (in the tray) or placed in a cell of a
// rectangular board.  Cells are designated by (row, column)
// positions that start at (0, 0) in the top-left corner and
// increase left-to-right, top-to-bottom (English reading order).
// Pieces are designated by ids that start at 1.
//
// Each piece has four edges, one per side, and each edge carries
// a pattern: a flat edge (part of the puzzle rim), a socket
// (concave), or a tab (convex).  A flat edge mates only with
// another flat edge; a socket mates only with a tab.  Because
// rotating a piece permutes its edges without changing their
// multiset of patterns, the classification of a piece as corner
// (two flats), border (one flat), or interior (no flats) is
// invariant under rotation.
//
// Whether a piece may be placed in a given cell is decided by a
// matching strategy.  Strategies are registered by name and can
// be swapped on a live session; the ones built into this package
// are edge-pattern matching, edge-pattern matching tightened by
// color-signature similarity, and a hybrid that applies the
// color check only to interior pieces.
//
// Every successful placement, removal, or rotation is recorded
// as a minimal delta so it can be undone and redone.  The
// history is linear: any new action after an undo discards the
// redo chain.
package puzzle

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

/*

Positions and directions

*/

// A Position designates a board cell by row and column,
// zero-based from the top-left corner.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Positions implement Stringer
func (pos Position) String() string {
	return fmt.Sprintf("(%d, %d)", pos.Row, pos.Col)
}

// A Direction designates one side of a piece or one step on the
// board.  The four directions are in clockwise cyclic order, so
// rotation and opposition are both index arithmetic.
type Direction int

// Constants for the four directions.
const (
	Top Direction = iota
	Right
	Bottom
	Left
	directionCount
)

// Opposite returns the direction facing d across a shared edge.
func (d Direction) Opposite() Direction {
	return (d + 2) % directionCount
}

// Directions implement Stringer
func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return fmt.Sprintf("<direction %d>", int(d))
}

// delta returns the row and column offsets of the neighboring
// cell in direction d.
func (d Direction) delta() (dr, dc int) {
	switch d {
	case Top:
		return -1, 0
	case Right:
		return 0, 1
	case Bottom:
		return 1, 0
	case Left:
		return 0, -1
	}
	panic(fmt.Errorf("delta of unknown direction %d", int(d)))
}

/*

Edges

*/

// An EdgePattern classifies one side of a piece.
type EdgePattern int

// Constants for the edge patterns.
const (
	Flat EdgePattern = iota // straight rim edge
	Socket
	Tab
	patternCount
)

// EdgePatterns implement Stringer
func (ep EdgePattern) String() string {
	switch ep {
	case Flat:
		return "flat"
	case Socket:
		return "socket"
	case Tab:
		return "tab"
	}
	return fmt.Sprintf("<pattern %d>", int(ep))
}

// CanConnect reports whether two edge patterns mate: flat
// against flat, socket against tab.  It is symmetric in its
// arguments.
func CanConnect(a, b EdgePattern) bool {
	switch a {
	case Flat:
		return b == Flat
	case Socket:
		return b == Tab
	case Tab:
		return b == Socket
	}
	return false
}

// An Edge is one side of a piece: its pattern, an opaque color
// signature used for fuzzy matching, and the direction the edge
// currently faces.  Edges are owned by their piece and never
// shared.
type Edge struct {
	Pattern   EdgePattern `json:"pattern"`
	Signature string      `json:"signature,omitempty"`
	Direction Direction   `json:"direction"`
}

/*

Pieces, hints, moves

*/

// A PieceID names a piece in a session.  Ids start at 1; the
// zero id means "no piece" and is what empty board cells hold.
type PieceID int

// NoPiece is the id held by empty board cells.
const NoPiece PieceID = 0

// A PieceState is the exported form of one piece: its edges in
// current orientation, its rotation in degrees, the cell it
// belongs in when solved, and (if placed) the cell it occupies.
type PieceState struct {
	ID       PieceID   `json:"id"`
	Edges    [4]Edge   `json:"edges"`
	Rotation int       `json:"rotation"`
	Home     Position  `json:"home"`
	At       *Position `json:"at,omitempty"`
}

// Placed reports whether the piece is on the board.
func (ps PieceState) Placed() bool {
	return ps.At != nil
}

// A Hint pairs a loose piece with a suggested cell, along with a
// confidence between 0 and 1.
type Hint struct {
	Piece      PieceID  `json:"piece"`
	Target     Position `json:"target"`
	Confidence float64  `json:"confidence"`
}

// A Move is the minimal reversible delta of one placement,
// removal, or rotation.  A nil From means the piece was loose
// before the move; a nil To means it is loose after.  Moves are
// immutable once recorded and are applied symmetrically for undo
// (reverse effect) and redo (forward effect).
type Move struct {
	Piece          PieceID   `json:"piece"`
	From           *Position `json:"from,omitempty"`
	To             *Position `json:"to,omitempty"`
	RotationBefore int       `json:"rotationBefore"`
	RotationAfter  int       `json:"rotationAfter"`
}

// Moves implement Stringer
func (m Move) String() string {
	opt := func(pos *Position) string {
		if pos == nil {
			return "tray"
		}
		return pos.String()
	}
	if m.RotationBefore != m.RotationAfter {
		return fmt.Sprintf("piece %d: %s -> %s, %d° -> %d°",
			m.Piece, opt(m.From), opt(m.To), m.RotationBefore, m.RotationAfter)
	}
	return fmt.Sprintf("piece %d: %s -> %s", m.Piece, opt(m.From), opt(m.To))
}

/*

Events

*/

// An EventType names something that happened to a session.
type EventType string

// Constants for the event types.
const (
	PiecePlacedEvent      EventType = "piece_placed"
	PieceRemovedEvent     EventType = "piece_removed"
	PieceRotatedEvent     EventType = "piece_rotated"
	HintGeneratedEvent    EventType = "hint_generated"
	MoveUndoneEvent       EventType = "move_undone"
	MoveRedoneEvent       EventType = "move_redone"
	PuzzleCompleteEvent   EventType = "puzzle_complete"
	InvalidPlacementEvent EventType = "invalid_placement"
)

// An Event describes one thing that happened to a session.  Only
// the fields relevant to the event type are filled in; invalid
// placements additionally carry a reason code (see Reason).
type Event struct {
	Type     EventType `json:"type"`
	Piece    PieceID   `json:"piece,omitempty"`
	Position *Position `json:"position,omitempty"`
	Rotation int       `json:"rotation,omitempty"`
	Hint     *Hint     `json:"hint,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}

// A Listener receives session events.  Listeners are called
// synchronously after the session state has settled; they must
// not call back into mutating session operations.
type Listener func(Event)

/*

Summaries

*/

// A PieceSummary is the serializable form of one piece as handed
// over by the generator (or as saved mid-session): edge patterns
// and signatures in the piece's current orientation, the current
// rotation in degrees, and the home cell of the solved layout.
type PieceSummary struct {
	ID         PieceID        `json:"id"`
	Patterns   [4]EdgePattern `json:"patterns"`
	Signatures [4]string      `json:"signatures,omitempty"`
	Rotation   int            `json:"rotation,omitempty"`
	Home       Position       `json:"home"`
}

// A Summary is the serializable form of a whole session: the
// generated layout, the matching strategy in force, and the
// moves made so far.  New reconstitutes a live session from a
// summary by replaying the moves, so a summary is all that ever
// needs to be persisted.
type Summary struct {
	Name     string         `json:"name,omitempty"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Pieces   []PieceSummary `json:"pieces"`
	Strategy string         `json:"strategy,omitempty"`
	Moves    []Move         `json:"moves,omitempty"`
}

// Hash returns a hex string that identifies the summary's layout
// (dimensions and pieces): two layouts of the same puzzle hash
// the same regardless of name, strategy, or moves made.  Storage
// layers use it as a content-addressed layout id.
func (s *Summary) Hash() (string, error) {
	layout := struct {
		Width  int            `json:"width"`
		Height int            `json:"height"`
		Pieces []PieceSummary `json:"pieces"`
	}{s.Width, s.Height, s.Pieces}
	bytes, e := json.Marshal(layout)
	if e != nil {
		return "", Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
	}
	return fmt.Sprintf("%x", sha256.Sum256(bytes)), nil
}

/*

Session state

*/

// A State is the exported snapshot of a session: dimensions, the
// strategy in force, cell occupancy in reading order, every
// piece's state, progress, and history depths.
type State struct {
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Strategy  string       `json:"strategy"`
	Cells     []PieceID    `json:"cells"`
	Pieces    []PieceState `json:"pieces"`
	Placed    int          `json:"placed"`
	Progress  float64      `json:"progress"`
	Complete  bool         `json:"complete"`
	UndoDepth int          `json:"undoDepth"`
	RedoDepth int          `json:"redoDepth"`
}
