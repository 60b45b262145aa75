package puzzle

/*

Sessions

A Session owns the only mutable handle to one board and its
piece set, and is the single public surface for mutating them.
Callers get a Session value from New and pass it around
explicitly; there is no package-level current session.

Every public operation is synchronous, performs no I/O, and
either completes entirely or changes nothing.  The engine does
no locking of its own: callers that share a Session across
goroutines must serialize access around it.

*/

import (
	"fmt"
)

// Board-dimension limits.  The ceiling keeps cell indexes well
// inside int range on any build and matches what the stock
// generator will produce.
const (
	MinSideLength = 2
	MaxSideLength = 255
)

// A Session is a live puzzle: board, piece arena, active
// matching strategy, move history, and event listeners.  The
// layout the session was built from is kept verbatim (it never
// changes mid-session), so a summary is always the immutable
// layout plus the current move list.
type Session struct {
	name      string
	layout    []PieceSummary // as handed to New, in id order
	board     *board
	strategy  Strategy
	history   history
	listeners []Listener
}

/*

Session construction

*/

// New builds a Session from a Summary: the layout handed over by
// the generator, plus any moves already made.  The summary's
// shape is validated (dimensions, piece count, unique ids and
// home cells, legal rotations) but global solvability is not;
// the generator is trusted to have produced consistent seams and
// a flat rim.  Recorded moves are replayed without re-running
// strategy validation, since they were validated when first
// made.
func New(summary *Summary) (*Session, error) {
	if summary == nil {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: EmptyArgumentCondition,
		}
	}
	if summary.Width < MinSideLength || summary.Width > MaxSideLength {
		return nil, rangeError(WidthAttribute, summary.Width, MinSideLength, MaxSideLength)
	}
	if summary.Height < MinSideLength || summary.Height > MaxSideLength {
		return nil, rangeError(HeightAttribute, summary.Height, MinSideLength, MaxSideLength)
	}
	want := summary.Width * summary.Height
	if len(summary.Pieces) != want {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeValueStructure,
			Attribute: SummaryAttribute,
			Condition: WrongPieceCountCondition,
			Values:    ErrorData{len(summary.Pieces), want},
		}
	}
	strategy, ok := LookupStrategy(summary.Strategy)
	if !ok {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeValueStructure,
			Attribute: StrategyAttribute,
			Condition: UnknownStrategyCondition,
			Values:    ErrorData{summary.Strategy},
		}
	}

	b := newBoard(summary.Width, summary.Height)
	homes := make(map[Position]PieceID, want)
	for _, ps := range summary.Pieces {
		if ps.ID < 1 || int(ps.ID) > want {
			return nil, pieceError(ps.ID, UnknownPieceCondition)
		}
		if b.pieces[ps.ID] != nil {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeStructure,
				Attribute: PieceAttribute,
				Condition: DuplicatePieceCondition,
				Values:    ErrorData{ps.ID},
			}
		}
		if !b.inBounds(ps.Home) {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeStructure,
				Attribute: HomeAttribute,
				Condition: OutOfBoundsCondition,
				Values:    ErrorData{ps.Home, summary.Width, summary.Height},
			}
		}
		if holder, ok := homes[ps.Home]; ok {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeStructure,
				Attribute: HomeAttribute,
				Condition: DuplicateHomeCondition,
				Values:    ErrorData{ps.Home, holder, ps.ID},
			}
		}
		if ps.Rotation%90 != 0 || ps.Rotation < 0 || ps.Rotation >= 360 {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeValueStructure,
				Attribute: RotationAttribute,
				Condition: InvalidRotationCondition,
				Values:    ErrorData{ps.Rotation},
			}
		}
		homes[ps.Home] = ps.ID
		p := &piece{id: ps.ID, rotation: ps.Rotation, home: ps.Home}
		for d := Top; d < directionCount; d++ {
			p.edges[d] = Edge{
				Pattern:   ps.Patterns[d],
				Signature: ps.Signatures[d],
				Direction: d,
			}
		}
		b.pieces[ps.ID] = p
	}

	layout := make([]PieceSummary, want)
	for _, ps := range summary.Pieces {
		layout[ps.ID-1] = ps
	}
	s := &Session{name: summary.Name, layout: layout, board: b, strategy: strategy}
	for i, m := range summary.Moves {
		if err := s.replay(m); err != nil {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeValueStructure,
				Attribute: MoveAttribute,
				Condition: ReplayFailureCondition,
				Values:    ErrorData{i, err.Error()},
			}
		}
	}
	return s, nil
}

// replay applies one recorded move during construction.  The
// board primitives still enforce their own invariants, so a
// corrupted move list surfaces as an error here instead of a
// panic later.
func (s *Session) replay(m Move) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	if p := s.board.piece(m.Piece); p == nil {
		return pieceError(m.Piece, UnknownPieceCondition)
	}
	forwardMove(s.board, m)
	s.history.undo = append(s.history.undo, m)
	return nil
}

/*

Events

*/

// Subscribe registers a listener for session events.  Listeners
// are invoked synchronously, in registration order, after the
// operation that produced the event has fully settled.
func (s *Session) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Session) notify(e Event) {
	for _, l := range s.listeners {
		l(e)
	}
}

// notifyComplete emits the completion event if the last mutation
// finished the puzzle.
func (s *Session) notifyComplete() {
	if s.board.solved() {
		s.notify(Event{Type: PuzzleCompleteEvent})
	}
}

/*

Mutating operations

*/

// PlacePiece puts a loose piece into an empty, in-bounds cell,
// subject to the active strategy.  On success the move is
// recorded for undo and the redo chain is discarded.  On failure
// nothing changes, no history is recorded, and (for the three
// placement reasons) an invalid-placement event is emitted.
func (s *Session) PlacePiece(id PieceID, pos Position) error {
	p := s.board.piece(id)
	if p == nil {
		return pieceError(id, UnknownPieceCondition)
	}
	if p.placed() {
		return pieceError(id, AlreadyPlacedCondition, p.at)
	}
	if err := s.rejectPlacement(p, pos); err != nil {
		return err
	}
	to := pos
	m := Move{
		Piece:          id,
		To:             &to,
		RotationBefore: p.rotation,
		RotationAfter:  p.rotation,
	}
	if err := s.history.executeMove(m, func() error {
		return s.board.place(id, pos)
	}); err != nil {
		return err
	}
	s.notify(Event{Type: PiecePlacedEvent, Piece: id, Position: &to, Rotation: p.rotation})
	s.notifyComplete()
	return nil
}

// rejectPlacement runs the pre-mutation checks in order: bounds,
// occupancy, then the active strategy.  A typed Error comes back
// for the caller and the matching reason code goes out as an
// event.
func (s *Session) rejectPlacement(p *piece, pos Position) error {
	var err Error
	switch {
	case !s.board.inBounds(pos):
		err = boundsError(pos, s.board.width, s.board.height)
	case s.board.at(pos) != NoPiece:
		err = occupiedError(pos, s.board.at(pos))
	case !s.strategy.validPlacement(s.board, p, pos):
		err = mismatchError(p.id, pos, s.strategy.Name())
	default:
		return nil
	}
	at := pos
	s.notify(Event{
		Type:     InvalidPlacementEvent,
		Piece:    p.id,
		Position: &at,
		Reason:   err.Reason(),
	})
	return err
}

// RemovePiece takes the piece out of a cell and back to the
// tray, recording the move for undo.  Removing from an empty
// cell is a quiet no-op that returns NoPiece and records
// nothing.  An out-of-bounds position is a caller error.
func (s *Session) RemovePiece(pos Position) (PieceID, error) {
	if !s.board.inBounds(pos) {
		return NoPiece, boundsError(pos, s.board.width, s.board.height)
	}
	id := s.board.at(pos)
	if id == NoPiece {
		return NoPiece, nil
	}
	p := s.board.piece(id)
	from := pos
	m := Move{
		Piece:          id,
		From:           &from,
		RotationBefore: p.rotation,
		RotationAfter:  p.rotation,
	}
	if err := s.history.executeMove(m, func() error {
		if removed, ok := s.board.remove(pos); !ok || removed != id {
			return Error{
				Scope:     InternalScope,
				Structure: AttributeStructure,
				Attribute: LocationAttribute,
				Condition: GeneralCondition,
				Values:    ErrorData{"RemovePiece", fmt.Sprintf("cell %v changed underfoot", pos)},
			}
		}
		return nil
	}); err != nil {
		return NoPiece, err
	}
	s.notify(Event{Type: PieceRemovedEvent, Piece: id, Position: &from})
	return id, nil
}

// RotatePiece turns a piece a quarter turn clockwise, placed or
// not, and records the move for undo.  Rotation has no validity
// precondition: a placed piece may be rotated out of agreement
// with its neighbors, and placing it again elsewhere is what
// re-checks it.
func (s *Session) RotatePiece(id PieceID) error {
	p := s.board.piece(id)
	if p == nil {
		return pieceError(id, UnknownPieceCondition)
	}
	m := Move{
		Piece:          id,
		RotationBefore: p.rotation,
		RotationAfter:  (p.rotation + 90) % 360,
	}
	if p.placed() {
		at := p.at
		m.From, m.To = &at, &at
	}
	if err := s.history.executeMove(m, func() error {
		p.rotateClockwise()
		return nil
	}); err != nil {
		return err
	}
	s.notify(Event{Type: PieceRotatedEvent, Piece: id, Position: m.To, Rotation: p.rotation})
	s.notifyComplete()
	return nil
}

// Undo reverses the most recent move.  Returns false, quietly,
// when there is no history to reverse.
func (s *Session) Undo() bool {
	m, ok := s.history.undoMove(s.board)
	if !ok {
		return false
	}
	s.notify(Event{Type: MoveUndoneEvent, Piece: m.Piece, Position: m.From})
	return true
}

// Redo re-applies the most recently undone move.  Returns false,
// quietly, when there is nothing to redo.
func (s *Session) Redo() bool {
	m, ok := s.history.redoMove(s.board)
	if !ok {
		return false
	}
	s.notify(Event{Type: MoveRedoneEvent, Piece: m.Piece, Position: m.To})
	s.notifyComplete()
	return true
}

// SetStrategy swaps the active matching strategy by registered
// name.  Already-placed pieces are not re-validated; the new
// strategy governs placements from now on.
func (s *Session) SetStrategy(name string) error {
	strategy, ok := LookupStrategy(name)
	if !ok {
		return Error{
			Scope:     ArgumentScope,
			Structure: AttributeValueStructure,
			Attribute: StrategyAttribute,
			Condition: UnknownStrategyCondition,
			Values:    ErrorData{name},
		}
	}
	s.strategy = strategy
	return nil
}

/*

Read-only queries

*/

// Hint suggests the best next placement, or reports false when
// no loose pieces remain.  Hint never mutates session state, so
// it is safe to interleave with undo and redo.
func (s *Session) Hint() (Hint, bool) {
	h, ok := generateHint(s.board)
	if ok {
		hint := h
		s.notify(Event{Type: HintGeneratedEvent, Piece: h.Piece, Position: &hint.Target, Hint: &hint})
	}
	return h, ok
}

// Complete reports whether the puzzle is solved: board full and
// every piece in its home cell at rotation 0.  A full board with
// pieces swapped among mutually compatible cells is not solved.
func (s *Session) Complete() bool {
	return s.board.solved()
}

// Progress returns the percentage of cells filled.
func (s *Session) Progress() float64 {
	return s.board.progress()
}

// Name returns the layout name the session was built from.
func (s *Session) Name() string {
	return s.name
}

// StrategyName returns the name of the strategy in force.
func (s *Session) StrategyName() string {
	return s.strategy.Name()
}

// PieceCount returns the size of the piece set.
func (s *Session) PieceCount() int {
	return len(s.board.pieces) - 1
}

// Piece returns the exported state of one piece.
func (s *Session) Piece(id PieceID) (PieceState, error) {
	p := s.board.piece(id)
	if p == nil {
		return PieceState{}, pieceError(id, UnknownPieceCondition)
	}
	return p.state(), nil
}

// PieceAt returns the id occupying a cell, or NoPiece.
func (s *Session) PieceAt(pos Position) PieceID {
	return s.board.at(pos)
}

// Moves returns the moves made so far (the undo stack), oldest
// first.  The returned slice does not share storage with the
// session.
func (s *Session) Moves() []Move {
	return s.history.moves()
}

// State returns a full snapshot of the session.  The snapshot
// does not share storage with the session, so future operations
// do not affect prior returns from State.
func (s *Session) State() State {
	st := State{
		Width:     s.board.width,
		Height:    s.board.height,
		Strategy:  s.strategy.Name(),
		Cells:     append([]PieceID(nil), s.board.cells...),
		Placed:    s.board.placedCount,
		Progress:  s.board.progress(),
		Complete:  s.board.solved(),
		UndoDepth: len(s.history.undo),
		RedoDepth: len(s.history.redo),
	}
	st.Pieces = make([]PieceState, 0, len(s.board.pieces)-1)
	for i := 1; i < len(s.board.pieces); i++ {
		st.Pieces = append(st.Pieces, s.board.pieces[i].state())
	}
	return st
}

// Summary returns the serializable form of the session: the
// immutable starting layout plus the moves made so far.  Feeding
// the result back to New reproduces the session exactly, because
// New replays the moves against the pristine layout.
func (s *Session) Summary() *Summary {
	return &Summary{
		Name:     s.name,
		Width:    s.board.width,
		Height:   s.board.height,
		Pieces:   append([]PieceSummary(nil), s.layout...),
		Strategy: s.strategy.Name(),
		Moves:    s.history.moves(),
	}
}
