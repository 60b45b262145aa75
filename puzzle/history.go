package puzzle

/*

Move history

The history manager records every successful mutation as a Move
delta and replays those deltas backwards (undo) and forwards
(redo).  The history is strictly linear: recording a new move
discards the entire redo chain, so there is never a branching
tree of pasts.  Memory per move is constant regardless of board
size, because a Move holds only the piece id, two optional
positions, and two rotation values; a full board snapshot is
never taken.

The manager tracks which phase it is in (idle, executing,
unwinding) for exactly the duration of one operation.  The phase
exists to catch a listener or strategy calling back into a
mutating operation mid-flight, which would corrupt the stacks.
That situation is a bug in the caller, so it panics rather than
returning an Error.

*/

import (
	"fmt"
)

// history phases
type historyPhase int

const (
	historyIdle historyPhase = iota
	historyExecuting
	historyUnwinding
)

// A history is a pair of move stacks plus the transient phase.
type history struct {
	undo  []Move
	redo  []Move
	phase historyPhase
}

// enter moves the history out of idle for one operation,
// panicking on re-entry.
func (h *history) enter(phase historyPhase) {
	if h.phase != historyIdle {
		panic(fmt.Errorf("re-entrant history operation (phase %d during phase %d)",
			phase, h.phase))
	}
	h.phase = phase
}

// leave returns the history to idle.
func (h *history) leave() {
	h.phase = historyIdle
}

// executeMove applies a new mutation and records it.  The apply
// function does the actual board work; if it fails, nothing is
// recorded and the redo chain survives.  On success the move is
// pushed for undo and the redo chain is discarded -- this is the
// only path that ever clears it.
func (h *history) executeMove(m Move, apply func() error) error {
	h.enter(historyExecuting)
	defer h.leave()
	if err := apply(); err != nil {
		return err
	}
	h.undo = append(h.undo, m)
	h.redo = nil
	return nil
}

// undoMove reverses the most recent move against the board.
// Returns false (and does nothing) when there is nothing to
// undo.
func (h *history) undoMove(b *board) (Move, bool) {
	if len(h.undo) == 0 {
		return Move{}, false
	}
	h.enter(historyUnwinding)
	defer h.leave()
	m := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	reverseMove(b, m)
	h.redo = append(h.redo, m)
	return m, true
}

// redoMove re-applies the most recently undone move.  Returns
// false (and does nothing) when there is nothing to redo.
func (h *history) redoMove(b *board) (Move, bool) {
	if len(h.redo) == 0 {
		return Move{}, false
	}
	h.enter(historyUnwinding)
	defer h.leave()
	m := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	forwardMove(b, m)
	h.undo = append(h.undo, m)
	return m, true
}

// moves returns a copy of the undo stack, oldest first.  This is
// the serializable record of the session so far.
func (h *history) moves() []Move {
	return append([]Move(nil), h.undo...)
}

/*

Move application

Moves were validated when they were first recorded, so failing
to re-apply or reverse one means the board no longer matches the
history -- a bug, hence the panics.

*/

// forwardMove applies a move's forward effect: leave the From
// cell, occupy the To cell, rotate clockwise up to the recorded
// after-rotation.
func forwardMove(b *board, m Move) {
	if m.From != nil {
		mustRemove(b, *m.From, m.Piece)
	}
	if m.To != nil {
		mustPlace(b, m.Piece, *m.To)
	}
	rotateTo(b.piece(m.Piece), m.RotationAfter)
}

// reverseMove applies a move's reverse effect: leave the To
// cell, reoccupy the From cell, rotate clockwise back around to
// the recorded before-rotation.
func reverseMove(b *board, m Move) {
	if m.To != nil {
		mustRemove(b, *m.To, m.Piece)
	}
	if m.From != nil {
		mustPlace(b, m.Piece, *m.From)
	}
	rotateTo(b.piece(m.Piece), m.RotationBefore)
}

// rotateTo turns a piece clockwise until it reaches the target
// rotation.  At most three turns are ever needed; needing more
// means the recorded rotation was never reachable.
func rotateTo(p *piece, rotation int) {
	for turns := 0; p.rotation != rotation; turns++ {
		if turns >= 3 {
			panic(fmt.Errorf("piece %d can't reach rotation %d from %d",
				p.id, rotation, p.rotation))
		}
		p.rotateClockwise()
	}
}

func mustPlace(b *board, id PieceID, pos Position) {
	if err := b.place(id, pos); err != nil {
		panic(fmt.Errorf("history replay can't place piece %d at %v: %v", id, pos, err))
	}
}

func mustRemove(b *board, pos Position, id PieceID) {
	removed, ok := b.remove(pos)
	if !ok || removed != id {
		panic(fmt.Errorf("history replay expected piece %d at %v, found %d", id, pos, removed))
	}
}
