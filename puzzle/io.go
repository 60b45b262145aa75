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

import (
	"fmt"
	"strings"
)

/*

Pretty-printed sessions in strings, for the CLI and debugging.

*/

// String gives a pretty-printed view of a session: the cell grid
// followed by a progress line.
func (s *Session) String() string {
	return s.CellsString() + s.ProgressString()
}

// CellsString returns a grid of the board cells.  Occupied cells
// show the piece id; a trailing * marks a piece sitting in its
// home cell at rotation 0.  Empty cells show a dot.
func (s *Session) CellsString() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	// column header
	sb.WriteString("    ")
	for col := 0; col < s.board.width; col++ {
		fmt.Fprintf(&sb, "%5d", col)
	}
	sb.WriteString("\n")
	for row := 0; row < s.board.height; row++ {
		fmt.Fprintf(&sb, "%3d ", row)
		for col := 0; col < s.board.width; col++ {
			id := s.board.at(Position{Row: row, Col: col})
			if id == NoPiece {
				sb.WriteString("    .")
				continue
			}
			if s.board.piece(id).correctlyPlaced() {
				fmt.Fprintf(&sb, "%4d*", id)
			} else {
				fmt.Fprintf(&sb, "%5d", id)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ProgressString returns a one-line summary of how far along the
// session is.
func (s *Session) ProgressString() string {
	if s == nil {
		return ""
	}
	if s.board.solved() {
		return fmt.Sprintf("Solved! (%d pieces)\n", s.board.placedCount)
	}
	return fmt.Sprintf("%d of %d placed (%.0f%%)\n",
		s.board.placedCount, s.board.width*s.board.height, s.board.progress())
}

// PieceString returns a one-line description of a piece: its
// class, edge patterns in current orientation, rotation, and
// where it is.
func (s *Session) PieceString(id PieceID) string {
	p := s.board.piece(id)
	if p == nil {
		return fmt.Sprintf("piece %d: unknown", id)
	}
	class := "interior"
	if p.isCorner() {
		class = "corner"
	} else if p.isBorder() {
		class = "border"
	}
	where := "in tray"
	if p.placed() {
		where = "at " + p.at.String()
	}
	return fmt.Sprintf("piece %d: %s [%v %v %v %v] rot %d°, %s, home %v",
		id, class,
		p.edges[Top].Pattern, p.edges[Right].Pattern,
		p.edges[Bottom].Pattern, p.edges[Left].Pattern,
		p.rotation, where, p.home)
}
