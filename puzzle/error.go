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
)

/*

Errors

*/

// An Error describes a problem with a puzzle or a requested
// operation.  It can produce an error message in English, but
// its main function is to support localized error messaging by
// clients.  It tells the client "this thing failed to meet this
// condition", and provides supplemental details about the thing
// and the condition.
//
// All the conditions reported through Error values are expected
// and recoverable: the session state is unchanged when one is
// returned.  A broken internal invariant (say, a placed count
// that disagrees with the pieces) is not an Error; it panics,
// because it means a bug rather than a bad request.
type Error struct {
	Scope     ErrorScope     `json:"scope"`
	Structure ErrorStructure `json:"structure,omitempty"`
	Condition ErrorCondition `json:"condition,omitempty"`
	Attribute ErrorAttribute `json:"attribute,omitempty"`
	Values    ErrorData      `json:"values,omitempty"`
	Message   string         `json:"message,omitempty"` // custom message
}

// An ErrorScope explains what type of thing the error is
// referring to.  In the case of client errors, this is either a
// client-supplied argument or the part of the board or piece set
// that rejected it.  In the case of internal logic errors, this
// is where in the code the failure occurred.
type ErrorScope int

// Constants for the various error scopes.
const (
	UnknownScope ErrorScope = iota
	RequestScope
	ArgumentScope
	PositionScope
	PieceScope
	StrategyScope
	HistoryScope
	InternalScope
	MaxScope
)

// The ErrorStructure denotes whether the problem is in the
// overall Scope, an Attribute of the Scope, or the value of an
// Attribute of the Scope.
type ErrorStructure int

// Constants for the various structure codes.
const (
	UnknownStructure ErrorStructure = iota
	ScopeStructure
	AttributeStructure
	AttributeValueStructure
	MaxStructure
)

// The ErrorCondition is the predicate that the
// scope/attribute/value failed to satisfy.  There are a bunch of
// known, named predicates and then a "general" (arbitrary
// English string) predicate for runtime errors.
type ErrorCondition int

// Constants for the various error conditions
const (
	UnknownCondition ErrorCondition = iota
	GeneralCondition
	TooLargeCondition
	TooSmallCondition
	OutOfBoundsCondition
	OccupiedCondition
	EdgeMismatchCondition
	AlreadyPlacedCondition
	UnknownPieceCondition
	UnknownStrategyCondition
	WrongPieceCountCondition
	DuplicatePieceCondition
	DuplicateHomeCondition
	InvalidRotationCondition
	EmptyArgumentCondition
	ReplayFailureCondition
	MaxCondition
)

// An ErrorAttribute names the attribute that has a problem.
type ErrorAttribute int

// Constants for the various attribute codes.
const (
	UnknownAttribute ErrorAttribute = iota
	DecodeAttribute
	EncodeAttribute
	URLAttribute
	LocationAttribute
	PositionAttribute
	PieceAttribute
	RotationAttribute
	StrategyAttribute
	WidthAttribute
	HeightAttribute
	SeedAttribute
	HomeAttribute
	SummaryAttribute
	MoveAttribute
	MaxAttribute
)

// The ErrorData provides details about the thing that failed to
// meet the predicate (such as the value of an attribute) as well
// as the predicate itself (such as minimum required values).
//
// Every item in the slice of ErrorData is required to be
// JSON-serializable, so it can be returned to web clients.
// Sadly, there is no good way to express this condition in a way
// the compiler can check it, so we just have to rely on
// implementors to "do the right thing" and check the condition
// at runtime.
type ErrorData []interface{}

// Return an error string from an Error.  If the Error has a
// pre-canned message, this will use it, otherwise it will
// produce an appropriate (English, non-localized) message.
func (e Error) Error() string {
	es := e.Message
	if len(es) > 0 {
		return es
	}
	values := e.Values
	nextVal := func() interface{} {
		if len(values) == 0 {
			return "<unknown>"
		}
		val := values[0]
		values = values[1:]
		return val
	}
	switch e.Scope {
	case RequestScope:
		es = "Invalid request: "
	case ArgumentScope:
		es = "Invalid argument: "
	case PositionScope:
		es = fmt.Sprintf("Problem at %v: ", nextVal())
	case PieceScope:
		es = fmt.Sprintf("Problem with piece %v: ", nextVal())
	case StrategyScope:
		es = "Placement rejected: "
	case HistoryScope:
		es = "History problem: "
	case InternalScope:
		es = "Internal logic error: "
	default:
		es = "Unknown error: "
	}
	if e.Structure == AttributeStructure || e.Structure == AttributeValueStructure {
		switch e.Attribute {
		case DecodeAttribute:
			es += "JSON Decode error"
		case EncodeAttribute:
			es += "JSON Encode error"
		case URLAttribute:
			es += "Resource path"
		case LocationAttribute:
			es += fmt.Sprintf("In puzzle.%v", nextVal())
		case PositionAttribute:
			es += "Position"
		case PieceAttribute:
			es += "Piece"
		case RotationAttribute:
			es += "Rotation"
		case StrategyAttribute:
			es += "Strategy"
		case WidthAttribute:
			es += "Width"
		case HeightAttribute:
			es += "Height"
		case SeedAttribute:
			es += "Seed"
		case HomeAttribute:
			es += "Home cell"
		case SummaryAttribute:
			es += "Summary"
		case MoveAttribute:
			es += "Move"
		default:
			es += "<Unknown attribute>"
		}
		if e.Structure == AttributeValueStructure {
			es += " (" + fmt.Sprint(nextVal()) + ")"
		}
		es += ": "
	}
	switch e.Condition {
	case GeneralCondition:
		es += fmt.Sprint(nextVal())
	case TooLargeCondition:
		es += fmt.Sprintf("Must be at most %v", nextVal())
	case TooSmallCondition:
		es += fmt.Sprintf("Must be at least %v", nextVal())
	case OutOfBoundsCondition:
		es += fmt.Sprintf("Outside the %v x %v board", nextVal(), nextVal())
	case OccupiedCondition:
		es += fmt.Sprintf("Cell already holds piece %v", nextVal())
	case EdgeMismatchCondition:
		es += fmt.Sprintf("Edges don't mate with placed neighbors (strategy %v)", nextVal())
	case AlreadyPlacedCondition:
		es += fmt.Sprintf("Piece is already placed at %v", nextVal())
	case UnknownPieceCondition:
		es += "Not a known piece id"
	case UnknownStrategyCondition:
		es += "Not a registered strategy"
	case WrongPieceCountCondition:
		es += fmt.Sprintf("Doesn't match the board size (need %v pieces)", nextVal())
	case DuplicatePieceCondition:
		es += fmt.Sprintf("Id %v appears more than once", nextVal())
	case DuplicateHomeCondition:
		es += fmt.Sprintf("Home cell %v used by more than one piece", nextVal())
	case InvalidRotationCondition:
		es += "Must be one of 0, 90, 180, 270"
	case EmptyArgumentCondition:
		es += "Required value was missing or empty"
	case ReplayFailureCondition:
		es += fmt.Sprintf("Recorded move can't be replayed: %v", nextVal())
	default:
		es += fmt.Sprintf("Supplemental data is %v", values)
	}
	return es
}

// Reason maps an Error to the reason code carried by
// invalid-placement events: OutOfBounds, PositionOccupied, or
// EdgeMismatch.  Errors outside those three yield an empty
// reason, meaning the failure doesn't produce an event.
func (e Error) Reason() string {
	switch e.Condition {
	case OutOfBoundsCondition:
		return "OutOfBounds"
	case OccupiedCondition:
		return "PositionOccupied"
	case EdgeMismatchCondition:
		return "EdgeMismatch"
	}
	return ""
}

/*

Error constructors for the common cases

*/

// rangeError returns an Error that describes an out-of-range argument.
func rangeError(attr ErrorAttribute, val int, min int, max int) Error {
	err := Error{
		Scope:     ArgumentScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: TooLargeCondition,
		Values:    ErrorData{val, max},
	}
	if val < min {
		err.Condition = TooSmallCondition
		err.Values[1] = min
	}
	return err
}

// boundsError returns an Error for a position outside the board.
func boundsError(pos Position, width, height int) Error {
	return Error{
		Scope:     PositionScope,
		Structure: AttributeStructure,
		Attribute: PositionAttribute,
		Condition: OutOfBoundsCondition,
		Values:    ErrorData{pos, width, height},
	}
}

// occupiedError returns an Error for a cell that already holds a piece.
func occupiedError(pos Position, holder PieceID) Error {
	return Error{
		Scope:     PositionScope,
		Structure: AttributeStructure,
		Attribute: PositionAttribute,
		Condition: OccupiedCondition,
		Values:    ErrorData{pos, holder},
	}
}

// pieceError returns an Error about a piece-valued argument.
func pieceError(id PieceID, cond ErrorCondition, extra ...interface{}) Error {
	return Error{
		Scope:     PieceScope,
		Structure: AttributeStructure,
		Attribute: PieceAttribute,
		Condition: cond,
		Values:    append(ErrorData{id}, extra...),
	}
}

// mismatchError returns the Error produced when the active
// strategy rejects a placement.
func mismatchError(id PieceID, pos Position, strategy string) Error {
	return Error{
		Scope:     StrategyScope,
		Structure: ScopeStructure,
		Condition: EdgeMismatchCondition,
		Values:    ErrorData{strategy, id, pos},
	}
}
