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
	"encoding/json"
	"fmt"
	"net/http"
)

/*

RESTful wrappers over sessions, so it's easy to build web
services on top of the engine.  Handlers send JSON responses to
the client and return the same result (or error) to the golang
caller, which lets server code both serve the request and react
to its outcome.

*/

/*

Session creation

*/

// NewHandler is a POST handler that reads a JSON-encoded Summary
// from the request body and calls New on it.  The new session's
// State is sent as a 200 response, and the session itself is
// returned to the golang caller.  If the return value from New
// is an error, the error is sent as a 400 response and also
// returned to the caller.
//
// If we can't decode the posted Summary, we send a 400 response
// and return the error to the caller.
func NewHandler(w http.ResponseWriter, r *http.Request) (*Session, error) {
	dec := json.NewDecoder(r.Body)
	var summary Summary
	e := dec.Decode(&summary)
	if e != nil {
		return nil, writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	s, e := New(&summary)
	if e != nil {
		err, ok := e.(Error)
		if !ok {
			return nil, writeError(errorFormatError, ErrorData{"NewHandler", e.Error()}, w, r)
		}
		err.Message = err.Error()
		return nil, writeJSON(err, http.StatusBadRequest, w, r)
	}
	return s, s.StateHandler(w, r)
}

/*

Session download methods

*/

// StateHandler responds with the session's full State.
func (s *Session) StateHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	return writeJSON(s.State(), http.StatusOK, w, r)
}

// SummaryHandler responds with the session's Summary, which is
// everything a client needs to recreate the session later.
func (s *Session) SummaryHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	return writeJSON(s.Summary(), http.StatusOK, w, r)
}

// HintHandler responds with the best next placement, or a 404
// when no loose pieces remain to hint about.
func (s *Session) HintHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	h, ok := s.Hint()
	if !ok {
		return writeError(noHintError, ErrorData{r.URL.Path, "No loose pieces"}, w, r)
	}
	return writeJSON(h, http.StatusOK, w, r)
}

/*

Session updates

*/

// A PlaceRequest asks for a piece to be placed in a cell.
type PlaceRequest struct {
	Piece    PieceID  `json:"piece"`
	Position Position `json:"position"`
}

// A RemoveRequest asks for a cell to be emptied.
type RemoveRequest struct {
	Position Position `json:"position"`
}

// A RotateRequest asks for a piece to be turned clockwise.
type RotateRequest struct {
	Piece PieceID `json:"piece"`
}

// A StrategyRequest asks for the matching strategy to change.
type StrategyRequest struct {
	Strategy string `json:"strategy"`
}

// A HistoryResult reports whether an undo or redo had anything
// to do, plus the depths afterward.
type HistoryResult struct {
	Applied   bool `json:"applied"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

// PlaceHandler is a POST handler that applies a posted
// PlaceRequest to the session.  The poster and the caller both
// get the resulting State (or the typed Error on rejection).
func (s *Session) PlaceHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	var req PlaceRequest
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		return writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	if e := s.PlacePiece(req.Piece, req.Position); e != nil {
		return writeSessionError("PlaceHandler", e, w, r)
	}
	return writeJSON(s.State(), http.StatusOK, w, r)
}

// RemoveHandler is a POST handler that applies a posted
// RemoveRequest to the session.
func (s *Session) RemoveHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	var req RemoveRequest
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		return writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	if _, e := s.RemovePiece(req.Position); e != nil {
		return writeSessionError("RemoveHandler", e, w, r)
	}
	return writeJSON(s.State(), http.StatusOK, w, r)
}

// RotateHandler is a POST handler that applies a posted
// RotateRequest to the session.
func (s *Session) RotateHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	var req RotateRequest
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		return writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	if e := s.RotatePiece(req.Piece); e != nil {
		return writeSessionError("RotateHandler", e, w, r)
	}
	return writeJSON(s.State(), http.StatusOK, w, r)
}

// StrategyHandler is a POST handler that swaps the matching
// strategy by name.
func (s *Session) StrategyHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	var req StrategyRequest
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		return writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	if e := s.SetStrategy(req.Strategy); e != nil {
		return writeSessionError("StrategyHandler", e, w, r)
	}
	return writeJSON(s.State(), http.StatusOK, w, r)
}

// UndoHandler is a POST handler that reverses the most recent
// move.  An empty history is not an error; the result just says
// nothing was applied.
func (s *Session) UndoHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	applied := s.Undo()
	st := s.State()
	return writeJSON(HistoryResult{applied, st.UndoDepth, st.RedoDepth}, http.StatusOK, w, r)
}

// RedoHandler is a POST handler that re-applies the most
// recently undone move.
func (s *Session) RedoHandler(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return writeError(noSessionError, ErrorData{r.URL.Path, "No session"}, w, r)
	}
	applied := s.Redo()
	st := s.State()
	return writeJSON(HistoryResult{applied, st.UndoDepth, st.RedoDepth}, http.StatusOK, w, r)
}

/*

Utilities

*/

type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
	noSessionError
	noHintError
	errorFormatError
)

// writeSessionError sends a session operation's typed Error back
// as a 400, falling back to an internal error for non-Error
// returns (which should never happen with this package's
// sessions).
func writeSessionError(where string, e error, w http.ResponseWriter, r *http.Request) error {
	err, ok := e.(Error)
	if !ok {
		return writeError(errorFormatError, ErrorData{where, e.Error()}, w, r)
	}
	err.Message = err.Error()
	return writeJSON(err, http.StatusBadRequest, w, r)
}

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case responseEncodingError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case noSessionError, noHintError:
		status = http.StatusNotFound
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeValueStructure,
			Attribute: URLAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case errorFormatError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values: ErrorData{
				"writeError",
				fmt.Sprintf("Unknown handler error type (%v)", et),
			},
		}
	}
	err.Message = err.Error()
	return writeJSON(err, status, w, r)
}

// writeJSON is called by handlers to encode and send the client
// response.  It returns an appropriate error status for the
// handler to return to its caller, as follows:
//
// 1. If writeJSON encounters an encoding error sending the
// response, it will create an Error object describing the
// failure, encode that Error as a 500-series response to the
// client, and return that Error to the handler.
//
// 2. If no encoding error occurs, but the handler is sending an
// Error object as the response to the client, writeJSON will
// return that same Error to the handler.
//
// 3. If no encoding error occurs, and the handler is sending a
// non-Error object as the response to the client, writeJSON will
// return nil to the handler.
func writeJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr && err.Scope == InternalScope && err.Attribute == EncodeAttribute {
			// We just failed to encode an Encoding error.  This
			// should never happen!!  If it did, it almost
			// certainly means that the JSON encoding system is
			// dead, so pseudo-encode the error by hand by
			// returning the Error's summary as a quoted string.
			status = http.StatusInternalServerError // probably was already!
			bytes = []byte(fmt.Sprintf("%q", err.Error()))
		} else {
			// generate, send, and return an encoding error
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
