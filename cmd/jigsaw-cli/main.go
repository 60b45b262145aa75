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

// Command-line client for jigsaw puzzle sessions
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ancientHacker/jigsaw.go/puzzle"
	"github.com/ancientHacker/jigsaw.go/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// interactive tool: keep the log human-readable and out of
	// the way of the prompt
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// establish storage connections
	if _, _, err := storage.Connect(); err != nil {
		log.Error().Err(err).Msg("couldn't connect to storage")
		shutdown(startupFailureShutdown)
	}
	defer storage.Close()

	// catch signals
	shutdownOnSignal()

	// serve
	err := listener(os.Stdout, os.Stdin)
	if err != nil {
		log.Error().Err(err).Msg("CLI failure")
		shutdown(listenerFailureShutdown)
	}
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// listener reads lines and dispatches them to handlers
func listener(out *os.File, in *os.File) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if stat, _ := out.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
		prompt = true
	}

	input := make([]byte, 4096)
	for {
		if prompt {
			fmt.Fprintf(out, "jigsaw> ")
		}
		n, err := in.Read(input)
		switch err {
		case nil:
			r := &request{inline: strings.Trim(string(input[:n]), " \t\r\n")}
			args := strings.Split(r.inline, " ")
			r.command = strings.ToLower(args[0])
			switch r.command {
			case "":
				continue
			case "quit":
				fallthrough
			case "exit":
				return nil
			}
			for _, arg := range args[1:] {
				if len(arg) > 0 {
					r.args = append(r.args, strings.ToLower(arg))
				}
			}
			dispatchCommand(out, r)
		case io.EOF:
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		default:
			if prompt {
				fmt.Fprintf(out, " (read error)\n")
			}
			return err
		}
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*storage.Session, *os.File, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"hint", "", "suggest the next placement", hintHandler},
		{"layouts", "", "list the available layouts", layoutsHandler},
		{"piece", "id", "describe a piece", pieceHandler},
		{"place", "id row col", "place a piece in a cell", placeHandler},
		{"redo", "", "redo the last undone move", redoHandler},
		{"remove", "row col", "take the piece out of a cell", removeHandler},
		{"reset", "[layout]", "restart this or another layout", stateHandler},
		{"rotate", "id", "turn a piece clockwise", rotateHandler},
		{"session", "[sessionID]", "get/set session info", summaryHandler},
		{"state", "", "show the current board", stateHandler},
		{"strategy", "[name]", "get/set the matching strategy", strategyHandler},
		{"summary", "", "show current session summary", summaryHandler},
		{"undo", "", "undo the last move", undoHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w *os.File, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	session := sessionSelect(w, r)
	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(session, w, r)
	}
}

/*

request handlers

*/

// parsePosition: read "row col" argument pairs.
func parsePosition(args []string) (puzzle.Position, error) {
	var pos puzzle.Position
	if len(args) != 2 {
		return pos, fmt.Errorf("need a row and a column")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return pos, fmt.Errorf("row (%s) is not a number", args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return pos, fmt.Errorf("column (%s) is not a number", args[1])
	}
	pos.Row, pos.Col = row, col
	return pos, nil
}

// parsePiece: read a piece id argument.
func parsePiece(arg string) (puzzle.PieceID, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return puzzle.NoPiece, fmt.Errorf("piece (%s) is not a positive number", arg)
	}
	return puzzle.PieceID(id), nil
}

func placeHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) != 3 {
		usageHandler(fmt.Sprintf("%s requires three arguments", r.command), w, r)
		return
	}
	id, err := parsePiece(r.args[0])
	if err != nil {
		usageHandler(fmt.Sprintf("%s %v", r.command, err), w, r)
		return
	}
	pos, err := parsePosition(r.args[1:])
	if err != nil {
		usageHandler(fmt.Sprintf("%s %v", r.command, err), w, r)
		return
	}
	if e := session.Place(id, pos); e != nil {
		fmt.Fprintf(w, "Place failed: %v\n", e)
	} else {
		fmt.Fprintf(w, "Place succeeded:\n")
		stateHandler(session, w, r)
	}
}

func removeHandler(session *storage.Session, w *os.File, r *request) {
	pos, err := parsePosition(r.args)
	if err != nil {
		usageHandler(fmt.Sprintf("%s %v", r.command, err), w, r)
		return
	}
	id, e := session.Remove(pos)
	if e != nil {
		fmt.Fprintf(w, "Remove failed: %v\n", e)
	} else if id == puzzle.NoPiece {
		fmt.Fprintf(w, "Cell %v was already empty.\n", pos)
	} else {
		fmt.Fprintf(w, "Removed piece %d:\n", id)
		stateHandler(session, w, r)
	}
}

func rotateHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	id, err := parsePiece(r.args[0])
	if err != nil {
		usageHandler(fmt.Sprintf("%s %v", r.command, err), w, r)
		return
	}
	if e := session.Rotate(id); e != nil {
		fmt.Fprintf(w, "Rotate failed: %v\n", e)
	} else {
		fmt.Fprintf(w, "%s\n", session.Puzzle.PieceString(id))
	}
}

func hintHandler(session *storage.Session, w *os.File, r *request) {
	h, ok := session.Puzzle.Hint()
	if !ok {
		fmt.Fprintf(w, "No loose pieces to hint about.\n")
		return
	}
	fmt.Fprintf(w, "Try piece %d at %v (confidence %.0f%%)\n",
		h.Piece, h.Target, h.Confidence*100)
	fmt.Fprintf(w, "%s\n", session.Puzzle.PieceString(h.Piece))
}

func undoHandler(session *storage.Session, w *os.File, r *request) {
	if session.Undo() {
		fmt.Fprintf(w, "Undone:\n")
		stateHandler(session, w, r)
	} else {
		fmt.Fprintf(w, "Nothing to undo.\n")
	}
}

func redoHandler(session *storage.Session, w *os.File, r *request) {
	if session.Redo() {
		fmt.Fprintf(w, "Redone:\n")
		stateHandler(session, w, r)
	} else {
		fmt.Fprintf(w, "Nothing to redo.\n")
	}
}

func pieceHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	id, err := parsePiece(r.args[0])
	if err != nil {
		usageHandler(fmt.Sprintf("%s %v", r.command, err), w, r)
		return
	}
	fmt.Fprintf(w, "%s\n", session.Puzzle.PieceString(id))
}

func strategyHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) == 0 {
		fmt.Fprintf(w, "Strategy is %q\n", session.Puzzle.StrategyName())
		return
	}
	if e := session.SetStrategy(r.args[0]); e != nil {
		fmt.Fprintf(w, "Strategy change failed: %v\n", e)
	} else {
		fmt.Fprintf(w, "Strategy is %q\n", session.Puzzle.StrategyName())
	}
}

func layoutsHandler(session *storage.Session, w *os.File, r *request) {
	infos := storage.LookupLayouts()
	if len(infos) == 0 {
		fmt.Fprintf(w, "No layouts in the database.\n")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "    %-20s %2dx%-2d  %s\n", info.Name, info.Width, info.Height, info.LayoutId)
	}
}

func stateHandler(session *storage.Session, w *os.File, r *request) {
	fmt.Fprintf(w, "%s", session.Puzzle)
}

func summaryHandler(session *storage.Session, w *os.File, r *request) {
	fmt.Fprintf(w, "Session %q working layout %q with strategy %q\n",
		session.SID, session.LID, session.Puzzle.StrategyName())
	state := session.Puzzle.State()
	fmt.Fprintf(w, "Board: %dx%d; Placed pieces: %d; Loose pieces: %d; Moves made: %d\n",
		state.Width, state.Height, state.Placed,
		state.Width*state.Height-state.Placed, state.UndoDepth)
	if state.Complete {
		fmt.Fprintf(w, "The puzzle is complete!\n")
	}
}

func usageHandler(msg string, w *os.File, r *request) {
	fmt.Fprintf(w, "Error: %s\nUsage:\n", msg)
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %8s %-12s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func errorHandler(err interface{}, w *os.File, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Error().Interface("panic", err).Str("command", r.inline).Msg("command panicked")
}

/*

session handling

*/

// cookie for the command line
var defaultCookie string

var (
	startTime = time.Now() // instance start-up time
)

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
func getCookie(w *os.File, r *request) string {
	// look to see if the user is specifying a cookie
	if r.command == "session" && len(r.args) > 0 {
		defaultCookie = r.args[0]
	}

	// look for an existing session cookie
	if len(defaultCookie) != 0 {
		return defaultCookie
	}

	// no session cookie: start a new session with a new ID
	// poor man's UUID for the session in local mode: time since startup.
	sid := strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	log.Info().Str("sid", sid).Msg("created new session ID")
	defaultCookie = sid
	return sid
}

// sessionSelect: find or create the session for the current
// command.
func sessionSelect(w *os.File, r *request) *storage.Session {
	id := getCookie(w, r)
	// check to see if this is a force reset of the session
	forceReset, resetArg := r.command == "reset", ""
	if forceReset && len(r.args) > 0 {
		resetArg = r.args[0]
	}
	session := &storage.Session{SID: id}
	// load session from storage if possible, otherwise just initialize it
	if session.Lookup() {
		if forceReset {
			session.StartLayout(resetLayoutId(resetArg))
		}
	} else if forceReset {
		session.StartLayout(resetLayoutId(resetArg))
	} else {
		session.StartLayout("default")
	}
	return session
}

// resetLayoutId: turn a reset argument into a layout id.  Bare
// resets keep the current layout; otherwise the argument can be
// a layout name or a layout id.
func resetLayoutId(arg string) string {
	if arg == "" || arg == "default" {
		return arg
	}
	if lid := storage.LookupLayoutByName(arg); lid != "" {
		return lid
	}
	return arg
}

/*

coordinate shutdown across goroutines and top-level listener

*/

type shutdownCause int

const (
	unknownShutdown = iota
	startupFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	storage.Close()

	// log reason for shutdown and exit
	switch reason {
	case unknownShutdown:
		log.Fatal().Msg("exiting: normal shutdown")
	case startupFailureShutdown:
		log.Fatal().Msg("exiting: initialization failure")
	case caughtSignalShutdown:
		log.Fatal().Msg("exiting: caught signal")
	case listenerFailureShutdown:
		log.Fatal().Msg("exiting: listener failed")
	default:
		log.Fatal().Msg("exiting: unknown cause")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		s := <-c
		log.Info().Str("signal", s.String()).Msg("received OS-level signal")
		shutdown(caughtSignalShutdown)
	}()
}
