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

// Web server for jigsaw puzzle sessions
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ancientHacker/jigsaw.go/puzzle"
	"github.com/ancientHacker/jigsaw.go/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cookieName = "jigsawID"
const cookiePath = "/"

var startTime = time.Now() // instance start-up time

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// establish storage connections
	cid, dbid, err := storage.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't connect to storage")
	}
	defer storage.Close()
	log.Info().Str("cache", cid).Str("database", dbid).Msg("connected to storage")

	// catch signals
	shutdownOnSignal()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			http.NotFound(w, r)
			return
		}
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("handling request")
		session := sessionSelect(w, r)
		switch {
		case strings.HasPrefix(r.URL.Path, "/reset/"):
			resetHandler(session, w, r)
			return
		case strings.HasPrefix(r.URL.Path, "/api/"):
			apiHandler(session, w, r)
			return
		}
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Info().Str("addr", port).Msg("listening")
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal().Err(err).Msg("listener failure")
	}
}

/*

session handling

*/

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
//
// Browser tabs that reach the same instance over different
// source protocols have to get different sessions, even if they
// submit an existing cookie from the other tab, so the protocol
// is baked into the session ID and checked on every request.
func getCookie(w http.ResponseWriter, r *http.Request) string {
	proto := "httpx" // absent other indicators, protocol is unknown

	// proxy-transported protocols are specified in a header
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		proto = forwarded
	}

	// check for an existing cookie whose value matches the protocol
	if sc, e := r.Cookie(cookieName); e == nil {
		if m, e := regexp.MatchString(proto+"-[0-9a-z]{3,}", sc.Value); e == nil && m {
			return sc.Value
		}
	}

	// no session cookie or not a valid session cookie,
	// start a new session with a new cookie
	sid := proto + "-" + strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	sc := &http.Cookie{Name: cookieName, Value: sid, Path: cookiePath}
	http.SetCookie(w, sc)
	return sid
}

// sessionSelect: find or create the stored session for the
// current connection.
func sessionSelect(w http.ResponseWriter, r *http.Request) *storage.Session {
	id := getCookie(w, r)
	session := &storage.Session{SID: id}
	if session.Lookup() {
		log.Info().Str("sid", session.SID).Str("lid", session.LID).Msg("found session")
	} else {
		session.StartLayout("default")
	}
	return session
}

/*

request handlers

*/

// resetHandler: restart the session, on a new layout if the path
// names one (by name or by id).
func resetHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	defer handlePanic(w, r)
	arg := r.URL.Path[len("/reset/"):]
	if arg == "" {
		session.RemoveAllMoves()
	} else {
		lid := storage.LookupLayoutByName(arg)
		if lid == "" {
			lid = arg
		}
		session.StartLayout(lid)
	}
	session.Puzzle.StateHandler(w, r)
}

// apiHandler: dispatch an /api/ request.  The engine's handlers
// do the work and answer the client; a nil return from a
// mutating handler means the engine changed, so the session gets
// synced to storage afterward.
func apiHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	defer handlePanic(w, r)
	op := strings.TrimSuffix(r.URL.Path[len("/api/"):], "/")
	switch op {
	case "state":
		session.Puzzle.StateHandler(w, r)
	case "summary":
		session.Puzzle.SummaryHandler(w, r)
	case "hint":
		session.Puzzle.HintHandler(w, r)
	case "layouts":
		if r.Method == "POST" {
			uploadLayoutHandler(w, r)
			return
		}
		writeJSON(storage.LookupLayouts(), http.StatusOK, w)
	case "place", "remove", "rotate", "strategy", "undo", "redo":
		if r.Method != "POST" {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var err error
		switch op {
		case "place":
			err = session.Puzzle.PlaceHandler(w, r)
		case "remove":
			err = session.Puzzle.RemoveHandler(w, r)
		case "rotate":
			err = session.Puzzle.RotateHandler(w, r)
		case "strategy":
			err = session.Puzzle.StrategyHandler(w, r)
		case "undo":
			err = session.Puzzle.UndoHandler(w, r)
		case "redo":
			err = session.Puzzle.RedoHandler(w, r)
		}
		if err == nil {
			session.Sync()
		} else {
			log.Info().Err(err).Str("op", op).Str("sid", session.SID).Msg("operation rejected")
		}
	default:
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(apiEndpointUnknown(r.URL.Path)))
	}
}

// uploadLayoutHandler: store a posted layout Summary so sessions
// can be started on it later.  The layout has to make a valid
// session before it's accepted.
func uploadLayoutHandler(w http.ResponseWriter, r *http.Request) {
	var summary puzzle.Summary
	if e := json.NewDecoder(r.Body).Decode(&summary); e != nil {
		http.Error(w, "bad layout: "+e.Error(), http.StatusBadRequest)
		return
	}
	summary.Strategy, summary.Moves = "", nil
	if _, e := puzzle.New(&summary); e != nil {
		http.Error(w, "bad layout: "+e.Error(), http.StatusBadRequest)
		return
	}
	lid := storage.SaveLayout(&summary)
	log.Info().Str("lid", lid).Str("name", summary.Name).Msg("layout uploaded")
	writeJSON(map[string]string{"layoutId": lid}, http.StatusOK, w)
}

// handlePanic: storage failures panic back to the entry level;
// answer with a 500 rather than dropping the connection.
func handlePanic(w http.ResponseWriter, r *http.Request) {
	if e := recover(); e != nil {
		log.Error().Interface("panic", e).Str("path", r.URL.Path).Msg("request panicked")
		http.Error(w, "storage failure", http.StatusInternalServerError)
	}
}

/*

various low-level utilities

*/

func writeJSON(obj interface{}, status int, w http.ResponseWriter) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

// apiEndpointUnknown: a pre-serialized JSON Error used when
// someone calls a non-existent API endpoint.
func apiEndpointUnknown(endpoint string) string {
	return `{"scope": "1", "structure": "1", "condition": "1", "values": ["No such endpoint"], ` +
		`"message": "No such endpoint: ` + endpoint + `"}`
}

// shutdownOnSignal: catch signals and exit cleanly.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		s := <-c
		log.Info().Str("signal", s.String()).Msg("shutting down")
		storage.Close()
		os.Exit(0)
	}()
}
