// Package api serves battles over HTTP: create, step, order and stream them.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/scenario"
	"github.com/Garsondee/Turn-Tactics/internal/store"
)

const (
	defaultTurnDelay = 100 * time.Millisecond
	maxTurnsPerCall  = 1000
)

// Recorder persists finished battles. *store.Store satisfies it.
type Recorder interface {
	SaveBattle(ctx context.Context, rec store.Record) (*store.Battle, error)
}

// Server holds the live sessions and routes requests to them.
type Server struct {
	cfg      config.BattleConfig
	recorder Recorder
	logger   zerolog.Logger
	metrics  *metrics
	upgrader websocket.Upgrader
	handler  http.Handler

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New builds a server. rec may be nil to skip persistence.
func New(cfg config.BattleConfig, rec Recorder, log zerolog.Logger) (*Server, error) {
	if cfg.TurnDelay <= 0 {
		cfg.TurnDelay = defaultTurnDelay
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		recorder: rec,
		logger:   log,
		metrics:  m,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		sessions: make(map[string]*Session),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/scenarios", handleScenarios).Methods(http.MethodGet)
	r.HandleFunc("/battles", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/battles", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/turns", s.handleTurns).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/orders", s.handleOrder).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/stream", s.handleStream).Methods(http.MethodGet)
	r.Use(s.withLogging)
	s.handler = withCORS(r)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// CreateRequest starts a battle from a built-in scenario. Empty fields fall
// back to the configured scenario and the scenario's own seed.
type CreateRequest struct {
	Scenario string `json:"scenario"`
	Seed     *int64 `json:"seed,omitempty"`
}

// Create starts a new session.
func (s *Server) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	name := req.Scenario
	if name == "" {
		name = s.cfg.Scenario
	}
	sc, err := scenario.Builtin(name)
	if err != nil {
		return nil, err
	}
	opts, err := scenario.Defaults(s.cfg)
	if err != nil {
		return nil, err
	}
	scOpts, err := sc.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, scOpts...)
	if req.Seed != nil {
		opts = append(opts, game.WithSeed(*req.Seed))
	}
	id := uuid.NewString()
	opts = append(opts, game.WithLogger(s.logger.With().Str("battle", id).Logger()))

	sess := newSession(id, sc.Name, game.NewBattle(opts...), s.cfg.MaxTurns, s.finished)
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.metrics.battleCreated(ctx, sc.Name)
	s.logger.Info().Str("battle", id).Str("scenario", sc.Name).Msg("Battle created")
	return sess, nil
}

// Session looks up a live session.
func (s *Server) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// finished runs when a session enters the finished state.
func (s *Server) finished(ctx context.Context, sess *Session) {
	out := game.DetermineOutcome(sess.battle)
	s.metrics.battleFinished(ctx, sess.Scenario, out.Outcome.String())
	s.logger.Info().Str("battle", sess.ID).Int("turns", sess.battle.Turn()).
		Str("outcome", out.Description).Msg("Battle finished")
	if s.recorder == nil {
		return
	}
	rec := store.Record{UUID: sess.ID, Scenario: sess.Scenario, Battle: sess.battle}
	if _, err := s.recorder.SaveBattle(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error().Err(err).Str("battle", sess.ID).Msg("Failed to save battle")
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func handleScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenario.Names())
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Created.Before(sessions[j].Created)
	})
	views := make([]View, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sess.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	sess, err := s.Create(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.Session(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// TurnsResponse reports how many turns a step request actually ran.
type TurnsResponse struct {
	Ran int `json:"ran"`
	View
}

func (s *Server) handleTurns(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	n, err := queryInt(r, "n", 1)
	if err != nil || n < 1 || n > maxTurnsPerCall {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("n must be an integer in [1,%d]", maxTurnsPerCall))
		return
	}
	ran, err := sess.Advance(r.Context(), n)
	s.metrics.turnsRun(r.Context(), ran, "step")
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TurnsResponse{Ran: ran, View: sess.View()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, sess.Events(from))
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var o Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := sess.Issue(r.Context(), o); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStreaming), errors.Is(err, ErrFinished),
		errors.Is(err, game.ErrActorUnavailable):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidAction), errors.Is(err, scenario.ErrUnknown),
		errors.Is(err, scenario.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("took", time.Since(start)).Msg("request")
	})
}
