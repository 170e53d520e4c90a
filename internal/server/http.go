// Package server is the HTTP query surface: a thin adapter translating
// URL query parameters into query.Engine calls and JSON responses, plus
// the ingest endpoint client-side loggers batch their records to.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/daylog/internal/auth"
	"github.com/coffersTech/daylog/internal/logger"
	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/query"
	"github.com/coffersTech/daylog/internal/store"
)

const sessionTTL = 24 * time.Hour

type session struct {
	Username string
	Expires  time.Time
}

// Server serves the log query API.
type Server struct {
	queries *query.Engine
	writer  *logger.Engine
	users   *auth.Store
	authOn  bool

	sessions   map[string]session
	sessionsMu sync.RWMutex

	parsers fastjson.ParserPool
	srv     *http.Server
}

// New wires the query engine, the writer path (for client ingest) and
// the credential store. When authOn is false the middleware passes
// every request through.
func New(queries *query.Engine, writer *logger.Engine, users *auth.Store, authOn bool) *Server {
	return &Server{
		queries:  queries,
		writer:   writer,
		users:    users,
		authOn:   authOn,
		sessions: make(map[string]session),
	}
}

// Router builds the route table. Exposed so tests can drive the server
// through httptest without binding a port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)

	logs := r.PathPrefix("/api/logs").Subrouter()
	logs.Use(s.authMiddleware)
	logs.HandleFunc("", s.handleQuery).Methods(http.MethodGet)
	logs.HandleFunc("", s.handleIngest).Methods(http.MethodPost)
	return r
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.Router()}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// authMiddleware accepts a configured API token or a live web session,
// from the Authorization header or a token query parameter.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authOn {
			next.ServeHTTP(w, r)
			return
		}

		var token string
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="daylog"`)
			http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
			return
		}

		if s.users != nil && s.users.ValidToken(token) {
			next.ServeHTTP(w, r)
			return
		}

		s.sessionsMu.RLock()
		sess, ok := s.sessions[token]
		s.sessionsMu.RUnlock()
		if ok {
			if time.Now().Before(sess.Expires) {
				next.ServeHTTP(w, r)
				return
			}
			s.sessionsMu.Lock()
			delete(s.sessions, token)
			s.sessionsMu.Unlock()
		}

		w.Header().Set("WWW-Authenticate", `Bearer realm="daylog"`)
		http.Error(w, "Unauthorized: invalid or expired token", http.StatusUnauthorized)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if s.users == nil || !s.users.Authenticate(req.Username, req.Password) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	s.sessionsMu.Lock()
	s.sessions[token] = session{Username: req.Username, Expires: time.Now().Add(sessionTTL)}
	s.sessionsMu.Unlock()

	writeJSON(w, map[string]string{"token": token, "username": req.Username})
}

// handleQuery is the main read entry. The action parameter selects the
// metadata queries; without it the full filter/sort/paginate pipeline
// runs. Malformed parameters fall back to defaults, never to a 400.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch action := q.Get("action"); action {
	case "dates":
		dates, err := s.queries.Dates()
		if err != nil {
			s.fail(w, "list dates", err)
			return
		}
		writeJSON(w, dates)
		return
	case "packages", "executionIds", "sessionIds", "references":
		values, err := s.queries.Distinct(dateParam(q), distinctField(action))
		if err != nil {
			s.fail(w, "distinct "+action, err)
			return
		}
		writeJSON(w, values)
		return
	case "summary":
		summary, err := s.queries.Summarize(dateParam(q))
		if err != nil {
			s.fail(w, "summarize", err)
			return
		}
		writeJSON(w, summary)
		return
	}

	params := query.Params{
		Date: dateParam(q),
		Filter: query.Filter{
			Levels:       splitList(q.Get("level")),
			Packages:     splitList(q.Get("package")),
			ExecutionIDs: splitList(q.Get("executionId")),
			SessionIDs:   splitList(q.Get("sessionId")),
			References:   splitList(q.Get("reference")),
			Search:       q.Get("search"),
		},
		Sort: query.Sort{
			Key:        query.ParseSortKey(q.Get("sortBy")),
			Descending: q.Get("sortOrder") != "asc",
		},
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("pageSize"), 0),
	}

	result, err := s.queries.Query(params)
	if err != nil {
		s.fail(w, "query", err)
		return
	}
	writeJSON(w, result)
}

// handleIngest accepts a JSON array (or single object) of client
// records, stamps their provenance and appends them through the writer
// path. Records that fail to decode are dropped, matching the store's
// data-quality policy.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	values := []*fastjson.Value{v}
	if v.Type() == fastjson.TypeArray {
		values, _ = v.Array()
	}

	accepted := 0
	for _, val := range values {
		rec, ok := store.DecodeRecord(val)
		if !ok {
			continue
		}
		rec.Source = model.SourceClient
		if rec.Timestamp == "" {
			rec.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
		}
		if rec.Level == "" {
			rec.Level = model.LevelInfo
		}
		if err := s.writer.Emit(rec); err != nil {
			s.fail(w, "ingest", err)
			return
		}
		accepted++
	}

	writeJSON(w, map[string]int{"accepted": accepted})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	log.Printf("%s error: %v", op, err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

// dateParam returns the requested date, defaulting to today (UTC).
func dateParam(q url.Values) string {
	if d := q.Get("date"); d != "" {
		return d
	}
	return store.Today()
}

func distinctField(action string) string {
	switch action {
	case "executionIds":
		return query.FieldExecutionID
	case "sessionIds":
		return query.FieldSessionID
	case "references":
		return query.FieldReference
	default:
		return query.FieldPackage
	}
}

// splitList turns a comma-separated parameter into its values,
// trimming whitespace and dropping empties.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// intParam parses a numeric parameter, falling back on any error.
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
