// Package inspect implements the optional HTTP status server: a
// chi-routed read-mostly surface exposing a running compilation's live
// search statistics (states explored, transitions, truncation), plus a
// bearer-token-guarded endpoint an operator can use to cancel a
// compilation that is taking too long.
//
// Authentication is a two-step flow: bcrypt-verify a shared operator
// secret at login, then issue a signed JWT validated on every write
// request. The read-only status endpoint needs no auth; it is an
// operator's window into the search, not an access-controlled resource
// in its own right.
package inspect

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Status is one compilation task's live view, updated by the driver loop
// as each disjunct finishes (never by the search itself, which has no
// I/O).
type Status struct {
	mu sync.Mutex

	TaskID         string `json:"task_id"`
	DisjunctsDone  int    `json:"disjuncts_done"`
	DisjunctsTotal int    `json:"disjuncts_total"`
	StatesExplored int    `json:"states_explored"`
	Transitions    int    `json:"transitions"`
	Truncated      bool   `json:"truncated"`
	Cancelled      bool   `json:"cancelled"`
}

// Snapshot returns a copy of the current status, safe to marshal without
// holding the lock.
func (s *Status) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		TaskID:         s.TaskID,
		DisjunctsDone:  s.DisjunctsDone,
		DisjunctsTotal: s.DisjunctsTotal,
		StatesExplored: s.StatesExplored,
		Transitions:    s.Transitions,
		Truncated:      s.Truncated,
		Cancelled:      s.Cancelled,
	}
}

// RecordDisjunct folds one finished disjunct's statistics into the
// running totals.
func (s *Status) RecordDisjunct(states, transitions int, truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DisjunctsDone++
	s.StatesExplored += states
	s.Transitions += transitions
	if truncated {
		s.Truncated = true
	}
}

// MarkCancelled flips Cancelled, so every later Snapshot reports the
// cancellation.
func (s *Status) MarkCancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cancelled = true
}

// Server is the chi-routed status server for one compilation task.
type Server struct {
	Router *chi.Mux

	status     *Status
	secretHash []byte
	signingKey []byte
	cancel     func()
}

// NewServer builds a Server reporting on status, guarding its cancel
// endpoint with sharedSecret (bcrypt-hashed once here, never retained in
// plaintext past construction) and cancelling the compilation via cancel
// when an authenticated DELETE /cancel request arrives.
func NewServer(status *Status, sharedSecret string, cancel func()) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sharedSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	signingKey := make([]byte, 32)
	if _, err := rand.Read(signingKey); err != nil {
		return nil, err
	}

	srv := &Server{
		status:     status,
		secretHash: hash,
		signingKey: signingKey,
		cancel:     cancel,
	}

	r := chi.NewRouter()
	r.Get("/status", srv.handleStatus)
	r.Post("/login", srv.handleLogin)
	r.Delete("/cancel", srv.requireAuth(srv.handleCancel))
	srv.Router = r
	return srv, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot())
}

type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin verifies the posted shared secret against the bcrypt hash
// computed at construction and, on success, issues a short-lived HS256
// JWT. One signing key per compilation task, never a process-wide one.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed login request", http.StatusBadRequest)
		return
	}
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(req.Secret)); err != nil {
		http.Error(w, "invalid secret", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{
		"iss": "ltlplan-inspect",
		"sub": s.status.TaskID,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		http.Error(w, "could not sign token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: signed})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.status.MarkCancelled()
	if s.cancel != nil {
		s.cancel()
	}
	writeJSON(w, http.StatusAccepted, s.status.Snapshot())
}

// requireAuth wraps next so it only runs given a valid "Authorization:
// Bearer <token>" header signed by this task's signing key.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokStr, err := bearerToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		_, err = jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("ltlplan-inspect"))
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, error) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return "", errNoBearer
	}
	return h[len(prefix):], nil
}

var errNoBearer = httpError("missing bearer token")

type httpError string

func (e httpError) Error() string { return string(e) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
