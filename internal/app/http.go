package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"tasknotes/internal/store"
)

// SessionCookie carries the session id issued at login.
const SessionCookie = "tasknotes_session"

type HTTPServer struct {
	service    *Service
	corsOrigin string
	log        zerolog.Logger
}

func NewHTTPServer(service *Service, corsOrigin string, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, log: log}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/login" {
		s.handleLogin(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/google_oauth/" {
		s.handleOAuthCallback(w, r)
		return
	}

	// Logout accepts any method, as the original did.
	if r.URL.Path == "/api/logout" {
		s.handleLogout(w, r)
		return
	}

	if r.URL.Path == "/api/project" {
		s.handleProject(w, r)
		return
	}

	if r.URL.Path == "/api/task" {
		s.handleTask(w, r)
		return
	}

	http.NotFound(w, r)
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
		"sessions": map[string]any{"status": "ok"},
	}
	statusCode := http.StatusOK

	if err := s.service.Ping(ctx); err != nil {
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{"status": "error", "error": err.Error()}
	}
	if err := s.service.PingSessions(ctx); err != nil {
		statusCode = http.StatusServiceUnavailable
		checks["sessions"] = map[string]any{"status": "error", "error": err.Error()}
	}

	writeJSON(w, statusCode, map[string]any{"ok": statusCode == http.StatusOK, "checks": checks})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.service.BeginLogin(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("begin login failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *HTTPServer) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	sessionID, err := s.service.CompleteLogin(r.Context(), state, code)
	if err != nil {
		s.log.Warn().Err(err).Msg("oauth callback failed")
		// Point the browser home but keep the failure status; the caller
		// stays anonymous.
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	http.SetCookie(w, s.sessionCookie(sessionID, int(s.service.cfg.SessionTTL.Seconds())))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		s.service.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, s.sessionCookie("", -1))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) handleProject(w http.ResponseWriter, r *http.Request) {
	// Identity is resolved before any resource is touched, on every verb.
	callerID, err := s.service.ResolveCaller(r.Context(), sessionID(r))
	if err != nil {
		badRequest(w)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body store.NewProject
		if err := decodeBody(r, &body); err != nil {
			badRequest(w)
			return
		}
		created, err := s.service.CreateProject(r.Context(), callerID, body)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)

	case http.MethodGet:
		// The ownerId query param is accepted and ignored; the list is
		// always scoped to the caller.
		items, err := s.service.ListProjects(r.Context(), callerID)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodDelete:
		id, ok := queryID(r, "id")
		if !ok {
			badRequest(w)
			return
		}
		deleted, err := s.service.DeleteProject(r.Context(), callerID, id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)

	case http.MethodPatch:
		var patch store.PatchProject
		if err := decodeBody(r, &patch); err != nil {
			badRequest(w)
			return
		}
		echoed, err := s.service.UpdateProject(r.Context(), callerID, patch)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, echoed)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *HTTPServer) handleTask(w http.ResponseWriter, r *http.Request) {
	callerID, err := s.service.ResolveCaller(r.Context(), sessionID(r))
	if err != nil {
		badRequest(w)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body store.NewTask
		if err := decodeBody(r, &body); err != nil {
			badRequest(w)
			return
		}
		created, err := s.service.CreateTask(r.Context(), callerID, body)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)

	case http.MethodGet:
		projectID, ok := queryID(r, "projectId")
		if !ok {
			badRequest(w)
			return
		}
		items, err := s.service.ListTasks(r.Context(), callerID, projectID)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodDelete:
		id, ok := queryID(r, "id")
		if !ok {
			badRequest(w)
			return
		}
		deleted, err := s.service.DeleteTask(r.Context(), callerID, id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// writeFailure collapses every client-caused failure to a bare 400; store
// failures surface as a bare 500. No error body either way.
func (s *HTTPServer) writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrIdentityUnresolved) || errors.Is(err, ErrOwnershipDenied) {
		badRequest(w)
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	w.WriteHeader(http.StatusInternalServerError)
}

func (s *HTTPServer) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", writer.status).
			Dur("duration", time.Since(started)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Cache-Control", "no-cache")
}

func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func queryID(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func badRequest(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
