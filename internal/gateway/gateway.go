// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package gateway exposes the auth service over HTTP. A single endpoint
// handles the whole surface: POST requests carry an "action" field
// (register, login, logout) and GET validates the session named by the
// X-Session-Token header.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/skillbridge/authd/internal/auth"
	"github.com/skillbridge/authd/internal/observability"
	"github.com/skillbridge/authd/pkg/errutil"
)

// SessionTokenHeader carries the session token on logout and session-check
// requests. Header lookup is case-insensitive.
const SessionTokenHeader = "X-Session-Token"

// maxBodyBytes caps the request body. Auth payloads are tiny; anything
// larger is rejected before JSON decoding.
const maxBodyBytes = 64 << 10

// AuthService is the slice of the auth core the gateway depends on.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.SessionResult, error)
	Login(ctx context.Context, creds auth.Credentials) (*auth.SessionResult, error)
	Logout(ctx context.Context, token string) error
	CheckSession(ctx context.Context, token string) (*auth.AccountSummary, error)
}

// Server serves the auth HTTP endpoint.
type Server struct {
	addr       string
	corsOrigin string
	svc        AuthService
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a gateway server. corsOrigin defaults to "*" when empty.
// metrics may be nil, in which case no metrics are recorded.
func NewServer(addr, corsOrigin string, svc AuthService, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("gateway: auth service is required")
	}
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       addr,
		corsOrigin: corsOrigin,
		svc:        svc,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Handler returns the HTTP handler for the auth endpoint. Exposed so tests
// can drive it without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleAuth)
	return mux
}

// Start begins serving the auth endpoint. It returns an error channel that
// receives any error from the HTTP server after startup; the channel is
// closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("gateway server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("gateway server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("gateway server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_gateway_server").Wrap(err)
		}
	}

	s.logger.Info("gateway server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// authRequest is the POST body. Action selects the operation; the remaining
// fields are operation-specific.
type authRequest struct {
	Action    string `json:"action"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserType  string `json:"userType"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Title     string `json:"title"`
}

type userPayload struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	UserType  string  `json:"userType"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	ProfileID *string `json:"profileId"`
}

type sessionResponse struct {
	Message      string      `json:"message"`
	SessionToken string      `json:"sessionToken"`
	User         userPayload `json:"user"`
}

type checkResponse struct {
	Valid bool        `json:"valid"`
	User  userPayload `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		s.handlePreflight(w)
	case http.MethodPost:
		s.handleAction(w, r)
	case http.MethodGet:
		s.handleCheckSession(w, r)
	default:
		s.writeError(w, "unknown", http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handlePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", s.corsOrigin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionTokenHeader)
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, "unknown", http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "register":
		s.handleRegister(w, r, req)
	case "login":
		s.handleLogin(w, r, req)
	case "logout":
		s.handleLogout(w, r)
	default:
		s.writeError(w, "unknown", http.StatusBadRequest, "Invalid action")
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, req authRequest) {
	result, err := s.svc.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		UserType:  req.UserType,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Title:     req.Title,
	})
	if err != nil {
		s.writeServiceError(w, "register", err)
		return
	}

	s.recordOperation("register", "success", http.StatusCreated)
	s.recordSessionIssued("register")
	s.writeJSON(w, "register", http.StatusCreated, sessionResponse{
		Message:      "User registered successfully",
		SessionToken: result.Token,
		User:         toUserPayload(result.Account),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, req authRequest) {
	result, err := s.svc.Login(r.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeServiceError(w, "login", err)
		return
	}

	s.recordOperation("login", "success", http.StatusOK)
	s.recordSessionIssued("login")
	s.writeJSON(w, "login", http.StatusOK, sessionResponse{
		Message:      "Login successful",
		SessionToken: result.Token,
		User:         toUserPayload(result.Account),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SessionTokenHeader)
	if err := s.svc.Logout(r.Context(), token); err != nil {
		s.writeServiceError(w, "logout", err)
		return
	}

	s.recordOperation("logout", "success", http.StatusOK)
	s.writeJSON(w, "logout", http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (s *Server) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SessionTokenHeader)
	summary, err := s.svc.CheckSession(r.Context(), token)
	if err != nil {
		s.writeServiceError(w, "check_session", err)
		return
	}

	s.recordOperation("check_session", "success", http.StatusOK)
	s.writeJSON(w, "check_session", http.StatusOK, checkResponse{
		Valid: true,
		User:  toUserPayload(*summary),
	})
}

func toUserPayload(a auth.AccountSummary) userPayload {
	return userPayload{
		ID:        a.ID,
		Email:     a.Email,
		UserType:  string(a.UserType),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		ProfileID: a.ProfileID,
	}
}

// statusForError maps a service error to an HTTP status. AUTH_MISSING_TOKEN
// is a client mistake on logout but an authentication failure on session
// check, matching the distinct statuses callers expect from each.
func statusForError(err error, operation string) int {
	switch errutil.Code(err) {
	case "AUTH_MISSING_FIELD", "AUTH_INVALID_USER_TYPE", "AUTH_WEAK_PASSWORD",
		"AUTH_EMAIL_EXISTS", "AUTH_MISSING_CREDENTIALS":
		return http.StatusBadRequest
	case "AUTH_INVALID_CREDENTIALS", "AUTH_SESSION_INVALID":
		return http.StatusUnauthorized
	case "AUTH_MISSING_TOKEN":
		if operation == "check_session" {
			return http.StatusUnauthorized
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// clientMessage returns the user-facing message for a service error.
// Internal detail never leaks: unrecognized codes collapse to a generic
// server error.
func clientMessage(err error) string {
	switch errutil.Code(err) {
	case "AUTH_MISSING_FIELD":
		if field, ok := errutil.ContextValue(err, "field"); ok {
			return fmt.Sprintf("Missing required field: %v", field)
		}
		return "Missing required field"
	case "AUTH_INVALID_USER_TYPE":
		return "Invalid user type"
	case "AUTH_WEAK_PASSWORD":
		return fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength)
	case "AUTH_EMAIL_EXISTS":
		return "User with this email already exists"
	case "AUTH_MISSING_CREDENTIALS":
		return "Email and password are required"
	case "AUTH_INVALID_CREDENTIALS":
		return "Invalid credentials"
	case "AUTH_MISSING_TOKEN":
		return "Session token required"
	case "AUTH_SESSION_INVALID":
		return "Invalid or expired session"
	}
	return "Server error"
}

func (s *Server) writeServiceError(w http.ResponseWriter, operation string, err error) {
	status := statusForError(err, operation)
	outcome := "rejected"
	if status >= http.StatusInternalServerError {
		outcome = "error"
		errutil.LogError(s.logger, operation+" failed", err)
	} else {
		s.logger.Debug(operation+" rejected", "code", errutil.Code(err))
	}

	s.recordOperation(operation, outcome, status)
	s.writeBody(w, operation, status, errorResponse{Error: clientMessage(err)})
}

func (s *Server) writeError(w http.ResponseWriter, operation string, status int, msg string) {
	if s.metrics != nil {
		s.metrics.HTTPRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	}
	s.writeBody(w, operation, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, operation string, status int, body any) {
	s.writeBody(w, operation, status, body)
}

func (s *Server) writeBody(w http.ResponseWriter, operation string, status int, body any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", s.corsOrigin)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.RecordResponseWriteFailure(operation)
		s.logger.Error("response write failed", "operation", operation, "error", err)
	}
}

func (s *Server) recordOperation(operation, outcome string, status int) {
	if s.metrics == nil {
		return
	}
	s.metrics.AuthOperationsTotal.WithLabelValues(operation, outcome).Inc()
	s.metrics.HTTPRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

func (s *Server) recordSessionIssued(trigger string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ActiveSessionsIssued.WithLabelValues(trigger).Inc()
}
