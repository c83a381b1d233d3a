// Package http exposes the tool catalog and the audit trail as a small JSON
// API next to the MCP transports.
package http

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
	"strings"
	"time"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/db"
	"github.com/soapbridge/soapbridge/internal/telemetry"
	"github.com/soapbridge/soapbridge/internal/tools"
)

// ToolCallReader is the read side of the audit trail.
type ToolCallReader interface {
	GetToolCall(ctx context.Context, toolCallID string) (*db.ToolCall, error)
	ListToolCalls(ctx context.Context, f db.ToolCallListFilter) ([]*db.ToolCall, error)
}

type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
}

type Server struct {
	invoker *tools.Invoker
	calls   ToolCallReader
	srv     *http.Server
	logger  *slog.Logger
	build   BuildInfo
}

const (
	maxRequestBodyBytes = 1 << 20
	maxListLimit        = 500
)

// NewServer builds the API. calls may be nil when the audit trail is off;
// an empty jwtSecret leaves the API unauthenticated.
func NewServer(addr string, invoker *tools.Invoker, calls ToolCallReader, jwtSecret string, logger *slog.Logger, build BuildInfo) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		invoker: invoker,
		calls:   calls,
		logger:  logger,
		build:   build,
	}

	secret := []byte(jwtSecret)
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/tools", s.handleListTools)
	api.HandleFunc("POST /api/v1/tools/{name}", s.handleCallTool)
	api.HandleFunc("GET /api/v1/tool-calls", s.handleListToolCalls)
	api.HandleFunc("GET /api/v1/tool-calls/{id}", s.handleGetToolCall)
	api.Handle("GET /metrics", telemetry.Handler())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.Handle("/", requireBearer(secret, api))

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server starting", "addr", s.srv.Addr)
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    s.build.Version,
		"git_commit": s.build.GitCommit,
		"build_time": s.build.BuildTime,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.invoker.Dispatcher().Definitions()})
}

type callToolBody struct {
	Arguments map[string]any `json:"arguments"`
}

type callToolResponse struct {
	TraceID    string      `json:"trace_id"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	Status     string      `json:"status"`
	Result     core.Result `json:"result"`
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.invoker.Dispatcher().Resolve(name); err != nil {
		writeMappedErr(w, err, http.StatusBadRequest)
		return
	}

	var body callToolBody
	if err := decodeJSONBody(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeMappedErr(w, fmt.Errorf("invalid json: %w", err), http.StatusBadRequest)
		return
	}

	call := s.invoker.Invoke(r.Context(), "http", name, body.Arguments)
	writeJSON(w, http.StatusOK, callToolResponse{
		TraceID:    call.TraceID,
		ToolCallID: call.ToolCallID,
		Status:     call.Status,
		Result:     call.Result,
	})
}

func (s *Server) handleListToolCalls(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeErr(w, http.StatusServiceUnavailable, "audit_disabled", "audit trail is not configured")
		return
	}
	filters, err := parseToolCallListFilters(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	tcs, err := s.calls.ListToolCalls(r.Context(), filters)
	if err != nil {
		writeMappedErr(w, err, http.StatusInternalServerError)
		return
	}
	if tcs == nil {
		tcs = []*db.ToolCall{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tool_calls": tcs})
}

func (s *Server) handleGetToolCall(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeErr(w, http.StatusServiceUnavailable, "audit_disabled", "audit trail is not configured")
		return
	}
	tc, err := s.calls.GetToolCall(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMappedErr(w, err, http.StatusInternalServerError)
		return
	}
	if tc == nil {
		writeErr(w, http.StatusNotFound, "not_found", "tool call not found")
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

var validStatuses = map[string]bool{
	core.StatusOK:           true,
	core.StatusHandlerError: true,
	core.StatusToolError:    true,
}

func parseToolCallListFilters(r *http.Request) (db.ToolCallListFilter, error) {
	q := r.URL.Query()
	f := db.ToolCallListFilter{
		ToolName: strings.TrimSpace(q.Get("tool_name")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	if f.Status != "" && !validStatuses[f.Status] {
		return f, fmt.Errorf("status must be one of ok, handler_error, tool_error")
	}

	parseTime := func(key string) (*time.Time, error) {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("%s must be RFC3339: %w", key, err)
		}
		return &t, nil
	}
	var err error
	if f.CreatedAfter, err = parseTime("created_after"); err != nil {
		return f, err
	}
	if f.CreatedBefore, err = parseTime("created_before"); err != nil {
		return f, err
	}
	if f.CreatedAfter != nil && f.CreatedBefore != nil && f.CreatedAfter.After(*f.CreatedBefore) {
		return f, fmt.Errorf("created_after must not be later than created_before")
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			return f, fmt.Errorf("limit must be an integer between 1 and %d", maxListLimit)
		}
		f.Limit = n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

func writeMappedErr(w http.ResponseWriter, err error, fallback int) {
	info := core.MapError(err, fallback)
	writeErr(w, info.HTTPStatus, info.Code, info.Message)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
