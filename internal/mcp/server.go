// Package mcp serves the tool catalog over line-delimited JSON-RPC 2.0, on
// stdio for desktop hosts or on a TCP listener.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/telemetry"
	"github.com/soapbridge/soapbridge/internal/tools"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602

	maxLineBytes = 1024 * 1024
)

// ServerInfo is reported to the host in the initialize response.
type ServerInfo struct {
	Name    string
	Version string
	HostID  string
}

type Server struct {
	invoker *tools.Invoker
	info    ServerInfo
	addr    string
	logger  *slog.Logger

	ln     net.Listener
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func NewServer(addr string, invoker *tools.Invoker, info ServerInfo, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		invoker: invoker,
		info:    info,
		addr:    addr,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports a request without an id, which gets no response.
func (r jsonRPCRequest) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Serve reads requests from r and writes responses to w until r reaches EOF
// or ctx is cancelled. It backs the stdio transport.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	done := make(chan error, 1)
	go func() { done <- s.serveLines(ctx, "stdio", r, w) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("mcp server starting", "transport", "tcp", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			s.logger.Error("mcp accept error", "err", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Addr returns the bound listener address once ListenAndServe is running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConn(conn net.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if err := s.serveLines(context.Background(), "tcp", conn, conn); err != nil {
		s.logger.Debug("mcp connection closed", "remote", conn.RemoteAddr().String(), "err", err)
	}
}

func (s *Server) serveLines(ctx context.Context, transport string, r io.Reader, w io.Writer) error {
	defer telemetry.TrackConnection(transport)()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(ctx, transport, line)
		if resp == nil {
			continue
		}
		if err := writeResponse(w, *resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func writeResponse(w io.Writer, resp jsonRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (s *Server) handleLine(ctx context.Context, transport string, line []byte) *jsonRPCResponse {
	var req jsonRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, "parse error")
	}
	if req.isNotification() {
		s.logger.Debug("mcp notification", "method", req.Method)
		return nil
	}
	resp := s.dispatch(ctx, transport, req)
	return &resp
}

func errorResponse(id json.RawMessage, code int, msg string) *jsonRPCResponse {
	telemetry.IncRPCError(strconv.Itoa(code))
	return &jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}

func (s *Server) dispatch(ctx context.Context, transport string, req jsonRPCRequest) jsonRPCResponse {
	base := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}

	if req.JSONRPC != "2.0" {
		return *errorResponse(req.ID, codeInvalidRequest, "invalid request: jsonrpc must be \"2.0\"")
	}

	switch req.Method {
	case "initialize":
		base.Result = s.initializeResult()
		return base

	case "ping":
		base.Result = struct{}{}
		return base

	case "tools/list":
		base.Result = mcp.ListToolsResult{Tools: s.toolList()}
		return base

	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return *errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error())
		}
		if params.Name == "" {
			return *errorResponse(req.ID, codeInvalidParams, "invalid params: name is required")
		}
		call := s.invoker.Invoke(ctx, transport, params.Name, params.Arguments)
		base.Result = toCallToolResult(call.Result)
		return base

	default:
		return *errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

type serverInfo struct {
	mcp.Implementation
	HostID string `json:"hostId,omitempty"`
}

func (s *Server) initializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
		"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
		"serverInfo": serverInfo{
			Implementation: mcp.Implementation{Name: s.info.Name, Version: s.info.Version},
			HostID:         s.info.HostID,
		},
	}
}

func (s *Server) toolList() []mcp.Tool {
	defs := s.invoker.Dispatcher().Definitions()
	out := make([]mcp.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, mcp.NewToolWithRawSchema(d.Name, d.Description, d.InputSchema))
	}
	return out
}

func toCallToolResult(r core.Result) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: r.IsError}
	for _, c := range r.Content {
		out.Content = append(out.Content, mcp.NewTextContent(c.Text))
	}
	return out
}
