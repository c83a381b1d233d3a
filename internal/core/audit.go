package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soapbridge/soapbridge/internal/db"
)

// Audit statuses. A handler error is a normal envelope whose text describes
// a validation failure; a tool error is an envelope with isError set.
const (
	StatusOK           = "ok"
	StatusHandlerError = "handler_error"
	StatusToolError    = "tool_error"
)

// ToolCallStore is the persistence the audit layer needs.
type ToolCallStore interface {
	InsertToolCall(ctx context.Context, tc *db.ToolCall) error
}

// AuditService records every tool invocation with redacted arguments and a
// SHA-256 evidence hash over request and response.
type AuditService struct {
	store    ToolCallStore
	redactor *Redactor
	hostID   string
	now      func() time.Time
}

// NewAuditService wires the audit layer to its store.
func NewAuditService(store ToolCallStore, redactor *Redactor, hostID string) *AuditService {
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &AuditService{store: store, redactor: redactor, hostID: hostID, now: time.Now}
}

// RecordInput captures what is needed to log a tool call.
type RecordInput struct {
	TraceID   string
	ToolName  string
	Action    string
	Arguments map[string]any
	Result    Result
	Duration  time.Duration
}

// Record persists a tool call. A nil AuditService records nothing.
func (a *AuditService) Record(ctx context.Context, in RecordInput) (*db.ToolCall, error) {
	if a == nil || a.store == nil {
		return nil, nil
	}

	args := a.redactor.RedactArguments(in.Arguments)
	if args == nil {
		args = map[string]any{}
	}
	reqJSON, err := json.Marshal(map[string]any{"name": in.ToolName, "arguments": args})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal arguments: %w", err)
	}
	text := a.redactor.Redact(in.Result.Text())
	respJSON, err := json.Marshal(in.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	evidence := sha256.Sum256(append(reqJSON, respJSON...))

	tc := &db.ToolCall{
		ToolCallID:   uuid.New().String(),
		TraceID:      in.TraceID,
		HostID:       a.hostID,
		ToolName:     in.ToolName,
		Action:       in.Action,
		Status:       StatusFor(in.Result),
		Arguments:    argsJSON,
		ResponseText: text,
		EvidenceHash: hex.EncodeToString(evidence[:]),
		DurationMS:   in.Duration.Milliseconds(),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.InsertToolCall(ctx, tc); err != nil {
		return nil, fmt.Errorf("insert tool_call: %w", err)
	}
	return tc, nil
}

// StatusFor classifies a Result for audit and metrics labels.
func StatusFor(r Result) string {
	switch {
	case r.IsError:
		return StatusToolError
	case IsHandlerError(r):
		return StatusHandlerError
	default:
		return StatusOK
	}
}

// IsHandlerError reports whether a non-isError envelope carries a
// validation failure, recognised by the "Error ...: " first line every
// handler group uses.
func IsHandlerError(r Result) bool {
	if r.IsError || len(r.Content) == 0 {
		return false
	}
	first, _, _ := strings.Cut(r.Content[0].Text, "\n")
	return strings.HasPrefix(first, "Error ") && strings.Contains(first, ": ")
}
