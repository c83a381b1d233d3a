// Package db provides PostgreSQL persistence for soapbridge's optional
// audit trail of tool calls.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the underlying *sql.DB and provides typed query methods.
type DB struct {
	conn *sql.DB
}

// New opens a PostgreSQL connection and verifies connectivity.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := ApplyMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying *sql.DB.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// ToolCall is one audited invocation.
type ToolCall struct {
	ToolCallID   string          `json:"tool_call_id"`
	TraceID      string          `json:"trace_id"`
	HostID       string          `json:"host_id,omitempty"`
	ToolName     string          `json:"tool_name"`
	Action       string          `json:"action,omitempty"`
	Status       string          `json:"status"`
	Arguments    json.RawMessage `json:"arguments"`
	ResponseText string          `json:"response_text"`
	EvidenceHash string          `json:"evidence_hash"`
	DurationMS   int64           `json:"duration_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InsertToolCall records a tool invocation.
func (d *DB) InsertToolCall(ctx context.Context, tc *ToolCall) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO tool_calls (tool_call_id, trace_id, host_id, tool_name, action, status, arguments, response_text, evidence_hash, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tc.ToolCallID, tc.TraceID, tc.HostID, tc.ToolName, tc.Action, tc.Status, []byte(tc.Arguments), tc.ResponseText, tc.EvidenceHash, tc.DurationMS, tc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tool_call: %w", err)
	}
	return nil
}

// GetToolCall retrieves a tool call by ID. Returns nil if not found.
func (d *DB) GetToolCall(ctx context.Context, toolCallID string) (*ToolCall, error) {
	tc := &ToolCall{}
	var args []byte
	err := d.conn.QueryRowContext(ctx,
		`SELECT tool_call_id, trace_id, host_id, tool_name, action, status, arguments, response_text, evidence_hash, duration_ms, created_at
		 FROM tool_calls WHERE tool_call_id = $1`, toolCallID,
	).Scan(&tc.ToolCallID, &tc.TraceID, &tc.HostID, &tc.ToolName, &tc.Action, &tc.Status, &args, &tc.ResponseText, &tc.EvidenceHash, &tc.DurationMS, &tc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tool_call: %w", err)
	}
	tc.Arguments = args
	return tc, nil
}

// ToolCallListFilter narrows ListToolCalls. Zero values are ignored.
type ToolCallListFilter struct {
	ToolName      string
	Status        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}

// ListToolCalls returns recent tool calls, newest first.
func (d *DB) ListToolCalls(ctx context.Context, f ToolCallListFilter) ([]*ToolCall, error) {
	query, args := buildListQuery(f)
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tool_calls: %w", err)
	}
	defer rows.Close()

	var tcs []*ToolCall
	for rows.Next() {
		tc := &ToolCall{}
		var raw []byte
		if err := rows.Scan(&tc.ToolCallID, &tc.TraceID, &tc.HostID, &tc.ToolName, &tc.Action, &tc.Status, &raw, &tc.ResponseText, &tc.EvidenceHash, &tc.DurationMS, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tool_call: %w", err)
		}
		tc.Arguments = raw
		tcs = append(tcs, tc)
	}
	return tcs, rows.Err()
}

func buildListQuery(f ToolCallListFilter) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ToolName != "" {
		add("tool_name = $%d", f.ToolName)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CreatedAfter != nil {
		add("created_at >= $%d", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		add("created_at <= $%d", *f.CreatedBefore)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var sb strings.Builder
	sb.WriteString(`SELECT tool_call_id, trace_id, host_id, tool_name, action, status, arguments, response_text, evidence_hash, duration_ms, created_at FROM tool_calls`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))
	return sb.String(), args
}
