package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/telemetry"
)

// Invoker wraps a Dispatcher with the per-call bookkeeping every transport
// shares: a trace id, metrics, the audit record and the completion log line.
type Invoker struct {
	dispatcher *Dispatcher
	audit      *core.AuditService
	redactor   *core.Redactor
	logger     *slog.Logger
	hostID     string
}

func NewInvoker(d *Dispatcher, audit *core.AuditService, logger *slog.Logger, hostID string) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		dispatcher: d,
		audit:      audit,
		redactor:   d.redactor,
		logger:     logger,
		hostID:     hostID,
	}
}

func (inv *Invoker) Dispatcher() *Dispatcher { return inv.dispatcher }

// Call describes one completed invocation.
type Call struct {
	TraceID    string
	ToolCallID string
	Result     core.Result
	Status     string
}

// Invoke runs a tool for the given transport. Audit failures are logged and
// counted but never change the result the host sees.
func (inv *Invoker) Invoke(ctx context.Context, transport, name string, args map[string]any) Call {
	traceID := uuid.New().String()
	start := time.Now()

	res := inv.dispatcher.Call(name, args)
	elapsed := time.Since(start)
	status := core.StatusFor(res)
	action := ActionOf(name, args)

	// Keep arbitrary host input out of label values.
	metricName := name
	var unknown *core.UnknownOperationError
	if errors.As(inv.dispatcher.Resolve(name), &unknown) {
		metricName = "unknown"
	}
	telemetry.IncToolCall(metricName, MetricAction(name, action), status)
	telemetry.ObserveToolDuration(metricName, elapsed)

	call := Call{TraceID: traceID, Result: res, Status: status}
	tc, err := inv.audit.Record(ctx, core.RecordInput{
		TraceID:   traceID,
		ToolName:  name,
		Action:    action,
		Arguments: args,
		Result:    res,
		Duration:  elapsed,
	})
	if err != nil {
		telemetry.IncAuditWriteFailure()
		inv.logger.Error("audit record failed",
			"trace_id", traceID,
			"tool_name", name,
			"err", err,
		)
	} else if tc != nil {
		call.ToolCallID = tc.ToolCallID
	}

	attrs := []any{
		"trace_id", traceID,
		"transport", transport,
		"tool_name", name,
		"action", action,
		"status", status,
		"is_error", res.IsError,
		"duration_ms", elapsed.Milliseconds(),
	}
	if inv.hostID != "" {
		attrs = append(attrs, "host_id", inv.hostID)
	}
	if call.ToolCallID != "" {
		attrs = append(attrs, "tool_call_id", call.ToolCallID)
	}
	if res.IsError {
		inv.logger.Warn("tool call rejected", attrs...)
	} else {
		inv.logger.Info("tool call completed", attrs...)
	}
	inv.logger.Debug("tool call arguments", "trace_id", traceID, "arguments", inv.redactor.RedactArguments(args))
	return call
}
