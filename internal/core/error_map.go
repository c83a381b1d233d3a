package core

import (
	"errors"
	"fmt"
	"strings"
)

// CodedError is implemented by domain errors that carry a machine-readable code.
type CodedError interface {
	error
	ErrorCode() string
}

// MissingFieldError reports a required argument that is absent or not a string.
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *MissingFieldError) ErrorCode() string { return "missing_field" }

// UnknownDiscriminatorError reports an action, analysis type or enum value
// outside the recognized set.
type UnknownDiscriminatorError struct {
	Label string
	Value string
}

func (e *UnknownDiscriminatorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Value)
}

func (e *UnknownDiscriminatorError) ErrorCode() string { return "unknown_discriminator" }

// InvalidFieldError reports an argument that is present but out of range.
type InvalidFieldError struct {
	Field   string
	Message string
}

func (e *InvalidFieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

func (e *InvalidFieldError) ErrorCode() string { return "invalid_field" }

// UnknownOperationError reports a tool name outside the registry.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

func (e *UnknownOperationError) ErrorCode() string { return "unknown_operation" }

// ToolDisabledError reports a registered tool that policy has switched off.
type ToolDisabledError struct {
	Name string
}

func (e *ToolDisabledError) Error() string {
	return fmt.Sprintf("Tool %s is disabled by policy", e.Name)
}

func (e *ToolDisabledError) ErrorCode() string { return "tool_disabled" }

type ErrorInfo struct {
	Code       string
	Message    string
	HTTPStatus int
}

func MapError(err error, fallbackStatus int) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: "internal_error", Message: "internal server error", HTTPStatus: fallbackStatus}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	var coded CodedError
	if errors.As(err, &coded) {
		code := coded.ErrorCode()
		switch code {
		case "missing_field", "unknown_discriminator", "invalid_field":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 400}
		case "unknown_operation":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 404}
		case "tool_disabled":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 403}
		}
	}

	switch {
	case strings.Contains(lower, "invalid json"), strings.Contains(lower, "request body must contain a single json object"):
		return ErrorInfo{Code: "invalid_request_schema", Message: msg, HTTPStatus: 400}
	case strings.Contains(lower, "token"):
		return ErrorInfo{Code: "unauthorized", Message: msg, HTTPStatus: 401}
	default:
		code := "internal_error"
		if fallbackStatus >= 400 && fallbackStatus < 500 {
			code = "bad_request"
		}
		return ErrorInfo{Code: code, Message: msg, HTTPStatus: fallbackStatus}
	}
}
