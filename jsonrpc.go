// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"encoding/json"
	"fmt"
)

// A2A RPC method names.
const (
	// MethodHandshake is the method name for establishing a session.
	MethodHandshake = "handshake"
	// MethodDiscover is the method name for capability-based agent discovery.
	MethodDiscover = "discover"
	// MethodTask is the method name for dispatching a task.
	MethodTask = "task"
)

// JSONRPCMessage is the base structure for all JSON-RPC 2.0 messages.
type JSONRPCMessage struct {
	// JSONRPC version, always "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID correlates a response with its request. It is a string, number,
	// or null on the wire and is echoed back untouched; a response to an
	// unparseable request carries an explicit null.
	ID json.RawMessage `json:"id"`
}

// NewJSONRPCMessage creates a new [JSONRPCMessage] with the given raw id.
func NewJSONRPCMessage(id json.RawMessage) JSONRPCMessage {
	return JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPCMessage

	// Method identifies the operation to perform.
	Method string `json:"method"`
	// Params contains parameters for the method.
	Params json.RawMessage `json:"params,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	// Code is the error code.
	Code int `json:"code"`
	// Message is a short description of the error.
	Message string `json:"message"`
	// Data contains optional additional error details.
	Data any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
// Exactly one of Result or Error is present, never both.
type JSONRPCResponse struct {
	JSONRPCMessage

	// Result contains the successful result data.
	// Mutually exclusive with Error.
	Result json.RawMessage `json:"result,omitempty"`
	// Error contains an error object if the request failed.
	// Mutually exclusive with Result.
	Error *JSONRPCError `json:"error,omitempty"`
}

// HandshakeParams is the params payload for the "handshake" method.
type HandshakeParams struct {
	AgentInfo       *AgentInfo `json:"agent_info"`
	ProtocolVersion string     `json:"protocol_version"`
}

// HandshakeResult is the result payload for the "handshake" method.
type HandshakeResult struct {
	AgentInfo *AgentInfo `json:"agent_info"`
	Accepted  bool       `json:"accepted"`
	SessionID string     `json:"session_id"`
	Message   string     `json:"message,omitempty"`
}

// DiscoverParams is the params payload for the "discover" method.
// Zero-valued fields match everything.
type DiscoverParams struct {
	AgentType  AgentType `json:"agent_type,omitempty"`
	Capability string    `json:"capability,omitempty"`
}

// DiscoverResult is the result payload for the "discover" method.
type DiscoverResult struct {
	Agents []*AgentInfo `json:"agents"`
}

// TaskParams is the params payload for the "task" method: a [TaskRequest]
// plus the optional session under which the task is exchanged.
type TaskParams struct {
	TaskRequest

	// SessionID names an established session to touch. Dispatch proceeds
	// even when it is absent, unknown, or expired.
	SessionID string `json:"session_id,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	// JSONParseErrorCode indicates invalid JSON payload.
	JSONParseErrorCode = -32700
	// InvalidRequestErrorCode indicates request payload validation error.
	InvalidRequestErrorCode = -32600
	// MethodNotFoundErrorCode indicates the method does not exist.
	MethodNotFoundErrorCode = -32601
	// InvalidParamsErrorCode indicates invalid method parameters.
	InvalidParamsErrorCode = -32602
	// InternalErrorCode indicates an internal server error.
	InternalErrorCode = -32603
)

// A2A specific error codes.
const (
	// ServerErrorCode indicates a coordination-level server fault.
	ServerErrorCode = -32000
)

// NewJSONParseError creates a new JSONParseError.
func NewJSONParseError() *JSONRPCError {
	return &JSONRPCError{
		Code:    JSONParseErrorCode,
		Message: "Invalid JSON payload",
	}
}

// NewInvalidRequestError creates a new InvalidRequestError.
func NewInvalidRequestError() *JSONRPCError {
	return &JSONRPCError{
		Code:    InvalidRequestErrorCode,
		Message: "Request payload validation error",
	}
}

// NewMethodNotFoundError creates a new MethodNotFoundError.
func NewMethodNotFoundError() *JSONRPCError {
	return &JSONRPCError{
		Code:    MethodNotFoundErrorCode,
		Message: "Method not found",
	}
}

// NewInvalidParamsError creates a new InvalidParamsError.
func NewInvalidParamsError() *JSONRPCError {
	return &JSONRPCError{
		Code:    InvalidParamsErrorCode,
		Message: "Invalid parameters",
	}
}

// NewInternalError creates a new InternalError.
func NewInternalError() *JSONRPCError {
	return &JSONRPCError{
		Code:    InternalErrorCode,
		Message: "Internal error",
	}
}

// DecodeRequest decodes a raw JSON-RPC request body.
//
// It returns a [JSONRPCError] with code -32700 when the payload is not
// valid JSON, and -32600 when the envelope is structurally invalid (the
// jsonrpc field is not "2.0" or the method is absent). On -32600 the
// partially decoded request is returned alongside the error so the
// response can still echo the request id; only on -32700, when no id
// could be parsed, is the request nil. Param validation is deferred to
// the per-method decoders.
func DecodeRequest(data []byte) (*JSONRPCRequest, *JSONRPCError) {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, NewJSONParseError()
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return &req, NewInvalidRequestError()
	}
	return &req, nil
}

// DecodeHandshakeParams decodes and validates "handshake" params.
func DecodeHandshakeParams(params json.RawMessage) (*HandshakeParams, *JSONRPCError) {
	var p HandshakeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParamsError()
	}
	if err := p.AgentInfo.Validate(); err != nil {
		return nil, &JSONRPCError{
			Code:    InvalidParamsErrorCode,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}
	return &p, nil
}

// DecodeDiscoverParams decodes "discover" params. Absent params are legal
// and match everything.
func DecodeDiscoverParams(params json.RawMessage) (*DiscoverParams, *JSONRPCError) {
	var p DiscoverParams
	if len(params) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParamsError()
	}
	return &p, nil
}

// DecodeTaskParams decodes and validates "task" params.
func DecodeTaskParams(params json.RawMessage) (*TaskParams, *JSONRPCError) {
	var p TaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParamsError()
	}
	if p.TaskType == "" {
		return nil, &JSONRPCError{
			Code:    InvalidParamsErrorCode,
			Message: "Invalid parameters",
			Data:    "task_type cannot be empty",
		}
	}
	return &p, nil
}
