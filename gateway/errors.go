package gateway

import "errors"

// Error values for consistent error handling by callers.
var (
	ErrNotStarted      = errors.New("gateway not started")
	ErrAlreadyStarted  = errors.New("gateway already started")
	ErrToolNotFound    = errors.New("tool not found")
	ErrBackendNotFound = errors.New("backend not found")
	ErrHandlerNotFound = errors.New("handler not found")
	ErrExecutionFailed = errors.New("tool execution failed")
	ErrInvalidRequest  = errors.New("invalid request")
)

// JSON-RPC 2.0 error codes used on the MCP wire.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeToolNotFound   = -32001
	ErrCodeToolExecFailed = -32002
)
