package rpcengine

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingURL ...
	ErrMissingURL = errors.New("missing trading engine rpc url")
	// ErrInvalidResponse is returned when the engine replies with a malformed
	// or mismatching JSON-RPC response.
	ErrInvalidResponse = errors.New("invalid json-rpc response")
)

// rpcError is the error object of a JSON-RPC response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
