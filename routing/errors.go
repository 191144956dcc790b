package routing

import (
	"errors"
	"fmt"
)

// Code is the machine-readable routing failure reported to callers.
type Code string

const (
	CodeNoNearbyNodes Code = "NO_NEARBY_NODES"
	CodeNoPathFound   Code = "NO_PATH_FOUND"
	CodeRoutingError  Code = "ROUTING_ERROR"
)

var (
	// ErrNoNearbyNodes indicates that start or end has no graph node within the search radius.
	ErrNoNearbyNodes = errors.New("routing: no nearby nodes")

	// ErrNoPathFound indicates that start and end lie in disconnected components.
	ErrNoPathFound = errors.New("routing: no path found")
)

// Error carries a Code alongside the underlying cause.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

// CodeOf classifies err. Nil yields "", unknown errors yield CodeRoutingError.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	switch {
	case errors.Is(err, ErrNoNearbyNodes):
		return CodeNoNearbyNodes
	case errors.Is(err, ErrNoPathFound):
		return CodeNoPathFound
	default:
		return CodeRoutingError
	}
}
