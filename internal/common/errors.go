package common

import (
	"context"
	"errors"
)

// Request-level error kinds. Callers wrap these with fmt.Errorf("...: %w")
// and test them with errors.Is.
var (
	// ErrInvalidTicker marks a malformed symbol or one the upstream does not know.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrDataUnavailable marks an upstream fetch failure (unreachable,
	// rate-limited, 5xx or undecodable). Not retried.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientHistory marks an indicator whose window is longer than
	// the available series. It never fails a request.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrSymbolNotFound is returned by upstream clients when the provider
	// reports an unknown symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// ErrorCode returns the short machine-readable code for an error payload.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTicker), errors.Is(err, ErrSymbolNotFound):
		return "invalid_ticker"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal_error"
	}
}
