package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("fetch ZZZZ: %w", ErrInvalidTicker), "invalid_ticker"},
		{fmt.Errorf("eod: %w", ErrSymbolNotFound), "invalid_ticker"},
		{fmt.Errorf("eod: %w", ErrDataUnavailable), "data_unavailable"},
		{fmt.Errorf("chart: %w", ErrInsufficientHistory), "insufficient_history"},
		{fmt.Errorf("eod: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.005, 2); got != 1.01 {
		t.Errorf("Round(1.005, 2) = %v, want 1.01", got)
	}
	if got := Round(-2.345, 2); got != -2.35 {
		t.Errorf("Round(-2.345, 2) = %v, want -2.35", got)
	}
	if RoundPtr(nil, 2) != nil {
		t.Error("RoundPtr(nil) should stay nil")
	}
	v := 3.14159
	if got := RoundPtr(&v, 2); got == nil || *got != 3.14 {
		t.Errorf("RoundPtr(3.14159, 2) = %v, want 3.14", got)
	}
}
