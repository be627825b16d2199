package models

import (
	"errors"
	"testing"

	"github.com/bobmcallan/mini-analyst/internal/common"
)

func TestParseTicker_Valid(t *testing.T) {
	tests := []struct {
		raw  string
		want Ticker
	}{
		{"AAPL", "AAPL"},
		{"  msft ", "MSFT"},
		{"reliance.ns", "RELIANCE.NS"},
		{"BRK-B", "BRK-B"},
		{"M&M.NS", "M&M.NS"},
		{"^GSPC", "^GSPC"},
		{"EURUSD=X", "EURUSD=X"},
		{"ZZZZINVALID", "ZZZZINVALID"},
	}

	for _, tt := range tests {
		got, err := ParseTicker(tt.raw)
		if err != nil {
			t.Errorf("ParseTicker(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTicker(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseTicker_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"../etc/passwd",
		"AAPL MSFT",
		"AAPL;DROP",
		"$AAPL",
		"AAPL..NS",
		"AAPL.N5",
		"AAPL.TOOLONGX",
		"ABCDEFGHIJKLMNOPQRSTU", // 21 chars
		"^",
	} {
		_, err := ParseTicker(raw)
		if !errors.Is(err, common.ErrInvalidTicker) {
			t.Errorf("ParseTicker(%q) error = %v, want ErrInvalidTicker", raw, err)
		}
	}
}

func TestTicker_Parts(t *testing.T) {
	tk := Ticker("RELIANCE.NS")
	if tk.Base() != "RELIANCE" || tk.Suffix() != "NS" {
		t.Errorf("RELIANCE.NS split = %q / %q", tk.Base(), tk.Suffix())
	}
	if tk.IsIndex() {
		t.Error("RELIANCE.NS is not an index")
	}

	us := Ticker("AAPL")
	if us.Base() != "AAPL" || us.Suffix() != "" {
		t.Errorf("AAPL split = %q / %q", us.Base(), us.Suffix())
	}

	if !Ticker("^NSEI").IsIndex() {
		t.Error("^NSEI should be an index")
	}
}
