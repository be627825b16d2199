package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/mini-analyst/internal/common"
)

// tickerPattern accepts a base symbol (letters, digits, '-', '&', '=', and a
// leading '^' for indices) with an optional market suffix such as ".NS".
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9&=\-]{0,19}(\.[A-Z]{1,6})?$`)

// Ticker is a canonical, upper-case instrument symbol with an optional
// market suffix: "AAPL", "RELIANCE.NS", "BRK-B", "^GSPC".
type Ticker string

// ParseTicker normalizes and validates a user supplied symbol.
func ParseTicker(raw string) (Ticker, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", fmt.Errorf("%w: symbol is required", common.ErrInvalidTicker)
	}
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q is not a valid symbol (e.g. AAPL, MSFT, RELIANCE.NS)", common.ErrInvalidTicker, raw)
	}
	return Ticker(t), nil
}

// String returns the canonical form
func (t Ticker) String() string {
	return string(t)
}

// Base returns the symbol without its market suffix
func (t Ticker) Base() string {
	base, _, _ := strings.Cut(string(t), ".")
	return base
}

// Suffix returns the market suffix without the dot, or "" for the default market
func (t Ticker) Suffix() string {
	_, suffix, _ := strings.Cut(string(t), ".")
	return suffix
}

// IsIndex reports whether the ticker names an index (caret prefix)
func (t Ticker) IsIndex() bool {
	return strings.HasPrefix(string(t), "^")
}
