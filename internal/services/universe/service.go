// Package universe provides the embedded list of well-known symbols used for
// autocomplete
package universe

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// Search limits
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

//go:embed tickers.yaml
var embedded []byte

type universeFile struct {
	Markets []struct {
		Name    string                 `yaml:"name"`
		Suffix  string                 `yaml:"suffix"`
		Symbols []models.UniverseEntry `yaml:"symbols"`
	} `yaml:"markets"`
}

// Service implements UniverseService over an immutable entry list
type Service struct {
	entries []models.UniverseEntry
	bySym   map[string]int
}

// New loads the embedded symbol list
func New() (*Service, error) {
	return NewFromYAML(embedded)
}

// NewFromYAML loads a symbol list in the embedded file's format
func NewFromYAML(data []byte) (*Service, error) {
	var f universeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse ticker universe: %w", err)
	}

	s := &Service{bySym: make(map[string]int)}
	for _, m := range f.Markets {
		for _, e := range m.Symbols {
			sym := strings.ToUpper(strings.TrimSpace(e.Symbol))
			if sym == "" {
				continue
			}
			if m.Suffix != "" {
				sym += "." + strings.ToUpper(m.Suffix)
			}
			if _, err := models.ParseTicker(sym); err != nil {
				return nil, fmt.Errorf("ticker universe entry %q: %w", sym, err)
			}
			if _, dup := s.bySym[sym]; dup {
				continue
			}
			s.bySym[sym] = len(s.entries)
			s.entries = append(s.entries, models.UniverseEntry{Symbol: sym, Name: e.Name, Market: m.Name})
		}
	}
	return s, nil
}

// Len returns the number of known symbols
func (s *Service) Len() int {
	return len(s.entries)
}

// Search returns symbols whose ticker starts with query, followed by those
// whose name contains it. Matching is case-insensitive; an empty query lists
// entries in file order.
func (s *Service) Search(query string, limit int) []models.UniverseEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	out := make([]models.UniverseEntry, 0, limit)
	if q == "" {
		for _, e := range s.entries {
			if len(out) == limit {
				break
			}
			out = append(out, e)
		}
		return out
	}

	taken := make(map[int]bool)
	for i, e := range s.entries {
		if len(out) == limit {
			return out
		}
		if strings.HasPrefix(e.Symbol, q) {
			out = append(out, e)
			taken[i] = true
		}
	}
	for i, e := range s.entries {
		if len(out) == limit {
			return out
		}
		if !taken[i] && strings.Contains(strings.ToUpper(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry for an exact symbol
func (s *Service) Lookup(symbol string) (models.UniverseEntry, bool) {
	i, ok := s.bySym[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return models.UniverseEntry{}, false
	}
	return s.entries[i], true
}

// Ensure Service implements UniverseService
var _ interfaces.UniverseService = (*Service)(nil)
