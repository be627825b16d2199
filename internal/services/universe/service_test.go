package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Embedded(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.Equal(t, 150, s.Len())

	e, ok := s.Lookup("reliance.ns")
	require.True(t, ok)
	assert.Equal(t, "Reliance Industries", e.Name)
	assert.Equal(t, "NIFTY 50", e.Market)

	e, ok = s.Lookup("M&M.NS")
	require.True(t, ok)
	assert.Equal(t, "Mahindra & Mahindra", e.Name)

	e, ok = s.Lookup("BRK-B")
	require.True(t, ok)
	assert.Equal(t, "S&P 500", e.Market)

	_, ok = s.Lookup("ZZZZ")
	assert.False(t, ok)
}

func TestSearch_PrefixBeforeName(t *testing.T) {
	s, err := NewFromYAML([]byte(`
markets:
  - name: Test
    suffix: ""
    symbols:
      - {symbol: "MAT", name: "Material Co"}
      - {symbol: "ZZ", name: "Big Machines"}
      - {symbol: "MA", name: "Mastercard"}
`))
	require.NoError(t, err)

	got := s.Search("ma", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "MAT", got[0].Symbol)
	assert.Equal(t, "MA", got[1].Symbol)
	assert.Equal(t, "ZZ", got[2].Symbol)
}

func TestSearch_Limits(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.Len(t, s.Search("", 0), DefaultLimit)
	assert.Len(t, s.Search("", 500), MaxLimit)
	assert.Len(t, s.Search("A", 3), 3)
	assert.Empty(t, s.Search("no such company anywhere", 10))
}

func TestSearch_NameSubstring(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	got := s.Search("tata", 10)
	symbols := make([]string, 0, len(got))
	for _, e := range got {
		symbols = append(symbols, e.Symbol)
	}
	// three symbol prefixes, then TCS by name
	assert.Equal(t, []string{"TATACONSUM.NS", "TATAMOTORS.NS", "TATASTEEL.NS", "TCS.NS"}, symbols)
}

func TestNewFromYAML_Errors(t *testing.T) {
	_, err := NewFromYAML([]byte("markets: [not: valid"))
	assert.Error(t, err)

	_, err = NewFromYAML([]byte(`
markets:
  - name: Bad
    symbols:
      - {symbol: "../X", name: "Traversal"}
`))
	assert.Error(t, err)
}
