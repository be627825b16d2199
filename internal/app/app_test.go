package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/mini-analyst/internal/clients/eodhd"
	"github.com/bobmcallan/mini-analyst/internal/clients/yahoo"
	"github.com/bobmcallan/mini-analyst/internal/common"
)

func newTestApp(t *testing.T, config *common.Config) *App {
	t.Helper()
	a, err := New(context.Background(), config, common.NewSilentLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	return a
}

func TestNew_InitializesAllServices(t *testing.T) {
	a := newTestApp(t, common.NewDefaultConfig())

	assert.NotNil(t, a.Config)
	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.MarketClient)
	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Analysis)
	assert.NotNil(t, a.Indices)
	assert.NotNil(t, a.Universe)
	assert.NotNil(t, a.Chart)
	assert.False(t, a.StartupTime.IsZero())
}

func TestNew_ProviderSelection(t *testing.T) {
	config := common.NewDefaultConfig()
	a := newTestApp(t, config)
	_, ok := a.MarketClient.(*eodhd.Client)
	assert.True(t, ok, "default provider should be EODHD")

	config = common.NewDefaultConfig()
	config.Provider = common.ProviderYahoo
	a = newTestApp(t, config)
	_, ok = a.MarketClient.(*yahoo.Client)
	assert.True(t, ok, "yahoo provider should build the Yahoo client")
}

func TestNew_UnknownProvider(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Provider = "bloomberg"

	_, err := New(context.Background(), config, common.NewSilentLogger(), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloomberg")
}

func TestNew_CommentaryDisabledWithoutKey(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Clients.Gemini.APIKey = ""

	a := newTestApp(t, config)
	// Must be an untyped nil so the analysis service skips commentary
	assert.True(t, a.GeminiClient == nil)
}

func TestNewApp_LoadsConfigFile(t *testing.T) {
	t.Setenv("ANALYST_PROVIDER", "")
	t.Setenv("PORT", "")
	t.Setenv("ANALYST_PORT", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "mini-analyst.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "yahoo"

[server]
port = 8181
workers = 2

[logging]
level = "error"
`), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)

	assert.Equal(t, common.ProviderYahoo, a.Config.Provider)
	assert.Equal(t, 8181, a.Config.Server.Port)
	assert.Equal(t, 2, a.Config.Server.GetWorkers())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`provider = "fax"`), 0o644))

	_, err := NewApp(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
