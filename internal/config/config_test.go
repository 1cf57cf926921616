package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ProvidersEnv, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 150, cfg.Server.RequestTimeoutSecs)
	assert.Equal(t, ModeProviders, cfg.Inquiry.Mode)
	assert.Equal(t, DefaultOrder, cfg.Inquiry.Order)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.False(t, cfg.Ledger.Enabled)

	horven := cfg.Providers["horven"]
	assert.Equal(t, "horven", horven.Key)
	assert.Equal(t, KindDirectAPI, horven.Kind)
	assert.Equal(t, "https://www.sepulsa.com", horven.Origin)
	assert.Equal(t, 15, horven.TimeoutSecs)
	assert.Equal(t, 30, cfg.Providers["tokopedia"].TimeoutSecs)
	assert.Equal(t, "x-api-key", cfg.Providers["pitucode"].APIKeyHeader)
}

func TestLoad_EnvOverridesProviderField(t *testing.T) {
	t.Setenv(ProvidersEnv, "")
	t.Setenv("TAGIHAN_PROVIDERS_PPOB_BASE_URL", "https://ppob.test")
	t.Setenv("TAGIHAN_PROVIDERS_PPOB_API_KEY", "k1")
	t.Setenv("TAGIHAN_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ppob.test", cfg.Providers["ppob"].BaseURL)
	assert.Equal(t, "k1", cfg.Providers["ppob"].APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_ProvidersJSONReplacesTable(t *testing.T) {
	t.Setenv(ProvidersEnv, `[
		{"key": "mine", "name": "My API", "kind": "directapi", "enabled": true,
		 "base_url": "https://api.example.com", "path": "/inquiry", "timeout_secs": 7,
		 "mapping": {"customer_name": "nama", "period_codes": false}}
	]`)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, []string{"mine"}, cfg.Inquiry.Order)

	p := cfg.Providers["mine"]
	assert.Equal(t, "https://api.example.com", p.BaseURL)
	assert.Equal(t, "nama", p.Mapping.CustomerName)
	require.NotNil(t, p.Mapping.PeriodCodes)
	assert.False(t, *p.Mapping.PeriodCodes)
	assert.Equal(t, int64(7), int64(p.Timeout().Seconds()))
}

func TestLoad_InvalidProvidersJSONFallsBack(t *testing.T) {
	t.Setenv(ProvidersEnv, "{not valid json")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, len(defaultProviders()))
}

func TestLoadFrom_File(t *testing.T) {
	t.Setenv(ProvidersEnv, "")
	path := filepath.Join(t.TempDir(), "tagihan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
inquiry:
  mode: simulate
ledger:
  enabled: true
store:
  driver: sqlite
  dsn: ledger.db
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, ModeSimulate, cfg.Inquiry.Mode)
	assert.True(t, cfg.Ledger.Enabled)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "ledger.db", cfg.Store.DSN)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Inquiry: InquiryConfig{Mode: "bogus"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		Inquiry:   InquiryConfig{Mode: ModeProviders, Order: []string{"missing"}},
		Providers: map[string]ProviderConfig{},
	}
	assert.Error(t, cfg.Validate())
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
