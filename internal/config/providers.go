package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/bill"
)

// Provider kinds understood by the registry builder.
const (
	KindDirectAPI = "directapi"
	KindPPOB      = "ppob"
	KindSepulsa   = "sepulsa"
	KindTokopedia = "tokopedia"
	KindLedger    = "ledger"
)

// ProvidersEnv replaces the whole provider table with a JSON list; the list
// order becomes the inquiry order.
const ProvidersEnv = EnvPrefix + "_PROVIDERS_JSON"

// DefaultOrder is the provider priority: local ledger, then direct JSON
// APIs, then browser automation.
var DefaultOrder = []string{"ledger", "ppob", "pitucode", "horven", "alterra", "sepulsa", "tokopedia"}

// ProviderConfig describes one provider. Which fields apply depends on Kind.
type ProviderConfig struct {
	Key           string              `json:"key" yaml:"-" mapstructure:"-"`
	Name          string              `json:"name" yaml:"name" mapstructure:"name"`
	Kind          string              `json:"kind" yaml:"kind" mapstructure:"kind"`
	Enabled       bool                `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	BaseURL       string              `json:"base_url,omitempty" yaml:"base_url" mapstructure:"base_url"`
	Path          string              `json:"path,omitempty" yaml:"path" mapstructure:"path"`
	PageURL       string              `json:"page_url,omitempty" yaml:"page_url" mapstructure:"page_url"`
	Origin        string              `json:"origin,omitempty" yaml:"origin" mapstructure:"origin"`
	TimeoutSecs   int                 `json:"timeout_secs,omitempty" yaml:"timeout_secs" mapstructure:"timeout_secs"`
	APIKey        string              `json:"api_key,omitempty" yaml:"api_key" mapstructure:"api_key"`
	APIKeyHeader  string              `json:"api_key_header,omitempty" yaml:"api_key_header" mapstructure:"api_key_header"`
	SecretKey     string              `json:"secret_key,omitempty" yaml:"secret_key" mapstructure:"secret_key"`
	ProductCode   string              `json:"product_code,omitempty" yaml:"product_code" mapstructure:"product_code"`
	SkipTLSVerify bool                `json:"skip_tls_verify,omitempty" yaml:"skip_tls_verify" mapstructure:"skip_tls_verify"`
	Headers       []map[string]string `json:"headers,omitempty" yaml:"headers" mapstructure:"headers"`
	Mapping       bill.Mapping        `json:"mapping,omitempty" yaml:"mapping" mapstructure:"mapping"`
}

// Timeout returns the per-attempt deadline.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

func defaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Key:         "ledger",
			Name:        "Customer ledger",
			Kind:        KindLedger,
			Enabled:     true,
			TimeoutSecs: 5,
		},
		{
			Key:         "ppob",
			Name:        "PPOB aggregator",
			Kind:        KindPPOB,
			Enabled:     true,
			TimeoutSecs: 15,
			ProductCode: "PP_PLN",
		},
		{
			Key:          "pitucode",
			Name:         "Pitucode",
			Kind:         KindDirectAPI,
			Enabled:      true,
			BaseURL:      "https://api.pitucode.com",
			Path:         "/cek-tagihan-pln",
			APIKeyHeader: "x-api-key",
			TimeoutSecs:  15,
		},
		{
			Key:         "horven",
			Name:        "Sepulsa API (horven)",
			Kind:        KindDirectAPI,
			Enabled:     true,
			BaseURL:     "https://horven-api.sumpahpalapa.com/api",
			Path:        "/pln/postpaid/inquiry",
			Origin:      "https://www.sepulsa.com",
			TimeoutSecs: 15,
		},
		{
			Key:         "alterra",
			Name:        "Alterra",
			Kind:        KindDirectAPI,
			Enabled:     true,
			BaseURL:     "https://api.alterra.id",
			Path:        "/product/pln-postpaid/inquiry",
			Origin:      "https://www.sepulsa.com",
			TimeoutSecs: 15,
		},
		{
			Key:         "sepulsa",
			Name:        "Sepulsa web",
			Kind:        KindSepulsa,
			Enabled:     true,
			PageURL:     "https://www.sepulsa.com/transaction/pln?type=postpaid",
			TimeoutSecs: 30,
		},
		{
			Key:         "tokopedia",
			Name:        "Tokopedia web",
			Kind:        KindTokopedia,
			Enabled:     true,
			PageURL:     "https://www.tokopedia.com/pln/tagihan-listrik/",
			TimeoutSecs: 30,
		},
	}
}

// setProviderDefaults registers every default provider field with viper so
// TAGIHAN_PROVIDERS_<KEY>_<FIELD> variables override them.
func setProviderDefaults(v *viper.Viper) {
	for _, p := range defaultProviders() {
		prefix := "providers." + p.Key + "."
		v.SetDefault(prefix+"name", p.Name)
		v.SetDefault(prefix+"kind", p.Kind)
		v.SetDefault(prefix+"enabled", p.Enabled)
		v.SetDefault(prefix+"base_url", p.BaseURL)
		v.SetDefault(prefix+"path", p.Path)
		v.SetDefault(prefix+"page_url", p.PageURL)
		v.SetDefault(prefix+"origin", p.Origin)
		v.SetDefault(prefix+"timeout_secs", p.TimeoutSecs)
		v.SetDefault(prefix+"api_key", p.APIKey)
		v.SetDefault(prefix+"api_key_header", p.APIKeyHeader)
		v.SetDefault(prefix+"secret_key", p.SecretKey)
		v.SetDefault(prefix+"product_code", p.ProductCode)
		v.SetDefault(prefix+"skip_tls_verify", p.SkipTLSVerify)
	}
}

// providersFromEnv reads ProvidersEnv. Invalid or empty JSON is ignored.
func providersFromEnv() ([]ProviderConfig, bool) {
	raw := os.Getenv(ProvidersEnv)
	if raw == "" {
		return nil, false
	}
	var out []ProviderConfig
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		zap.L().Warn("config: ignoring invalid provider override", zap.String("env", ProvidersEnv), zap.Error(err))
		return nil, false
	}
	for _, p := range out {
		if p.Key == "" {
			zap.L().Warn("config: ignoring provider override with empty key", zap.String("env", ProvidersEnv))
			return nil, false
		}
	}
	return out, true
}
