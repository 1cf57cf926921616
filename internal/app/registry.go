package app

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/config"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/directapi"
	"github.com/bher20/tagihanpln/pkg/providers/ledger"
	"github.com/bher20/tagihanpln/pkg/providers/ppob"
	"github.com/bher20/tagihanpln/pkg/providers/sepulsa"
	"github.com/bher20/tagihanpln/pkg/providers/shared"
	"github.com/bher20/tagihanpln/pkg/providers/tokopedia"
)

// BuildRegistry creates the providers named by cfg.Inquiry.Order. Disabled
// providers, and providers missing the settings they need, are skipped with
// a log line. store may be nil.
func BuildRegistry(cfg *config.Config, auto browser.Automation, store ledger.Store) (*providers.Registry, error) {
	var ps []providers.Provider
	for _, key := range cfg.Inquiry.Order {
		pc, ok := cfg.Providers[key]
		if !ok {
			return nil, eris.Errorf("app: unknown provider %q in inquiry order", key)
		}
		pc.Key = key
		if !pc.Enabled {
			zap.L().Info("app: provider disabled", zap.String("provider", key))
			continue
		}
		p, reason := buildProvider(cfg, pc, auto, store)
		if p == nil {
			zap.L().Info("app: provider skipped", zap.String("provider", key), zap.String("reason", reason))
			continue
		}
		ps = append(ps, p)
	}
	if len(ps) == 0 {
		return nil, eris.New("app: no providers configured")
	}
	reg, err := providers.NewRegistry(ps...)
	if err != nil {
		return nil, err
	}
	for _, s := range reg.Specs() {
		zap.L().Info("app: provider registered",
			zap.String("provider", s.Key),
			zap.String("kind", string(s.Kind)),
			zap.Duration("timeout", s.Timeout))
	}
	return reg, nil
}

func buildProvider(cfg *config.Config, pc config.ProviderConfig, auto browser.Automation, store ledger.Store) (providers.Provider, string) {
	switch pc.Kind {
	case config.KindDirectAPI:
		if pc.BaseURL == "" {
			return nil, "base_url not set"
		}
		if pc.APIKeyHeader != "" && pc.APIKey == "" {
			return nil, "api_key not set"
		}
		headers := make([]shared.HeaderTemplate, 0, len(pc.Headers))
		for _, h := range pc.Headers {
			headers = append(headers, shared.HeaderTemplate(h))
		}
		return directapi.New(directapi.Config{
			Key:           pc.Key,
			Name:          pc.Name,
			BaseURL:       pc.BaseURL,
			Path:          pc.Path,
			Timeout:       pc.Timeout(),
			APIKey:        pc.APIKey,
			APIKeyHeader:  pc.APIKeyHeader,
			Origin:        pc.Origin,
			Headers:       headers,
			Mapping:       pc.Mapping,
			SkipTLSVerify: pc.SkipTLSVerify,
		}), ""

	case config.KindPPOB:
		if pc.BaseURL == "" {
			return nil, "base_url not set"
		}
		return ppob.New(ppob.Config{
			Key:         pc.Key,
			Name:        pc.Name,
			BaseURL:     pc.BaseURL,
			ProductCode: pc.ProductCode,
			APIKey:      pc.APIKey,
			SecretKey:   pc.SecretKey,
			Timeout:     pc.Timeout(),
		}), ""

	case config.KindSepulsa:
		if auto == nil {
			return nil, "no browser"
		}
		return sepulsa.New(sepulsa.Config{
			Key:     pc.Key,
			Name:    pc.Name,
			PageURL: pc.PageURL,
			Timeout: pc.Timeout(),
		}, auto), ""

	case config.KindTokopedia:
		if auto == nil {
			return nil, "no browser"
		}
		return tokopedia.New(tokopedia.Config{
			Key:     pc.Key,
			Name:    pc.Name,
			PageURL: pc.PageURL,
			Timeout: pc.Timeout(),
		}, auto), ""

	case config.KindLedger:
		if !cfg.Ledger.Enabled || store == nil {
			return nil, "ledger disabled"
		}
		return ledger.New(store, pc.Timeout()), ""
	}
	return nil, "unknown kind " + pc.Kind
}
