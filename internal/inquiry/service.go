package inquiry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/metrics"
	"github.com/bher20/tagihanpln/pkg/providers"
)

// Service is the fallback orchestrator. It holds only immutable state and
// is safe for concurrent use.
type Service struct {
	providers  []providers.Provider
	normalizer *bill.Normalizer
}

func NewService(reg *providers.Registry) *Service {
	ps := reg.Providers()
	mappings := make(map[string]bill.Mapping, len(ps))
	for _, p := range ps {
		mappings[p.Spec().Key] = p.Mapping()
	}
	return &Service{providers: ps, normalizer: bill.NewNormalizer(mappings)}
}

// Inquire tries each provider once, in order, and returns the first
// success. When every provider fails, the message is the first
// authoritative provider answer, or MsgAllFailed.
func (s *Service) Inquire(ctx context.Context, customerNumber string) Result {
	customerNumber = strings.TrimSpace(customerNumber)
	if customerNumber == "" {
		return Failure(MsgRequired, nil)
	}

	log := zap.L().With(zap.String("customer", customerNumber))
	var (
		errs          []string
		authoritative string
	)
	for _, p := range s.providers {
		key := p.Spec().Key
		start := time.Now()
		rec, err := s.attempt(ctx, p, customerNumber)
		dur := time.Since(start)
		metrics.ProviderAttemptDurationSeconds.WithLabelValues(key).Observe(dur.Seconds())

		if err == nil {
			metrics.ProviderAttemptsTotal.WithLabelValues(key, "success").Inc()
			metrics.InquiriesTotal.WithLabelValues("success", key).Inc()
			if rec.TotalMismatch {
				metrics.TotalMismatchTotal.WithLabelValues(key).Inc()
				log.Warn("inquiry: total differs from bill plus admin fee",
					zap.String("provider", key),
					zap.Int64("bill", rec.BillAmount),
					zap.Int64("admin", rec.AdminFee),
					zap.Int64("total", rec.TotalPayment))
			}
			log.Info("inquiry: provider answered", zap.String("provider", key), zap.Duration("duration", dur))
			return Success(key, rec)
		}

		kind := providers.KindOf(err)
		metrics.ProviderAttemptsTotal.WithLabelValues(key, kind.String()).Inc()
		log.Warn("inquiry: provider failed",
			zap.String("provider", key),
			zap.String("kind", kind.String()),
			zap.Duration("duration", dur),
			zap.Error(err))

		errs = append(errs, fmt.Sprintf("%s: %s", key, err.Error()))
		if kind == providers.KindLogic && authoritative == "" {
			authoritative = err.Error()
		}
		if ctx.Err() != nil {
			// The caller gave up; the remaining providers are not tried.
			break
		}
	}

	msg := authoritative
	if msg == "" {
		msg = MsgAllFailed
	}
	metrics.InquiriesTotal.WithLabelValues("failure", "").Inc()
	log.Info("inquiry: all providers failed", zap.Strings("errors", errs))
	return Failure(msg, errs)
}

// attempt runs one provider under its own deadline and normalizes the
// answer. A panicking provider counts as a protocol failure.
func (s *Service) attempt(ctx context.Context, p providers.Provider, customerNumber string) (rec *bill.Record, err error) {
	spec := p.Spec()
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = providers.DefaultTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("inquiry: provider panicked", zap.String("provider", spec.Key), zap.Any("panic", r))
			rec, err = nil, providers.Protocol("provider panic: %v", r)
		}
	}()

	raw, err := p.Submit(actx, customerNumber)
	if err != nil {
		return nil, providers.FromContext(actx, err)
	}
	rec, err = s.normalizer.Normalize(spec.Key, raw, customerNumber)
	if err != nil {
		return nil, providers.Normalization(err)
	}
	return rec, nil
}
