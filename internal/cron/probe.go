// Package cron runs the scheduled provider reachability probe.
package cron

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bher20/tagihanpln/internal/alerting"
	"github.com/bher20/tagihanpln/internal/metrics"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const probeConcurrency = 8

// JobName identifies the probe in metrics and the scheduled_jobs table.
const JobName = "provider_probe"

// JobRecorder persists the outcome of a run.
type JobRecorder interface {
	RecordJobRun(ctx context.Context, name string, started time.Time, dur time.Duration, err error) error
}

type poolStatser interface {
	Stats() (sql.DBStats, error)
}

// Status is the last probe outcome of one provider.
type Status struct {
	Up        bool      `json:"up"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Report summarizes one probe run.
type Report struct {
	Started  time.Time
	Duration time.Duration
	Probed   int
	Failed   []alerting.ProviderFailure
}

// Prober checks every provider that supports it and keeps the results.
type Prober struct {
	registry *providers.Registry
	auto     browser.Automation
	store    JobRecorder
	alerter  *alerting.Alerter
	driver   string

	scraper atomic.Bool

	mu     sync.RWMutex
	status map[string]Status

	cron *cron.Cron
}

// Option configures a Prober.
type Option func(*Prober)

// WithBrowser lets the prober refresh browser availability.
func WithBrowser(a browser.Automation) Option {
	return func(p *Prober) { p.auto = a }
}

// WithStore records runs in the scheduled_jobs table. driver labels the
// connection pool metrics.
func WithStore(s JobRecorder, driver string) Option {
	return func(p *Prober) {
		p.store = s
		p.driver = driver
	}
}

// WithAlerter reports unreachable providers.
func WithAlerter(a *alerting.Alerter) Option {
	return func(p *Prober) { p.alerter = a }
}

func NewProber(reg *providers.Registry, opts ...Option) *Prober {
	p := &Prober{registry: reg, status: make(map[string]Status)}
	for _, o := range opts {
		o(p)
	}
	p.refreshBrowser()
	return p
}

// ScraperAvailable reports whether browser-driven providers can run.
func (p *Prober) ScraperAvailable() bool { return p.scraper.Load() }

// Status returns the last probe result per provider key.
func (p *Prober) Status() map[string]Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Status, len(p.status))
	for k, v := range p.status {
		out[k] = v
	}
	return out
}

func (p *Prober) refreshBrowser() {
	ok := p.auto != nil && p.auto.Available()
	p.scraper.Store(ok)
	metrics.SetBrowserAvailable(ok)
}

// RunOnce probes every provider implementing providers.Prober, in parallel.
func (p *Prober) RunOnce(ctx context.Context) Report {
	started := time.Now()
	p.refreshBrowser()

	type result struct {
		key string
		err error
	}
	var (
		g       errgroup.Group
		results = make(chan result, p.registry.Len())
	)
	g.SetLimit(probeConcurrency)
	for _, prov := range p.registry.Providers() {
		pr, ok := prov.(providers.Prober)
		if !ok {
			continue
		}
		spec := prov.Spec()
		g.Go(func() error {
			timeout := spec.Timeout
			if timeout <= 0 {
				timeout = providers.DefaultTimeout
			}
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results <- result{key: spec.Key, err: pr.Probe(pctx)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	rep := Report{Started: started}
	now := time.Now()
	p.mu.Lock()
	for r := range results {
		rep.Probed++
		st := Status{Up: r.err == nil, CheckedAt: now}
		if r.err != nil {
			st.Error = r.err.Error()
			rep.Failed = append(rep.Failed, alerting.ProviderFailure{Provider: r.key, Error: st.Error})
			zap.L().Warn("probe: provider unreachable", zap.String("provider", r.key), zap.Error(r.err))
		}
		p.status[r.key] = st
		metrics.SetProviderUp(r.key, st.Up)
	}
	p.mu.Unlock()
	sort.Slice(rep.Failed, func(i, j int) bool { return rep.Failed[i].Provider < rep.Failed[j].Provider })
	rep.Duration = time.Since(started)

	var runErr error
	if len(rep.Failed) > 0 {
		runErr = eris.Errorf("%d/%d providers unreachable", len(rep.Failed), rep.Probed)
	}
	metrics.UpdateJobMetrics(JobName, started, runErr)
	if p.store != nil {
		if err := p.store.RecordJobRun(ctx, JobName, started, rep.Duration, runErr); err != nil {
			zap.L().Error("probe: update scheduled_jobs failed", zap.Error(err))
		}
		if s, ok := p.store.(poolStatser); ok {
			if stats, err := s.Stats(); err == nil {
				metrics.UpdateDBPoolMetrics(p.driver, stats)
			}
		}
	}
	if p.alerter != nil && len(rep.Failed) > 0 {
		if err := p.alerter.Send(ctx, alerting.ProbeAlert{
			JobName:   JobName,
			Total:     rep.Probed,
			Failed:    rep.Failed,
			Duration:  rep.Duration,
			Timestamp: started,
		}); err != nil {
			zap.L().Error("probe: alert failed", zap.Error(err))
		}
	}

	if runErr != nil {
		zap.L().Warn("probe: completed with failures", zap.Error(runErr), zap.Duration("duration", rep.Duration))
	} else {
		zap.L().Info("probe: completed", zap.Int("probed", rep.Probed), zap.Duration("duration", rep.Duration))
	}
	return rep
}

// Start runs the probe on schedule (standard cron syntax or "@every 10m")
// until ctx is cancelled or Stop is called. A first run starts immediately.
func (p *Prober) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { p.RunOnce(ctx) }); err != nil {
		return eris.Wrapf(err, "probe: invalid schedule %q", schedule)
	}
	p.cron = c
	c.Start()
	go p.RunOnce(ctx)
	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	zap.L().Info("probe: scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (p *Prober) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}
