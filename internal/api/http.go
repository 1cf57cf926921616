package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/api/swagger"
	"github.com/bher20/tagihanpln/internal/cron"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/internal/storage"
	"github.com/bher20/tagihanpln/internal/ui"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const rootMessage = "PLN Bill Checker API"

// Capabilities reports runtime state shown by the health and provider
// endpoints. *cron.Prober implements it.
type Capabilities interface {
	ScraperAvailable() bool
	Status() map[string]cron.Status
}

// Options wires the router's dependencies. Registry, Capabilities and
// Store are optional.
type Options struct {
	Inquirer       inquiry.Inquirer
	Registry       *providers.Registry
	Capabilities   Capabilities
	Store          storage.Storage
	RequestTimeout time.Duration
}

type handler struct {
	opts Options
}

// NewRouter constructs the HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 150 * time.Second
	}
	h := &handler{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", swagger.DocHandler)
	r.Get("/swagger/", swagger.UIHandler)
	r.Mount("/ui", ui.Routes())

	r.Group(func(r chi.Router) {
		r.Use(recoverInquiry)
		r.Post("/api/pln/postpaid", h.inquire)
		r.Post("/api/cek-tagihan-pln", h.inquire)
	})
	r.Get("/api/providers", h.listProviders)

	if opts.Store != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Recoverer)
			r.Route("/api/pln-customers", h.customerRoutes)
			r.Route("/api/transactions", h.transactionRoutes)
		})
	}

	return r
}

// HealthResponse is the body of / and /health.
type HealthResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	ScraperAvailable bool   `json:"scraper_available"`
}

func (h *handler) scraperAvailable() bool {
	return h.opts.Capabilities != nil && h.opts.Capabilities.ScraperAvailable()
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: rootMessage, ScraperAvailable: h.scraperAvailable()})
}

// health reports liveness and whether browser-driven providers can run.
// @Summary Liveness and scraper capability
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", ScraperAvailable: h.scraperAvailable()})
}

// ProviderDTO represents a provider in the API.
type ProviderDTO struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	URL         string  `json:"url,omitempty"`
	TimeoutSecs float64 `json:"timeout_secs"`
	Up          *bool   `json:"up,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// listProviders lists providers in inquiry order with their last probe state.
// @Summary List providers in inquiry order
// @Tags inquiry
// @Produce json
// @Success 200 {array} ProviderDTO
// @Router /api/providers [get]
func (h *handler) listProviders(w http.ResponseWriter, r *http.Request) {
	list := []ProviderDTO{}
	if h.opts.Registry == nil {
		writeJSON(w, http.StatusOK, list)
		return
	}
	var status map[string]cron.Status
	if h.opts.Capabilities != nil {
		status = h.opts.Capabilities.Status()
	}
	for _, s := range h.opts.Registry.Specs() {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = providers.DefaultTimeout
		}
		dto := ProviderDTO{
			Key:         s.Key,
			Name:        s.Name,
			Kind:        string(s.Kind),
			URL:         s.URL,
			TimeoutSecs: timeout.Seconds(),
		}
		if st, ok := status[s.Key]; ok {
			up := st.Up
			dto.Up = &up
			dto.Error = st.Error
		}
		list = append(list, dto)
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("http: encode response failed", zap.Error(err))
	}
}
