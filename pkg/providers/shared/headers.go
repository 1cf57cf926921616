package shared

import (
	"net/http"
	"sync/atomic"
)

// HeaderTemplate is one browser-like header set sent with provider requests.
type HeaderTemplate map[string]string

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Linux; Android 13; SM-A546E) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
}

// DefaultHeaderTemplates returns one template per stock user agent, all
// claiming to come from origin.
func DefaultHeaderTemplates(origin string) []HeaderTemplate {
	out := make([]HeaderTemplate, 0, len(userAgents))
	for _, ua := range userAgents {
		t := HeaderTemplate{
			"User-Agent":      ua,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
		}
		if origin != "" {
			t["Origin"] = origin
			t["Referer"] = origin + "/"
		}
		out = append(out, t)
	}
	return out
}

// HeaderRotator hands out templates round-robin. It is safe for concurrent
// use.
type HeaderRotator struct {
	templates []HeaderTemplate
	next      atomic.Uint64
}

func NewHeaderRotator(templates []HeaderTemplate) *HeaderRotator {
	return &HeaderRotator{templates: templates}
}

// Apply sets the next template's headers on req.
func (r *HeaderRotator) Apply(req *http.Request) {
	if r == nil || len(r.templates) == 0 {
		return
	}
	i := r.next.Add(1) - 1
	for k, v := range r.templates[i%uint64(len(r.templates))] {
		req.Header.Set(k, v)
	}
}
