// Package directapi talks to JSON bill-inquiry APIs that take a customer
// number and answer with a status flag plus the bill.
package directapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/shared"
)

const maxBody = 1 << 20

// Config describes one direct API provider.
type Config struct {
	Key     string
	Name    string
	BaseURL string
	Path    string
	Timeout time.Duration

	// APIKey is sent in APIKeyHeader when both are set.
	APIKey       string
	APIKeyHeader string

	// Origin is claimed in the Origin/Referer headers of the stock
	// templates; it defaults to the scheme and host of BaseURL.
	Origin        string
	Headers       []shared.HeaderTemplate
	Mapping       bill.Mapping
	SkipTLSVerify bool
}

type Client struct {
	cfg     Config
	http    *http.Client
	headers *shared.HeaderRotator
	mapping bill.Mapping
}

type Option func(*Client)

// WithHTTPClient replaces the shared-pool client, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func New(cfg Config, opts ...Option) *Client {
	headers := cfg.Headers
	if len(headers) == 0 {
		o := cfg.Origin
		if o == "" {
			o = origin(cfg.BaseURL)
		}
		headers = shared.DefaultHeaderTemplates(o)
	}
	c := &Client{
		cfg:     cfg,
		http:    shared.NewHTTPClient(cfg.SkipTLSVerify),
		headers: shared.NewHeaderRotator(headers),
		mapping: bill.FlatMapping.Merge(cfg.Mapping),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Spec() providers.Spec {
	return providers.Spec{
		Key:     c.cfg.Key,
		Name:    c.cfg.Name,
		Kind:    providers.KindAPI,
		URL:     c.endpoint(),
		Timeout: c.cfg.Timeout,
	}
}

func (c *Client) Mapping() bill.Mapping { return c.mapping }

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.Path
}

// Submit posts {"customer_number": ...} and returns the "data" object of a
// positive answer, or the whole body when there is no such object.
func (c *Client) Submit(ctx context.Context, customerNumber string) (providers.Payload, error) {
	body, _ := json.Marshal(map[string]string{"customer_number": customerNumber})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, providers.Transport(eris.Wrap(err, "build request"))
	}
	c.headers.Apply(req)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" && c.cfg.APIKeyHeader != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providers.Protocol("HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, providers.Protocol("invalid JSON response")
	}
	if !Positive(raw) {
		// A bare negative flag says nothing about the customer.
		if msg := message(raw); msg != "" {
			return nil, providers.Logic(msg)
		}
		return nil, providers.Protocol("negative status")
	}
	if data := gjson.GetBytes(raw, "data"); data.IsObject() {
		return providers.Payload(data.Raw), nil
	}
	return providers.Payload(raw), nil
}

// Probe reports whether the API host answers at all; any HTTP status counts.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.BaseURL, nil)
	if err != nil {
		return eris.Wrap(err, "build probe request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return providers.FromContext(ctx, err)
	}
	resp.Body.Close()
	return nil
}

// Positive reports whether a JSON answer carries a success flag:
// status == true, success == true or status == "success".
func Positive(raw []byte) bool {
	res := gjson.GetManyBytes(raw, "status", "success")
	status, success := res[0], res[1]
	if status.Type == gjson.True || success.Type == gjson.True {
		return true
	}
	return status.Type == gjson.String && strings.EqualFold(status.Str, "success")
}

func message(raw []byte) string {
	for _, path := range []string{"message", "error", "data.message"} {
		if v := gjson.GetBytes(raw, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func origin(base string) string {
	i := strings.Index(base, "://")
	if i < 0 {
		return ""
	}
	if j := strings.Index(base[i+3:], "/"); j >= 0 {
		return base[:i+3+j]
	}
	return base
}
