package shared

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"
)

var (
	poolOnce sync.Once
	pool     *http.Transport
)

// Transport returns the connection pool shared by every API provider.
func Transport() *http.Transport {
	poolOnce.Do(func() {
		pool = http.DefaultTransport.(*http.Transport).Clone()
		pool.MaxIdleConnsPerHost = 16
		pool.IdleConnTimeout = 90 * time.Second
	})
	return pool
}

// NewHTTPClient returns a client on the shared pool. Deadlines come from the
// request context, so the client itself has no timeout.
// Set skipTLSVerify to true for hosts with broken certificate chains; such
// clients get their own transport.
func NewHTTPClient(skipTLSVerify bool) *http.Client {
	if !skipTLSVerify {
		return &http.Client{Transport: Transport()}
	}
	t := Transport().Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &http.Client{Transport: t}
}
