package providers

import (
	"context"
	"time"

	"github.com/bher20/tagihanpln/internal/bill"
)

// Kind describes how a provider obtains bill data.
type Kind string

const (
	KindAPI       Kind = "api"
	KindBrowser   Kind = "browser"
	KindLedger    Kind = "ledger"
	KindSimulated Kind = "simulated"
)

// DefaultTimeout bounds an attempt whose Spec carries no timeout.
const DefaultTimeout = 30 * time.Second

// Spec is the static description of a configured provider.
type Spec struct {
	// Key is the unique identifier (e.g., "ppob", "sepulsa"). It is the
	// provider name reported in results and error lists.
	Key string `json:"key"`
	// Name is the human-readable name.
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// URL is the endpoint or landing page the provider talks to.
	URL     string        `json:"url,omitempty"`
	Timeout time.Duration `json:"timeout"`
}

// Payload is the raw JSON a provider hands to the normalizer.
type Payload []byte

// Provider is implemented by every bill source.
type Provider interface {
	Spec() Spec
	// Mapping tells the normalizer how to read this provider's Payload.
	Mapping() bill.Mapping
	// Submit performs one inquiry. Failures are returned as *Error.
	Submit(ctx context.Context, customerNumber string) (Payload, error)
}

// Prober is implemented by providers that can check reachability without
// running an inquiry.
type Prober interface {
	Probe(ctx context.Context) error
}
