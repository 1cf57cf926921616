// Package browser is the page-automation capability used by the scraping
// providers. Sessions are best effort: any step may fail and callers turn
// failures into provider errors.
package browser

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no element matches the given keywords.
	ErrNotFound = errors.New("browser: element not found")
	// ErrUnavailable is returned when no browser executable can be found.
	ErrUnavailable = errors.New("browser: not available")
)

// Automation opens isolated browser sessions.
type Automation interface {
	// NewSession starts a fresh browser bound to ctx. The caller must Close
	// it.
	NewSession(ctx context.Context) (Session, error)
	// Available reports whether a browser can be launched at all.
	Available() bool
}

// Session is one page in one browser.
type Session interface {
	// Watch delivers the bodies of responses whose URL contains urlPart.
	// Register watches before Navigate. Bodies that arrive while the channel
	// is full are dropped.
	Watch(urlPart string) <-chan []byte
	Navigate(ctx context.Context, url string) error
	// FillInput types value into the first input whose placeholder,
	// aria-label, name or id contains one of keywords, falling back to the
	// first visible text input.
	FillInput(ctx context.Context, keywords []string, value string) error
	// ClickButton clicks the first visible button whose text contains one of
	// keywords and reports whether it found one.
	ClickButton(ctx context.Context, keywords []string) (bool, error)
	// PressEnter sends Enter to the field last filled by FillInput.
	PressEnter(ctx context.Context) error
	// Content returns the rendered HTML.
	Content(ctx context.Context) (string, error)
	Close() error
}
