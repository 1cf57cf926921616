package providers

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/bher20/tagihanpln/internal/bill"
)

// ErrorKind classifies a failed attempt.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindTransport covers network failures.
	KindTransport
	// KindTimeout is a transport failure caused by the attempt deadline.
	KindTimeout
	// KindProtocol covers non-200 statuses, unparsable bodies and page
	// elements or responses that never showed up.
	KindProtocol
	// KindLogic is a negative answer from a provider that is authoritative
	// for the customer ("Tagihan sudah dibayar").
	KindLogic
	// KindNotCovered means the provider has no record of the customer.
	KindNotCovered
	// KindNormalization means the payload could not be mapped to a bill.
	KindNormalization
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	case KindLogic:
		return "logic"
	case KindNotCovered:
		return "not_covered"
	case KindNormalization:
		return "normalization"
	}
	return "unknown"
}

// Error is the failure type returned by Provider.Submit.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Common errors shared across providers.
var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrDuplicateKey     = errors.New("provider registered twice")
)

func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Message: "timeout", Err: err}
}

func Protocol(format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

func Logic(message string) *Error {
	return &Error{Kind: KindLogic, Message: message}
}

func NotCovered(message string) *Error {
	return &Error{Kind: KindNotCovered, Message: message}
}

func Normalization(err error) *Error {
	return &Error{Kind: KindNormalization, Message: err.Error(), Err: err}
}

// FromContext classifies err, raised while ctx was active, as a timeout
// when the deadline is the cause and as a transport failure otherwise.
// Errors that are already typed pass through.
func FromContext(ctx context.Context, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Timeout(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout(err)
	}
	var nerr *bill.NormalizationError
	if errors.As(err, &nerr) {
		return Normalization(err)
	}
	return Transport(err)
}

// KindOf reports the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var ne *bill.NormalizationError
	if errors.As(err, &ne) {
		return KindNormalization
	}
	return KindUnknown
}
