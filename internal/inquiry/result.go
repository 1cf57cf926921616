// Package inquiry walks the configured providers in order and returns the
// first usable bill.
package inquiry

import (
	"context"

	"github.com/bher20/tagihanpln/internal/bill"
)

const (
	MsgRequired  = "customer_number is required"
	MsgAllFailed = "All providers failed"
)

// Result is either a success (Bill set) or a failure (Message set).
type Result struct {
	// Provider is the key of the provider that answered.
	Provider string
	Bill     *bill.Record

	Message string
	// Errors holds one "{provider}: {reason}" entry per attempted provider,
	// in the order they were tried.
	Errors []string
}

func Success(provider string, rec *bill.Record) Result {
	return Result{Provider: provider, Bill: rec}
}

func Failure(message string, errs []string) Result {
	return Result{Message: message, Errors: errs}
}

func (r Result) OK() bool { return r.Bill != nil }

// Inquirer answers bill inquiries. Implementations never return Go errors;
// every failure is folded into the Result.
type Inquirer interface {
	Inquire(ctx context.Context, customerNumber string) Result
}
