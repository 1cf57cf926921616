// Package storage persists the customer ledger: operator-entered customers,
// their monthly bills and the dashboard's transaction log.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a customer or bill does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrExists is returned when creating a customer whose number is taken.
	ErrExists = errors.New("storage: customer already exists")
	// ErrInvalid is returned for records that fail validation.
	ErrInvalid = errors.New("storage: invalid record")
)

// Storage abstracts persistence for the customer ledger.
type Storage interface {
	// Customers, newest first.
	ListCustomers(ctx context.Context) ([]Customer, error)
	// GetCustomer returns nil, nil when the customer is unknown.
	GetCustomer(ctx context.Context, number string) (*Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, number string, u CustomerUpdate) (*Customer, error)
	DeleteCustomer(ctx context.Context, number string) error

	// Bills
	AddBill(ctx context.Context, number string, b CustomerBill) (*Customer, error)
	// MarkBillPaid flags the index-th bill (0-based, stored order) as paid.
	MarkBillPaid(ctx context.Context, number string, index int) (*Customer, error)

	// Transactions, newest first. They are entered by operators from the
	// dashboard; inquiries never write here.
	ListTransactions(ctx context.Context) ([]Transaction, error)
	// CreateTransaction validates t and assigns the next TRXnnn id.
	CreateTransaction(ctx context.Context, t Transaction) (*Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Scheduled jobs
	RecordJobRun(ctx context.Context, name string, started time.Time, dur time.Duration, err error) error

	Ping(ctx context.Context) error
	// Close releases any resources (no-op for in-memory).
	Close() error
}
