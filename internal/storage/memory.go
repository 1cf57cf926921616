package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// simple single-process deployments.
type MemoryStorage struct {
	mu        sync.RWMutex
	customers map[string]Customer
	txs       []Transaction
	jobs      map[string]JobRun
	nextBill  uint
	now       func() time.Time
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		customers: make(map[string]Customer),
		jobs:      make(map[string]JobRun),
		now:       time.Now,
	}
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

// clone copies c so callers never share the bills slice with the store.
func clone(c Customer) *Customer {
	c.Bills = append([]CustomerBill(nil), c.Bills...)
	return &c
}

func (m *MemoryStorage) ListCustomers(ctx context.Context) ([]Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, *clone(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStorage) GetCustomer(ctx context.Context, number string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[number]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (m *MemoryStorage) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.customers[c.Number]; dup {
		return nil, ErrExists
	}
	c = withDefaults(c)
	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now
	for i := range c.Bills {
		m.nextBill++
		c.Bills[i].ID = m.nextBill
		c.Bills[i].CustomerNumber = c.Number
	}
	m.customers[c.Number] = *clone(c)
	return clone(c), nil
}

func (m *MemoryStorage) UpdateCustomer(ctx context.Context, number string, u CustomerUpdate) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[number]
	if !ok {
		return nil, ErrNotFound
	}
	u.apply(&c)
	c.UpdatedAt = m.now()
	m.customers[number] = c
	return clone(c), nil
}

func (m *MemoryStorage) DeleteCustomer(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[number]; !ok {
		return ErrNotFound
	}
	delete(m.customers, number)
	return nil
}

func (m *MemoryStorage) AddBill(ctx context.Context, number string, b CustomerBill) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[number]
	if !ok {
		return nil, ErrNotFound
	}
	m.nextBill++
	b.ID = m.nextBill
	b.CustomerNumber = number
	c.Bills = append(c.Bills, b)
	c.UpdatedAt = m.now()
	m.customers[number] = c
	return clone(c), nil
}

func (m *MemoryStorage) MarkBillPaid(ctx context.Context, number string, index int) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[number]
	if !ok || index < 0 || index >= len(c.Bills) {
		return nil, ErrNotFound
	}
	c.Bills = append([]CustomerBill(nil), c.Bills...)
	c.Bills[index].Paid = true
	c.UpdatedAt = m.now()
	m.customers[number] = c
	return clone(c), nil
}

func (m *MemoryStorage) ListTransactions(ctx context.Context) ([]Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transaction, 0, len(m.txs))
	for i := len(m.txs) - 1; i >= 0; i-- {
		out = append(out, m.txs[i])
	}
	return out, nil
}

func (m *MemoryStorage) CreateTransaction(ctx context.Context, t Transaction) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last int64
	if n := len(m.txs); n > 0 {
		last = m.txs[n-1].Seq
	}
	t, err := t.prepare(last+1, m.now())
	if err != nil {
		return nil, err
	}
	m.txs = append(m.txs, t)
	return &t, nil
}

func (m *MemoryStorage) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.txs {
		if t.ID == id {
			m.txs = append(m.txs[:i:i], m.txs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStorage) RecordJobRun(ctx context.Context, name string, started time.Time, dur time.Duration, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := JobRun{Name: name, LastRunAt: started, LastDurationMs: dur.Milliseconds(), LastSuccess: err == nil}
	if err != nil {
		run.LastError = err.Error()
	}
	m.jobs[name] = run
	return nil
}

// JobRun returns the last recorded run of a job.
func (m *MemoryStorage) JobRun(name string) (JobRun, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.jobs[name]
	return r, ok
}
