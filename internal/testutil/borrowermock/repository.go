package borrowermock

import (
	"context"
	"sync"
)

// Repo is an in-memory borrower.Repository; tests read Flags to assert the
// outstanding-loan invariant.
type Repo struct {
	mu    sync.Mutex
	Flags map[string]bool

	HasOpenLoanFn func(ctx context.Context, borrower string) (bool, error)
	SetOpenLoanFn func(ctx context.Context, borrower string, open bool) error
}

func (m *Repo) HasOpenLoan(ctx context.Context, borrower string) (bool, error) {
	if m.HasOpenLoanFn != nil {
		return m.HasOpenLoanFn(ctx, borrower)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Flags[borrower], nil
}

func (m *Repo) SetOpenLoan(ctx context.Context, borrower string, open bool) error {
	if m.SetOpenLoanFn != nil {
		return m.SetOpenLoanFn(ctx, borrower, open)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Flags == nil {
		m.Flags = make(map[string]bool)
	}
	m.Flags[borrower] = open
	return nil
}
