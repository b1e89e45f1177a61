package funds

import (
	"context"
	"errors"
	"sync"
)

var ErrInsufficientBalance = errors.New("insufficient token balance")

// MemoryLedger is an in-memory TokenLedger keyed by (token, holder), used
// for wiring and tests.
type MemoryLedger struct {
	mu       sync.Mutex
	custody  string
	balances map[string]map[string]int64
}

func NewMemoryLedger(custodyAccount string) *MemoryLedger {
	return &MemoryLedger{
		custody:  custodyAccount,
		balances: make(map[string]map[string]int64),
	}
}

// Mint credits a holder out of thin air; test/bootstrap helper.
func (m *MemoryLedger) Mint(token, holder string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(token, holder, amount)
}

func (m *MemoryLedger) TransferOut(_ context.Context, token, to string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[token][m.custody] < amount {
		return ErrInsufficientBalance
	}
	m.balances[token][m.custody] -= amount
	m.credit(token, to, amount)
	return nil
}

func (m *MemoryLedger) TransferIn(_ context.Context, token, from string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[token][from] < amount {
		return ErrInsufficientBalance
	}
	m.balances[token][from] -= amount
	m.credit(token, m.custody, amount)
	return nil
}

func (m *MemoryLedger) BalanceOf(_ context.Context, token, holder string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[token][holder], nil
}

func (m *MemoryLedger) credit(token, holder string, amount int64) {
	if m.balances[token] == nil {
		m.balances[token] = make(map[string]int64)
	}
	m.balances[token][holder] += amount
}
