// Package funds holds the token-transfer port and the pre-disbursement
// sufficiency checks.
package funds

import (
	"context"
	"errors"
)

var (
	ErrInsufficientContractFunds = errors.New("contract custody does not cover requested amount")
	ErrInsufficientGroupFunds    = errors.New("group funding pool does not cover requested amount")
)

// TokenLedger is the external token-transfer collaborator. Transfers are
// atomic-or-nothing from this system's perspective; an error here aborts the
// whole enclosing operation.
type TokenLedger interface {
	TransferOut(ctx context.Context, token, to string, amount int64) error
	TransferIn(ctx context.Context, token, from string, amount int64) error
	BalanceOf(ctx context.Context, token, holder string) (int64, error)
}

// Checker validates, before disbursement, that custody (and for group loans
// the group pool) covers the principal. Both checks are read-only; the
// caller is expected to hold its transaction/guard across the check and the
// subsequent debit so no interleaving can stale them.
type Checker struct {
	ledger  TokenLedger
	custody string
}

func NewChecker(ledger TokenLedger, custodyAccount string) *Checker {
	return &Checker{ledger: ledger, custody: custodyAccount}
}

// EnsureSufficient checks pooled custody across all groups/tokens, then the
// group pool when the request is group-sourced.
func (c *Checker) EnsureSufficient(ctx context.Context, token string, amount int64, groupPool int64, fromGroup bool) error {
	bal, err := c.ledger.BalanceOf(ctx, token, c.custody)
	if err != nil {
		return err
	}
	if bal < amount {
		return ErrInsufficientContractFunds
	}
	if fromGroup && groupPool < amount {
		return ErrInsufficientGroupFunds
	}
	return nil
}
