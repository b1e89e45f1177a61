package uow

import (
	"context"

	"groupfund-backend/internal/domain/borrower"
	"groupfund-backend/internal/domain/group"
	"groupfund-backend/internal/domain/grouploan"
	"groupfund-backend/internal/domain/loan"
)

type Repos struct {
	Groups     group.Repository
	GroupLoans grouploan.Repository
	Loans      loan.Repository
	Borrowers  borrower.Repository
}

// UnitOfWork runs fn against repositories bound to one transaction; any
// error rolls every mutation back, which is what gives each operation its
// all-or-nothing semantics.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
