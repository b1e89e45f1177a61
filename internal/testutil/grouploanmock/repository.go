package grouploanmock

import (
	"context"

	domain "groupfund-backend/internal/domain/grouploan"

	"gorm.io/gorm"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateRequestFn       func(ctx context.Context, r *domain.Request) error
	GetRequestFn          func(ctx context.Context, groupID, requestID uint64) (*domain.Request, error)
	GetRequestForUpdateFn func(ctx context.Context, groupID, requestID uint64) (*domain.Request, error)
	SaveRequestFn         func(ctx context.Context, r *domain.Request) error
	NextRequestIDFn       func(ctx context.Context, groupID uint64) (uint64, error)
	CreateLoanFn          func(ctx context.Context, l *domain.Loan) error
	GetLoanFn             func(ctx context.Context, groupID, loanID uint64) (*domain.Loan, error)
	SaveLoanFn            func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) CreateRequest(ctx context.Context, r *domain.Request) error {
	if m.CreateRequestFn != nil {
		return m.CreateRequestFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetRequest(ctx context.Context, groupID, requestID uint64) (*domain.Request, error) {
	if m.GetRequestFn != nil {
		return m.GetRequestFn(ctx, groupID, requestID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetRequestForUpdate(ctx context.Context, groupID, requestID uint64) (*domain.Request, error) {
	if m.GetRequestForUpdateFn != nil {
		return m.GetRequestForUpdateFn(ctx, groupID, requestID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SaveRequest(ctx context.Context, r *domain.Request) error {
	if m.SaveRequestFn != nil {
		return m.SaveRequestFn(ctx, r)
	}
	return nil
}

func (m *Repo) NextRequestID(ctx context.Context, groupID uint64) (uint64, error) {
	if m.NextRequestIDFn != nil {
		return m.NextRequestIDFn(ctx, groupID)
	}
	return 1, nil
}

func (m *Repo) CreateLoan(ctx context.Context, l *domain.Loan) error {
	if m.CreateLoanFn != nil {
		return m.CreateLoanFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetLoan(ctx context.Context, groupID, loanID uint64) (*domain.Loan, error) {
	if m.GetLoanFn != nil {
		return m.GetLoanFn(ctx, groupID, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SaveLoan(ctx context.Context, l *domain.Loan) error {
	if m.SaveLoanFn != nil {
		return m.SaveLoanFn(ctx, l)
	}
	return nil
}
