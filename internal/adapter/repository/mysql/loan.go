package mysql

import (
	"context"

	domain "groupfund-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) CreateRequest(ctx context.Context, req *domain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LoanRepository) SaveRequest(ctx context.Context, req *domain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *LoanRepository) GetRequest(ctx context.Context, borrower string, requestID uint64) (*domain.Request, error) {
	var out domain.Request
	res := r.db.WithContext(ctx).
		Where("borrower = ? AND request_id = ?", borrower, requestID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetRequestForUpdate(ctx context.Context, borrower string, requestID uint64) (*domain.Request, error) {
	var out domain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("borrower = ? AND request_id = ?", borrower, requestID).First(&out)
	return &out, res.Error
}

// NextRequestID shares the id space between a request and the loan it turns
// into; sequential per borrower.
func (r *LoanRepository) NextRequestID(ctx context.Context, borrower string) (uint64, error) {
	var maxID uint64
	err := r.db.WithContext(ctx).Model(&domain.Request{}).
		Where("borrower = ?", borrower).
		Select("COALESCE(MAX(request_id), 0)").Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) SaveLoan(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetLoan(ctx context.Context, borrower string, requestID uint64) (*domain.Loan, error) {
	var out domain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower = ? AND request_id = ?", borrower, requestID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, borrower string, requestID uint64) (*domain.Loan, error) {
	var out domain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("borrower = ? AND request_id = ?", borrower, requestID).First(&out)
	return &out, res.Error
}
