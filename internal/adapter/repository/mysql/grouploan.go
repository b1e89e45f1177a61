package mysql

import (
	"context"

	domain "groupfund-backend/internal/domain/grouploan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupLoanRepository struct{ db *gorm.DB }

func NewGroupLoanRepository(db *gorm.DB) *GroupLoanRepository { return &GroupLoanRepository{db: db} }

func (r *GroupLoanRepository) CreateRequest(ctx context.Context, req *domain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *GroupLoanRepository) SaveRequest(ctx context.Context, req *domain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *GroupLoanRepository) GetRequest(ctx context.Context, groupID, requestID uint64) (*domain.Request, error) {
	var out domain.Request
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND request_id = ?", groupID, requestID).First(&out)
	return &out, res.Error
}

func (r *GroupLoanRepository) GetRequestForUpdate(ctx context.Context, groupID, requestID uint64) (*domain.Request, error) {
	var out domain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ? AND request_id = ?", groupID, requestID).First(&out)
	return &out, res.Error
}

// NextRequestID hands out sequential ids per group; callers hold the group
// row lock, so two allocations for one group cannot interleave.
func (r *GroupLoanRepository) NextRequestID(ctx context.Context, groupID uint64) (uint64, error) {
	var maxID uint64
	err := r.db.WithContext(ctx).Model(&domain.Request{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(request_id), 0)").Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

func (r *GroupLoanRepository) CreateLoan(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *GroupLoanRepository) SaveLoan(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *GroupLoanRepository) GetLoan(ctx context.Context, groupID, loanID uint64) (*domain.Loan, error) {
	var out domain.Loan
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND loan_id = ?", groupID, loanID).First(&out)
	return &out, res.Error
}
