package mysql

import (
	"context"
	"errors"

	domain "groupfund-backend/internal/domain/borrower"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) HasOpenLoan(ctx context.Context, borrower string) (bool, error) {
	var out domain.Flag
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("borrower = ?", borrower).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return out.HasOpenLoan, nil
}

func (r *BorrowerRepository) SetOpenLoan(ctx context.Context, borrower string, open bool) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "borrower"}},
			DoUpdates: clause.Assignments(map[string]any{"has_open_loan": open}),
		}).
		Create(&domain.Flag{Borrower: borrower, HasOpenLoan: open}).Error
}
