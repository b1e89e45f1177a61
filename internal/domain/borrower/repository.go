package borrower

import "context"

type Repository interface {
	HasOpenLoan(ctx context.Context, borrower string) (bool, error)
	SetOpenLoan(ctx context.Context, borrower string, open bool) error
}
