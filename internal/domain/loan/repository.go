package loan

import "context"

type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, borrower string, requestID uint64) (*Request, error)
	GetRequestForUpdate(ctx context.Context, borrower string, requestID uint64) (*Request, error)
	SaveRequest(ctx context.Context, r *Request) error
	// NextRequestID allocates the next sequential request id for a borrower.
	NextRequestID(ctx context.Context, borrower string) (uint64, error)

	CreateLoan(ctx context.Context, l *Loan) error
	GetLoan(ctx context.Context, borrower string, requestID uint64) (*Loan, error)
	GetLoanForUpdate(ctx context.Context, borrower string, requestID uint64) (*Loan, error)
	SaveLoan(ctx context.Context, l *Loan) error
}
