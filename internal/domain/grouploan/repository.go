package grouploan

import "context"

type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, groupID, requestID uint64) (*Request, error)
	GetRequestForUpdate(ctx context.Context, groupID, requestID uint64) (*Request, error)
	SaveRequest(ctx context.Context, r *Request) error
	// NextRequestID allocates the next sequential request id for a group.
	NextRequestID(ctx context.Context, groupID uint64) (uint64, error)

	CreateLoan(ctx context.Context, l *Loan) error
	GetLoan(ctx context.Context, groupID, loanID uint64) (*Loan, error)
	SaveLoan(ctx context.Context, l *Loan) error
}
