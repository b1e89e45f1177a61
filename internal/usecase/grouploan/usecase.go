package grouploan

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"groupfund-backend/internal/authz"
	domainGroup "groupfund-backend/internal/domain/group"
	domain "groupfund-backend/internal/domain/grouploan"
	domainLoan "groupfund-backend/internal/domain/loan"
	"groupfund-backend/internal/domain/uow"
	"groupfund-backend/internal/events"
	loanuc "groupfund-backend/internal/usecase/loan"
)

type Usecase struct {
	uow    uow.UnitOfWork
	gate   *authz.Gate
	loans  *loanuc.Usecase
	events events.Emitter
}

func NewUsecase(tx uow.UnitOfWork, gate *authz.Gate, loans *loanuc.Usecase, em events.Emitter) *Usecase {
	return &Usecase{uow: tx, gate: gate, loans: loans, events: em}
}

type RequestDTO struct {
	GroupID   uint64    `json:"group_id"`
	RequestID uint64    `json:"request_id"`
	Amount    int64     `json:"amount"`
	TenorDays uint32    `json:"tenor_days"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type LoanDTO struct {
	GroupID       uint64    `json:"group_id"`
	LoanID        uint64    `json:"loan_id"`
	Principal     int64     `json:"principal"`
	Interest      int64     `json:"interest"`
	DisbursedDate time.Time `json:"disbursed_date"`
	MaturityDate  time.Time `json:"maturity_date"`
	TenorDays     uint32    `json:"tenor_days"`
	Status        string    `json:"status"`
}

func requestDTO(r *domain.Request) *RequestDTO {
	return &RequestDTO{
		GroupID:   r.GroupID,
		RequestID: r.RequestID,
		Amount:    r.Amount,
		TenorDays: r.TenorDays,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// Request files a group-level borrowing request; a group carries at most
// one pending request at a time.
func (u *Usecase) Request(ctx context.Context, actor string, groupID uint64, amount int64, tenorDays uint32) (*RequestDTO, error) {
	if err := u.gate.Precheck(ctx, actor); err != nil {
		return nil, err
	}
	if err := u.gate.Require(ctx, actor, authz.Admin(), authz.Manager(groupID)); err != nil {
		return nil, err
	}

	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		if !g.IsOpen {
			return domainGroup.ErrClosed
		}
		if g.HasActiveLoanRequest {
			return domain.ErrActiveRequestExists
		}
		requestID, err := r.GroupLoans.NextRequestID(ctx, groupID)
		if err != nil {
			return err
		}
		req := &domain.Request{
			GroupID:   groupID,
			RequestID: requestID,
			Amount:    amount,
			TenorDays: tenorDays,
			Status:    domain.RequestRequested,
		}
		if err := r.GroupLoans.CreateRequest(ctx, req); err != nil {
			return err
		}
		g.HasActiveLoanRequest = true
		if err := r.Groups.Save(ctx, g); err != nil {
			return err
		}
		dto = requestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(events.Event{Name: "group_loan_requested", Actor: actor, GroupID: groupID, RequestID: dto.RequestID, Amount: amount})
	return dto, nil
}

// Approve grants the credit line: the funding pool is topped up by the
// requested amount with no funds check (this is not a disbursement), the
// accounting record is materialized, and for no-sign-off groups an
// individual request is synthesized on behalf of the manager in the same
// transaction.
func (u *Usecase) Approve(ctx context.Context, admin string, groupID, requestID uint64, interest int64) (*LoanDTO, error) {
	if err := u.gate.Require(ctx, admin, authz.Admin()); err != nil {
		return nil, err
	}

	var dto *LoanDTO
	var forwarded *loanuc.RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.GroupLoans.GetRequestForUpdate(ctx, groupID, requestID)
		if err != nil {
			return notFound(err)
		}
		if req.Status != domain.RequestRequested {
			return domain.ErrNotRequested
		}
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}

		req.Status = domain.RequestApproved
		if err := r.GroupLoans.SaveRequest(ctx, req); err != nil {
			return err
		}
		g.FundingPool += req.Amount
		g.HasActiveLoanRequest = false
		if err := r.Groups.Save(ctx, g); err != nil {
			return err
		}

		now := time.Now().UTC()
		maturity := now.AddDate(0, 0, int(req.TenorDays))
		l := &domain.Loan{
			GroupID:            groupID,
			LoanID:             requestID,
			Principal:          req.Amount,
			Interest:           interest,
			RemainingPrincipal: req.Amount,
			RemainingInterest:  interest,
			DisbursedDate:      now,
			MaturityDate:       maturity,
			TenorDays:          req.TenorDays,
			Status:             domain.LoanActive,
		}
		if err := r.GroupLoans.CreateLoan(ctx, l); err != nil {
			return err
		}

		if g.NoSignOff {
			// Auto-forward: the manager's individual request rides the same
			// transaction, so a manager with an open loan aborts the whole
			// approval.
			forwarded, err = u.loans.RequestIn(ctx, r, g.Manager, loanuc.RequestInput{
				Caller:       admin,
				GroupID:      groupID,
				Amount:       req.Amount,
				Interest:     interest,
				TenorDays:    req.TenorDays,
				Frequency:    domainLoan.FrequencyMonthly,
				Installments: 1,
				Token:        g.FundingToken,
			})
			if err != nil {
				return err
			}
		}

		dto = &LoanDTO{
			GroupID:       groupID,
			LoanID:        requestID,
			Principal:     l.Principal,
			Interest:      l.Interest,
			DisbursedDate: l.DisbursedDate,
			MaturityDate:  l.MaturityDate,
			TenorDays:     l.TenorDays,
			Status:        string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(events.Event{Name: "group_loan_approved", Actor: admin, GroupID: groupID, RequestID: requestID, Amount: dto.Principal})
	if forwarded != nil {
		u.events.Emit(events.Event{Name: "loan_requested", Actor: admin, GroupID: groupID, Borrower: forwarded.Borrower, RequestID: forwarded.RequestID, Amount: forwarded.Amount, Status: forwarded.Status})
	}
	return dto, nil
}

// Reject marks the request terminal and frees the group's request slot.
func (u *Usecase) Reject(ctx context.Context, admin string, groupID, requestID uint64) error {
	if err := u.gate.Require(ctx, admin, authz.Admin()); err != nil {
		return err
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.GroupLoans.GetRequestForUpdate(ctx, groupID, requestID)
		if err != nil {
			return notFound(err)
		}
		if req.Status != domain.RequestRequested {
			return domain.ErrNotRequested
		}
		req.Status = domain.RequestRejected
		if err := r.GroupLoans.SaveRequest(ctx, req); err != nil {
			return err
		}
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		g.HasActiveLoanRequest = false
		return r.Groups.Save(ctx, g)
	})
	if err != nil {
		return err
	}
	u.events.Emit(events.Event{Name: "group_loan_rejected", Actor: admin, GroupID: groupID, RequestID: requestID})
	return nil
}

func (u *Usecase) GetRequest(ctx context.Context, groupID, requestID uint64) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.GroupLoans.GetRequest(ctx, groupID, requestID)
		if err != nil {
			return notFound(err)
		}
		dto = requestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
