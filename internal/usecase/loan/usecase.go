package loan

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"groupfund-backend/internal/authz"
	domainGroup "groupfund-backend/internal/domain/group"
	domain "groupfund-backend/internal/domain/loan"
	"groupfund-backend/internal/domain/uow"
	"groupfund-backend/internal/events"
	"groupfund-backend/internal/funds"
	"groupfund-backend/internal/guard"
)

// DefaultGraceDays is the window past the due date within which a completed
// repayment still counts as on time.
const DefaultGraceDays = 30

type Usecase struct {
	uow       uow.UnitOfWork
	gate      *authz.Gate
	checker   *funds.Checker
	ledger    funds.TokenLedger
	guard     *guard.Guard
	events    events.Emitter
	graceDays int
}

func NewUsecase(tx uow.UnitOfWork, gate *authz.Gate, checker *funds.Checker, ledger funds.TokenLedger, g *guard.Guard, em events.Emitter, graceDays int) *Usecase {
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}
	return &Usecase{uow: tx, gate: gate, checker: checker, ledger: ledger, guard: g, events: em, graceDays: graceDays}
}

type RequestInput struct {
	Caller       string
	OnBehalfOf   string
	GroupID      uint64
	Amount       int64
	Interest     int64
	TenorDays    uint32
	Frequency    domain.Frequency
	Installments uint32
	Token        string
}

type RequestDTO struct {
	Borrower          string    `json:"borrower"`
	RequestID         uint64    `json:"request_id"`
	GroupID           uint64    `json:"group_id"`
	Amount            int64     `json:"amount"`
	Interest          int64     `json:"interest"`
	TenorDays         uint32    `json:"tenor_days"`
	Frequency         string    `json:"frequency"`
	Installments      uint32    `json:"installments"`
	InstallmentAmount int64     `json:"installment_amount"`
	Token             string    `json:"token"`
	Status            string    `json:"status"`
	Signatory1        string    `json:"signatory1,omitempty"`
	Signatory2        string    `json:"signatory2,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type LoanDTO struct {
	Borrower          string     `json:"borrower"`
	RequestID         uint64     `json:"request_id"`
	GroupID           uint64     `json:"group_id"`
	Principal         int64      `json:"principal"`
	Interest          int64      `json:"interest"`
	RepaidAmount      int64      `json:"repaid_amount"`
	DisbursedDate     time.Time  `json:"disbursed_date"`
	DueDate           time.Time  `json:"due_date"`
	LastRepaymentAt   *time.Time `json:"last_repayment_at,omitempty"`
	TenorDays         uint32     `json:"tenor_days"`
	Installments      uint32     `json:"installments"`
	InstallmentAmount int64      `json:"installment_amount"`
	Token             string     `json:"token"`
	Status            string     `json:"status"`
}

func requestDTO(r *domain.Request) *RequestDTO {
	return &RequestDTO{
		Borrower:          r.Borrower,
		RequestID:         r.RequestID,
		GroupID:           r.GroupID,
		Amount:            r.Amount,
		Interest:          r.Interest,
		TenorDays:         r.TenorDays,
		Frequency:         string(r.Frequency),
		Installments:      r.Installments,
		InstallmentAmount: r.InstallmentAmount,
		Token:             r.Token,
		Status:            string(r.Status),
		Signatory1:        r.Signatory1,
		Signatory2:        r.Signatory2,
		CreatedAt:         r.CreatedAt,
	}
}

func loanDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		Borrower:          l.Borrower,
		RequestID:         l.RequestID,
		GroupID:           l.GroupID,
		Principal:         l.Principal,
		Interest:          l.Interest,
		RepaidAmount:      l.RepaidAmount,
		DisbursedDate:     l.DisbursedDate,
		DueDate:           l.DueDate,
		LastRepaymentAt:   l.LastRepaymentAt,
		TenorDays:         l.TenorDays,
		Installments:      l.Installments,
		InstallmentAmount: l.InstallmentAmount,
		Token:             l.Token,
		Status:            string(l.Status),
	}
}

// Request files a loan request. When OnBehalfOf is set the caller must be an
// admin; that is the path auto-forwarded group approvals take.
func (u *Usecase) Request(ctx context.Context, in RequestInput) (*RequestDTO, error) {
	if err := u.gate.Precheck(ctx, in.Caller); err != nil {
		return nil, err
	}
	borrower := in.Caller
	if in.OnBehalfOf != "" && in.OnBehalfOf != in.Caller {
		if err := u.gate.Require(ctx, in.Caller, authz.Admin()); err != nil {
			return nil, err
		}
		borrower = in.OnBehalfOf
	}
	if in.GroupID != 0 {
		if err := u.gate.Require(ctx, borrower, authz.Member(in.GroupID)); err != nil {
			return nil, domainGroup.ErrNotGroupMember
		}
	} else if err := u.gate.RequireRegistered(ctx, borrower); err != nil {
		return nil, err
	}

	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		dto, err = u.RequestIn(ctx, r, borrower, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(events.Event{Name: "loan_requested", Actor: in.Caller, GroupID: in.GroupID, Borrower: borrower, RequestID: dto.RequestID, Amount: in.Amount, Status: dto.Status})
	return dto, nil
}

// RequestIn is the transactional core of Request; the group loan ledger
// calls it directly so an auto-forwarded request commits or aborts together
// with the group loan approval that synthesized it.
func (u *Usecase) RequestIn(ctx context.Context, r uow.Repos, borrower string, in RequestInput) (*RequestDTO, error) {
	if in.Installments < 1 {
		return nil, domain.ErrInvalidInstallments
	}
	open, err := r.Borrowers.HasOpenLoan(ctx, borrower)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrExistingLoan
	}

	status := domain.RequestRequested
	if in.GroupID != 0 {
		g, err := r.Groups.GetByID(ctx, in.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domainGroup.ErrNotFound
			}
			return nil, err
		}
		if g.NoSignOff {
			status = domain.RequestSigned
		}
	}

	requestID, err := r.Loans.NextRequestID(ctx, borrower)
	if err != nil {
		return nil, err
	}
	req := &domain.Request{
		Borrower:  borrower,
		RequestID: requestID,
		GroupID:   in.GroupID,
		Amount:    in.Amount,
		Interest:  in.Interest,
		TenorDays: in.TenorDays,
		Frequency: in.Frequency,
		// Integer division truncates; the remainder is forgiven on the final
		// installment rather than tracked separately.
		Installments:      in.Installments,
		InstallmentAmount: (in.Amount + in.Interest) / int64(in.Installments),
		Token:             in.Token,
		Status:            status,
	}
	if err := r.Loans.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	if err := r.Borrowers.SetOpenLoan(ctx, borrower, true); err != nil {
		return nil, err
	}
	return requestDTO(req), nil
}

// SignOff records one signatory approval; the transition to signed fires
// exactly when the second distinct signatory lands.
func (u *Usecase) SignOff(ctx context.Context, signatory, borrower string, requestID uint64) (*RequestDTO, error) {
	if err := u.gate.Precheck(ctx, signatory); err != nil {
		return nil, err
	}
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Loans.GetRequestForUpdate(ctx, borrower, requestID)
		if err != nil {
			return notFound(err)
		}
		if err := u.gate.Require(ctx, signatory, authz.Signatory(req.GroupID)); err != nil {
			return err
		}
		if req.SignedBy(signatory) {
			return domain.ErrAlreadySigned
		}
		// Two distinct signatories cap the set; a third attempt is its own
		// error, distinct from signing a request that never opened.
		if req.Signatory1 != "" && req.Signatory2 != "" {
			return domain.ErrAlreadySignedOff
		}
		if req.Status != domain.RequestRequested {
			return domain.ErrNotRequested
		}
		if req.Signatory1 == "" {
			req.Signatory1 = signatory
		} else {
			req.Signatory2 = signatory
			req.Status = domain.RequestSigned
		}
		if err := r.Loans.SaveRequest(ctx, req); err != nil {
			return err
		}
		dto = requestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(events.Event{Name: "loan_request_signed", Actor: signatory, GroupID: dto.GroupID, Borrower: borrower, RequestID: requestID, Status: dto.Status})
	return dto, nil
}

// Approve disburses a request: funds sufficiency, pool debit (group path),
// token transfer, loan materialization — all inside one transaction, all
// bracketed by the reentrancy guard.
func (u *Usecase) Approve(ctx context.Context, approver, borrower string, requestID, groupID uint64) (*LoanDTO, error) {
	if err := u.guard.Enter(); err != nil {
		return nil, err
	}
	defer u.guard.Exit()

	if groupID != 0 {
		if err := u.gate.Precheck(ctx, approver); err != nil {
			return nil, err
		}
		if err := u.gate.Require(ctx, approver, authz.Manager(groupID)); err != nil {
			return nil, err
		}
	} else if err := u.gate.Require(ctx, approver, authz.Admin()); err != nil {
		return nil, err
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Loans.GetRequestForUpdate(ctx, borrower, requestID)
		if err != nil {
			return notFound(err)
		}
		if req.GroupID != groupID {
			return domain.ErrNotFound
		}
		if groupID != 0 && req.Status != domain.RequestSigned {
			return domain.ErrNotSigned
		}
		if groupID == 0 && req.Status != domain.RequestRequested {
			return domain.ErrNotRequested
		}

		var g *domainGroup.Group
		var pool int64
		if groupID != 0 {
			g, err = r.Groups.GetByIDForUpdate(ctx, groupID)
			if err != nil {
				return notFound(err)
			}
			pool = g.FundingPool
		}
		if err := u.checker.EnsureSufficient(ctx, req.Token, req.Amount, pool, groupID != 0); err != nil {
			return err
		}
		if g != nil {
			g.FundingPool -= req.Amount
			if err := r.Groups.Save(ctx, g); err != nil {
				return err
			}
		}

		req.Status = domain.RequestApproved
		if err := r.Loans.SaveRequest(ctx, req); err != nil {
			return err
		}

		now := time.Now().UTC()
		due := now.AddDate(0, 0, int(req.TenorDays))
		l := &domain.Loan{
			Borrower:          borrower,
			RequestID:         requestID,
			GroupID:           groupID,
			Principal:         req.Amount,
			Interest:          req.Interest,
			DisbursedDate:     now,
			DueDate:           due,
			MaturityDate:      due,
			TenorDays:         req.TenorDays,
			Frequency:         req.Frequency,
			Installments:      req.Installments,
			InstallmentAmount: req.InstallmentAmount,
			Token:             req.Token,
			Status:            domain.StatusActive,
		}
		if err := r.Loans.CreateLoan(ctx, l); err != nil {
			return err
		}

		// External transfer goes last: every state change above rides the
		// same transaction and rolls back if the payout fails.
		if err := u.ledger.TransferOut(ctx, req.Token, borrower, req.Amount); err != nil {
			return err
		}
		dto = loanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(events.Event{Name: "loan_disbursed", Actor: approver, GroupID: groupID, Borrower: borrower, RequestID: requestID, Amount: dto.Principal, Status: dto.Status})
	return dto, nil
}

// Reject terminates a request from either the requested or signed state and
// frees the borrower's slot.
func (u *Usecase) Reject(ctx context.Context, actor, borrower string, requestID uint64) error {
	if err := u.gate.Precheck(ctx, actor); err != nil {
		return err
	}
	var groupID uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Loans.GetRequestForUpdate(ctx, borrower, requestID)
		if err != nil {
			return notFound(err)
		}
		if err := u.gate.Require(ctx, actor, authz.Admin(), authz.Manager(req.GroupID)); err != nil {
			return err
		}
		if req.Status != domain.RequestRequested && req.Status != domain.RequestSigned {
			return domain.ErrNotRequested
		}
		req.Status = domain.RequestRejected
		if err := r.Loans.SaveRequest(ctx, req); err != nil {
			return err
		}
		groupID = req.GroupID
		return r.Borrowers.SetOpenLoan(ctx, borrower, false)
	})
	if err != nil {
		return err
	}
	u.events.Emit(events.Event{Name: "loan_request_rejected", Actor: actor, GroupID: groupID, Borrower: borrower, RequestID: requestID})
	return nil
}

type RepaymentDTO struct {
	Borrower     string `json:"borrower"`
	RequestID    uint64 `json:"request_id"`
	RepaidAmount int64  `json:"repaid_amount"`
	Outstanding  int64  `json:"outstanding"`
	Status       string `json:"status"`
}

// Repay pulls funds from the payer and accumulates them against the loan.
// Crossing principal+interest closes the loan: within the grace window the
// status lands on repaid, beyond it on paid_late. Amounts beyond the total
// owed are retained without refund or credit.
func (u *Usecase) Repay(ctx context.Context, payer, borrower string, requestID uint64, amount int64) (*RepaymentDTO, error) {
	if err := u.guard.Enter(); err != nil {
		return nil, err
	}
	defer u.guard.Exit()

	if err := u.gate.Precheck(ctx, payer); err != nil {
		return nil, err
	}

	var dto *RepaymentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetLoanForUpdate(ctx, borrower, requestID)
		if err != nil {
			return notFound(err)
		}
		if l.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		if err := u.ledger.TransferIn(ctx, l.Token, payer, amount); err != nil {
			return err
		}
		now := time.Now().UTC()
		l.RepaidAmount += amount
		l.LastRepaymentAt = &now
		if l.RepaidAmount >= l.TotalOwed() {
			if now.After(l.DueDate.AddDate(0, 0, u.graceDays)) {
				l.Status = domain.StatusPaidLate
			} else {
				l.Status = domain.StatusRepaid
			}
			if err := r.Borrowers.SetOpenLoan(ctx, borrower, false); err != nil {
				return err
			}
		}
		if err := r.Loans.SaveLoan(ctx, l); err != nil {
			return err
		}
		outstanding := l.TotalOwed() - l.RepaidAmount
		if outstanding < 0 {
			outstanding = 0
		}
		dto = &RepaymentDTO{
			Borrower:     borrower,
			RequestID:    requestID,
			RepaidAmount: l.RepaidAmount,
			Outstanding:  outstanding,
			Status:       string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	name := "loan_repayment_partial"
	if dto.Status != string(domain.StatusActive) {
		name = "loan_closed"
	}
	u.events.Emit(events.Event{Name: name, Actor: payer, Borrower: borrower, RequestID: requestID, Amount: amount, Status: dto.Status})
	return dto, nil
}

func (u *Usecase) GetRequest(ctx context.Context, borrower string, requestID uint64) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Loans.GetRequest(ctx, borrower, requestID)
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

func (u *Usecase) GetLoan(ctx context.Context, borrower string, requestID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetLoan(ctx, borrower, requestID)
		if err != nil {
			return notFound(err)
		}
		dto = loanDTO(l)
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
