package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "groupfund-backend/internal/domain/loan"
	loanuc "groupfund-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loanuc.Usecase }

func NewLoanHandler(uc *loanuc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	OnBehalfOf   string `json:"on_behalf_of" validate:"omitempty,hex32"`
	GroupID      uint64 `json:"group_id"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	Interest     int64  `json:"interest" validate:"gte=0"`
	TenorDays    uint32 `json:"tenor_days" validate:"required,gt=0"`
	Frequency    string `json:"frequency" validate:"required,oneof=weekly monthly"`
	Installments uint32 `json:"installments" validate:"required,gte=1"`
	Token        string `json:"token" validate:"required,hex32"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	caller, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Request(c.Request().Context(), loanuc.RequestInput{
		Caller:       caller,
		OnBehalfOf:   req.OnBehalfOf,
		GroupID:      req.GroupID,
		Amount:       req.Amount,
		Interest:     req.Interest,
		TenorDays:    req.TenorDays,
		Frequency:    domain.Frequency(req.Frequency),
		Installments: req.Installments,
		Token:        req.Token,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) SignOff(c echo.Context) error {
	signatory, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	dto, err := h.uc.SignOff(c.Request().Context(), signatory, borrower, requestID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type approveLoanReq struct {
	GroupID uint64 `json:"group_id"`
}

func (h *LoanHandler) Approve(c echo.Context) error {
	approver, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	var req approveLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Approve(c.Request().Context(), approver, borrower, requestID, req.GroupID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Reject(c echo.Context) error {
	actor, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	if err := h.uc.Reject(c.Request().Context(), actor, borrower, requestID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type repayReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *LoanHandler) Repay(c echo.Context) error {
	payer, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Repay(c.Request().Context(), payer, borrower, requestID, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetRequest(c echo.Context) error {
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	dto, err := h.uc.GetRequest(c.Request().Context(), borrower, requestID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	borrower := c.Param("borrower")
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), borrower, requestID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
