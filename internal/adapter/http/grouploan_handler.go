package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	grouploanuc "groupfund-backend/internal/usecase/grouploan"
)

type GroupLoanHandler struct{ uc *grouploanuc.Usecase }

func NewGroupLoanHandler(uc *grouploanuc.Usecase) *GroupLoanHandler {
	return &GroupLoanHandler{uc: uc}
}

type groupLoanReq struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	TenorDays uint32 `json:"tenor_days" validate:"required,gt=0"`
}

func (h *GroupLoanHandler) Request(c echo.Context) error {
	actor, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	var req groupLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Request(c.Request().Context(), actor, groupID, req.Amount, req.TenorDays)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type approveGroupLoanReq struct {
	Interest int64 `json:"interest" validate:"gte=0"`
}

func (h *GroupLoanHandler) Approve(c echo.Context) error {
	admin, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	var req approveGroupLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Approve(c.Request().Context(), admin, groupID, requestID, req.Interest)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *GroupLoanHandler) Reject(c echo.Context) error {
	admin, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	if err := h.uc.Reject(c.Request().Context(), admin, groupID, requestID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GroupLoanHandler) GetRequest(c echo.Context) error {
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	requestID, err := paramUint(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
	}
	dto, err := h.uc.GetRequest(c.Request().Context(), groupID, requestID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
