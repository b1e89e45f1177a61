package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	groupuc "groupfund-backend/internal/usecase/group"
)

type GroupHandler struct{ uc *groupuc.Usecase }

func NewGroupHandler(uc *groupuc.Usecase) *GroupHandler { return &GroupHandler{uc: uc} }

type createGroupReq struct {
	Manager      string `json:"manager" validate:"required,hex32"`
	FundingToken string `json:"funding_token" validate:"required,hex32"`
	NoSignOff    bool   `json:"no_sign_off"`
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	creator, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req createGroupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateGroup(c.Request().Context(), groupuc.CreateGroupInput{
		Creator:      creator,
		Manager:      req.Manager,
		FundingToken: req.FundingToken,
		NoSignOff:    req.NoSignOff,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), groupID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type membersReq struct {
	Members []string `json:"members" validate:"required,min=1,dive,hex32"`
}

func (h *GroupHandler) AddMembers(c echo.Context) error {
	actor, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	var req membersReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.AddMembers(c.Request().Context(), actor, groupID, req.Members); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GroupHandler) RemoveMembers(c echo.Context) error {
	actor, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	var req membersReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.RemoveMembers(c.Request().Context(), actor, groupID, req.Members); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	member, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	if err := h.uc.LeaveGroup(c.Request().Context(), member, groupID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type changeManagerReq struct {
	Manager string `json:"manager" validate:"required,hex32"`
}

func (h *GroupHandler) ChangeManager(c echo.Context) error {
	admin, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	var req changeManagerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.ChangeManager(c.Request().Context(), admin, groupID, req.Manager); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setStatusReq struct {
	IsOpen bool `json:"is_open"`
}

func (h *GroupHandler) SetGroupStatus(c echo.Context) error {
	admin, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	groupID, err := paramUint(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.uc.SetGroupStatus(c.Request().Context(), admin, groupID, req.IsOpen); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
