package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"groupfund-backend/internal/authz"
	domainGroup "groupfund-backend/internal/domain/group"
	domainGroupLoan "groupfund-backend/internal/domain/grouploan"
	domainLoan "groupfund-backend/internal/domain/loan"
	"groupfund-backend/internal/funds"
	"groupfund-backend/internal/guard"
)

// HeaderPrincipal carries the acting principal's 32-char hex id.
const HeaderPrincipal = "Ax-Principal-Id"

var errMissingPrincipal = errors.New("missing or invalid " + HeaderPrincipal)

func principalFrom(c echo.Context) (string, error) {
	p := strings.TrimSpace(c.Request().Header.Get(HeaderPrincipal))
	if !reHex32.MatchString(p) {
		return "", errMissingPrincipal
	}
	return p, nil
}

func paramUint(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, domainGroup.ErrNotFound),
		errors.Is(err, domainGroupLoan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, authz.ErrUnauthorized),
		errors.Is(err, authz.ErrNotRegistered),
		errors.Is(err, authz.ErrBlocked),
		errors.Is(err, authz.ErrPaused):
		return http.StatusForbidden
	case errors.Is(err, domainLoan.ErrExistingLoan),
		errors.Is(err, domainGroupLoan.ErrActiveRequestExists),
		errors.Is(err, domainGroup.ErrAlreadyInGroup),
		errors.Is(err, domainGroup.ErrNoChange),
		errors.Is(err, domainGroup.ErrManagerSeated),
		errors.Is(err, domainLoan.ErrAlreadySigned),
		errors.Is(err, domainLoan.ErrAlreadySignedOff),
		errors.Is(err, guard.ErrReentrant):
		return http.StatusConflict
	case errors.Is(err, funds.ErrInsufficientContractFunds),
		errors.Is(err, funds.ErrInsufficientGroupFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
