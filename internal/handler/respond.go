// Package handler implements the HTTP endpoints. All responses use
// the `{success, data|message}` envelope with real status codes:
// 400 validation, 401 auth, 403 forbidden, 404 unknown id, 409
// conflict and 500 for database failures. Errors are terminal per
// request; nothing here retries.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/repository"
)

// ok writes a success envelope with the given payload.
func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// fail writes a failure envelope with a human-readable message.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// failErr maps repository sentinel errors onto status codes. Unknown
// errors become opaque 500s so database detail never leaks.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "conflict with current state")
	case errors.Is(err, repository.ErrDuplicateClub):
		return fail(c, http.StatusConflict, "club already registered")
	case errors.Is(err, repository.ErrDuplicateLicense):
		return fail(c, http.StatusConflict, "license number already registered")
	case errors.Is(err, repository.ErrWishlisted):
		return fail(c, http.StatusConflict, "player already wishlisted")
	case errors.Is(err, repository.ErrWindowOverlap):
		return fail(c, http.StatusConflict, "overlapping transfer window")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrTableNotAllowed):
		return fail(c, http.StatusBadRequest, "table not allowed")
	}
	return fail(c, http.StatusInternalServerError, "database error")
}

// getUserID extracts the authenticated user's ID from the context.
// JWT numeric claims come back as float64 from the parser.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// callerClub resolves the club owned by the authenticated CLUB user.
func callerClub(c echo.Context, clubs *repository.ClubRepo) (model.Club, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Club{}, err
	}
	return clubs.GetByUserID(c.Request().Context(), userID)
}
