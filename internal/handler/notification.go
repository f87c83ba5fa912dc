package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/repository"
)

// NotificationHandler serves the per-user notification feed. There
// is no push channel; clients poll List and a notification is only
// guaranteed to appear on the poll after it was written.
type NotificationHandler struct {
	Notifs *repository.NotificationRepo
}

func NewNotificationHandler(notifs *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifs: notifs}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	notifs, err := h.Notifs.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, notifs)
}

// MarkRead marks one of the caller's notifications read. Marking a
// notification that is already read succeeds; another user's
// notification is a 404.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.Notifs.MarkRead(c.Request().Context(), id, userID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllRead marks all of the caller's notifications read and
// reports how many changed.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	n, err := h.Notifs.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"marked": n})
}

// DeleteRead removes the caller's read notifications.
func (h *NotificationHandler) DeleteRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	n, err := h.Notifs.DeleteRead(c.Request().Context(), userID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": n})
}
