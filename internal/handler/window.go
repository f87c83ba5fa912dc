package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/repository"
)

// WindowHandler serves transfer windows. Creation and mutation are
// admin-only (route-gated); listing and the current-window probe are
// open to all authenticated users so clubs can see when they may
// act.
type WindowHandler struct {
	Windows *repository.WindowRepo
}

func NewWindowHandler(windows *repository.WindowRepo) *WindowHandler {
	return &WindowHandler{Windows: windows}
}

type windowReq struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func (r *windowReq) validate() string {
	if r.StartAt.IsZero() || r.EndAt.IsZero() {
		return "start_at and end_at are required"
	}
	if !r.StartAt.Before(r.EndAt) {
		return "start_at must be before end_at"
	}
	return ""
}

// Create opens a new window. Overlapping an existing open window is
// a conflict.
func (h *WindowHandler) Create(c echo.Context) error {
	var req windowReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	w := model.TransferWindow{
		StartAt:   req.StartAt.UTC(),
		EndAt:     req.EndAt.UTC(),
		IsOpen:    true,
		CreatedBy: userID,
	}
	if err := h.Windows.Create(c.Request().Context(), &w); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, w)
}

// List returns all windows, newest first. With ?current=true it
// instead reports the window covering now, if any.
func (h *WindowHandler) List(c echo.Context) error {
	if c.QueryParam("current") == "true" {
		return h.Current(c)
	}
	windows, err := h.Windows.List(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, windows)
}

// Get returns a single window.
func (h *WindowHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	w, err := h.Windows.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, w)
}

// Current returns the window covering now, if any. Not an error when
// no window is active; the payload is null and active is false.
func (h *WindowHandler) Current(c echo.Context) error {
	w, err := h.Windows.Current(c.Request().Context(), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ok(c, http.StatusOK, echo.Map{"active": false, "window": nil})
		}
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"active": true, "window": w})
}

// Update changes a window's bounds.
func (h *WindowHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req windowReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()
	w, err := h.Windows.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	w.StartAt = req.StartAt.UTC()
	w.EndAt = req.EndAt.UTC()
	if err := h.Windows.Update(ctx, &w); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, w)
}

// Close closes a window early. Closing an already-closed window is a
// conflict.
func (h *WindowHandler) Close(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.Windows.Close(ctx, id); err != nil {
		return failErr(c, err)
	}
	w, err := h.Windows.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, w)
}

// Delete removes a window.
func (h *WindowHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Windows.Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}
