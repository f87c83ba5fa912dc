package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/repository"
)

// BulkHandler serves the admin batch delete endpoint. The table name
// is checked against a hard allow-list before any SQL is built.
type BulkHandler struct {
	Bulk *repository.BulkRepo
}

func NewBulkHandler(bulk *repository.BulkRepo) *BulkHandler {
	return &BulkHandler{Bulk: bulk}
}

type bulkDeleteReq struct {
	Table string   `json:"table"`
	IDs   []uint64 `json:"ids"`
}

// Delete removes the named rows from an allow-listed table and
// reports how many were deleted. Admin only; route-gated.
func (h *BulkHandler) Delete(c echo.Context) error {
	var req bulkDeleteReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if !repository.AllowedTable(req.Table) {
		return fail(c, http.StatusBadRequest, "table not allowed")
	}
	if len(req.IDs) == 0 {
		return fail(c, http.StatusBadRequest, "ids is required")
	}
	n, err := h.Bulk.Delete(c.Request().Context(), req.Table, req.IDs)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": n})
}
