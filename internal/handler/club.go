package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/repository"
	"github.com/velimirb/transfer-window/internal/service"
)

// ClubHandler serves club registration, listing and the admin
// approve/reject decisions.
type ClubHandler struct {
	Clubs    *repository.ClubRepo
	Notifier *service.Notifier
}

func NewClubHandler(clubs *repository.ClubRepo, notifier *service.Notifier) *ClubHandler {
	return &ClubHandler{Clubs: clubs, Notifier: notifier}
}

type clubReq struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Manager   string `json:"manager"`
	Contact   string `json:"contact"`
	LicenseNo string `json:"license_no"`
	LogoURL   string `json:"logo_url"`
}

func (r *clubReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Country = strings.TrimSpace(r.Country)
	r.LicenseNo = strings.TrimSpace(r.LicenseNo)
	switch {
	case r.Name == "":
		return "name is required"
	case r.Country == "":
		return "country is required"
	case r.LicenseNo == "":
		return "license_no is required"
	}
	return ""
}

// Create registers a club in PENDING status for the calling CLUB
// user. Admin-created clubs skip the review queue and start
// APPROVED.
func (h *ClubHandler) Create(c echo.Context) error {
	var req clubReq
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
	ctx := c.Request().Context()
	if !isAdmin(c) {
		// One club per CLUB user.
		if _, err := h.Clubs.GetByUserID(ctx, userID); err == nil {
			return fail(c, http.StatusConflict, "you already manage a club")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return failErr(c, err)
		}
	}
	status := model.ClubPending
	if isAdmin(c) {
		status = model.ClubApproved
	}
	club := model.Club{
		Name:      req.Name,
		Country:   req.Country,
		Manager:   req.Manager,
		Contact:   req.Contact,
		LicenseNo: req.LicenseNo,
		LogoURL:   req.LogoURL,
		Status:    status,
		UserID:    userID,
	}
	if err := h.Clubs.Create(ctx, &club); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, club)
}

// List returns clubs. Admins see everything and may filter by
// ?status=; CLUB users see approved clubs plus their own club in any
// status.
func (h *ClubHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if isAdmin(c) {
		status := model.ClubStatus(strings.ToUpper(c.QueryParam("status")))
		if status != "" && !status.Valid() {
			return fail(c, http.StatusBadRequest, "unknown status filter")
		}
		clubs, err := h.Clubs.List(ctx, status)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, http.StatusOK, clubs)
	}
	clubs, err := h.Clubs.List(ctx, model.ClubApproved)
	if err != nil {
		return failErr(c, err)
	}
	if own, err := callerClub(c, h.Clubs); err == nil && own.Status != model.ClubApproved {
		clubs = append([]model.Club{own}, clubs...)
	}
	return ok(c, http.StatusOK, clubs)
}

// Get returns a single club. CLUB users may only see approved clubs
// or their own.
func (h *ClubHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	club, err := h.Clubs.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	if !isAdmin(c) && club.Status != model.ClubApproved {
		userID, _ := getUserID(c)
		if club.UserID != userID {
			return fail(c, http.StatusNotFound, "not found")
		}
	}
	return ok(c, http.StatusOK, club)
}

// Update edits a club's mutable fields. CLUB users may only edit
// their own club.
func (h *ClubHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req clubReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()
	club, err := h.Clubs.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if !isAdmin(c) {
		userID, _ := getUserID(c)
		if club.UserID != userID {
			return fail(c, http.StatusForbidden, "forbidden")
		}
	}
	club.Name = req.Name
	club.Country = req.Country
	club.Manager = req.Manager
	club.Contact = req.Contact
	club.LogoURL = req.LogoURL
	if err := h.Clubs.Update(ctx, &club); err != nil {
		return failErr(c, err)
	}
	updated, err := h.Clubs.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// Delete removes a club (admin only; route-gated). Its players
// become free agents.
func (h *ClubHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Clubs.Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// Approve moves a PENDING club to APPROVED (admin only; route-gated)
// and notifies the owning user. Deciding an already-decided club is
// a conflict.
func (h *ClubHandler) Approve(c echo.Context) error {
	return h.decide(c, model.ClubApproved)
}

// Reject moves a PENDING club to REJECTED (admin only; route-gated).
func (h *ClubHandler) Reject(c echo.Context) error {
	return h.decide(c, model.ClubRejected)
}

func (h *ClubHandler) decide(c echo.Context, to model.ClubStatus) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	club, err := h.Clubs.UpdateStatus(ctx, id, to)
	if err != nil {
		return failErr(c, err)
	}
	typ := model.NotifClubApproved
	verb := "approved"
	if to == model.ClubRejected {
		typ = model.NotifClubRejected
		verb = "rejected"
	}
	h.Notifier.Send(ctx, club.UserID, typ, fmt.Sprintf("Your club %q has been %s.", club.Name, verb))
	return ok(c, http.StatusOK, club)
}
