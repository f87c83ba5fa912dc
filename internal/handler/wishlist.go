package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/repository"
)

// WishlistHandler serves per-club wishlists. Entries are non-binding
// interest markers; the (club, player) pair is unique.
type WishlistHandler struct {
	Wishlists *repository.WishlistRepo
	Players   *repository.PlayerRepo
	Clubs     *repository.ClubRepo
}

func NewWishlistHandler(wishlists *repository.WishlistRepo, players *repository.PlayerRepo,
	clubs *repository.ClubRepo) *WishlistHandler {
	return &WishlistHandler{Wishlists: wishlists, Players: players, Clubs: clubs}
}

type wishlistReq struct {
	PlayerID uint64 `json:"player_id"`
	ClubID   uint64 `json:"club_id"` // admin only
}

// Add wishlists a player for the caller's club. Admins may act for a
// named club. Re-adding the same player is a conflict.
func (h *WishlistHandler) Add(c echo.Context) error {
	var req wishlistReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if req.PlayerID == 0 {
		return fail(c, http.StatusBadRequest, "player_id is required")
	}
	ctx := c.Request().Context()
	var clubID uint64
	if isAdmin(c) {
		if req.ClubID == 0 {
			return fail(c, http.StatusBadRequest, "club_id is required")
		}
		club, err := h.Clubs.GetByID(ctx, req.ClubID)
		if err != nil {
			return failErr(c, err)
		}
		clubID = club.ID
	} else {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		clubID = club.ID
	}
	if _, err := h.Players.GetByID(ctx, req.PlayerID); err != nil {
		return failErr(c, err)
	}
	entry := model.WishlistEntry{ClubID: clubID, PlayerID: req.PlayerID}
	if err := h.Wishlists.Add(ctx, &entry); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, entry)
}

// List returns a club's wishlist with player names. CLUB users get
// their own; admins pass ?club_id=.
func (h *WishlistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var clubID uint64
	if isAdmin(c) {
		s := c.QueryParam("club_id")
		if s == "" {
			return fail(c, http.StatusBadRequest, "club_id is required")
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid club_id")
		}
		clubID = id
	} else {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		clubID = club.ID
	}
	entries, err := h.Wishlists.ListByClub(ctx, clubID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, entries)
}

// Remove deletes a wishlist entry. CLUB users may only remove
// entries of their own club.
func (h *WishlistHandler) Remove(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	entry, err := h.Wishlists.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if !isAdmin(c) {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		if entry.ClubID != club.ID {
			return fail(c, http.StatusForbidden, "forbidden")
		}
	}
	if err := h.Wishlists.Delete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}
