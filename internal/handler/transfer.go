package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/money"
	"github.com/velimirb/transfer-window/internal/repository"
	"github.com/velimirb/transfer-window/internal/service"
)

// TransferHandler serves the transfer lifecycle. Accept and complete
// run inside a transaction that locks the transfer row first, then
// the player row; every other writer uses the same lock order.
type TransferHandler struct {
	Transfers *repository.TransferRepo
	Players   *repository.PlayerRepo
	Clubs     *repository.ClubRepo
	Windows   *repository.WindowRepo
	Notifier  *service.Notifier
}

func NewTransferHandler(transfers *repository.TransferRepo, players *repository.PlayerRepo,
	clubs *repository.ClubRepo, windows *repository.WindowRepo, notifier *service.Notifier) *TransferHandler {
	return &TransferHandler{
		Transfers: transfers, Players: players,
		Clubs: clubs, Windows: windows, Notifier: notifier,
	}
}

type transferReq struct {
	PlayerID    uint64 `json:"player_id"`
	BuyerClubID uint64 `json:"buyer_club_id"` // ignored for CLUB callers
	Type        string `json:"type"`
	Amount      string `json:"amount"`
}

// Create opens a transfer for a player. The buyer is the caller's
// club (or any club, for admins); the seller side is derived from
// the player's current club and is nil for free agents. CLUB callers
// need an active transfer window; admins bypass the window check.
func (h *TransferHandler) Create(c echo.Context) error {
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if req.PlayerID == 0 {
		return fail(c, http.StatusBadRequest, "player_id is required")
	}
	typ := model.TransferType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if typ == "" {
		typ = model.TransferPermanent
	}
	if !typ.Valid() {
		return fail(c, http.StatusBadRequest, "type must be PERMANENT, LOAN or FREE")
	}
	ctx := c.Request().Context()

	var buyer model.Club
	if isAdmin(c) {
		if req.BuyerClubID == 0 {
			return fail(c, http.StatusBadRequest, "buyer_club_id is required")
		}
		b, err := h.Clubs.GetByID(ctx, req.BuyerClubID)
		if err != nil {
			return failErr(c, err)
		}
		buyer = b
	} else {
		b, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		buyer = b
		if _, err := h.Windows.Current(ctx, time.Now().UTC()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, http.StatusConflict, "no active transfer window")
			}
			return failErr(c, err)
		}
	}
	if buyer.Status != model.ClubApproved {
		return fail(c, http.StatusBadRequest, "buying club is not approved")
	}

	player, err := h.Players.GetByID(ctx, req.PlayerID)
	if err != nil {
		return failErr(c, err)
	}
	if !player.FreeAgent() {
		if *player.ClubID == buyer.ID {
			return fail(c, http.StatusBadRequest, "player already belongs to the buying club")
		}
		seller, err := h.Clubs.GetByID(ctx, *player.ClubID)
		if err != nil {
			return failErr(c, err)
		}
		if seller.Status != model.ClubApproved {
			return fail(c, http.StatusBadRequest, "selling club is not approved")
		}
	} else {
		// Free agents move without a fee.
		typ = model.TransferFree
	}

	var cents int64
	if typ != model.TransferFree {
		cents, err = money.ParseCents(req.Amount)
		if err != nil || cents <= 0 {
			return fail(c, http.StatusBadRequest, "amount is not a valid positive amount")
		}
	} else if strings.TrimSpace(req.Amount) != "" {
		if cents, err = money.ParseCents(req.Amount); err != nil || cents != 0 {
			return fail(c, http.StatusBadRequest, "free transfers carry no fee")
		}
	}

	t := model.Transfer{
		PlayerID:     player.ID,
		SellerClubID: player.ClubID,
		BuyerClubID:  buyer.ID,
		Type:         typ,
		AmountCents:  cents,
		Status:       model.TransferPending,
	}
	if err := h.Transfers.Create(ctx, &t); err != nil {
		return failErr(c, err)
	}
	if t.SellerClubID != nil {
		if seller, err := h.Clubs.GetByID(ctx, *t.SellerClubID); err == nil {
			h.Notifier.Send(ctx, seller.UserID, model.NotifOfferReceived,
				fmt.Sprintf("%s opened a %s transfer for %s at %s.",
					buyer.Name, strings.ToLower(string(typ)), player.Name, money.FormatCents(cents)))
		}
	}
	return ok(c, http.StatusCreated, t)
}

// List returns transfers. Admins may filter by ?club_id=, ?player_id=
// and ?status=; CLUB users see transfers where their club is buyer or
// seller.
func (h *TransferHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var f repository.TransferFilter
	if s := c.QueryParam("status"); s != "" {
		st := model.TransferStatus(strings.ToUpper(s))
		switch st {
		case model.TransferPending, model.TransferNegotiation, model.TransferAccepted,
			model.TransferRejected, model.TransferCompleted:
			f.Status = st
		default:
			return fail(c, http.StatusBadRequest, "unknown status filter")
		}
	}
	if s := c.QueryParam("player_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid player_id")
		}
		f.PlayerID = id
	}
	if isAdmin(c) {
		if s := c.QueryParam("club_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return fail(c, http.StatusBadRequest, "invalid club_id")
			}
			f.ClubID = id
		}
	} else {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		f.ClubID = club.ID
	}
	transfers, err := h.Transfers.List(ctx, f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, transfers)
}

// Get returns one transfer. CLUB users must be a party to it.
func (h *TransferHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	t, err := h.Transfers.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.partyCheck(c, &t); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, t)
}

// Accept moves a transfer to ACCEPTED at its listed amount. Only the
// selling club or an admin may accept; a transfer without a seller
// club (free agent) is accepted by admins only. Runs under the
// transfer row lock so a concurrent accept or reject loses cleanly.
func (h *TransferHandler) Accept(c echo.Context) error {
	return h.transition(c, model.TransferAccepted)
}

// Negotiate moves a PENDING transfer to NEGOTIATION.
func (h *TransferHandler) Negotiate(c echo.Context) error {
	return h.transition(c, model.TransferNegotiation)
}

// Reject closes a transfer as REJECTED.
func (h *TransferHandler) Reject(c echo.Context) error {
	return h.transition(c, model.TransferRejected)
}

func (h *TransferHandler) transition(c echo.Context, to model.TransferStatus) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	tx, err := h.Transfers.DB().BeginTx(ctx, nil)
	if err != nil {
		return failErr(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Transfers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.sellerCheck(c, &t); err != nil {
		return failErr(c, err)
	}
	if !t.Status.CanTransition(to) {
		return fail(c, http.StatusConflict, "transfer is "+strings.ToLower(string(t.Status)))
	}
	if to == model.TransferAccepted {
		// The player must still be at the seller club.
		clubID, err := h.Players.GetClubForUpdateTx(ctx, tx, t.PlayerID)
		if err != nil {
			return failErr(c, err)
		}
		if !sameClub(clubID, t.SellerClubID) {
			return fail(c, http.StatusConflict, "player has moved since the transfer was opened")
		}
	}
	if err := h.Transfers.UpdateStatusTx(ctx, tx, id, to); err != nil {
		return failErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return failErr(c, err)
	}
	committed = true
	t.Status = to

	switch to {
	case model.TransferAccepted:
		h.notifyBuyer(ctx, &t, model.NotifTransferAccepted,
			fmt.Sprintf("Transfer #%d was accepted at %s.", t.ID, money.FormatCents(t.AmountCents)))
	case model.TransferRejected:
		h.notifyBuyer(ctx, &t, model.NotifTransferRejected,
			fmt.Sprintf("Transfer #%d was rejected.", t.ID))
	}
	return ok(c, http.StatusOK, t)
}

// Complete finalizes an ACCEPTED transfer: the player moves to the
// buying club, competing open transfers for the player are rejected
// along with their pending offers, and both sides are notified.
// Completing anything but an ACCEPTED transfer, including a transfer
// that is already COMPLETED, is a conflict. Admin only; route-gated.
func (h *TransferHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	tx, err := h.Transfers.DB().BeginTx(ctx, nil)
	if err != nil {
		return failErr(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Transfers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return failErr(c, err)
	}
	if !t.Status.CanTransition(model.TransferCompleted) {
		return fail(c, http.StatusConflict, "transfer is "+strings.ToLower(string(t.Status)))
	}
	clubID, err := h.Players.GetClubForUpdateTx(ctx, tx, t.PlayerID)
	if err != nil {
		return failErr(c, err)
	}
	if !sameClub(clubID, t.SellerClubID) {
		return fail(c, http.StatusConflict, "player has moved since the transfer was accepted")
	}
	if err := h.Players.ReassignClubTx(ctx, tx, t.PlayerID, t.BuyerClubID); err != nil {
		return failErr(c, err)
	}
	if err := h.Transfers.UpdateStatusTx(ctx, tx, id, model.TransferCompleted); err != nil {
		return failErr(c, err)
	}
	if _, err := h.Transfers.RejectCompetingTx(ctx, tx, t.PlayerID, t.ID); err != nil {
		return failErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return failErr(c, err)
	}
	committed = true
	t.Status = model.TransferCompleted

	player, perr := h.Players.GetByID(ctx, t.PlayerID)
	name := fmt.Sprintf("player #%d", t.PlayerID)
	if perr == nil {
		name = player.Name
	}
	msg := fmt.Sprintf("Transfer of %s completed at %s.", name, money.FormatCents(t.AmountCents))
	h.notifyBuyer(ctx, &t, model.NotifTransferCompleted, msg)
	h.notifySeller(ctx, &t, model.NotifTransferCompleted, msg)
	return ok(c, http.StatusOK, t)
}

// Delete removes a transfer and its offers. Admin only; route-gated.
func (h *TransferHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Transfers.Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// partyCheck allows admins and the two clubs on the transfer.
func (h *TransferHandler) partyCheck(c echo.Context, t *model.Transfer) error {
	if isAdmin(c) {
		return nil
	}
	club, err := callerClub(c, h.Clubs)
	if err != nil {
		return err
	}
	if club.ID == t.BuyerClubID || sameClub(&club.ID, t.SellerClubID) {
		return nil
	}
	return repository.ErrForbidden
}

// sellerCheck allows admins and the selling club only. Transfers for
// free agents have no seller, so only admins may decide those.
func (h *TransferHandler) sellerCheck(c echo.Context, t *model.Transfer) error {
	if isAdmin(c) {
		return nil
	}
	if t.SellerClubID == nil {
		return repository.ErrForbidden
	}
	club, err := callerClub(c, h.Clubs)
	if err != nil {
		return err
	}
	if club.ID != *t.SellerClubID {
		return repository.ErrForbidden
	}
	return nil
}

func (h *TransferHandler) notifyBuyer(ctx context.Context, t *model.Transfer, typ, msg string) {
	if club, err := h.Clubs.GetByID(ctx, t.BuyerClubID); err == nil {
		h.Notifier.Send(ctx, club.UserID, typ, msg)
	}
}

func (h *TransferHandler) notifySeller(ctx context.Context, t *model.Transfer, typ, msg string) {
	if t.SellerClubID == nil {
		return
	}
	if club, err := h.Clubs.GetByID(ctx, *t.SellerClubID); err == nil {
		h.Notifier.Send(ctx, club.UserID, typ, msg)
	}
}

// sameClub compares two nullable club ids.
func sameClub(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
