package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/money"
	"github.com/velimirb/transfer-window/internal/repository"
	"github.com/velimirb/transfer-window/internal/service"
)

// OfferHandler serves offers against open transfers. Accepting an
// offer is the contested path: it locks the transfer row, rejects
// all pending sibling offers and moves the transfer to ACCEPTED at
// the offer's amount, all in one transaction.
type OfferHandler struct {
	Offers    *repository.OfferRepo
	Transfers *repository.TransferRepo
	Players   *repository.PlayerRepo
	Clubs     *repository.ClubRepo
	Notifier  *service.Notifier
}

func NewOfferHandler(offers *repository.OfferRepo, transfers *repository.TransferRepo,
	players *repository.PlayerRepo, clubs *repository.ClubRepo, notifier *service.Notifier) *OfferHandler {
	return &OfferHandler{Offers: offers, Transfers: transfers, Players: players, Clubs: clubs, Notifier: notifier}
}

type offerReq struct {
	TransferID  uint64 `json:"transfer_id"`
	BuyerClubID uint64 `json:"buyer_club_id"` // ignored for CLUB callers
	Amount      string `json:"amount"`
}

// Create places an offer on an open transfer. The buyer is the
// caller's club (any approved club may bid, not just the transfer's
// original buyer); admins bid on behalf of a named club.
func (h *OfferHandler) Create(c echo.Context) error {
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	if req.TransferID == 0 {
		return fail(c, http.StatusBadRequest, "transfer_id is required")
	}
	cents, err := money.ParseCents(req.Amount)
	if err != nil || cents <= 0 {
		return fail(c, http.StatusBadRequest, "amount is not a valid positive amount")
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
	}
	if buyer.Status != model.ClubApproved {
		return fail(c, http.StatusBadRequest, "bidding club is not approved")
	}

	t, err := h.Transfers.GetByID(ctx, req.TransferID)
	if err != nil {
		return failErr(c, err)
	}
	if !t.Status.Open() {
		return fail(c, http.StatusConflict, "transfer is no longer open for offers")
	}
	if sameClub(&buyer.ID, t.SellerClubID) {
		return fail(c, http.StatusBadRequest, "selling club cannot bid on its own transfer")
	}

	o := model.Offer{
		TransferID:         t.ID,
		BuyerClubID:        buyer.ID,
		OfferedAmountCents: cents,
	}
	if err := h.Offers.Create(ctx, &o); err != nil {
		return failErr(c, err)
	}
	if t.SellerClubID != nil {
		if seller, err := h.Clubs.GetByID(ctx, *t.SellerClubID); err == nil {
			h.Notifier.Send(ctx, seller.UserID, model.NotifOfferReceived,
				fmt.Sprintf("%s offered %s on transfer #%d.", buyer.Name, money.FormatCents(cents), t.ID))
		}
	}
	return ok(c, http.StatusCreated, o)
}

// List returns offers. ?transfer_id= lists a transfer's offers
// (seller, admin, or any bidding club may look); without it, CLUB
// users get their own club's bids and admins must name a transfer.
func (h *OfferHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if s := c.QueryParam("transfer_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid transfer_id")
		}
		if _, err := h.Transfers.GetByID(ctx, id); err != nil {
			return failErr(c, err)
		}
		offers, err := h.Offers.ListByTransfer(ctx, id)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, http.StatusOK, offers)
	}
	if isAdmin(c) {
		return fail(c, http.StatusBadRequest, "transfer_id is required")
	}
	club, err := callerClub(c, h.Clubs)
	if err != nil {
		return failErr(c, err)
	}
	offers, err := h.Offers.ListByBuyerClub(ctx, club.ID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, offers)
}

// Get returns one offer.
func (h *OfferHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	o, err := h.Offers.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, o)
}

// Accept accepts an offer: pending siblings are rejected, the
// transfer moves to ACCEPTED and its amount becomes the offer's
// amount, atomically under the transfer row lock. Losing bidders are
// notified after commit. Seller club or admin only.
func (h *OfferHandler) Accept(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	// Resolve the parent transfer before locking anything; the
	// transfer row is always locked first.
	peek, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}

	tx, err := h.Offers.DB().BeginTx(ctx, nil)
	if err != nil {
		return failErr(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Transfers.GetForUpdateTx(ctx, tx, peek.TransferID)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.sellerCheck(c, &t); err != nil {
		return failErr(c, err)
	}
	o, err := h.Offers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return failErr(c, err)
	}
	if !t.Status.Open() {
		return fail(c, http.StatusConflict, "transfer is no longer open")
	}
	if !o.Status.CanTransition(model.OfferAccepted) {
		return fail(c, http.StatusConflict, "offer is no longer pending")
	}
	clubID, err := h.Players.GetClubForUpdateTx(ctx, tx, t.PlayerID)
	if err != nil {
		return failErr(c, err)
	}
	if !sameClub(clubID, t.SellerClubID) {
		return fail(c, http.StatusConflict, "player has moved since the transfer was opened")
	}
	losers, err := h.Offers.SiblingBuyerUsersTx(ctx, tx, t.ID, o.ID)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Offers.AcceptTx(ctx, tx, o.ID, t.ID); err != nil {
		return failErr(c, err)
	}
	if err := h.Transfers.UpdateStatusTx(ctx, tx, t.ID, model.TransferAccepted); err != nil {
		return failErr(c, err)
	}
	if err := h.Transfers.UpdateAmountTx(ctx, tx, t.ID, o.OfferedAmountCents); err != nil {
		return failErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return failErr(c, err)
	}
	committed = true
	o.Status = model.OfferAccepted

	h.notifyOfferBuyer(ctx, &o, model.NotifOfferAccepted,
		fmt.Sprintf("Your offer of %s on transfer #%d was accepted.",
			money.FormatCents(o.OfferedAmountCents), t.ID))
	h.Notifier.SendAll(ctx, losers, model.NotifOfferRejected,
		fmt.Sprintf("Your offer on transfer #%d was not selected.", t.ID))
	return ok(c, http.StatusOK, o)
}

// Reject rejects a pending offer. Seller club or admin only.
func (h *OfferHandler) Reject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	peek, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	tx, err := h.Offers.DB().BeginTx(ctx, nil)
	if err != nil {
		return failErr(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	t, err := h.Transfers.GetForUpdateTx(ctx, tx, peek.TransferID)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.sellerCheck(c, &t); err != nil {
		return failErr(c, err)
	}
	o, err := h.Offers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return failErr(c, err)
	}
	if !o.Status.CanTransition(model.OfferRejected) {
		return fail(c, http.StatusConflict, "offer is no longer pending")
	}
	if err := h.Offers.UpdateStatusTx(ctx, tx, o.ID, model.OfferRejected); err != nil {
		return failErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return failErr(c, err)
	}
	committed = true
	o.Status = model.OfferRejected

	h.notifyOfferBuyer(ctx, &o, model.NotifOfferRejected,
		fmt.Sprintf("Your offer of %s on transfer #%d was rejected.",
			money.FormatCents(o.OfferedAmountCents), t.ID))
	return ok(c, http.StatusOK, o)
}

type counterReq struct {
	Amount string `json:"amount"`
}

// Counter replaces a pending offer's amount with the seller's
// counter-proposal. The offer stays PENDING and the ball moves to
// the buyer's side. Seller club or admin only.
func (h *OfferHandler) Counter(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req counterReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	cents, err := money.ParseCents(req.Amount)
	if err != nil || cents <= 0 {
		return fail(c, http.StatusBadRequest, "amount is not a valid positive amount")
	}
	ctx := c.Request().Context()
	peek, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	tx, err := h.Offers.DB().BeginTx(ctx, nil)
	if err != nil {
		return failErr(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	t, err := h.Transfers.GetForUpdateTx(ctx, tx, peek.TransferID)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.sellerCheck(c, &t); err != nil {
		return failErr(c, err)
	}
	if !t.Status.Open() {
		return fail(c, http.StatusConflict, "transfer is no longer open")
	}
	o, err := h.Offers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Offers.CounterTx(ctx, tx, o.ID, cents); err != nil {
		return failErr(c, err)
	}
	if t.Status == model.TransferPending {
		if err := h.Transfers.UpdateStatusTx(ctx, tx, t.ID, model.TransferNegotiation); err != nil {
			return failErr(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return failErr(c, err)
	}
	committed = true
	o.OfferedAmountCents = cents
	o.AwaitingResponseFrom = model.PartyBuyer

	h.notifyOfferBuyer(ctx, &o, model.NotifOfferCountered,
		fmt.Sprintf("Counter-offer of %s on transfer #%d.", money.FormatCents(cents), t.ID))
	return ok(c, http.StatusOK, o)
}

// Delete removes an offer. Admin only; route-gated.
func (h *OfferHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Offers.Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// sellerCheck mirrors the transfer rule: only the selling club or an
// admin decides offers; free-agent transfers are admin-decided.
func (h *OfferHandler) sellerCheck(c echo.Context, t *model.Transfer) error {
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

func (h *OfferHandler) notifyOfferBuyer(ctx context.Context, o *model.Offer, typ, msg string) {
	if club, err := h.Clubs.GetByID(ctx, o.BuyerClubID); err == nil {
		h.Notifier.Send(ctx, club.UserID, typ, msg)
	}
}
