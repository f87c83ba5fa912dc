package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/money"
	"github.com/velimirb/transfer-window/internal/repository"
)

// PlayerHandler serves player CRUD and the market listing. Market
// values arrive as amount strings (e.g. "$2.5M") and are stored as
// integer cents.
type PlayerHandler struct {
	Players *repository.PlayerRepo
	Clubs   *repository.ClubRepo
}

func NewPlayerHandler(players *repository.PlayerRepo, clubs *repository.ClubRepo) *PlayerHandler {
	return &PlayerHandler{Players: players, Clubs: clubs}
}

type playerReq struct {
	Name         string  `json:"name"`
	Age          uint8   `json:"age"`
	Nationality  string  `json:"nationality"`
	Position     string  `json:"position"`
	MarketValue  string  `json:"market_value"`
	ContractEnd  *string `json:"contract_end"` // RFC 3339, optional
	HealthStatus string  `json:"health_status"`
	ClubID       *uint64 `json:"club_id"` // admin only; nil = free agent
}

func (r *playerReq) parse() (model.Player, string) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return model.Player{}, "name is required"
	}
	if r.Age < 15 || r.Age > 50 {
		return model.Player{}, "age must be between 15 and 50"
	}
	if !model.ValidPosition(r.Position) {
		return model.Player{}, "position must be one of Goalkeeper, Defender, Midfielder, Forward"
	}
	health := r.HealthStatus
	if health == "" {
		health = model.HealthFit
	}
	if !model.ValidHealthStatus(health) {
		return model.Player{}, "health_status must be fit, injured or recovering"
	}
	cents, err := money.ParseCents(r.MarketValue)
	if err != nil || cents < 0 {
		return model.Player{}, "market_value is not a valid amount"
	}
	p := model.Player{
		Name:             r.Name,
		Age:              r.Age,
		Nationality:      strings.TrimSpace(r.Nationality),
		Position:         r.Position,
		MarketValueCents: cents,
		HealthStatus:     health,
	}
	if r.ContractEnd != nil && *r.ContractEnd != "" {
		t, err := time.Parse(time.RFC3339, *r.ContractEnd)
		if err != nil {
			return model.Player{}, "contract_end must be RFC 3339"
		}
		p.ContractEnd = &t
	}
	return p, ""
}

// Create adds a player. CLUB users create players for their own
// (approved) club; admins may assign any club or leave the player a
// free agent.
func (h *PlayerHandler) Create(c echo.Context) error {
	var req playerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	p, msg := req.parse()
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()
	if isAdmin(c) {
		if req.ClubID != nil {
			club, err := h.Clubs.GetByID(ctx, *req.ClubID)
			if err != nil {
				return failErr(c, err)
			}
			p.ClubID = &club.ID
		}
	} else {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		if club.Status != model.ClubApproved {
			return fail(c, http.StatusForbidden, "club is not approved")
		}
		p.ClubID = &club.ID
	}
	if err := h.Players.Create(ctx, &p); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, p)
}

// List returns players. Admins may filter by ?club_id=, ?position=
// and ?free_agents=true; CLUB users always get their own roster.
func (h *PlayerHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var f repository.PlayerFilter
	if pos := c.QueryParam("position"); pos != "" {
		if !model.ValidPosition(pos) {
			return fail(c, http.StatusBadRequest, "unknown position filter")
		}
		f.Position = pos
	}
	if isAdmin(c) {
		if s := c.QueryParam("club_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return fail(c, http.StatusBadRequest, "invalid club_id")
			}
			f.ClubID = id
		}
		f.FreeAgents = c.QueryParam("free_agents") == "true"
	} else {
		club, err := callerClub(c, h.Clubs)
		if err != nil {
			return failErr(c, err)
		}
		f.ClubID = club.ID
	}
	players, err := h.Players.List(ctx, f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, players)
}

// Market returns the transfer-market view: players of approved clubs
// plus free agents, optionally filtered by ?position=. Served to all
// authenticated roles and cached.
func (h *PlayerHandler) Market(c echo.Context) error {
	pos := c.QueryParam("position")
	if pos != "" && !model.ValidPosition(pos) {
		return fail(c, http.StatusBadRequest, "unknown position filter")
	}
	players, err := h.Players.ListMarket(c.Request().Context(), pos)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, players)
}

// Get returns a single player.
func (h *PlayerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.Players.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, p)
}

// Update edits a player. CLUB users may only edit players of their
// own club; club membership itself only changes through completed
// transfers or admin action.
func (h *PlayerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req playerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	next, msg := req.parse()
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()
	p, err := h.Players.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.authorize(c, &p); err != nil {
		return failErr(c, err)
	}
	p.Name = next.Name
	p.Age = next.Age
	p.Nationality = next.Nationality
	p.Position = next.Position
	p.MarketValueCents = next.MarketValueCents
	p.ContractEnd = next.ContractEnd
	p.HealthStatus = next.HealthStatus
	if isAdmin(c) && req.ClubID != nil {
		p.ClubID = req.ClubID
	}
	if err := h.Players.Update(ctx, &p); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, p)
}

// Delete removes a player. Same ownership rule as Update.
func (h *PlayerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	p, err := h.Players.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.authorize(c, &p); err != nil {
		return failErr(c, err)
	}
	if err := h.Players.Delete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// authorize allows admins always and CLUB users only on players of
// their own club.
func (h *PlayerHandler) authorize(c echo.Context, p *model.Player) error {
	if isAdmin(c) {
		return nil
	}
	club, err := callerClub(c, h.Clubs)
	if err != nil {
		return err
	}
	if p.FreeAgent() || *p.ClubID != club.ID {
		return repository.ErrForbidden
	}
	return nil
}
