// Package router wires handlers to routes. Authentication lives
// under /v1/auth; everything else requires a valid access token and
// a known role. Admin-only actions are gated per route rather than
// per group so the URL space stays flat.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/handler"
	"github.com/velimirb/transfer-window/internal/middleware"
	"github.com/velimirb/transfer-window/internal/model"
)

// RegisterRoutes registers the unauthenticated routes: just the
// health check, for load balancers and probes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and the refresh-token
// lifecycle under /v1/auth, plus the authenticated /v1/me probe.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleClub))
	auth.GET("/me", a.Me)
}

// API bundles the resource handlers so registration does not take a
// ten-argument parameter list.
type API struct {
	Clubs     *handler.ClubHandler
	Players   *handler.PlayerHandler
	Transfers *handler.TransferHandler
	Offers    *handler.OfferHandler
	Wishlists *handler.WishlistHandler
	Notifs    *handler.NotificationHandler
	Windows   *handler.WindowHandler
	Bulk      *handler.BulkHandler
}

// RegisterAPI registers every resource route under /v1. All routes
// require authentication; extra middleware (cache, rate limiting) is
// applied by the caller on the Echo instance itself. cacheMW, when
// non-nil, is applied to the read-heavy market listing only.
func RegisterAPI(e *echo.Echo, api API, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleClub))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Clubs. Approval decisions are the admin's.
	g.POST("/clubs", api.Clubs.Create)
	g.GET("/clubs", api.Clubs.List)
	g.GET("/clubs/:id", api.Clubs.Get)
	g.PUT("/clubs/:id", api.Clubs.Update)
	g.DELETE("/clubs/:id", api.Clubs.Delete, adminOnly)
	g.POST("/clubs/:id/approve", api.Clubs.Approve, adminOnly)
	g.POST("/clubs/:id/reject", api.Clubs.Reject, adminOnly)

	// Players and the market view.
	g.POST("/players", api.Players.Create)
	g.GET("/players", api.Players.List)
	g.GET("/players/:id", api.Players.Get)
	g.PUT("/players/:id", api.Players.Update)
	g.DELETE("/players/:id", api.Players.Delete)
	if cacheMW != nil {
		g.GET("/market/players", api.Players.Market, cacheMW)
	} else {
		g.GET("/market/players", api.Players.Market)
	}

	// Transfers. Completion moves the player and is admin-only.
	g.POST("/transfers", api.Transfers.Create)
	g.GET("/transfers", api.Transfers.List)
	g.GET("/transfers/:id", api.Transfers.Get)
	g.POST("/transfers/:id/accept", api.Transfers.Accept)
	g.POST("/transfers/:id/negotiate", api.Transfers.Negotiate)
	g.POST("/transfers/:id/reject", api.Transfers.Reject)
	g.POST("/transfers/:id/complete", api.Transfers.Complete, adminOnly)
	g.DELETE("/transfers/:id", api.Transfers.Delete, adminOnly)

	// Offers.
	g.POST("/offers", api.Offers.Create)
	g.GET("/offers", api.Offers.List)
	g.GET("/offers/:id", api.Offers.Get)
	g.POST("/offers/:id/accept", api.Offers.Accept)
	g.POST("/offers/:id/reject", api.Offers.Reject)
	g.POST("/offers/:id/counter", api.Offers.Counter)
	g.DELETE("/offers/:id", api.Offers.Delete, adminOnly)

	// Wishlists.
	g.POST("/wishlists", api.Wishlists.Add)
	g.GET("/wishlists", api.Wishlists.List)
	g.DELETE("/wishlists/:id", api.Wishlists.Remove)

	// Notifications are always scoped to the caller.
	g.GET("/notifications", api.Notifs.List)
	g.POST("/notifications/:id/read", api.Notifs.MarkRead)
	g.POST("/notifications/read-all", api.Notifs.MarkAllRead)
	g.DELETE("/notifications/read", api.Notifs.DeleteRead)

	// Transfer windows. Clubs may look but not touch; ?current=true
	// on the listing probes the active window.
	g.GET("/transfer-windows", api.Windows.List)
	g.GET("/transfer-windows/:id", api.Windows.Get)
	g.POST("/transfer-windows", api.Windows.Create, adminOnly)
	g.PUT("/transfer-windows/:id", api.Windows.Update, adminOnly)
	g.POST("/transfer-windows/:id/close", api.Windows.Close, adminOnly)
	g.DELETE("/transfer-windows/:id", api.Windows.Delete, adminOnly)

	// Batch delete across allow-listed tables.
	g.POST("/admin/bulk-delete", api.Bulk.Delete, adminOnly)
}
