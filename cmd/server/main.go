package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/velimirb/transfer-window/internal/config"
	"github.com/velimirb/transfer-window/internal/database"
	"github.com/velimirb/transfer-window/internal/handler"
	"github.com/velimirb/transfer-window/internal/middleware"
	"github.com/velimirb/transfer-window/internal/queue"
	"github.com/velimirb/transfer-window/internal/repository"
	"github.com/velimirb/transfer-window/internal/router"
	"github.com/velimirb/transfer-window/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the server runs with rate
	// limiting and response caching disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clubs := repository.NewClubRepo(db)
	players := repository.NewPlayerRepo(db)
	transfers := repository.NewTransferRepo(db)
	offers := repository.NewOfferRepo(db)
	wishlists := repository.NewWishlistRepo(db)
	notifs := repository.NewNotificationRepo(db)
	windows := repository.NewWindowRepo(db)
	bulk := repository.NewBulkRepo(db)

	notifier := service.NewNotifier(notifs)
	// Drains the notification queue into the notifications table.
	// Reconnects on broker failure; the publisher side falls back to
	// direct inserts, so losing the broker never loses notifications.
	go queue.StartNotificationConsumer(notifs)

	e := echo.New()
	e.HideBanner = true
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, tokens, cfg), cfg.JWTSecret)
	router.RegisterAPI(e, router.API{
		Clubs:     handler.NewClubHandler(clubs, notifier),
		Players:   handler.NewPlayerHandler(players, clubs),
		Transfers: handler.NewTransferHandler(transfers, players, clubs, windows, notifier),
		Offers:    handler.NewOfferHandler(offers, transfers, players, clubs, notifier),
		Wishlists: handler.NewWishlistHandler(wishlists, players, clubs),
		Notifs:    handler.NewNotificationHandler(notifs),
		Windows:   handler.NewWindowHandler(windows),
		Bulk:      handler.NewBulkHandler(bulk),
	}, cfg.JWTSecret, cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
