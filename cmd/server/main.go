package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tickethub/event-ticket-service/internal/cache"
	"github.com/tickethub/event-ticket-service/internal/config"
	"github.com/tickethub/event-ticket-service/internal/database"
	"github.com/tickethub/event-ticket-service/internal/handler"
	"github.com/tickethub/event-ticket-service/internal/lock"
	"github.com/tickethub/event-ticket-service/internal/queue"
	"github.com/tickethub/event-ticket-service/internal/repository"
	"github.com/tickethub/event-ticket-service/internal/router"
	"github.com/tickethub/event-ticket-service/internal/service"
	"github.com/tickethub/event-ticket-service/internal/worker"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs both the cache and the cross-replica reservation
	// lock.  Without it the cache is disabled and locking degrades to
	// the in-process variant, which is only safe for one replica.
	rdb := config.NewRedisClient()
	var locks lock.Manager
	if rdb != nil {
		locks = lock.NewRedisManager(rdb)
	} else {
		log.Printf("redis unavailable: caching disabled, using in-process locks")
		locks = lock.NewLocalManager()
	}
	cacheStore := cache.NewStore(rdb, cfg.CacheTTL)

	eventRepo := repository.NewEventRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	eventSvc := service.NewEventService(eventRepo, ticketRepo, cacheStore)
	ticketSvc := service.NewTicketService(
		eventRepo, ticketRepo, locks, cacheStore,
		queue.PublishTicketReserved,
		cfg.ReservationWindow, cfg.LockWaitBudget, cfg.LockLeaseBudget,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.New(ticketRepo, cacheStore, cfg.ReaperPeriod, cfg.ReaperInitialDelay).Start(ctx)

	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, handler.NewEventHandler(eventSvc), handler.NewTicketHandler(ticketSvc))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
