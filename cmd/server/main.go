package main // Entry point package

import (
	"log"  // Logging library
	"time" // hold TTL conversion

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/config"          // Internal config loader
	"github.com/arinvel/slot-reservation/internal/database"        // MySQL connector
	"github.com/arinvel/slot-reservation/internal/engine"          // booking engine
	"github.com/arinvel/slot-reservation/internal/handler"         // HTTP handlers
	"github.com/arinvel/slot-reservation/internal/middleware"      // rate limiting and response cache
	"github.com/arinvel/slot-reservation/internal/queue"           // ticket reissue consumer
	"github.com/arinvel/slot-reservation/internal/repository"      // data access layer
	"github.com/arinvel/slot-reservation/internal/router"          // Internal router setup
	queue_publisher "github.com/arinvel/slot-reservation/internal/service" // AMQP event publisher
)

func main() {
	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db) // repositories + engine.Store adapter

	// Engine wiring.  The AMQP notifier publishes reissue requests and
	// audit events after commits; pricing and clocks use the defaults.
	notifier := queue_publisher.Notifier{}
	coordinator := engine.NewCoordinator(store, nil, notifier, nil)
	holds := engine.NewHoldManager(store, time.Duration(cfg.HoldTTLMin)*time.Minute, nil)
	tickets := engine.NewTicketLifecycle(store, nil)

	// The reissue consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartReissueConsumer(tickets); err != nil {
			log.Printf("reissue consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Redis-backed rate limiting and response caching.  A nil client
	// disables both; the API keeps working without Redis.
	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled && rdb != nil {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}
	var cacheMW echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	if cacheCfg.Enabled && rdb != nil {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, store.Users), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewAvailabilityHandler(store.Slots), cacheMW)
	router.RegisterCustomer(e, handler.NewHoldHandler(holds), handler.NewBookingHandler(coordinator, store.Bookings), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewScanHandler(tickets, notifier), handler.NewAuditHandler(store.Audit), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
