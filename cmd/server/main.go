package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/festpass/ticketing/internal/config"
	"github.com/festpass/ticketing/internal/database"
	"github.com/festpass/ticketing/internal/handler"
	"github.com/festpass/ticketing/internal/payment"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
	"github.com/festpass/ticketing/internal/router"
	"github.com/festpass/ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrating database: %v", err)
	}

	// Redis is optional. Without it the cache and rate limiter become no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	gateway, err := payment.New(payment.Provider(cfg.PaymentMode), cfg.PaymentApprovalRate)
	if err != nil {
		log.Fatalf("configuring payment gateway: %v", err)
	}

	catalog := repository.NewCatalogRepo(db)
	wristbands := repository.NewWristbandRepo(db)
	ledger := repository.NewReceivableRepo(db, cfg.ClaimTTL)

	publisher := queue.NewPublisher()
	go queue.StartSalesConsumer()

	checkout := service.NewCheckoutService(catalog, ledger, gateway, publisher)
	provisioner := service.NewProvisionService(catalog, wristbands, publisher, cfg.ProvisionBatchSize)
	statusSvc := service.NewStatusService(catalog, wristbands, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := service.NewClaimSweeper(ledger, cfg.SweepInterval)
	go sweeper.Run(ctx)

	rlCfg := config.LoadRateLimitConfig()
	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewBrowseHandler(catalog), config.LoadCacheConfig(), rlCfg, rdb)
	router.RegisterPurchases(e, handler.NewPurchaseHandler(checkout), cfg.JWTSecret, rlCfg, rdb)
	router.RegisterManagement(e, handler.NewProvisionHandler(provisioner), handler.NewStatusHandler(statusSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
