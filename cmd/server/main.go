package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/config"
	"github.com/aparcame/parking-reservation/internal/database"
	"github.com/aparcame/parking-reservation/internal/handler"
	"github.com/aparcame/parking-reservation/internal/payment"
	"github.com/aparcame/parking-reservation/internal/queue"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/router"
	"github.com/aparcame/parking-reservation/internal/service"
	"github.com/aparcame/parking-reservation/internal/ticket"
)

func main() {
	// .env is optional; in containers the variables come from the
	// environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; cache and rate limiting degrade to no-ops
	// without it.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	locations := repository.NewLocationRepo(db)
	spots := repository.NewSpotRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	reminders := repository.NewReminderRepo(db)

	issuer := ticket.NewIssuer(cfg.QRSecret, reservations)

	var publisher service.Publisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL)
		go queue.StartConsumer(cfg.AMQPURL)
	}

	var intents service.IntentOpener
	if cfg.PaymentAPIURL != "" && cfg.PaymentAPIKey != "" {
		intents = payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey, nil)
	}

	svc := service.NewReservationService(
		reservations, spots, payments, reminders,
		issuer, publisher, intents,
		"MXN", time.Duration(cfg.ReminderLeadMin)*time.Minute,
	)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:          cfg,
		Auth:         handler.NewAuthHandler(cfg, users),
		Directory:    handler.NewDirectoryHandler(locations),
		Reservations: handler.NewReservationHandler(svc),
		Admin:        handler.NewAdminHandler(locations, spots, svc),
		Webhook:      handler.NewWebhookHandler(cfg.WebhookSecret, svc),
		Cron:         handler.NewCronHandler(cfg.CronSecret, cfg.RemindersEnabled, svc),
		Redis:        rdb,
		Cache:        config.LoadCacheConfig(),
		RateLimit:    config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
