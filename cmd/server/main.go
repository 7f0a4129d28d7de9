package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/payment"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, err := cfg.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "hotel-reservation", cfg.OTelEndpoint)
	if err != nil {
		log.WithError(err).Fatal("setup tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	opts := service.Options{
		HotelName:      cfg.HotelName,
		Store:          store,
		Payments:       newPayments(cfg, log),
		Logger:         log,
		PaymentTimeout: cfg.PaymentTimeout,
		BcryptCost:     cfg.BcryptCost,
	}
	if cfg.AMQPEnabled {
		opts.Events = queue.NewPublisher(cfg.RabbitMQURL, log)
		go func() {
			err := queue.StartReservationConsumer(ctx, cfg.RabbitMQURL, queue.AuditLog{Path: cfg.AuditLog}, log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("reservation consumer stopped")
			}
		}()
	}

	svc := service.New(opts)
	if err := svc.Init(ctx); err != nil {
		log.WithError(err).Fatal("initialise hotel state")
	}
	if cfg.ManagerID != "" {
		if _, err := svc.EnsureManager(ctx, cfg.ManagerID, cfg.ManagerPassword); err != nil {
			log.WithError(err).Fatal("bootstrap manager account")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLogger(log))

	var searchCache echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
		searchCache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb, svc.Version)
	} else {
		log.Warn("redis unavailable, rate limiting and caching disabled")
	}

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(svc, cfg.JWTSecret, cfg.AccessTTL()),
		Rooms:        handler.NewRoomHandler(svc),
		Reservations: handler.NewReservationHandler(svc),
		Health:       handler.Health(svc),
	}
	router.RegisterRoutes(e, h, searchCache)
	router.RegisterProtected(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "hotel": svc.Name()}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
}

func openStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (service.SnapshotStore, func()) {
	if cfg.StorageDriver != config.StorageMySQL {
		log.WithField("path", cfg.SnapshotPath).Info("using file snapshot store")
		return repository.NewFileSnapshotStore(cfg.SnapshotPath), func() {}
	}
	db, err := database.Open(database.Params{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.WithError(err).Fatal("open mysql")
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("migrate mysql")
	}
	log.WithField("db", cfg.DBName).Info("using mysql snapshot store")
	return repository.NewMySQLSnapshotStore(db), func() { _ = db.Close() }
}

func newPayments(cfg config.Config, log logrus.FieldLogger) service.PaymentProcessor {
	if cfg.PaymentMode == config.PaymentGateway {
		return payment.NewBreaker("payment-gateway", payment.NewGateway(cfg.PaymentGatewayURL), cfg.PaymentBreakerOpenFor, log)
	}
	return payment.Simulator{DeclineAboveCents: cfg.PaymentDeclineAboveCents, Log: log}
}
