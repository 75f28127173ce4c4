package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
	"github.com/iliyamo/event-seat-inventory/internal/config" // Internal config loader
	"github.com/iliyamo/event-seat-inventory/internal/database"
	"github.com/iliyamo/event-seat-inventory/internal/expiry"
	"github.com/iliyamo/event-seat-inventory/internal/handler"
	"github.com/iliyamo/event-seat-inventory/internal/logging"
	"github.com/iliyamo/event-seat-inventory/internal/middleware"
	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/queue"
	"github.com/iliyamo/event-seat-inventory/internal/repository"
	"github.com/iliyamo/event-seat-inventory/internal/router" // Internal router setup
	"github.com/iliyamo/event-seat-inventory/internal/seatguard"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
	"github.com/iliyamo/event-seat-inventory/internal/service"
)

// expiryQueue is satisfied by both lock expiry backends.
type expiryQueue interface {
	expiry.Scheduler
	expiry.Poller
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load() // Load environment config
	inv := config.LoadInventoryConfig()
	log := logging.Setup("event-seat-inventory", cfg.Env, cfg.LogLevel)

	// Root context: cancelled on SIGINT/SIGTERM, parent of every background runner.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, store.DB()); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	var rdb *redis.Client
	if inv.Strict() || inv.ExpiryBackend == config.ExpiryRedis || config.LoadCacheConfig().Enabled || config.LoadRateLimitConfig().Enabled {
		rdb = config.NewRedisClient(config.LoadRedisConfig(), logging.Component("redis"))
		if rdb != nil {
			defer rdb.Close()
		}
	}
	if rdb == nil && (inv.Strict() || inv.ExpiryBackend == config.ExpiryRedis) {
		log.Fatal().Str("seat_guard", inv.SeatGuard).Str("expiry_backend", inv.ExpiryBackend).
			Msg("redis is required for this inventory configuration")
	}

	clk := clock.NewSystem()
	onExpire := seating.ExpireHandler(store, logging.Component("expiry"))
	var locksQueue expiryQueue
	if inv.ExpiryBackend == config.ExpiryRedis {
		locksQueue = expiry.NewRedisQueue(rdb, clk, onExpire, logging.Component("expiry"))
	} else {
		locksQueue = expiry.NewMemoryQueue(clk, onExpire, logging.Component("expiry"))
	}
	go expiry.Run(ctx, locksQueue, inv.ExpiryPollInterval, logging.Component("expiry"))

	opts := []seating.Option{
		seating.WithLockTTL(inv.LockTTL),
		seating.WithTicketIDRetries(inv.TicketIDRetries),
		seating.WithLogger(logging.Component("seating")),
	}
	if inv.Strict() {
		opts = append(opts, seating.WithGuard(seatguard.New(rdb)))
	}
	if cfg.AMQPURL != "" {
		opts = append(opts, seating.WithPublisher(service.NewTicketPublisher(cfg.AMQPURL, logging.Component("publisher"))))
		consumer := &queue.Consumer{URL: cfg.AMQPURL, Dir: cfg.TicketLogDir, Log: logging.Component("ticket-consumer")}
		go consumer.Run(ctx)
	}
	inventory := seating.NewService(store, locksQueue, clk, opts...)

	bootstrapAdmin(ctx, cfg, store.Users, log)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logging.Component("cache"))
	bucket := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.RequestLogger(logging.Component("http")))

	router.RegisterRoutes(e, store.DB())
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, store.Users))
	router.RegisterEvents(e, handler.NewEventHandler(store.Events, clk), cache)
	router.RegisterSeats(e, handler.NewSeatHandler(inventory), bucket, cfg.JWTSecret, logging.Component("ratelimit"))
	router.RegisterAdmin(e, handler.NewAdminHandler(store.Venues, store.Events, cache, logging.Component("admin")), cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).
			Str("seat_guard", inv.SeatGuard).Str("expiry_backend", inv.ExpiryBackend).
			Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// bootstrapAdmin creates the administrator named by ADMIN_USERNAME when it
// does not exist yet.
func bootstrapAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo, log zerolog.Logger) {
	if cfg.AdminUser == "" || cfg.AdminPass == "" {
		return
	}
	_, err := users.Create(ctx, cfg.AdminUser, cfg.AdminUser, cfg.AdminPass, model.RoleAdmin, cfg.BcryptCost)
	switch {
	case err == nil:
		log.Info().Str("username", cfg.AdminUser).Msg("admin account created")
	case errors.Is(err, repository.ErrUsernameTaken):
	default:
		log.Error().Err(err).Msg("admin bootstrap failed")
	}
}
