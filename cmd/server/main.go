package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/modex/screening-booking/internal/booking"
	"github.com/modex/screening-booking/internal/chat"
	"github.com/modex/screening-booking/internal/config"
	"github.com/modex/screening-booking/internal/database"
	"github.com/modex/screening-booking/internal/handler"
	"github.com/modex/screening-booking/internal/middleware"
	"github.com/modex/screening-booking/internal/queue"
	"github.com/modex/screening-booking/internal/repository"
	"github.com/modex/screening-booking/internal/router"
	"github.com/modex/screening-booking/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	authCfg := config.LoadAuthConfig()
	queueCfg := config.LoadQueueConfig()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(database.Options{
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		MaxOpen: cfg.DBMaxOpen,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("db: migrate: %v", err)
		}
	}

	// Redis is optional; without it caching and rate limiting pass through.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	listingCache := middleware.NewCacheInvalidator(cacheCfg, rdb)

	screenings := repository.NewScreeningRepo(db)
	bookings := repository.NewBookingRepo(db)

	opts := []booking.Option{booking.WithTimeout(cfg.BookingTimeout)}
	if queueCfg.Enabled {
		opts = append(opts, booking.WithListener(service.NewBookingEvents(service.NewPublisher(queueCfg.URL))))
	}
	if listingCache != nil {
		opts = append(opts, booking.WithListener(service.NewListingInvalidation(listingCache)))
	}
	engine := booking.NewEngine(booking.NewSQLStore(db, screenings, bookings), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if queueCfg.Enabled {
		go func() {
			if err := queue.StartBookingConsumer(ctx, queueCfg.URL, queueCfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	cacheMW := middleware.NewRedisCache(cacheCfg, rdb)
	limitMW := middleware.NewTokenBucket(rlCfg, rdb)

	screeningH := handler.NewScreeningHandler(screenings, listingCache)
	bookingH := handler.NewBookingHandler(engine, bookings, screenings)
	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, screeningH, bookingH, cacheMW, limitMW)
	router.RegisterAdmin(e, screeningH, bookingH, authCfg)
	router.RegisterChat(e, handler.NewChatHandler(chat.NewClient(config.LoadChatConfig())), limitMW)
	if authCfg.Enabled {
		router.RegisterAuth(e, handler.NewAuthHandler(authCfg))
	}

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
