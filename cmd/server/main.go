package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // SCHOOL_TZ must resolve on minimal images

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/music-school-admin/internal/config"
	"github.com/iliyamo/music-school-admin/internal/database"
	"github.com/iliyamo/music-school-admin/internal/handler"
	"github.com/iliyamo/music-school-admin/internal/middleware"
	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
	"github.com/iliyamo/music-school-admin/internal/repository/memstore"
	"github.com/iliyamo/music-school-admin/internal/router"
	"github.com/iliyamo/music-school-admin/internal/service"
)

func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug
	if cfg.Debug {
		e.Logger.SetLevel(log.DEBUG)
	}
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, probe, closeStore := openStore(ctx, cfg)
	defer closeStore()

	opts := service.Options{Location: cfg.SchoolTZ, MonthlyFeeCents: cfg.MonthlyFeeCents}
	if cfg.EventsEnabled {
		opts.Publisher = queue.NewPublisher(cfg.AMQPURL)
		log.Infof("publishing events to %s", queue.QueueName)
	}
	svc := service.New(store, opts)

	// Redis is optional; nil turns cache and rate limit into pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	router.RegisterRoutes(e, probe)
	router.RegisterSchool(e, handler.NewSchoolHandler(svc),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.InvalidateCache(cacheCfg, rdb),
		middleware.NewRedisCache(cacheCfg, rdb),
	)

	if cfg.EventsConsumer {
		go func() {
			if err := queue.StartEventConsumer(ctx, cfg.AMQPURL, cfg.EventsLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("event consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Infof("listening on %s (env=%s, db=%s, tz=%s)", addr, cfg.Env, cfg.DBDriver, cfg.SchoolTZ)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// openStore returns the configured store, a readiness probe (nil for the
// memory driver) and a close func.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, handler.Pinger, func()) {
	if cfg.DBDriver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil, func() {}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			log.Fatalf("migrate: %v", err)
		}
	}
	store := repository.NewSQLStore(db)
	return store, store.DB(), func() { _ = store.DB().Close() }
}
