package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursemarket_backend/internals/configs"
	database "coursemarket_backend/internals/databases"
	"coursemarket_backend/internals/features/quizzes/repository"
	"coursemarket_backend/internals/features/quizzes/service"
	"coursemarket_backend/internals/logger"
	"coursemarket_backend/internals/metrics"
	routes "coursemarket_backend/internals/route"
	"coursemarket_backend/internals/seeds"
)

func main() {
	cfg := configs.LoadEnv()
	log := logger.Init("quiz-service", cfg.LogLevel)

	m := metrics.New("quiz")

	// 🔌 storage: postgres (default) atau memory untuk dev lokal
	var (
		store repository.Store
		ping  func(ctx context.Context) error
		stop  = func() {}
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("⚠️ STORE_DRIVER=memory, data hilang saat restart")
		store = repository.NewMemoryStore()
	default:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			log.WithError(err).Fatal("❌ Gagal konek DB")
		}
		database.TunePool(db)
		if err := repository.Migrate(db); err != nil {
			log.WithError(err).Fatal("❌ migrate failed")
		}
		store = repository.NewGormStore(db)
		ping = database.Ping(db)

		// 📊 pool stats tiap 15 detik
		poolCtx, cancelPool := context.WithCancel(context.Background())
		go func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			t := time.NewTicker(15 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-poolCtx.Done():
					return
				case <-t.C:
					m.RecordDBPoolStats(sqlDB.Stats())
				}
			}
		}()
		stop = func() {
			cancelPool()
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}

	// ⚡ cache definisi quiz (opsional)
	if rdb := database.ConnectRedis(cfg); rdb != nil {
		store = repository.NewCachedStore(store, rdb, cfg.QuizCacheTTL, log, m)
		prevStop := stop
		stop = func() {
			_ = rdb.Close()
			prevStop()
		}
	}

	seeds.RunAllSeeds(context.Background(), store, cfg.SeedLecturesFile)

	svc := service.NewQuizService(store,
		service.WithLogger(log),
		service.WithObserver(m),
		service.WithDefaultTimeLimit(cfg.DefaultTimeLimit),
	)

	app := routes.NewApp(cfg.CorsOrigins, routes.Deps{
		QuizService: svc,
		Metrics:     m,
		JWTSecret:   cfg.JWTSecret,
		Ping:        ping,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		log.Infof("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown + tutup pool DB / redis
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	stop()
	log.Info("👋 shutdown complete")
}
