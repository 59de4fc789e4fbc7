package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coursemarket_backend/internals/configs"
	"coursemarket_backend/internals/logger"
)

// DSN: URL lengkap + statement_timeout (selaras dengan timeout request 5s)
func DSN(cfg configs.Config) string {
	sslmode := cfg.DB.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=coursemarket&options=-c%%20statement_timeout%%3D3000",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
		sslmode,
	)
}

func ConnectDB(cfg configs.Config) (*gorm.DB, error) {
	logger.Log.Info("🔌 Connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(cfg),
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(logger.Log),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Log.Info("✅ DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.WithError(err).Warn("pool tune err")
		return
	}
	// ⚖️ Sesuaikan dengan limit Supabase/PgBouncer
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func Ping(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// ConnectRedis → nil kalau REDIS_ADDR kosong atau tidak bisa di-ping; cache
// quiz bersifat opsional, service tetap jalan langsung ke DB.
func ConnectRedis(cfg configs.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Log.Info("ℹ️ REDIS_ADDR not set, quiz cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Warn("❌ Redis ping failed, quiz cache disabled")
		_ = client.Close()
		return nil
	}
	logger.Log.WithField("addr", cfg.Redis.Addr).Info("✅ Redis connected.")
	return client
}
