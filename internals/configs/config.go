package configs

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Config dibaca sekali saat boot. Urutan prioritas: ENV > file YAML > default.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	JWTSecret   string   `yaml:"jwt_secret"`
	CorsOrigins []string `yaml:"cors_origins"`

	// "postgres" (default) atau "memory" untuk dev lokal tanpa DB
	StoreDriver string `yaml:"store_driver"`

	DB struct {
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"db"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	QuizCacheTTL     time.Duration `yaml:"quiz_cache_ttl"`
	DefaultTimeLimit int           `yaml:"default_time_limit"`

	// file JSON/YAML lecture untuk di-upsert saat boot (opsional)
	SeedLecturesFile string `yaml:"seed_lectures"`
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			logrus.Info("no .env file found, using system environment")
		} else {
			logrus.Info(".env file loaded")
		}
	} else {
		logrus.Info("running on Railway, using system environment")
	}

	cfg := Defaults()
	if path := GetEnv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("config file ignored")
		}
	}
	ApplyEnv(&cfg)

	if cfg.JWTSecret == "" {
		logrus.Error("JWT_SECRET is not set")
	}

	return cfg
}

func Defaults() Config {
	var cfg Config
	cfg.Port = "3000"
	cfg.LogLevel = "info"
	cfg.StoreDriver = "postgres"
	cfg.DB.SSLMode = "require"
	cfg.Redis.Addr = ""
	cfg.QuizCacheTTL = 10 * time.Minute
	cfg.DefaultTimeLimit = 30
	cfg.CorsOrigins = []string{"http://localhost:5173"}
	return cfg
}

// LoadFile menimpa cfg dengan isi file YAML; field yang tidak ada di file tetap.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return errors.New("config file is empty")
	}
	return yaml.Unmarshal(raw, cfg)
}

func ApplyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.SeedLecturesFile, "SEED_LECTURES")

	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Host, "DB_HOST")
	setString(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.DB.SSLMode, "DB_SSLMODE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := GetEnv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}

	if v := GetEnv("QUIZ_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QuizCacheTTL = d
		} else {
			logrus.WithField("value", v).Warn("invalid QUIZ_CACHE_TTL, keeping default")
		}
	}
	if v := GetEnv("DEFAULT_TIME_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultTimeLimit = n
		}
	}
	if v := GetEnv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CorsOrigins = origins
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	Entry         *logrus.Entry
}

func NewGormLogger(entry *logrus.Entry) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
		Entry:         entry.WithField("component", "gorm"),
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		l.Entry.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		l.Entry.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		l.Entry.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"file":    utils.FileWithLineNum(),
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
	}

	switch {
	case err != nil && !errors.Is(err, gormLogger.ErrRecordNotFound) && l.LogLevel >= gormLogger.Error:
		l.Entry.WithFields(fields).WithError(err).Error("query failed")
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		l.Entry.WithFields(fields).Warn("slow query")
	case l.LogLevel >= gormLogger.Info:
		l.Entry.WithFields(fields).Debug("query")
	}
}
