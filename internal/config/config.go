package config

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Skotchmaster/nexus_market/internal/repo"
	pkgconfig "github.com/Skotchmaster/nexus_market/pkg/config"
	pkgdb "github.com/Skotchmaster/nexus_market/pkg/db"
)

type Config struct {
	ServiceName string
	ServerPort  string
	DatabaseURL string
	LogLevel    string

	// AdminPassword is the shared secret accepted by product mutations.
	// AdminPasswordHash, when set, replaces it with a precomputed bcrypt hash.
	AdminPassword     string
	AdminPasswordHash string
	SeedAdminUsername string
	SeedAdminPassword string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	ImageResolveTimeout time.Duration
	ImageMaxBodyBytes   int
	StaticDir           string
	AllowedOrigins      []string
}

// Load reads .env (if present) and the environment. A missing JWT_SECRET is
// replaced with a random per-process key, so issued tokens die on restart.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("env_file_error", "files", envFiles, "error", err)
	}

	cfg := Config{
		ServiceName:         pkgconfig.EnvDefault("SERVICE_NAME", "nexus-market"),
		ServerPort:          pkgconfig.EnvDefault("SERVER_PORT", "3000"),
		DatabaseURL:         pkgconfig.EnvDefault("DATABASE_URL", "database.db"),
		LogLevel:            pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		AdminPassword:       pkgconfig.EnvDefault("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash:   pkgconfig.EnvDefault("ADMIN_PASSWORD_HASH", ""),
		SeedAdminUsername:   pkgconfig.EnvDefault("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword:   pkgconfig.EnvDefault("SEED_ADMIN_PASSWORD", "admin123"),
		JWTSecret:           []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		TokenTTL:            pkgconfig.EnvDurationDefault("TOKEN_TTL", 24*time.Hour),
		KafkaBrokers:        pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),
		ESURL:               pkgconfig.EnvDefault("ES_URL", ""),
		ESUser:              pkgconfig.EnvDefault("ES_USER", ""),
		ESPassword:          pkgconfig.EnvDefault("ES_PASSWORD", ""),
		ESIndex:             pkgconfig.EnvDefault("ES_INDEX", "products"),
		ImageResolveTimeout: pkgconfig.EnvDurationDefault("IMAGE_RESOLVE_TIMEOUT", 10*time.Second),
		ImageMaxBodyBytes:   pkgconfig.EnvIntDefault("IMAGE_MAX_BODY_BYTES", 2<<20),
		StaticDir:           pkgconfig.EnvDefault("STATIC_DIR", ""),
		AllowedOrigins:      pkgconfig.CSV(pkgconfig.EnvDefault("ALLOWED_ORIGINS", "")),
	}

	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		slog.Warn("jwt_secret_generated", "reason", "JWT_SECRET is empty")
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	return errors.Join(
		pkgconfig.RequireNonEmpty(c.DatabaseURL, "DATABASE_URL"),
		pkgconfig.RequireNonEmpty(c.ServerPort, "SERVER_PORT"),
		pkgconfig.RequireNonEmptyBytes(c.JWTSecret, "JWT_SECRET"),
	)
}

// InitDB opens the store, migrates it and seeds the admin account.
func InitDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.SeedAdminUsername != "" {
		created, err := r.EnsureAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			slog.Info("admin_seeded", "username", cfg.SeedAdminUsername)
		}
	}
	return db, nil
}
