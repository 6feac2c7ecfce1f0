package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration. Both JWT secrets are required
// and must differ: the server refuses to start rather than silently signing
// refresh tokens with the access secret.
type Config struct {
	Port        string `env:"PORT,default=8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret        string `env:"JWT_SECRET,required"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET,required"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=168h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=720h"`

	BcryptCost int `env:"BCRYPT_COST,default=12"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return loadWith(ctx, envconfig.OsLookuper())
}

func loadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, cfg, lookuper); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}

	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}
