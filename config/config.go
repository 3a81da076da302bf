package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"kinship/auth"
	"kinship/database"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DSN      string `env:"DATABASE_DSN" envDefault:"root:root@tcp(localhost:3306)/kinship?charset=utf8mb4&parseTime=True&loc=Local"`

	JWTAccessSecret      string        `env:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret     string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenDuration  time.Duration `env:"ACCESS_TOKEN_DURATION" envDefault:"168h"`
	RefreshTokenDuration time.Duration `env:"REFRESH_TOKEN_DURATION" envDefault:"168h"`
	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"10"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Config: could not read .env: %v", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment alone.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, origin := range cfg.CORSAllowedOrigins {
		cfg.CORSAllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch database.Dialect(c.DBDriver) {
	case database.DialectMySQL, database.DialectSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTokenDuration <= 0 || c.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) Dialect() database.Dialect {
	return database.Dialect(c.DBDriver)
}

// DatabaseDSN returns the DSN for the configured driver. For sqlite,
// DATABASE_DSN is a file path.
func (c *Config) DatabaseDSN() string {
	if c.Dialect() == database.DialectSQLite {
		return database.SQLiteDSN(c.DSN)
	}
	return c.DSN
}

func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		AccessSecret:         c.JWTAccessSecret,
		RefreshSecret:        c.JWTRefreshSecret,
		AccessTokenDuration:  c.AccessTokenDuration,
		RefreshTokenDuration: c.RefreshTokenDuration,
	}
}
