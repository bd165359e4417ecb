package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite       = "sqlite3"
	DriverPostgres     = "postgres"
	DriverPGX          = "pgx"
	DriverGormPostgres = "gorm-postgres"
	DriverGormSQLite   = "gorm-sqlite"
)

// DefaultSecret is only acceptable in the dev environment.
const DefaultSecret = "it's a secret"

type Config struct {
	Addr           string
	Env            string
	DatabaseURL    string
	DatabaseDriver string
	SecretKey      string
	BcryptCost     int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load reads .env when present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	cost, err := strconv.Atoi(getenv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return Config{
		Addr:           getenv("APP_ADDR", ":5000"),
		Env:            getenv("APP_ENV", "dev"),
		DatabaseURL:    getenv("DATABASE_URL", "warbler.db"),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		SecretKey:      getenv("SECRET_KEY", DefaultSecret),
		BcryptCost:     cost,
	}
}

// Driver returns the configured driver, inferring it from the URL scheme when unset.
func (c Config) Driver() string {
	if c.DatabaseDriver != "" {
		return c.DatabaseDriver
	}
	if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return DriverPGX
	}
	return DriverSQLite
}

func Validate(cfg Config) error {
	if cfg.Addr == "" {
		return errors.New("APP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	switch cfg.Driver() {
	case DriverSQLite, DriverPostgres, DriverPGX, DriverGormPostgres, DriverGormSQLite:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.Env != "dev" && cfg.SecretKey == DefaultSecret {
		return errors.New("SECRET_KEY must be set outside the dev environment")
	}
	return nil
}
