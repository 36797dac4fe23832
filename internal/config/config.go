package config

import (
	"errors"
	"os"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	DB struct {
		Driver     string // sqlite3 (default) or mysql
		MySQLDSN   string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
		SQLitePath string // empty means the default data file
	}
	HTTP struct {
		Addr string
	}
	Timezone string // calendar-day time zone, e.g. Local (default), Europe/Berlin
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.DB.Driver = os.Getenv("QUOKKA_DB")
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite3"
	}
	switch cfg.DB.Driver {
	case "sqlite3":
		cfg.DB.SQLitePath = os.Getenv("QUOKKA_SQLITE_PATH")
	case "mysql":
		cfg.DB.MySQLDSN = os.Getenv("MYSQL_DSN")
		if cfg.DB.MySQLDSN == "" {
			return cfg, errors.New("MYSQL_DSN is required when QUOKKA_DB=mysql")
		}
	default:
		return cfg, errors.New("QUOKKA_DB must be sqlite3 or mysql")
	}

	cfg.HTTP.Addr = os.Getenv("QUOKKA_HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	cfg.Timezone = os.Getenv("QUOKKA_TZ")
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	return cfg, nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
