package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	DBPath         string
	PoolFile       string // empty: embedded default
	PaletteFile    string // empty: embedded default
	FlagsDir       string
	TimeZone       string // IANA name; empty: process local time
	ShuffleSeed    string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	LogLevel       string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "5175")
	c.DBPath = getenv("DB_PATH", "./data/flagle.db")
	c.PoolFile = os.Getenv("POOL_FILE")
	c.PaletteFile = os.Getenv("PALETTE_FILE")
	c.FlagsDir = getenv("FLAGS_DIR", "./flags/quantized")
	c.TimeZone = os.Getenv("TZ_NAME")
	c.ShuffleSeed = getenv("SHUFFLE_SEED", "flagle-shuffle-seed-v2")
	c.JWTSecret = getenv("JWT_SECRET", "dev_secret_change_me")
	c.JWTExpiresDays = getenvInt("JWT_EXPIRES_DAYS", 14)
	c.CookieName = getenv("COOKIE_NAME", "flagle_token")
	c.ClientOrigin = getenv("CLIENT_ORIGIN", "http://localhost:5173")
	c.Production = os.Getenv("NODE_ENV") == "production"
	c.LogLevel = getenv("LOG_LEVEL", "info")
	return c
}

// Location resolves TimeZone; day boundaries are drawn there.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: TZ_NAME: %w", err)
	}
	return loc, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
