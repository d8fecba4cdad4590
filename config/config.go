// Package config reads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Port     string
	DataFile string
	Storage  string // "file" or "postgres"

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string
	RedisPwd  string
	CacheTTL  time.Duration

	WebOrigin     string
	CommitTimeout time.Duration
}

// LoadEnv loads a .env file when present. Missing files are fine; real
// environments set variables directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
}

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def int) time.Duration {
		v := def
		if raw := os.Getenv(k); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				v = n
			}
		}
		return time.Duration(v) * time.Second
	}

	return Config{
		Port:     get("PORT", "3001"),
		DataFile: get("DATA_FILE", "library_data.json"),
		Storage:  get("STORAGE", StorageFile),

		DBHost:     get("DB_HOST", "127.0.0.1"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     get("DB_NAME", "library"),
		DBPort:     get("DB_PORT", "5432"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),
		CacheTTL:  seconds("CACHE_TTL_SECONDS", 30),

		WebOrigin:     get("WEB_ORIGIN", "http://localhost:5173"),
		CommitTimeout: seconds("COMMIT_TIMEOUT_SECONDS", 5),
	}
}

// PostgresDSN assembles the DSN for the postgres snapshot gateway.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
