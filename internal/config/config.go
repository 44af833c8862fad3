package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Env     string        `env:"ENV,required"` // local, dev, prod
	Address string        `env:"ADDRESS,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type DatabaseConfig struct {
	PostgresConn string `env:"POSTGRES_CONN,required"`
}

type JWTConfig struct {
	Secret                  string `env:"JWT_SECRET,required"`
	AccessExpirationMinutes int    `env:"ACCESS_EXPIRATION_MINUTES" envDefault:"15"`
	RefreshExpirationDays   int    `env:"REFRESH_EXPIRATION_DAYS" envDefault:"7"`
}

type RedisConfig struct {
	RedisConn string `env:"REDIS_STORAGE_PATH"`
	Password  string `env:"REDIS_PASSWORD"`
	DBNumber  string `env:"REDIS_DB_NUMBER" envDefault:"0"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

const local = ".env.local"

func MustLoad() *Config {
	if err := godotenv.Load(local); err != nil {
		panic(err)
	}

	timeoutStr := os.Getenv("TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		panic("Invalid TIMEOUT format: " + err.Error())
	}

	accessExpStr := os.Getenv("ACCESS_EXPIRATION_MINUTES")
	accessExp, err := strconv.Atoi(accessExpStr)
	if err != nil {
		panic("Invalid ACCESS_EXPIRATION_MINUTES format: " + err.Error())
	}

	refreshExpStr := os.Getenv("REFRESH_EXPIRATION_DAYS")
	refreshExp, err := strconv.Atoi(refreshExpStr)
	if err != nil {
		panic("Invalid REFRESH_EXPIRATION_DAYS format: " + err.Error())
	}

	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "50"), 64)
	if err != nil {
		panic("Invalid RATE_LIMIT_RPS format: " + err.Error())
	}

	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "100"))
	if err != nil {
		panic("Invalid RATE_LIMIT_BURST format: " + err.Error())
	}

	return &Config{
		Server: ServerConfig{
			Env:     os.Getenv("ENV"),
			Address: os.Getenv("ADDRESS"),
			Timeout: timeout,
		},
		Database: DatabaseConfig{
			PostgresConn: os.Getenv("POSTGRES_CONN"),
		},
		JWT: JWTConfig{
			Secret:                  os.Getenv("JWT_SECRET"),
			AccessExpirationMinutes: accessExp,
			RefreshExpirationDays:   refreshExp,
		},
		Redis: RedisConfig{
			RedisConn: os.Getenv("REDIS_STORAGE_PATH"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DBNumber:  envOrDefault("REDIS_DB_NUMBER", "0"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
