package app

import (
	"context"
	"log/slog"
	"time"

	httpserver "bitslow-market/internal/app/http-server"
	"bitslow-market/internal/config"
	"bitslow-market/internal/handlers"
	"bitslow-market/internal/lib/jwt"
	"bitslow-market/internal/middlewares"
	"bitslow-market/internal/repository/postgres"
	"bitslow-market/internal/repository/redis"
	"bitslow-market/internal/routes"
	"bitslow-market/internal/services"
)

type App struct {
	HTTPServer *httpserver.Server
	Storage    *postgres.Storage
}

func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgres.NewPostgres(context.Background(), cfg.Database.PostgresConn)
	if err != nil {
		panic(err)
	}

	jwtGen := jwt.NewGenerator(
		cfg.JWT.Secret,
		time.Minute*time.Duration(cfg.JWT.AccessExpirationMinutes),
		24*time.Hour*time.Duration(cfg.JWT.RefreshExpirationDays),
	)

	redisDB, err := redis.InitRedis(
		cfg.Redis.RedisConn,
		cfg.Redis.Password,
		cfg.Redis.DBNumber,
		24*time.Hour*time.Duration(cfg.JWT.RefreshExpirationDays),
	)
	if err != nil {
		panic(err)
	}

	authService := services.NewAuthService(log, storage, redisDB, jwtGen)
	ledgerService := services.NewLedgerService(log, storage)

	authHandler := handlers.NewAuthHandler(log, authService)
	ledgerHandler := handlers.NewLedgerHandler(log, ledgerService)

	authMiddleware := middlewares.NewAuthMiddleware(jwtGen, storage)
	rateLimit := middlewares.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r := routes.InitRoutes(authHandler, ledgerHandler, authMiddleware, rateLimit)

	server := httpserver.NewServer(log, cfg.Server.Address, r)

	return &App{
		HTTPServer: server,
		Storage:    storage,
	}
}
