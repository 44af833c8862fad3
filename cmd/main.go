package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bitslow-market/internal/app"
	"bitslow-market/internal/config"
)

func main() {
	cfg := config.MustLoad()

	fmt.Println(`  ___  _ _    ___ _
 | _ )(_) |_ / __| |_____ __ __
 | _ \| |  _|\__ \ / _ \ V  V /
 |___/|_|\__||___/_\___/ \_/\_/
        marketplace`)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("Starting http", "env", cfg.Server.Env)

	application := app.New(log, cfg)

	go application.HTTPServer.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	sign := <-stop

	log.Info("Application stopped", slog.String("signal", sign.String()))

	if err := application.HTTPServer.Stop(context.Background()); err != nil {
		log.Error("failed to stop http server", slog.String("error", err.Error()))
	}

	_ = application.Storage.Close()
}
