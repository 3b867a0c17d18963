package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	twicmdhttp "github.com/twipi/twipi/twicmd/http"
	"github.com/twipi/utttt/api"
	"github.com/twipi/utttt/config"
	"github.com/twipi/utttt/service"
	"github.com/twipi/utttt/session"
	"golang.org/x/sync/errgroup"
	"libdb.so/hserve"
)

var (
	listenAddr = ":8080"
	configPath = ""
	logLevel   = "info"
)

func init() {
	pflag.StringVarP(&listenAddr, "listen-addr", "l", listenAddr, "address to listen on")
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to the YAML config file")
	pflag.StringVar(&logLevel, "log-level", logLevel, "log level (debug, info, warn, error)")
	pflag.Parse()
}

func main() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		slog.Error(
			"invalid log level",
			"log_level", logLevel,
			"err", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(start(ctx, logger))
}

func start(ctx context.Context, logger *slog.Logger) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error(
			"failed to load config",
			"path", configPath,
			"err", err)
		return 1
	}

	errg, ctx := errgroup.WithContext(ctx)

	games := session.NewStore(cfg.SessionOptions(), logger.With("component", "session"))
	errg.Go(func() error { return games.Run(ctx) })

	svc := service.NewService(games, logger.With("component", "service"))
	errg.Go(func() error { return svc.Start(ctx) })

	handler := twicmdhttp.NewHandler(svc, logger.With("component", "http"))
	errg.Go(func() error {
		<-ctx.Done()
		if err := handler.Close(); err != nil {
			logger.Error(
				"failed to close http service handler",
				"err", err)
		}
		return ctx.Err()
	})

	errg.Go(func() error {
		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Get("/health", healthCheck)
		r.Mount("/api", api.NewHandler(games, logger.With("component", "api")))
		r.Handle("/*", handler)

		logger.Info(
			"listening via HTTP",
			"addr", listenAddr)

		if err := hserve.ListenAndServe(ctx, listenAddr, r); err != nil {
			logger.Error(
				"failed to listen and serve",
				"err", err)
			return err
		}

		return ctx.Err()
	})

	if err := errg.Wait(); err != nil {
		logger.Error(
			"service error",
			"err", err)
		return 1
	}

	return 0
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
