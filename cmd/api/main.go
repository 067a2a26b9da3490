package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/fruitstand/backend/internal/config"
	"github.com/zhouzirui/fruitstand/backend/internal/handler"
	"github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
	fruitService "github.com/zhouzirui/fruitstand/backend/internal/service/fruit"
)

func main() {
	app := &cli.App{
		Name:  "fruitstand",
		Usage: "in-memory fruit inventory API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file loaded before reading the environment",
				Value:   ".env",
				EnvVars: []string{"ENV_FILE"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("fruitstand stopped")
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(c.String("env-file")); err != nil {
		log.WithError(err).Warn("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	logger := newLogger(cfg.Log)

	store := fruit.NewMemoryStore(cfg.Seed)
	fruitSvc := fruitService.NewService(store, logger)
	if len(cfg.Seed) > 0 {
		logger.WithField("count", len(cfg.Seed)).Info("seeded fruit store")
	}

	router := handler.NewRouter(fruitSvc, cfg.Server, logger)

	return startServer(ctx, cfg.Server, router, logger)
}

func newLogger(cfg config.LogConfig) *log.Logger {
	logger := log.StandardLogger()
	logger.SetLevel(cfg.Level)
	if cfg.JSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          stdErrorLog(logger),
		// request contexts end with ctx so long-lived feeds close on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.WithField("addr", serverCfg.Addr).Info("fruitstand listening")
	return runServer(ctx, srv, serverCfg.ShutdownTimeout, logger)
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger log.FieldLogger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutting down")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})

	return g.Wait()
}
