package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"

	"syncalendar/internal/auth"
	"syncalendar/internal/config"
	"syncalendar/internal/handlers"
	"syncalendar/internal/notify"
	"syncalendar/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(cfg *config.Config, log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address", Value: cfg.ListenAddr},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cfg, cmd.String("addr"), log)
		},
	}
}

func migrateCommand(cfg *config.Config, log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the database tables",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cfg.PostgresDSN == "" {
				return errors.New("POSTGRES_DSN is not set")
			}
			pool, err := connect(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := storage.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info("schema applied")
			return nil
		},
	}
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping db: %w", err)
	}
	return pool, nil
}

func serve(ctx context.Context, cfg *config.Config, addr string, log *logrus.Entry) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.WithError(err).Warn("failed to set GOMAXPROCS")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location(log)

	var store storage.Store
	if cfg.PostgresDSN != "" {
		pool, err := connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := storage.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info("connected to db successfully")
		store = storage.NewPostgres(pool)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory storage")
		store = storage.NewMemory()
	}

	googleConfig, err := auth.NewGoogleConfig(cfg.GoogleCredentialsFile, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if err != nil {
		return err
	}
	google := auth.NewGoogleProvider(googleConfig, "")
	service := auth.NewService(store, store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), log)

	sender, err := newSender(ctx, cfg, log)
	if err != nil {
		return err
	}
	scheduler := notify.NewScheduler(store, store, sender, cfg.ReminderMinutes, loc, log)

	deps := handlers.Deps{
		Store:     store,
		Auth:      service,
		Google:    google,
		Scheduler: scheduler,

		SimulateGoogle: cfg.GoogleSimulateSignIn,
		Location:       loc,
		Log:            log,
	}
	if cfg.GoogleCalendarMirror {
		if !google.Configured() {
			return errors.New("GOOGLE_CALENDAR_MIRROR needs google oauth credentials")
		}
		deps.Mirror = storage.NewGoogleCalendarStorage(googleConfig, store, loc, cfg.GoogleCalendarEndpoint)
	}

	if err := scheduler.Start(cfg.NotifySchedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("signal received, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSender publishes to SNS when a topic is configured and logs otherwise.
func newSender(ctx context.Context, cfg *config.Config, log *logrus.Entry) (notify.Sender, error) {
	if cfg.SNSTopicARN == "" {
		return notify.NewLogSender(log), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}
	return notify.NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN), nil
}
