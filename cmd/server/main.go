// Command server runs the seat reservation HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/seatbook/internal/clock"
	"github.com/iliyamo/seatbook/internal/config"
	"github.com/iliyamo/seatbook/internal/database"
	"github.com/iliyamo/seatbook/internal/handler"
	"github.com/iliyamo/seatbook/internal/queue"
	"github.com/iliyamo/seatbook/internal/repository"
	"github.com/iliyamo/seatbook/internal/repository/postgres"
	"github.com/iliyamo/seatbook/internal/router"
	"github.com/iliyamo/seatbook/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores is the storage backend selected by DB_DRIVER.
type stores struct {
	accounts     service.AccountStore
	reservations service.ReservationStore
	seats        service.SeatConfigStore
	ping         func(context.Context) error
	close        func()
}

func run() error {
	var (
		envFile = pflag.String("env-file", ".env", "optional env file loaded before reading the environment")
		migrate = pflag.Bool("migrate", true, "apply pending schema migrations at startup")
		addr    = pflag.String("addr", "", "listen address (default :$APP_PORT)")
	)
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, *migrate)
	if err != nil {
		return err
	}
	defer st.close()

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.RabbitURL)
		defer func() { _ = pub.Close() }()
		events = pub
	}
	if cfg.EventsConsumerEnabled {
		go func() {
			if err := queue.StartEventConsumer(ctx, cfg.RabbitURL, cfg.EventsLogDir); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("event consumer stopped", "error", err)
			}
		}()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	clk := clock.NewSystem()
	seatSvc := service.NewSeatService(st.accounts, st.reservations, st.seats, events, clk)
	reportSvc := service.NewReportService(st.reservations, st.accounts, st.seats)
	authSvc := service.NewAuthService(st.accounts, cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost, clk)

	e := router.New(router.Deps{
		Config:       cfg,
		Logger:       logger,
		Redis:        rdb,
		Health:       handler.Health{Ping: st.ping},
		Auth:         handler.NewAuthHandler(authSvc),
		Seats:        handler.NewSeatHandler(seatSvc, reportSvc),
		Reservations: handler.NewReservationHandler(seatSvc),
	})

	listen := *addr
	if listen == "" {
		listen = ":" + cfg.Port
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", listen, "env", cfg.Env, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg config.Config, migrate bool) (stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, database.PostgresDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode))
		if err != nil {
			return stores{}, fmt.Errorf("database: %w", err)
		}
		if migrate {
			if err := database.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return stores{
			accounts:     postgres.NewAccountStore(pool),
			reservations: postgres.NewReservationStore(pool),
			seats:        postgres.NewSeatConfigStore(pool, cfg.DefaultTotalSeats),
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil
	default:
		db, err := database.OpenMySQL(ctx, database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
		if err != nil {
			return stores{}, fmt.Errorf("database: %w", err)
		}
		if migrate {
			if err := database.MigrateMySQL(ctx, db); err != nil {
				_ = db.Close()
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return stores{
			accounts:     repository.NewAccountRepo(db),
			reservations: repository.NewReservationRepo(db),
			seats:        repository.NewSeatConfigRepo(db, cfg.DefaultTotalSeats),
			ping:         db.PingContext,
			close:        func() { _ = db.Close() },
		}, nil
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
