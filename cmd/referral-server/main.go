package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/durvester/referral-loop-closure/internal/config"
	"github.com/durvester/referral-loop-closure/internal/domain/consent"
	"github.com/durvester/referral-loop-closure/internal/domain/directory"
	"github.com/durvester/referral-loop-closure/internal/domain/encounter"
	"github.com/durvester/referral-loop-closure/internal/domain/loop"
	"github.com/durvester/referral-loop-closure/internal/domain/referral"
	"github.com/durvester/referral-loop-closure/internal/domain/session"
	"github.com/durvester/referral-loop-closure/internal/domain/tracking"
	"github.com/durvester/referral-loop-closure/internal/platform/db"
	"github.com/durvester/referral-loop-closure/internal/platform/middleware"
	"github.com/durvester/referral-loop-closure/internal/platform/webhook"
	"github.com/durvester/referral-loop-closure/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "referral-server",
		Short: "Referral loop closure server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the referral loop closure server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to migrate")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s)\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%04d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail overdue referral tasks and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("sweep requires STORE=postgres; the memory store has nothing persisted to sweep")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			trackingSvc := tracking.NewService(tracking.NewPGRepo(pool))
			ids, err := trackingSvc.SweepOverdue(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			logger.Info().Int("count", len(ids)).Msg("overdue tasks failed")
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// stores bundles one Repository per domain, backed either by memory or postgres.
type stores struct {
	referrals  referral.Repository
	tasks      tracking.Repository
	encounters encounter.Repository
	directory  directory.Repository
	consents   consent.Repository
	sessions   session.Repository
	routed     loop.Repository
}

func buildStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, func(), error) {
	if cfg.Store == config.StorePostgres {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().Msg("connected to database")
		return &stores{
			referrals:  referral.NewPGRepo(pool),
			tasks:      tracking.NewPGRepo(pool),
			encounters: encounter.NewPGRepo(pool),
			directory:  directory.NewPGRepo(pool),
			consents:   consent.NewPGRepo(pool),
			sessions:   session.NewPGRepo(pool),
			routed:     loop.NewPGRepo(pool),
		}, pool.Close, nil
	}

	logger.Info().Msg("using in-memory stores")
	return &stores{
		referrals:  referral.NewMemRepo(),
		tasks:      tracking.NewMemRepo(),
		encounters: encounter.NewMemRepo(),
		directory:  directory.NewMemRepo(),
		consents:   consent.NewMemRepo(),
		sessions:   session.NewMemRepo(),
		routed:     loop.NewMemRepo(),
	}, func() {}, nil
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	signingKey := cfg.SessionSigningKey
	if signingKey == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate signing key")
		}
		signingKey = hex.EncodeToString(buf)
		logger.Warn().Msg("SESSION_SIGNING_KEY not set; using an ephemeral key, tokens will not survive restarts")
	}

	ctx := context.Background()
	st, closeStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build stores")
	}
	defer closeStores()

	// Services
	trackingSvc := tracking.NewService(st.tasks)
	referralSvc := referral.NewService(st.referrals, trackingSvc, logger)
	encounterSvc := encounter.NewService(st.encounters)
	directorySvc := directory.NewService(st.directory)
	consentSvc := consent.NewService(st.consents)
	sessionSvc := session.NewService(st.sessions, []byte(signingKey), cfg.SessionTTL)

	hub := websocket.NewHub()
	webhookMgr := webhook.NewManager(webhook.NewInMemoryStore())

	loopSvc := loop.NewService(sessionSvc, encounterSvc, referralSvc, trackingSvc,
		consentSvc, directorySvc, st.routed, hub, webhookMgr, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")
	referral.NewHandler(referralSvc).RegisterRoutes(apiV1)
	tracking.NewHandler(trackingSvc).RegisterRoutes(apiV1)
	encounter.NewHandler(encounterSvc).RegisterRoutes(apiV1)
	directory.NewHandler(directorySvc).RegisterRoutes(apiV1)
	consent.NewHandler(consentSvc).RegisterRoutes(apiV1)
	session.NewHandler(sessionSvc).RegisterRoutes(apiV1)
	loop.NewHandler(loopSvc).RegisterRoutes(apiV1)
	webhook.NewHandler(webhookMgr).RegisterRoutes(apiV1)
	websocket.NewHandler(hub).RegisterRoutes(e)

	// Overdue sweeper
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.SweepInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					if _, err := loopSvc.SweepOverdue(sweepCtx); err != nil {
						logger.Error().Err(err).Msg("overdue sweep failed")
					}
				}
			}
		}()
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
