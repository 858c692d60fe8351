package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kc-aidesigntech/atlas/internal/analytics"
	"github.com/kc-aidesigntech/atlas/internal/assessment"
	"github.com/kc-aidesigntech/atlas/internal/audit"
	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/resource"
	"github.com/kc-aidesigntech/atlas/internal/sandbox"
	"github.com/kc-aidesigntech/atlas/internal/shared/auth"
	"github.com/kc-aidesigntech/atlas/internal/shared/config"
	"github.com/kc-aidesigntech/atlas/internal/shared/database"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/logging"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
	secmiddleware "github.com/kc-aidesigntech/atlas/internal/shared/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "portal",
		Short: "Case-management portal API for community health coordinators",
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Server.Env)

			db, err := database.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db.Pool); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample dataset and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Server.Env)

			if !cfg.Sandbox.Enabled {
				return fmt.Errorf("sample data loading is disabled (SANDBOX_ENABLED=false)")
			}

			db, err := database.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db.Pool); err != nil {
				return err
			}

			seeder := sandbox.NewSeeder(
				enrollee.NewRepository(db.Pool),
				resource.NewRepository(db.Pool),
				referral.NewRepository(db.Pool),
				nil, logger,
			)
			report, err := seeder.Load(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().
				Int("enrollees", report.Enrollees).
				Int("resources", report.Resources).
				Int("referrals", report.Referrals).
				Msg("sample data loaded")
			return nil
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.Server.Env)

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// The event bus is optional: without it the portal still serves requests,
	// it just stops feeding the activity stream and the audit trail.
	var bus events.EventBus
	esdbBus, err := events.NewBus(ctx, cfg.EventStore, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("event store unavailable, running without event streaming")
	} else {
		bus = esdbBus
		defer esdbBus.Close()
	}

	// Repositories
	profileRepo := identity.NewRepository(db.Pool)
	enrolleeRepo := enrollee.NewRepository(db.Pool)
	resourceRepo := resource.NewRepository(db.Pool)
	referralRepo := referral.NewRepository(db.Pool)
	guard := identity.NewGuard(profileRepo)

	// Assessment sync source: legacy database wins over the HTTP API when
	// both are configured.
	var syncSource assessment.Fetcher
	sourceTag := ""
	if cfg.Assessment.Enabled && cfg.Assessment.LegacyDSN != "" {
		legacy, err := assessment.OpenLegacy(ctx, cfg.Assessment.LegacyDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("legacy assessment database unavailable")
		} else {
			defer legacy.Close()
			syncSource = legacy
			sourceTag = "legacy"
		}
	}
	if syncSource == nil && cfg.Assessment.HTTPConfigured() {
		client, err := assessment.NewClient(assessment.Config{
			BaseURL:      cfg.Assessment.BaseURL,
			TokenURL:     cfg.Assessment.TokenURL,
			ClientID:     cfg.Assessment.ClientID,
			ClientSecret: cfg.Assessment.ClientSecret,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("assessment client misconfigured")
		} else {
			syncSource = client
			sourceTag = "api"
		}
	}
	assessmentSvc := assessment.NewService(syncSource, sourceTag, enrolleeRepo, bus, logger)

	// Audit trail consumes bus events; without a bus it stays empty but the
	// query endpoints still work.
	auditRepo := audit.NewRepository(db.Pool)
	if bus != nil {
		subscriber := audit.NewSubscriber(auditRepo, bus, logger)
		if err := subscriber.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("audit subscriber failed to start")
		}
	}

	r := buildRouter(cfg, logger, routerDeps{
		bus:           bus,
		guard:         guard,
		profileRepo:   profileRepo,
		enrolleeRepo:  enrolleeRepo,
		resourceRepo:  resourceRepo,
		referralRepo:  referralRepo,
		auditRepo:     auditRepo,
		assessmentSvc: assessmentSvc,
		db:            db,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		close(done)
	}()

	logger.Info().
		Str("env", cfg.Server.Env).
		Int("port", cfg.Server.Port).
		Bool("assessment", assessmentSvc.Enabled()).
		Bool("sandbox", cfg.Sandbox.Enabled).
		Msg("portal API listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info().Msg("server stopped")
	return nil
}

type routerDeps struct {
	bus           events.EventBus
	guard         *identity.Guard
	profileRepo   *identity.Repository
	enrolleeRepo  *enrollee.Repository
	resourceRepo  *resource.Repository
	referralRepo  *referral.Repository
	auditRepo     *audit.Repository
	assessmentSvc *assessment.Service
	db            *database.DB
}

func buildRouter(cfg *config.Config, logger zerolog.Logger, deps routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.BodyLimit)
	r.Use(secmiddleware.CORS(secmiddleware.DefaultCORSConfig()))
	r.Use(metrics.Middleware)

	limiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(limiter.Middleware)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(deps))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth, cfg.Server.IsDev()))

		identityHandler := identity.NewHandler(deps.profileRepo, deps.guard, deps.bus)
		r.Mount("/", identityHandler.Routes())

		enrolleeHandler := enrollee.NewHandler(deps.enrolleeRepo, deps.guard, deps.bus)
		r.Mount("/enrollees", enrolleeHandler.Routes())

		resourceHandler := resource.NewHandler(deps.resourceRepo, deps.enrolleeRepo, deps.guard, deps.bus)
		r.Mount("/resources", resourceHandler.Routes())

		referralHandler := referral.NewHandler(deps.referralRepo, deps.resourceRepo, deps.guard, deps.bus)
		r.Mount("/referrals", referralHandler.Routes())

		analyticsHandler := analytics.NewHandler(deps.enrolleeRepo, deps.referralRepo, deps.resourceRepo, deps.guard)
		r.Mount("/analytics", analyticsHandler.Routes())

		assessmentHandler := assessment.NewHandler(deps.assessmentSvc, deps.guard)
		r.Mount("/assessment", assessmentHandler.Routes())

		auditHandler := audit.NewHandler(deps.auditRepo, deps.guard)
		r.Mount("/audit", auditHandler.Routes())

		if cfg.Sandbox.Enabled {
			seeder := sandbox.NewSeeder(deps.enrolleeRepo, deps.resourceRepo, deps.referralRepo, deps.bus, logger)
			sandboxHandler := sandbox.NewHandler(seeder, deps.guard)
			r.Mount("/sandbox", sandboxHandler.Routes())
		}
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func readyHandler(deps routerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"server": "ready"}

		if err := deps.db.Health(r.Context()); err != nil {
			checks["database"] = "not ready: " + err.Error()
		} else {
			checks["database"] = "ready"
		}

		if deps.bus != nil {
			if err := deps.bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		code := http.StatusOK
		state := "ready"
		if !allReady {
			code = http.StatusServiceUnavailable
			state = "not ready"
		}
		httpx.JSON(w, code, map[string]any{"status": state, "checks": checks})
	}
}
