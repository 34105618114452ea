package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dashboard/internal/http/handlers"
	httpapi "dashboard/internal/http/httpapi"
	"dashboard/internal/infra"
	"dashboard/internal/infra/geoip"
	"dashboard/internal/middleware"
	"dashboard/internal/providers/payments"
	"dashboard/internal/workspace"
)

func main() {
	// Optional; .env.local wins because godotenv never overrides a set variable.
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	processor, err := payments.New(cfg.PaymentProcessor, cfg.StripeKey, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment processor")
	}

	locator, err := geoip.Open(cfg.GeoIPDBPath, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer locator.Close()

	// One workspace per browser, evicted when idle.
	reg := workspace.NewRegistry(func(id string) (*workspace.Workspace, error) {
		return workspace.New(id, workspace.Options{
			BackendURL:     cfg.BackendURL,
			BackendTimeout: cfg.BackendTimeout,
			Processor:      processor,
			Reconcile:      cfg.CreditsReconcile,
			Logger:         &logger,
		})
	}, cfg.WorkspaceIdleTTL)
	reg.SetLimit(cfg.MaxWorkspaces)
	defer reg.CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.Run(ctx, time.Minute)

	app, err := handlers.NewApp(reg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load templates")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		App:    app,
		Logger: logger,
		Workspaces: middleware.WorkspaceOptions{
			Registry: reg,
			Secret:   []byte(cfg.SessionSecret),
			Secure:   cfg.SecureCookies,
			Logger:   logger,
		},
		LoginRatePerMin: cfg.LoginRatePerMin,
		DefaultLocale:   cfg.DefaultLocale,
		Country:         locator.Country,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("backend", cfg.BackendURL).
			Str("processor", processor.Name()).
			Msg("dashboard listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
