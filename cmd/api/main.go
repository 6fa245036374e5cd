package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"foodshare/internal/adapter/repo"
	"foodshare/internal/domain"
	"foodshare/internal/http/handlers"
	httpapi "foodshare/internal/http/httpapi"
	"foodshare/internal/infra"
	"foodshare/internal/infra/geoip"
	"foodshare/internal/lifecycle"
	"foodshare/internal/middleware"
	"foodshare/internal/possession"
	"foodshare/internal/providers/enricher"
	"foodshare/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Record store: PostgreSQL when configured, in-memory otherwise.
	var donations domain.DonationRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		donations = repo.NewDonationRepository(infra.NewSQLRunner(dbpool, logger))
	} else {
		logger.Warn().Msg("DATABASE_URL not set; using in-memory record store")
		donations = repo.NewMemoryRepository()
	}

	issuer, err := possession.NewIssuer(cfg.TokenSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize possession token issuer")
	}

	var enr enricher.Enricher
	if cfg.GeminiAPIKey != "" {
		enr, err = enricher.NewGeminiEnricher(enricher.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize gemini enricher")
		}
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; text enrichment uses static fallback")
		enr = enricher.NewStaticEnricher()
	}

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize upload store")
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	}

	svc := lifecycle.NewService(donations, issuer, logger)
	app := handlers.NewApp(svc, enr, files, logger)
	router := httpapi.NewRouter(app, cfg, logger, geo)
	server := infra.NewHTTPServer(cfg, router)

	if cfg.AppEnv == "development" {
		printDemoTokens(cfg.JWTSecret, logger)
	}

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// printDemoTokens logs ready-to-use bearer tokens for each role so the API
// can be exercised locally without an identity provider.
func printDemoTokens(secret string, logger zerolog.Logger) {
	demo := []struct {
		sub  string
		role string
	}{
		{"demo-donor", "donor"},
		{"demo-org", "org"},
		{"demo-courier", "courier"},
		{"demo-recovery", "recovery"},
	}
	for _, d := range demo {
		token, err := middleware.SignJWT(secret, middleware.TokenClaims{Sub: d.sub, Role: d.role})
		if err != nil {
			continue
		}
		logger.Info().Str("role", d.role).Str("token", token).Msg("demo bearer token")
	}
}
