package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"foodshare/internal/http/handlers"
	"foodshare/internal/infra"
	"foodshare/internal/infra/geoip"
	"foodshare/internal/middleware"
)

// NewRouter builds the full request surface: health, donation lifecycle
// endpoints, and the assist (text enrichment) endpoints. Everything except
// health sits behind the bearer-token actor middleware.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, geo geoip.CountryResolver) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, geo))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))

		r.Route("/donations", func(r chi.Router) {
			r.Post("/", app.DonationsCreate)
			r.Get("/available", app.DonationsAvailable)
			r.Get("/mine", app.DonationsMine)
			r.Get("/expired", app.DonationsExpired)
			r.Post("/{id}/accept", app.DonationsAccept)
			r.Post("/{id}/volunteer-accept", app.DonationsVolunteerAccept)
			r.Post("/{id}/confirm", app.DonationsConfirm)
			r.Post("/{id}/recycle-accept", app.DonationsRecycleAccept)
			r.Get("/{id}/image", app.DonationsImage)
			r.Delete("/{id}", app.DonationsDelete)
		})

		r.Route("/assist", func(r chi.Router) {
			r.Post("/chat", app.AssistChat)
			r.Post("/freshness", app.AssistFreshness)
			r.Post("/suggestions", app.AssistSuggestions)
		})
	})

	return r
}
