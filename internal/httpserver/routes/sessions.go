package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/mw"
)

func init() { Register(registerSessions) }

func registerSessions(r chi.Router, d deps.Deps) {
	// One limiter shared by every mutating route; player reports are
	// periodic and stay outside it.
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateBurst,
		RefillPerMin: d.RatePerMin,
		MaxClients:   10000,
		TrustProxy:   d.TrustProxy,
		Logger:       d.Logger,
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/", handlers.ListSessions(d))

		r.Route("/{resourceID}", func(r chi.Router) {
			r.Get("/", handlers.GetSession(d))
			r.Get("/export", handlers.Export(d))
			r.Post("/player", handlers.ReportPlayer(d))
			r.Get("/player/commands", handlers.PlayerCommands(d))

			r.Group(func(r chi.Router) {
				r.Use(limit)
				r.Post("/marks", handlers.AddMark(d))
				r.Patch("/marks/{markID}", handlers.EditMark(d))
				r.Delete("/marks/{markID}", handlers.DeleteMark(d))
				r.Post("/marks/{markID}/loop", handlers.ToggleLoop(d))
				r.Post("/marks/{markID}/jump", handlers.Jump(d))
				r.Put("/order", handlers.Reorder(d))
			})
		})
	})
}
