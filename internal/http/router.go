package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Rooms    *RoomHandler
	Bookings *BookingHandler
	Sessions SessionValidator
	// Middleware wraps every route after the built-in request ID, recoverer,
	// and request logging middleware.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the API routes. Registration and login are public;
// everything else requires a valid session.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Post("/auth/register", cfg.Auth.Register)
			r.Post("/auth/login", cfg.Auth.Login)
		}

		r.Group(func(r chi.Router) {
			if cfg.Sessions != nil {
				r.Use(RequireSession(cfg.Sessions, nil))
			}

			if cfg.Auth != nil {
				r.Post("/auth/logout", cfg.Auth.Logout)
				r.Get("/auth/profile", cfg.Auth.Profile)
			}

			if cfg.Rooms != nil {
				r.Get("/rooms/buildings", cfg.Rooms.Buildings)
				r.Get("/rooms/areas/{building}", cfg.Rooms.Areas)
				r.Get("/rooms/rooms/{area}", cfg.Rooms.Rooms)
				r.Post("/rooms", cfg.Rooms.Create)
			}

			if cfg.Bookings != nil {
				r.Get("/bookings", cfg.Bookings.List)
				r.Post("/bookings", cfg.Bookings.Create)
				r.Put("/bookings/{id}", cfg.Bookings.Decide)
				r.Delete("/bookings/{id}", cfg.Bookings.Cancel)
			}
		})
	})

	return r
}
