package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mockupgen/internal/http/handlers"
	"mockupgen/internal/middleware"
)

// NewRouter wires the middleware stack and the mockup routes.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
	)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		app.Routes(r)
	})

	return r
}
