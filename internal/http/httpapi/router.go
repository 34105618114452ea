package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dashboard/internal/guard"
	"dashboard/internal/http/handlers"
	"dashboard/internal/metrics"
	"dashboard/internal/middleware"
)

// Deps is everything the router wires together.
type Deps struct {
	App        *handlers.App
	Logger     zerolog.Logger
	Workspaces middleware.WorkspaceOptions
	// LoginRatePerMin throttles login and register posts per client IP; 0 disables.
	LoginRatePerMin int
	DefaultLocale   string
	Country         middleware.CountryLookup
}

func NewRouter(d Deps) http.Handler {
	app := d.App
	if d.Workspaces.Loading == nil {
		d.Workspaces.Loading = http.HandlerFunc(app.Loading)
	}
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(d.Logger),
		chimw.Recoverer,
		metrics.Instrument,
	)

	r.Get("/healthz", app.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.I18N(d.DefaultLocale, d.Country),
			middleware.Workspaces(d.Workspaces),
		)
		r.NotFound(app.NotFound)

		throttle := middleware.RateLimit(d.LoginRatePerMin, time.Minute, http.HandlerFunc(app.TooManyAttempts))

		// Public
		r.Get("/", app.Home)
		r.Get("/login", app.LoginForm)
		r.With(throttle).Post("/login", app.Login)
		r.Get("/register", app.RegisterForm)
		r.With(throttle).Post("/register", app.Register)
		r.Post("/logout", app.Logout)

		// Signed-in only
		r.Group(func(r chi.Router) {
			r.Use(guard.Require(middleware.SessionSnapshot, guard.Options{
				LoginPath: "/login",
				Loading:   http.HandlerFunc(app.Loading),
			}))
			r.Get("/dashboard", app.Dashboard)
			r.Get("/pricing", app.Pricing)
			r.Post("/pricing", app.SelectPlan)
			r.Get("/payment", app.PaymentForm)
			r.Post("/payment", app.Pay)
			r.Get("/content", app.ContentForm)
			r.Post("/content", app.GenerateContent)
			r.Get("/summarizer", app.SummarizerForm)
			r.Post("/summarizer", app.Summarize)
			r.Get("/correct", app.CorrectForm)
			r.Post("/correct", app.Correct)
		})
	})

	return r
}
