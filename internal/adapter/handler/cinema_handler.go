package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/core/services"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
	"github.com/srgjo27/cinema_client/internal/platform/logger"
	"github.com/srgjo27/cinema_client/internal/platform/metrics"
)

// CinemaHandler exposes one Store over HTTP. The store holds a single signed-in
// user, so every caller of the gateway acts as that user; it is meant to be
// bound to loopback for a single local client.
type CinemaHandler struct {
	store *services.Store
	guard *services.Guard
	log   *logrus.Entry
}

func NewCinemaHandler(store *services.Store, guard *services.Guard, log *logrus.Logger) *CinemaHandler {
	return &CinemaHandler{
		store: store,
		guard: guard,
		log:   logger.Component(log, "handler"),
	}
}

var (
	public    = services.RouteMeta{}
	authOnly  = services.RouteMeta{RequiresAuth: true}
	adminOnly = services.RouteMeta{RequiresAdmin: true}
)

func (h *CinemaHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return metrics.InstrumentHandler(routePattern, next)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.With(h.guarded("home", public)).Get("/catalog", h.GetCatalog)
	r.With(h.guarded("login", public)).Post("/login", h.Login)
	r.With(h.guarded("register", public)).Post("/register", h.Register)
	r.Post("/logout", h.Logout)
	r.With(h.guarded("reserve", public)).Post("/reservations", h.CreateReservation)
	r.With(h.guarded("profile", authOnly)).Get("/profile/reservations", h.GetReservationHistory)

	r.Route("/backoffice", func(r chi.Router) {
		r.Use(h.guarded("backoffice", adminOnly))

		r.Post("/films", h.CreateFilm)
		r.Put("/films/{id}", h.UpdateFilm)
		r.Delete("/films/{id}", h.DeleteFilm)

		r.Post("/sessions", h.CreateSession)
		r.Put("/sessions/{id}", h.UpdateSession)
		r.Delete("/sessions/{id}", h.DeleteSession)

		r.Get("/services", h.GetServices)
		r.Put("/services/{resource}", h.SetServiceStatus)

		r.Get("/users", h.GetUsers)
		r.Get("/reservations", h.GetReservations)
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// guarded runs the navigation guard before the route and sends refused
// requests to the login page with the original destination attached.
func (h *CinemaHandler) guarded(name string, meta services.RouteMeta) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := h.guard.Before(services.Route{
				Name:     name,
				FullPath: r.URL.RequestURI(),
				Meta:     meta,
			})

			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect.Location(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *CinemaHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return false
	}
	return true
}

func (h *CinemaHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		seatsErr *domain.InsufficientSeatsError
		httpErr  *httpclient.HTTPError
	)

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &seatsErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     err.Error(),
			"remaining": seatsErr.Remaining,
		})
	case errors.Is(err, domain.ErrInvalidSeats):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrServiceDown):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.As(err, &httpErr):
		status := httpErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": httpErr.Message})
	default:
		h.log.WithField("path", r.URL.Path).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
