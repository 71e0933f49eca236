/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. requestLogger: Structured request logging via zap
  5. CORS:       Cross-origin requests for the frontend
  6. requireUser: Identity from the X-User-ID header (401 without)

IDENTITY:
  Authentication is handled upstream; this server trusts the
  X-User-ID header the session layer injects and scopes every query
  to that id. Requests without the header are rejected.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/timesheet"
)

// userKey carries the authenticated user id on the request context.
type contextKey string

const userKey contextKey = "timeclock.user"

// userFrom returns the id requireUser stashed on the context.
func userFrom(r *http.Request) timesheet.UserID {
	user, _ := r.Context().Value(userKey).(timesheet.UserID)
	return user
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log *zap.Logger, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		// Week routes
		r.Route("/weeks", func(r chi.Router) {
			r.Post("/", h.CreateWeek)
			r.Get("/", h.ListWeeks)
			r.Get("/{id}", h.GetWeek)
			r.Patch("/{id}", h.PatchWeek)
			r.Delete("/{id}", h.DeleteWeek)
			r.Put("/{id}/entry", h.UpsertEntry)
		})

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteEntry)
			r.Get("/{id}/details", h.EntryDetails)
		})

		// Roster routes
		r.Route("/rosters", func(r chi.Router) {
			r.Post("/", h.CreateRoster)
			r.Get("/", h.ListRosters)
			r.Get("/day", h.RosterDayOn)
			r.Get("/{id}", h.GetRoster)
			r.Patch("/{id}/day", h.PatchRosterDay)
			r.Delete("/{id}", h.DeleteRoster)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/years", h.HolidayYears)
			r.Get("/lookup", h.HolidayLookup)
			r.Get("/{year:[0-9]{4}}", h.ListHolidays)
			r.Patch("/{id}", h.PatchHoliday)
		})

		// Clock routes
		r.Route("/clock", func(r chi.Router) {
			r.Post("/in", h.ClockIn)
			r.Post("/out", h.ClockOut)
			r.Post("/break", h.ToggleBreak)
			r.Post("/confirm", h.ConfirmExtra)
			r.Get("/today", h.Today)
		})

		// Report routes
		r.Get("/reports/week/current", h.CurrentWeekReport)
		r.Get("/dashboard", h.Dashboard)
	})

	// Liveness probe, outside the identity wall.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requireUser rejects requests without an X-User-ID header and stashes
// the id on the context for handlers.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get("X-User-ID")
		if user == "" {
			writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, timesheet.UserID(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
