package handlers

import (
	"net/http"
	"time"

	"github.com/smartbus/fleet-admin/internal/auth"
	"github.com/smartbus/fleet-admin/internal/middleware"
	"github.com/smartbus/fleet-admin/internal/prediction"
	"github.com/smartbus/fleet-admin/internal/store"
)

// RouterOptions tunes cross-cutting behavior of the router.
type RouterOptions struct {
	RateLimitPerWindow int
	RateLimitWindow    time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. Handlers depend only on the Store interface, never on a
// concrete backend.
func NewRouter(st store.Store, authService *auth.Service, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	authMW := middleware.NewAuthMiddleware(authService)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAdmin(h)
	}

	if opts.RateLimitPerWindow <= 0 {
		opts.RateLimitPerWindow = 120
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	rateLimited := middleware.NewRateLimitMiddleware().
		RateLimit(opts.RateLimitPerWindow, opts.RateLimitWindow)

	authHandler := NewAuthHandler(authService, st)
	public := &PublicHandler{Store: st}
	buses := &BusHandler{Store: st}
	drivers := &DriverHandler{Store: st}
	routes := &RouteHandler{Store: st}
	maintenance := &MaintenanceHandler{Store: st}
	dashboard := &DashboardHandler{Store: st}
	predictions := &PredictionHandler{Engine: &prediction.Engine{Store: st}}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Public API for the mobile client.
	mux.HandleFunc("GET /api/public/buses", public.Buses)
	mux.HandleFunc("GET /api/public/routes", public.Routes)
	mux.HandleFunc("GET /api/public/drivers", public.Drivers)
	mux.Handle("POST /api/public/location-update", rateLimited(http.HandlerFunc(public.LocationUpdate)))

	// Admin API.
	mux.Handle("GET /api/dashboard", admin(dashboard.Summary))
	mux.Handle("GET /api/predictions", admin(predictions.Get))

	mux.Handle("GET /api/buses", admin(buses.List))
	mux.Handle("POST /api/buses", admin(buses.Create))
	mux.Handle("GET /api/buses/{id}", admin(buses.Get))
	mux.Handle("PUT /api/buses/{id}", admin(buses.Update))
	mux.Handle("DELETE /api/buses/{id}", admin(buses.Delete))

	mux.Handle("GET /api/drivers", admin(drivers.List))
	mux.Handle("POST /api/drivers", admin(drivers.Create))
	mux.Handle("GET /api/drivers/{id}", admin(drivers.Get))
	mux.Handle("PUT /api/drivers/{id}", admin(drivers.Update))
	mux.Handle("DELETE /api/drivers/{id}", admin(drivers.Delete))
	mux.Handle("POST /api/drivers/{id}/attendance", admin(drivers.MarkAttendance))

	mux.Handle("GET /api/routes", admin(routes.List))
	mux.Handle("POST /api/routes", admin(routes.Create))
	mux.Handle("GET /api/routes/{id}", admin(routes.Get))
	mux.Handle("PUT /api/routes/{id}", admin(routes.Update))
	mux.Handle("DELETE /api/routes/{id}", admin(routes.Delete))

	mux.Handle("GET /api/maintenance", admin(maintenance.List))
	mux.Handle("POST /api/maintenance", admin(maintenance.Create))
	mux.Handle("GET /api/maintenance/{id}", admin(maintenance.Get))
	mux.Handle("PUT /api/maintenance/{id}", admin(maintenance.Update))
	mux.Handle("DELETE /api/maintenance/{id}", admin(maintenance.Delete))

	return middleware.RequestLogger(mux)
}
