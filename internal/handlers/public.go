package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/store"
)

// PublicHandler serves the unauthenticated API consumed by the mobile
// client: read-only fleet listings and the location-ingest endpoint.
type PublicHandler struct {
	Store store.Store
}

func (h *PublicHandler) Buses(w http.ResponseWriter, r *http.Request) {
	buses, err := h.Store.ListBuses(r.Context())
	if err != nil {
		log.WithError(err).Error("public list buses failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, buses)
}

func (h *PublicHandler) Routes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Store.ListRoutes(r.Context())
	if err != nil {
		log.WithError(err).Error("public list routes failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (h *PublicHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Store.ListDrivers(r.Context())
	if err != nil {
		log.WithError(err).Error("public list drivers failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

// LocationUpdate ingests a telemetry snapshot from a bus-mounted
// device. Concurrent updates for the same bus race with last-write-wins
// semantics; there is no ordering guarantee beyond the stored timestamp.
func (h *PublicHandler) LocationUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusID     string   `json:"bus_id"`
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Speed     *float64 `json:"speed"`
		Occupancy *float64 `json:"occupancy"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BusID == "" || req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "bus_id, lat, and lng are required")
		return
	}
	if req.Speed != nil && *req.Speed < 0 {
		writeError(w, http.StatusBadRequest, "speed must be non-negative")
		return
	}
	if req.Occupancy != nil && *req.Occupancy < 0 {
		writeError(w, http.StatusBadRequest, "occupancy must be non-negative")
		return
	}

	err := h.Store.UpsertLiveLocation(r.Context(), req.BusID, store.LiveLocationPatch{
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Speed:     req.Speed,
		Occupancy: req.Occupancy,
	})
	if err != nil {
		log.WithError(err).Error("location update failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"message":   "Location updated",
		"bus_id":    req.BusID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
