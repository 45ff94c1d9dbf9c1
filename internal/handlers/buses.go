package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

// BusHandler exposes admin CRUD over buses.
type BusHandler struct {
	Store store.Store
}

func (h *BusHandler) List(w http.ResponseWriter, r *http.Request) {
	buses, err := h.Store.ListBuses(r.Context())
	if err != nil {
		log.WithError(err).Error("list buses failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, buses)
}

func (h *BusHandler) Get(w http.ResponseWriter, r *http.Request) {
	bus, err := h.Store.GetBus(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("get bus failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, bus)
}

func (h *BusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number  string            `json:"number"`
		RouteID *string           `json:"route_id"`
		Status  *models.BusStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Number == "" {
		writeError(w, http.StatusBadRequest, "number is required")
		return
	}
	if req.Status != nil && !models.IsValidBusStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	id, err := h.Store.CreateBus(r.Context(), store.BusFields{
		Number:  req.Number,
		RouteID: req.RouteID,
		Status:  req.Status,
	})
	if err != nil {
		log.WithError(err).Error("create bus failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bus_id": id})
}

func (h *BusHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number  *string           `json:"number"`
		RouteID *string           `json:"route_id"`
		Status  *models.BusStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status != nil && !models.IsValidBusStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err := h.Store.UpdateBus(r.Context(), r.PathValue("id"), store.BusPatch{
		Number:  req.Number,
		RouteID: req.RouteID,
		Status:  req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("update bus failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *BusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	// Maintenance logs referencing this bus are left in place; see
	// the dangling-reference note in DESIGN.md.
	err := h.Store.DeleteBus(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("delete bus failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
