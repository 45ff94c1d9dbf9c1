package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/store"
)

// RouteHandler exposes admin CRUD over routes.
type RouteHandler struct {
	Store store.Store
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Store.ListRoutes(r.Context())
	if err != nil {
		log.WithError(err).Error("list routes failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	route, err := h.Store.GetRoute(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("get route failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name"`
		StartStop    string  `json:"start_stop"`
		EndStop      string  `json:"end_stop"`
		FirstBus     *string `json:"first_bus"`
		LastBus      *string `json:"last_bus"`
		FrequencyMin *int    `json:"frequency_min"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.StartStop == "" || req.EndStop == "" {
		writeError(w, http.StatusBadRequest, "name, start_stop, and end_stop are required")
		return
	}
	if req.FrequencyMin != nil && *req.FrequencyMin <= 0 {
		writeError(w, http.StatusBadRequest, "frequency_min must be positive")
		return
	}

	id, err := h.Store.CreateRoute(r.Context(), store.RouteFields{
		Name:         req.Name,
		StartStop:    req.StartStop,
		EndStop:      req.EndStop,
		FirstBus:     req.FirstBus,
		LastBus:      req.LastBus,
		FrequencyMin: req.FrequencyMin,
	})
	if err != nil {
		log.WithError(err).Error("create route failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "route_id": id})
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         *string `json:"name"`
		StartStop    *string `json:"start_stop"`
		EndStop      *string `json:"end_stop"`
		FirstBus     *string `json:"first_bus"`
		LastBus      *string `json:"last_bus"`
		FrequencyMin *int    `json:"frequency_min"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FrequencyMin != nil && *req.FrequencyMin <= 0 {
		writeError(w, http.StatusBadRequest, "frequency_min must be positive")
		return
	}

	err := h.Store.UpdateRoute(r.Context(), r.PathValue("id"), store.RoutePatch{
		Name:         req.Name,
		StartStop:    req.StartStop,
		EndStop:      req.EndStop,
		FirstBus:     req.FirstBus,
		LastBus:      req.LastBus,
		FrequencyMin: req.FrequencyMin,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("update route failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteRoute(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("delete route failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
