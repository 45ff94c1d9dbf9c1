package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

// MaintenanceHandler exposes admin CRUD over maintenance logs.
type MaintenanceHandler struct {
	Store store.Store
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Store.ListMaintenance(r.Context())
	if err != nil {
		log.WithError(err).Error("list maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.GetMaintenance(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("get maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusID  string                    `json:"bus_id"`
		Issue  string                    `json:"issue"`
		Status *models.MaintenanceStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BusID == "" || req.Issue == "" {
		writeError(w, http.StatusBadRequest, "bus_id and issue are required")
		return
	}
	if req.Status != nil && !models.IsValidMaintenanceStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	// The bus reference is not checked against the buses collection;
	// orphan references are tolerated.
	id, err := h.Store.CreateMaintenance(r.Context(), store.MaintenanceFields{
		BusID:  req.BusID,
		Issue:  req.Issue,
		Status: req.Status,
	})
	if err != nil {
		log.WithError(err).Error("create maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusID  *string                   `json:"bus_id"`
		Issue  *string                   `json:"issue"`
		Status *models.MaintenanceStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status != nil && !models.IsValidMaintenanceStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err := h.Store.UpdateMaintenance(r.Context(), r.PathValue("id"), store.MaintenancePatch{
		BusID:  req.BusID,
		Issue:  req.Issue,
		Status: req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("update maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteMaintenance(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("delete maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
