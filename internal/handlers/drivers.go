package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

// DriverHandler exposes admin CRUD over drivers, plus attendance marking.
type DriverHandler struct {
	Store store.Store
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Store.ListDrivers(r.Context())
	if err != nil {
		log.WithError(err).Error("list drivers failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.Store.GetDriver(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("get driver failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string             `json:"name"`
		Phone      string             `json:"phone"`
		Attendance *models.Attendance `json:"attendance"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	if req.Attendance != nil && !models.IsValidAttendance(*req.Attendance) {
		writeError(w, http.StatusBadRequest, "invalid attendance")
		return
	}

	id, err := h.Store.CreateDriver(r.Context(), store.DriverFields{
		Name:       req.Name,
		Phone:      req.Phone,
		Attendance: req.Attendance,
	})
	if err != nil {
		log.WithError(err).Error("create driver failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "driver_id": id})
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string            `json:"name"`
		Phone      *string            `json:"phone"`
		Attendance *models.Attendance `json:"attendance"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Attendance != nil && !models.IsValidAttendance(*req.Attendance) {
		writeError(w, http.StatusBadRequest, "invalid attendance")
		return
	}

	err := h.Store.UpdateDriver(r.Context(), r.PathValue("id"), store.DriverPatch{
		Name:       req.Name,
		Phone:      req.Phone,
		Attendance: req.Attendance,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("update driver failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteDriver(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("delete driver failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// MarkAttendance sets a driver's attendance for the day.
func (h *DriverHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Attendance `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidAttendance(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid attendance")
		return
	}

	err := h.Store.UpdateDriver(r.Context(), r.PathValue("id"), store.DriverPatch{
		Attendance: &req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("mark attendance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
