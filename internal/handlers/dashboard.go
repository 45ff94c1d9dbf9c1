package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

// DashboardSummary aggregates fleet status counts for the admin panel.
type DashboardSummary struct {
	TotalBuses          int `json:"total_buses"`
	ActiveBuses         int `json:"active_buses"`
	InactiveBuses       int `json:"inactive_buses"`
	BreakdownBuses      int `json:"breakdown_buses"`
	TotalDrivers        int `json:"total_drivers"`
	PresentDrivers      int `json:"present_drivers"`
	AbsentDrivers       int `json:"absent_drivers"`
	TotalRoutes         int `json:"total_routes"`
	TotalMaintenance    int `json:"total_maintenance"`
	PendingMaintenance  int `json:"pending_maintenance"`
	ResolvedMaintenance int `json:"resolved_maintenance"`
}

// DashboardHandler serves aggregate fleet statistics.
type DashboardHandler struct {
	Store store.Store
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	buses, err := h.Store.ListBuses(ctx)
	if err != nil {
		log.WithError(err).Error("dashboard: list buses failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	drivers, err := h.Store.ListDrivers(ctx)
	if err != nil {
		log.WithError(err).Error("dashboard: list drivers failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	routes, err := h.Store.ListRoutes(ctx)
	if err != nil {
		log.WithError(err).Error("dashboard: list routes failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	logs, err := h.Store.ListMaintenance(ctx)
	if err != nil {
		log.WithError(err).Error("dashboard: list maintenance failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	summary := DashboardSummary{
		TotalBuses:       len(buses),
		TotalDrivers:     len(drivers),
		TotalRoutes:      len(routes),
		TotalMaintenance: len(logs),
	}
	for _, b := range buses {
		switch b.Status {
		case models.BusActive:
			summary.ActiveBuses++
		case models.BusInDepot:
			summary.InactiveBuses++
		case models.BusBreakdown:
			summary.BreakdownBuses++
		}
	}
	for _, d := range drivers {
		if d.Attendance == models.DriverPresent {
			summary.PresentDrivers++
		} else {
			summary.AbsentDrivers++
		}
	}
	for _, m := range logs {
		switch m.Status {
		case models.MaintenancePending:
			summary.PendingMaintenance++
		case models.MaintenanceResolved:
			summary.ResolvedMaintenance++
		}
	}

	writeJSON(w, http.StatusOK, summary)
}
