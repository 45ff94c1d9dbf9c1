package handlers

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/smartbus/fleet-admin/internal/prediction"
)

// PredictionHandler serves bus-status estimates from live telemetry.
type PredictionHandler struct {
	Engine *prediction.Engine
}

func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	busID := r.URL.Query().Get("bus_id")
	if busID == "" {
		writeError(w, http.StatusBadRequest, "bus_id required")
		return
	}

	est, err := h.Engine.ForBus(r.Context(), busID, time.Now())
	if errors.Is(err, prediction.ErrNoData) {
		writeError(w, http.StatusNotFound, "no live location data for bus")
		return
	}
	if err != nil {
		log.WithError(err).Error("prediction failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, est)
}
