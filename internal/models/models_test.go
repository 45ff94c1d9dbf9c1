package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBusStatus(t *testing.T) {
	for _, s := range []BusStatus{BusActive, BusInDepot, BusBreakdown} {
		assert.True(t, IsValidBusStatus(s), "status %q", s)
	}
	for _, s := range []BusStatus{"", "active", "ACTIVE", "Retired", "Depot"} {
		assert.False(t, IsValidBusStatus(s), "status %q", s)
	}
}

func TestIsValidAttendance(t *testing.T) {
	assert.True(t, IsValidAttendance(DriverPresent))
	assert.True(t, IsValidAttendance(DriverAbsent))
	for _, a := range []Attendance{"", "present", "Late", "On Leave"} {
		assert.False(t, IsValidAttendance(a), "attendance %q", a)
	}
}

func TestIsValidMaintenanceStatus(t *testing.T) {
	for _, s := range []MaintenanceStatus{MaintenancePending, MaintenanceInProgress, MaintenanceResolved} {
		assert.True(t, IsValidMaintenanceStatus(s), "status %q", s)
	}
	for _, s := range []MaintenanceStatus{"", "pending", "Done", "Open"} {
		assert.False(t, IsValidMaintenanceStatus(s), "status %q", s)
	}
}

func TestReportedOnDisplay(t *testing.T) {
	ts := time.Date(2026, 8, 31, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "2026-08-31 09:05", ReportedOnDisplay(ts))
}
