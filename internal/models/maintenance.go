package models

import "time"

// MaintenanceStatus represents the state of a maintenance log.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "Pending"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceResolved   MaintenanceStatus = "Resolved"
)

// IsValidMaintenanceStatus checks if a maintenance status is one of the known values.
func IsValidMaintenanceStatus(s MaintenanceStatus) bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceResolved:
		return true
	default:
		return false
	}
}

// MaintenanceLog represents a reported issue on a bus.
// ReportedAt is the authoritative timestamp; ReportedOn is a derived
// display string in "YYYY-MM-DD HH:MM" form.
type MaintenanceLog struct {
	ID         string            `bson:"-" json:"id"`
	BusID      string            `bson:"bus_id" json:"bus_id"`
	Issue      string            `bson:"issue" json:"issue"`
	Status     MaintenanceStatus `bson:"status" json:"status"`
	ReportedAt time.Time         `bson:"reported_at" json:"reported_at"`
	ReportedOn string            `bson:"reported_on" json:"reported_on"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updated_at"`
}

// ReportedOnDisplay formats a report timestamp the way the dashboard shows it.
func ReportedOnDisplay(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
