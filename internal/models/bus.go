package models

import "time"

// BusStatus represents the operational state of a bus.
type BusStatus string

const (
	BusActive    BusStatus = "Active"
	BusInDepot   BusStatus = "In Depot"
	BusBreakdown BusStatus = "Breakdown"
)

// IsValidBusStatus checks if a bus status is one of the known values.
func IsValidBusStatus(s BusStatus) bool {
	switch s {
	case BusActive, BusInDepot, BusBreakdown:
		return true
	default:
		return false
	}
}

// Bus represents a bus in the city fleet.
type Bus struct {
	ID        string    `bson:"-" json:"bus_id"`
	Number    string    `bson:"number" json:"number"`
	RouteID   string    `bson:"route_id,omitempty" json:"route_id,omitempty"`
	Status    BusStatus `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
