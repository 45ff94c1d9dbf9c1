package models

import "time"

// Route represents a bus route between two stops.
// FirstBus and LastBus are times of day in "HH:MM" form.
type Route struct {
	ID           string    `bson:"-" json:"route_id"`
	Name         string    `bson:"name" json:"name"`
	StartStop    string    `bson:"start_stop" json:"start_stop"`
	EndStop      string    `bson:"end_stop" json:"end_stop"`
	FirstBus     string    `bson:"first_bus,omitempty" json:"first_bus,omitempty"`
	LastBus      string    `bson:"last_bus,omitempty" json:"last_bus,omitempty"`
	FrequencyMin int       `bson:"frequency_min,omitempty" json:"frequency_min,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
