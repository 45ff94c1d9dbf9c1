package models

import "time"

// LiveLocation is the most recent telemetry snapshot for one bus.
// Each update overwrites the prior snapshot (last-write-wins); no
// history is kept. Speed is in distance units per hour, Occupancy is a
// relative load figure.
type LiveLocation struct {
	BusID      string    `bson:"_id" json:"bus_id"`
	Lat        float64   `bson:"lat" json:"lat"`
	Lng        float64   `bson:"lng" json:"lng"`
	Speed      float64   `bson:"speed" json:"speed"`
	Occupancy  float64   `bson:"occupancy" json:"occupancy"`
	LastUpdate time.Time `bson:"last_update" json:"last_update"`
}
