package models

import "time"

// Attendance represents a driver's attendance state for the day.
type Attendance string

const (
	DriverPresent Attendance = "Present"
	DriverAbsent  Attendance = "Absent"
)

// IsValidAttendance checks if an attendance value is one of the known values.
func IsValidAttendance(a Attendance) bool {
	return a == DriverPresent || a == DriverAbsent
}

// Driver represents a bus driver.
type Driver struct {
	ID         string     `bson:"-" json:"driver_id"`
	Name       string     `bson:"name" json:"name"`
	Phone      string     `bson:"phone" json:"phone"`
	Attendance Attendance `bson:"attendance" json:"attendance"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}
