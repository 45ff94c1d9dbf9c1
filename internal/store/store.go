package store

import (
	"context"
	"errors"

	"github.com/smartbus/fleet-admin/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for an identifier.
	// A malformed identifier is treated the same as a missing one.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable is returned when the backing store cannot be
	// reached or initialized.
	ErrUnavailable = errors.New("store unavailable")
)

// BusFields are the caller-supplied fields for creating a bus.
// Nil Status defaults to Active.
type BusFields struct {
	Number  string
	RouteID *string
	Status  *models.BusStatus
}

// BusPatch is a partial bus update; nil fields are left unchanged.
type BusPatch struct {
	Number  *string
	RouteID *string
	Status  *models.BusStatus
}

// DriverFields are the caller-supplied fields for creating a driver.
// Nil Attendance defaults to Absent.
type DriverFields struct {
	Name       string
	Phone      string
	Attendance *models.Attendance
}

// DriverPatch is a partial driver update; nil fields are left unchanged.
type DriverPatch struct {
	Name       *string
	Phone      *string
	Attendance *models.Attendance
}

// RouteFields are the caller-supplied fields for creating a route.
type RouteFields struct {
	Name         string
	StartStop    string
	EndStop      string
	FirstBus     *string
	LastBus      *string
	FrequencyMin *int
}

// RoutePatch is a partial route update; nil fields are left unchanged.
type RoutePatch struct {
	Name         *string
	StartStop    *string
	EndStop      *string
	FirstBus     *string
	LastBus      *string
	FrequencyMin *int
}

// MaintenanceFields are the caller-supplied fields for creating a
// maintenance log. Nil Status defaults to Pending; the report time is
// stamped by the store.
type MaintenanceFields struct {
	BusID  string
	Issue  string
	Status *models.MaintenanceStatus
}

// MaintenancePatch is a partial maintenance update; nil fields are left unchanged.
type MaintenancePatch struct {
	BusID  *string
	Issue  *string
	Status *models.MaintenanceStatus
}

// LiveLocationPatch carries a telemetry update for one bus. Lat and Lng
// are always written; nil Speed/Occupancy keep the existing values (or
// zero when the bus has no prior snapshot). The store refreshes the
// last-update timestamp on every call.
type LiveLocationPatch struct {
	Lat       float64
	Lng       float64
	Speed     *float64
	Occupancy *float64
}

// Store is the storage-agnostic fleet repository. Handlers depend only
// on this interface so the relational, document-store, and in-memory
// backends are interchangeable. Every call round-trips to the backing
// store; there is no in-process cache.
type Store interface {
	ListBuses(ctx context.Context) ([]models.Bus, error)
	GetBus(ctx context.Context, id string) (*models.Bus, error)
	CreateBus(ctx context.Context, f BusFields) (string, error)
	UpdateBus(ctx context.Context, id string, p BusPatch) error
	DeleteBus(ctx context.Context, id string) error

	ListDrivers(ctx context.Context) ([]models.Driver, error)
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	CreateDriver(ctx context.Context, f DriverFields) (string, error)
	UpdateDriver(ctx context.Context, id string, p DriverPatch) error
	DeleteDriver(ctx context.Context, id string) error

	ListRoutes(ctx context.Context) ([]models.Route, error)
	GetRoute(ctx context.Context, id string) (*models.Route, error)
	CreateRoute(ctx context.Context, f RouteFields) (string, error)
	UpdateRoute(ctx context.Context, id string, p RoutePatch) error
	DeleteRoute(ctx context.Context, id string) error

	ListMaintenance(ctx context.Context) ([]models.MaintenanceLog, error)
	GetMaintenance(ctx context.Context, id string) (*models.MaintenanceLog, error)
	CreateMaintenance(ctx context.Context, f MaintenanceFields) (string, error)
	UpdateMaintenance(ctx context.Context, id string, p MaintenancePatch) error
	DeleteMaintenance(ctx context.Context, id string) error

	ListLiveLocations(ctx context.Context) (map[string]models.LiveLocation, error)
	GetLiveLocation(ctx context.Context, busID string) (*models.LiveLocation, error)
	UpsertLiveLocation(ctx context.Context, busID string, p LiveLocationPatch) error

	AdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (string, error)

	Close(ctx context.Context) error
}
