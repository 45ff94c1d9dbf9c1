package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smartbus/fleet-admin/internal/models"
)

// MemoryStore is an in-memory Store implementation used for tests and
// single-process demo runs. Records are returned in insertion order.
type MemoryStore struct {
	mu sync.RWMutex

	buses       map[string]models.Bus
	busOrder    []string
	drivers     map[string]models.Driver
	driverOrder []string
	routes      map[string]models.Route
	routeOrder  []string
	logs        map[string]models.MaintenanceLog
	logOrder    []string
	locations   map[string]models.LiveLocation
	admins      map[string]models.Admin
	adminOrder  []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buses:     make(map[string]models.Bus),
		drivers:   make(map[string]models.Driver),
		routes:    make(map[string]models.Route),
		logs:      make(map[string]models.MaintenanceLog),
		locations: make(map[string]models.LiveLocation),
		admins:    make(map[string]models.Admin),
	}
}

func (s *MemoryStore) ListBuses(ctx context.Context) ([]models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Bus, 0, len(s.busOrder))
	for _, id := range s.busOrder {
		out = append(out, s.buses[id])
	}
	return out, nil
}

func (s *MemoryStore) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) CreateBus(ctx context.Context, f BusFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	b := models.Bus{
		ID:        uuid.NewString(),
		Number:    f.Number,
		Status:    models.BusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.RouteID != nil {
		b.RouteID = *f.RouteID
	}
	if f.Status != nil {
		b.Status = *f.Status
	}
	s.buses[b.ID] = b
	s.busOrder = append(s.busOrder, b.ID)
	return b.ID, nil
}

func (s *MemoryStore) UpdateBus(ctx context.Context, id string, p BusPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buses[id]
	if !ok {
		return ErrNotFound
	}
	if p.Number != nil {
		b.Number = *p.Number
	}
	if p.RouteID != nil {
		b.RouteID = *p.RouteID
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	b.UpdatedAt = time.Now()
	s.buses[id] = b
	return nil
}

func (s *MemoryStore) DeleteBus(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buses[id]; !ok {
		return ErrNotFound
	}
	delete(s.buses, id)
	s.busOrder = removeID(s.busOrder, id)
	return nil
}

func (s *MemoryStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Driver, 0, len(s.driverOrder))
	for _, id := range s.driverOrder {
		out = append(out, s.drivers[id])
	}
	return out, nil
}

func (s *MemoryStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) CreateDriver(ctx context.Context, f DriverFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	d := models.Driver{
		ID:         uuid.NewString(),
		Name:       f.Name,
		Phone:      f.Phone,
		Attendance: models.DriverAbsent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if f.Attendance != nil {
		d.Attendance = *f.Attendance
	}
	s.drivers[d.ID] = d
	s.driverOrder = append(s.driverOrder, d.ID)
	return d.ID, nil
}

func (s *MemoryStore) UpdateDriver(ctx context.Context, id string, p DriverPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return ErrNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Attendance != nil {
		d.Attendance = *p.Attendance
	}
	d.UpdatedAt = time.Now()
	s.drivers[id] = d
	return nil
}

func (s *MemoryStore) DeleteDriver(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(s.drivers, id)
	s.driverOrder = removeID(s.driverOrder, id)
	return nil
}

func (s *MemoryStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Route, 0, len(s.routeOrder))
	for _, id := range s.routeOrder {
		out = append(out, s.routes[id])
	}
	return out, nil
}

func (s *MemoryStore) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) CreateRoute(ctx context.Context, f RouteFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	r := models.Route{
		ID:        uuid.NewString(),
		Name:      f.Name,
		StartStop: f.StartStop,
		EndStop:   f.EndStop,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.FirstBus != nil {
		r.FirstBus = *f.FirstBus
	}
	if f.LastBus != nil {
		r.LastBus = *f.LastBus
	}
	if f.FrequencyMin != nil {
		r.FrequencyMin = *f.FrequencyMin
	}
	s.routes[r.ID] = r
	s.routeOrder = append(s.routeOrder, r.ID)
	return r.ID, nil
}

func (s *MemoryStore) UpdateRoute(ctx context.Context, id string, p RoutePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return ErrNotFound
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.StartStop != nil {
		r.StartStop = *p.StartStop
	}
	if p.EndStop != nil {
		r.EndStop = *p.EndStop
	}
	if p.FirstBus != nil {
		r.FirstBus = *p.FirstBus
	}
	if p.LastBus != nil {
		r.LastBus = *p.LastBus
	}
	if p.FrequencyMin != nil {
		r.FrequencyMin = *p.FrequencyMin
	}
	r.UpdatedAt = time.Now()
	s.routes[id] = r
	return nil
}

func (s *MemoryStore) DeleteRoute(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[id]; !ok {
		return ErrNotFound
	}
	delete(s.routes, id)
	s.routeOrder = removeID(s.routeOrder, id)
	return nil
}

func (s *MemoryStore) ListMaintenance(ctx context.Context) ([]models.MaintenanceLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MaintenanceLog, 0, len(s.logOrder))
	for _, id := range s.logOrder {
		out = append(out, s.logs[id])
	}
	return out, nil
}

func (s *MemoryStore) GetMaintenance(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) CreateMaintenance(ctx context.Context, f MaintenanceFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	m := models.MaintenanceLog{
		ID:         uuid.NewString(),
		BusID:      f.BusID,
		Issue:      f.Issue,
		Status:     models.MaintenancePending,
		ReportedAt: now,
		ReportedOn: models.ReportedOnDisplay(now),
		UpdatedAt:  now,
	}
	if f.Status != nil {
		m.Status = *f.Status
	}
	s.logs[m.ID] = m
	s.logOrder = append(s.logOrder, m.ID)
	return m.ID, nil
}

func (s *MemoryStore) UpdateMaintenance(ctx context.Context, id string, p MaintenancePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.logs[id]
	if !ok {
		return ErrNotFound
	}
	if p.BusID != nil {
		m.BusID = *p.BusID
	}
	if p.Issue != nil {
		m.Issue = *p.Issue
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	m.UpdatedAt = time.Now()
	s.logs[id] = m
	return nil
}

func (s *MemoryStore) DeleteMaintenance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[id]; !ok {
		return ErrNotFound
	}
	delete(s.logs, id)
	s.logOrder = removeID(s.logOrder, id)
	return nil
}

func (s *MemoryStore) ListLiveLocations(ctx context.Context) (map[string]models.LiveLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.LiveLocation, len(s.locations))
	for id, loc := range s.locations {
		out[id] = loc
	}
	return out, nil
}

func (s *MemoryStore) GetLiveLocation(ctx context.Context, busID string) (*models.LiveLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[busID]
	if !ok {
		return nil, ErrNotFound
	}
	return &loc, nil
}

func (s *MemoryStore) UpsertLiveLocation(ctx context.Context, busID string, p LiveLocationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := s.locations[busID] // zero value when the bus has no prior snapshot
	loc.BusID = busID
	loc.Lat = p.Lat
	loc.Lng = p.Lng
	if p.Speed != nil {
		loc.Speed = *p.Speed
	}
	if p.Occupancy != nil {
		loc.Occupancy = *p.Occupancy
	}
	loc.LastUpdate = time.Now()
	s.locations[busID] = loc
	return nil
}

func (s *MemoryStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.adminOrder {
		if a := s.admins[id]; a.Username == username {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateAdmin(ctx context.Context, username, passwordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.admins[a.ID] = a
	s.adminOrder = append(s.adminOrder, a.ID)
	return a.ID, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
