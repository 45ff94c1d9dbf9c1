package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/smartbus/fleet-admin/internal/models"
)

// PostgresStore is the relational Store implementation. Identifiers are
// BIGSERIAL keys rendered as decimal strings; a non-numeric identifier
// is treated as not found. Reference columns (bus.route_id,
// maintenance_log.bus_id) are unconstrained text: deletes never cascade
// and orphaned references are tolerated, matching the document backend.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to PostgreSQL, verifies the connection, and
// ensures the schema exists. A failure here is fatal for the process:
// no requests can be served without the store.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w: %v", ErrUnavailable, err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			start_stop TEXT NOT NULL,
			end_stop TEXT NOT NULL,
			first_bus TEXT NOT NULL DEFAULT '',
			last_bus TEXT NOT NULL DEFAULT '',
			frequency_min INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS buses (
			id BIGSERIAL PRIMARY KEY,
			number TEXT NOT NULL,
			route_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			attendance TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS maintenance_logs (
			id BIGSERIAL PRIMARY KEY,
			bus_id TEXT NOT NULL,
			issue TEXT NOT NULL,
			status TEXT NOT NULL,
			reported_at TIMESTAMPTZ NOT NULL,
			reported_on TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS live_locations (
			bus_id TEXT PRIMARY KEY,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			speed DOUBLE PRECISION NOT NULL DEFAULT 0,
			occupancy DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_update TIMESTAMPTZ NOT NULL
		)`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

// parseSerialID converts a string identifier to its serial key. A
// malformed identifier simply means the record cannot exist.
func parseSerialID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatSerialID(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (s *PostgresStore) ListBuses(ctx context.Context) ([]models.Bus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, number, route_id, status, created_at, updated_at FROM buses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	defer rows.Close()

	var out []models.Bus
	for rows.Next() {
		var b models.Bus
		var id int64
		if err := rows.Scan(&id, &b.Number, &b.RouteID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list buses: scan row: %w", err)
		}
		b.ID = formatSerialID(id)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	n, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var b models.Bus
	err := s.db.QueryRowContext(ctx,
		`SELECT number, route_id, status, created_at, updated_at FROM buses WHERE id = $1`, n).
		Scan(&b.Number, &b.RouteID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bus: %w", err)
	}
	b.ID = id
	return &b, nil
}

func (s *PostgresStore) CreateBus(ctx context.Context, f BusFields) (string, error) {
	status := models.BusActive
	if f.Status != nil {
		status = *f.Status
	}
	routeID := ""
	if f.RouteID != nil {
		routeID = *f.RouteID
	}
	now := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO buses (number, route_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		f.Number, routeID, status, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create bus: %w", err)
	}
	return formatSerialID(id), nil
}

func (s *PostgresStore) UpdateBus(ctx context.Context, id string, p BusPatch) error {
	set, args := patchClauses(nil, nil,
		clause{"number", p.Number},
		clause{"route_id", p.RouteID},
		clause{"status", p.Status})
	return s.execUpdate(ctx, "buses", id, set, args)
}

func (s *PostgresStore) DeleteBus(ctx context.Context, id string) error {
	return s.execDelete(ctx, "buses", id)
}

func (s *PostgresStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, attendance, created_at, updated_at FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		var id int64
		if err := rows.Scan(&id, &d.Name, &d.Phone, &d.Attendance, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		d.ID = formatSerialID(id)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	n, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var d models.Driver
	err := s.db.QueryRowContext(ctx,
		`SELECT name, phone, attendance, created_at, updated_at FROM drivers WHERE id = $1`, n).
		Scan(&d.Name, &d.Phone, &d.Attendance, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	d.ID = id
	return &d, nil
}

func (s *PostgresStore) CreateDriver(ctx context.Context, f DriverFields) (string, error) {
	attendance := models.DriverAbsent
	if f.Attendance != nil {
		attendance = *f.Attendance
	}
	now := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO drivers (name, phone, attendance, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		f.Name, f.Phone, attendance, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create driver: %w", err)
	}
	return formatSerialID(id), nil
}

func (s *PostgresStore) UpdateDriver(ctx context.Context, id string, p DriverPatch) error {
	set, args := patchClauses(nil, nil,
		clause{"name", p.Name},
		clause{"phone", p.Phone},
		clause{"attendance", p.Attendance})
	return s.execUpdate(ctx, "drivers", id, set, args)
}

func (s *PostgresStore) DeleteDriver(ctx context.Context, id string) error {
	return s.execDelete(ctx, "drivers", id)
}

func (s *PostgresStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_stop, end_stop, first_bus, last_bus, frequency_min, created_at, updated_at
		 FROM routes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var out []models.Route
	for rows.Next() {
		var r models.Route
		var id int64
		if err := rows.Scan(&id, &r.Name, &r.StartStop, &r.EndStop, &r.FirstBus, &r.LastBus,
			&r.FrequencyMin, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		r.ID = formatSerialID(id)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	n, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var r models.Route
	err := s.db.QueryRowContext(ctx,
		`SELECT name, start_stop, end_stop, first_bus, last_bus, frequency_min, created_at, updated_at
		 FROM routes WHERE id = $1`, n).
		Scan(&r.Name, &r.StartStop, &r.EndStop, &r.FirstBus, &r.LastBus,
			&r.FrequencyMin, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	r.ID = id
	return &r, nil
}

func (s *PostgresStore) CreateRoute(ctx context.Context, f RouteFields) (string, error) {
	firstBus, lastBus := "", ""
	if f.FirstBus != nil {
		firstBus = *f.FirstBus
	}
	if f.LastBus != nil {
		lastBus = *f.LastBus
	}
	freq := 0
	if f.FrequencyMin != nil {
		freq = *f.FrequencyMin
	}
	now := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO routes (name, start_stop, end_stop, first_bus, last_bus, frequency_min, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		f.Name, f.StartStop, f.EndStop, firstBus, lastBus, freq, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create route: %w", err)
	}
	return formatSerialID(id), nil
}

func (s *PostgresStore) UpdateRoute(ctx context.Context, id string, p RoutePatch) error {
	set, args := patchClauses(nil, nil,
		clause{"name", p.Name},
		clause{"start_stop", p.StartStop},
		clause{"end_stop", p.EndStop},
		clause{"first_bus", p.FirstBus},
		clause{"last_bus", p.LastBus},
		clause{"frequency_min", p.FrequencyMin})
	return s.execUpdate(ctx, "routes", id, set, args)
}

func (s *PostgresStore) DeleteRoute(ctx context.Context, id string) error {
	return s.execDelete(ctx, "routes", id)
}

func (s *PostgresStore) ListMaintenance(ctx context.Context) ([]models.MaintenanceLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bus_id, issue, status, reported_at, reported_on, updated_at
		 FROM maintenance_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	defer rows.Close()

	var out []models.MaintenanceLog
	for rows.Next() {
		var m models.MaintenanceLog
		var id int64
		if err := rows.Scan(&id, &m.BusID, &m.Issue, &m.Status, &m.ReportedAt, &m.ReportedOn, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list maintenance: scan row: %w", err)
		}
		m.ID = formatSerialID(id)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetMaintenance(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	n, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var m models.MaintenanceLog
	err := s.db.QueryRowContext(ctx,
		`SELECT bus_id, issue, status, reported_at, reported_on, updated_at
		 FROM maintenance_logs WHERE id = $1`, n).
		Scan(&m.BusID, &m.Issue, &m.Status, &m.ReportedAt, &m.ReportedOn, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance: %w", err)
	}
	m.ID = id
	return &m, nil
}

func (s *PostgresStore) CreateMaintenance(ctx context.Context, f MaintenanceFields) (string, error) {
	status := models.MaintenancePending
	if f.Status != nil {
		status = *f.Status
	}
	now := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO maintenance_logs (bus_id, issue, status, reported_at, reported_on, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $4) RETURNING id`,
		f.BusID, f.Issue, status, now, models.ReportedOnDisplay(now)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create maintenance: %w", err)
	}
	return formatSerialID(id), nil
}

func (s *PostgresStore) UpdateMaintenance(ctx context.Context, id string, p MaintenancePatch) error {
	set, args := patchClauses(nil, nil,
		clause{"bus_id", p.BusID},
		clause{"issue", p.Issue},
		clause{"status", p.Status})
	return s.execUpdate(ctx, "maintenance_logs", id, set, args)
}

func (s *PostgresStore) DeleteMaintenance(ctx context.Context, id string) error {
	return s.execDelete(ctx, "maintenance_logs", id)
}

func (s *PostgresStore) ListLiveLocations(ctx context.Context) (map[string]models.LiveLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bus_id, lat, lng, speed, occupancy, last_update FROM live_locations`)
	if err != nil {
		return nil, fmt.Errorf("list live locations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.LiveLocation)
	for rows.Next() {
		var loc models.LiveLocation
		if err := rows.Scan(&loc.BusID, &loc.Lat, &loc.Lng, &loc.Speed, &loc.Occupancy, &loc.LastUpdate); err != nil {
			return nil, fmt.Errorf("list live locations: scan row: %w", err)
		}
		out[loc.BusID] = loc
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLiveLocation(ctx context.Context, busID string) (*models.LiveLocation, error) {
	var loc models.LiveLocation
	err := s.db.QueryRowContext(ctx,
		`SELECT bus_id, lat, lng, speed, occupancy, last_update FROM live_locations WHERE bus_id = $1`, busID).
		Scan(&loc.BusID, &loc.Lat, &loc.Lng, &loc.Speed, &loc.Occupancy, &loc.LastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get live location: %w", err)
	}
	return &loc, nil
}

func (s *PostgresStore) UpsertLiveLocation(ctx context.Context, busID string, p LiveLocationPatch) error {
	// Nil speed/occupancy keep the stored value on conflict, or fall
	// back to zero on first insert.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO live_locations (bus_id, lat, lng, speed, occupancy, last_update)
		 VALUES ($1, $2, $3, COALESCE($4, 0), COALESCE($5, 0), $6)
		 ON CONFLICT (bus_id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			speed = COALESCE($4, live_locations.speed),
			occupancy = COALESCE($5, live_locations.occupancy),
			last_update = EXCLUDED.last_update`,
		busID, p.Lat, p.Lng, p.Speed, p.Occupancy, time.Now())
	if err != nil {
		return fmt.Errorf("upsert live location: %w", err)
	}
	return nil
}

func (s *PostgresStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username).
		Scan(&id, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin by username: %w", err)
	}
	a.ID = formatSerialID(id)
	return &a, nil
}

func (s *PostgresStore) CreateAdmin(ctx context.Context, username, passwordHash string) (string, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	return formatSerialID(id), nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// clause pairs a column name with an optional new value.
type clause struct {
	column string
	value  any
}

// patchClauses builds SET fragments for the non-nil clause values.
// Values are typed pointers; a nil pointer means "leave unchanged".
func patchClauses(set []string, args []any, clauses ...clause) ([]string, []any) {
	for _, c := range clauses {
		switch v := c.value.(type) {
		case *string:
			if v != nil {
				args = append(args, *v)
				set = append(set, fmt.Sprintf("%s = $%d", c.column, len(args)))
			}
		case *int:
			if v != nil {
				args = append(args, *v)
				set = append(set, fmt.Sprintf("%s = $%d", c.column, len(args)))
			}
		case *models.BusStatus:
			if v != nil {
				args = append(args, *v)
				set = append(set, fmt.Sprintf("%s = $%d", c.column, len(args)))
			}
		case *models.Attendance:
			if v != nil {
				args = append(args, *v)
				set = append(set, fmt.Sprintf("%s = $%d", c.column, len(args)))
			}
		case *models.MaintenanceStatus:
			if v != nil {
				args = append(args, *v)
				set = append(set, fmt.Sprintf("%s = $%d", c.column, len(args)))
			}
		}
	}
	return set, args
}

func (s *PostgresStore) execUpdate(ctx context.Context, table, id string, set []string, args []any) error {
	n, ok := parseSerialID(id)
	if !ok {
		return ErrNotFound
	}
	args = append(args, time.Now())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, n)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(set, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: rows affected: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) execDelete(ctx context.Context, table, id string) error {
	n, ok := parseSerialID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), n)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: rows affected: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
