package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartbus/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the document-store Store implementation. Entities live
// in five top-level collections keyed by generated ObjectIDs, except
// live_locations which is keyed directly by bus identifier. List order
// is store-defined.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects to MongoDB and verifies the connection with a
// ping. A failure here is fatal for the process: the document backend
// requires upfront credential validation.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w: %v", ErrUnavailable, err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

const (
	collBuses         = "buses"
	collDrivers       = "drivers"
	collRoutes        = "routes"
	collMaintenance   = "maintenance_logs"
	collLiveLocations = "live_locations"
	collAdmins        = "admins"
)

type busDoc struct {
	ID  primitive.ObjectID `bson:"_id,omitempty"`
	Bus models.Bus         `bson:",inline"`
}

type driverDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Driver models.Driver      `bson:",inline"`
}

type routeDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Route models.Route       `bson:",inline"`
}

type maintenanceDoc struct {
	ID  primitive.ObjectID    `bson:"_id,omitempty"`
	Log models.MaintenanceLog `bson:",inline"`
}

type adminDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Admin models.Admin       `bson:",inline"`
}

func (s *MongoStore) ListBuses(ctx context.Context) ([]models.Bus, error) {
	cursor, err := s.db.Collection(collBuses).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	var docs []busDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list buses: decode: %w", err)
	}
	out := make([]models.Bus, 0, len(docs))
	for _, d := range docs {
		d.Bus.ID = d.ID.Hex()
		out = append(out, d.Bus)
	}
	return out, nil
}

func (s *MongoStore) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d busDoc
	err = s.db.Collection(collBuses).FindOne(ctx, bson.M{"_id": objectID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bus: %w", err)
	}
	d.Bus.ID = d.ID.Hex()
	return &d.Bus, nil
}

func (s *MongoStore) CreateBus(ctx context.Context, f BusFields) (string, error) {
	now := time.Now()
	b := models.Bus{
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
	res, err := s.db.Collection(collBuses).InsertOne(ctx, busDoc{Bus: b})
	if err != nil {
		return "", fmt.Errorf("create bus: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) UpdateBus(ctx context.Context, id string, p BusPatch) error {
	set := bson.M{}
	if p.Number != nil {
		set["number"] = *p.Number
	}
	if p.RouteID != nil {
		set["route_id"] = *p.RouteID
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return s.applySet(ctx, collBuses, id, set)
}

func (s *MongoStore) DeleteBus(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collBuses, id)
}

func (s *MongoStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	cursor, err := s.db.Collection(collDrivers).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	var docs []driverDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list drivers: decode: %w", err)
	}
	out := make([]models.Driver, 0, len(docs))
	for _, d := range docs {
		d.Driver.ID = d.ID.Hex()
		out = append(out, d.Driver)
	}
	return out, nil
}

func (s *MongoStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d driverDoc
	err = s.db.Collection(collDrivers).FindOne(ctx, bson.M{"_id": objectID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	d.Driver.ID = d.ID.Hex()
	return &d.Driver, nil
}

func (s *MongoStore) CreateDriver(ctx context.Context, f DriverFields) (string, error) {
	now := time.Now()
	d := models.Driver{
		Name:       f.Name,
		Phone:      f.Phone,
		Attendance: models.DriverAbsent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if f.Attendance != nil {
		d.Attendance = *f.Attendance
	}
	res, err := s.db.Collection(collDrivers).InsertOne(ctx, driverDoc{Driver: d})
	if err != nil {
		return "", fmt.Errorf("create driver: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) UpdateDriver(ctx context.Context, id string, p DriverPatch) error {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Attendance != nil {
		set["attendance"] = *p.Attendance
	}
	return s.applySet(ctx, collDrivers, id, set)
}

func (s *MongoStore) DeleteDriver(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collDrivers, id)
}

func (s *MongoStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	cursor, err := s.db.Collection(collRoutes).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	var docs []routeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list routes: decode: %w", err)
	}
	out := make([]models.Route, 0, len(docs))
	for _, d := range docs {
		d.Route.ID = d.ID.Hex()
		out = append(out, d.Route)
	}
	return out, nil
}

func (s *MongoStore) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d routeDoc
	err = s.db.Collection(collRoutes).FindOne(ctx, bson.M{"_id": objectID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	d.Route.ID = d.ID.Hex()
	return &d.Route, nil
}

func (s *MongoStore) CreateRoute(ctx context.Context, f RouteFields) (string, error) {
	now := time.Now()
	r := models.Route{
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
	res, err := s.db.Collection(collRoutes).InsertOne(ctx, routeDoc{Route: r})
	if err != nil {
		return "", fmt.Errorf("create route: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) UpdateRoute(ctx context.Context, id string, p RoutePatch) error {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.StartStop != nil {
		set["start_stop"] = *p.StartStop
	}
	if p.EndStop != nil {
		set["end_stop"] = *p.EndStop
	}
	if p.FirstBus != nil {
		set["first_bus"] = *p.FirstBus
	}
	if p.LastBus != nil {
		set["last_bus"] = *p.LastBus
	}
	if p.FrequencyMin != nil {
		set["frequency_min"] = *p.FrequencyMin
	}
	return s.applySet(ctx, collRoutes, id, set)
}

func (s *MongoStore) DeleteRoute(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collRoutes, id)
}

func (s *MongoStore) ListMaintenance(ctx context.Context) ([]models.MaintenanceLog, error) {
	cursor, err := s.db.Collection(collMaintenance).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	var docs []maintenanceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list maintenance: decode: %w", err)
	}
	out := make([]models.MaintenanceLog, 0, len(docs))
	for _, d := range docs {
		d.Log.ID = d.ID.Hex()
		out = append(out, d.Log)
	}
	return out, nil
}

func (s *MongoStore) GetMaintenance(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d maintenanceDoc
	err = s.db.Collection(collMaintenance).FindOne(ctx, bson.M{"_id": objectID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance: %w", err)
	}
	d.Log.ID = d.ID.Hex()
	return &d.Log, nil
}

func (s *MongoStore) CreateMaintenance(ctx context.Context, f MaintenanceFields) (string, error) {
	now := time.Now()
	m := models.MaintenanceLog{
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
	res, err := s.db.Collection(collMaintenance).InsertOne(ctx, maintenanceDoc{Log: m})
	if err != nil {
		return "", fmt.Errorf("create maintenance: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) UpdateMaintenance(ctx context.Context, id string, p MaintenancePatch) error {
	set := bson.M{}
	if p.BusID != nil {
		set["bus_id"] = *p.BusID
	}
	if p.Issue != nil {
		set["issue"] = *p.Issue
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return s.applySet(ctx, collMaintenance, id, set)
}

func (s *MongoStore) DeleteMaintenance(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collMaintenance, id)
}

func (s *MongoStore) ListLiveLocations(ctx context.Context) (map[string]models.LiveLocation, error) {
	cursor, err := s.db.Collection(collLiveLocations).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list live locations: %w", err)
	}
	var docs []models.LiveLocation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list live locations: decode: %w", err)
	}
	out := make(map[string]models.LiveLocation, len(docs))
	for _, loc := range docs {
		out[loc.BusID] = loc
	}
	return out, nil
}

func (s *MongoStore) GetLiveLocation(ctx context.Context, busID string) (*models.LiveLocation, error) {
	var loc models.LiveLocation
	err := s.db.Collection(collLiveLocations).FindOne(ctx, bson.M{"_id": busID}).Decode(&loc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get live location: %w", err)
	}
	return &loc, nil
}

func (s *MongoStore) UpsertLiveLocation(ctx context.Context, busID string, p LiveLocationPatch) error {
	set := bson.M{
		"lat":         p.Lat,
		"lng":         p.Lng,
		"last_update": time.Now(),
	}
	if p.Speed != nil {
		set["speed"] = *p.Speed
	}
	if p.Occupancy != nil {
		set["occupancy"] = *p.Occupancy
	}
	// $setOnInsert fills the fields the patch left out so a first
	// snapshot is always complete.
	onInsert := bson.M{}
	if p.Speed == nil {
		onInsert["speed"] = 0.0
	}
	if p.Occupancy == nil {
		onInsert["occupancy"] = 0.0
	}
	update := bson.M{"$set": set}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}
	_, err := s.db.Collection(collLiveLocations).UpdateOne(ctx,
		bson.M{"_id": busID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert live location: %w", err)
	}
	return nil
}

func (s *MongoStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var d adminDoc
	err := s.db.Collection(collAdmins).FindOne(ctx, bson.M{"username": username}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin by username: %w", err)
	}
	d.Admin.ID = d.ID.Hex()
	return &d.Admin, nil
}

func (s *MongoStore) CreateAdmin(ctx context.Context, username, passwordHash string) (string, error) {
	a := models.Admin{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	res, err := s.db.Collection(collAdmins).InsertOne(ctx, adminDoc{Admin: a})
	if err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) applySet(ctx context.Context, coll, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set["updated_at"] = time.Now()
	res, err := s.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", coll, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
