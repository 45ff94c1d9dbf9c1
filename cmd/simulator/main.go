package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// locationUpdate is the payload accepted by POST /api/public/location-update.
type locationUpdate struct {
	BusID     string  `json:"bus_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Occupancy float64 `json:"occupancy"`
}

type busListing struct {
	ID     string `json:"bus_id"`
	Number string `json:"number"`
}

// Bhavnagar city centre, the default depot for simulated buses.
var depot = struct{ Lat, Lng float64 }{21.7643, 72.1511}

func jitter(lat, lng, meters float64) (float64, float64) {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return lat + dLat, lng + dLng
}

func fetchBusIDs(apiURL string) ([]string, error) {
	resp, err := http.Get(apiURL + "/api/public/buses")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list buses returned %d: %s", resp.StatusCode, string(body))
	}

	var buses []busListing
	if err := json.NewDecoder(resp.Body).Decode(&buses); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(buses))
	for _, b := range buses {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func postUpdate(apiURL string, update locationUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(apiURL+"/api/public/location-update", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("location update returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// busState carries per-bus state between ticks so traces look like a
// vehicle in motion rather than independent random points.
type busState struct {
	id        string
	lat, lng  float64
	speed     float64
	occupancy float64
}

func (b *busState) tick() {
	// Drift position roughly in proportion to speed.
	b.lat, b.lng = jitter(b.lat, b.lng, b.speed*10+20)

	switch {
	case rand.Float64() < 0.05:
		// Occasionally stall in traffic or at a stop.
		b.speed = rand.Float64() * 5
	default:
		b.speed += (rand.Float64()*2 - 1) * 8
		if b.speed < 0 {
			b.speed = 0
		}
		if b.speed > 60 {
			b.speed = 60
		}
	}

	b.occupancy += (rand.Float64()*2 - 1) * 10
	if b.occupancy < 0 {
		b.occupancy = 0
	}
	if b.occupancy > 100 {
		b.occupancy = 100
	}
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	tickSeconds := 5
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tickSeconds = n
		}
	}

	ids, err := fetchBusIDs(apiURL)
	if err != nil {
		log.Fatalf("Failed to fetch bus list from %s: %v", apiURL, err)
	}
	if len(ids) == 0 {
		log.Fatal("No buses registered; create buses via the admin API first")
	}

	buses := make([]*busState, 0, len(ids))
	for _, id := range ids {
		lat, lng := jitter(depot.Lat, depot.Lng, 3000)
		buses = append(buses, &busState{
			id:        id,
			lat:       lat,
			lng:       lng,
			speed:     10 + rand.Float64()*30,
			occupancy: rand.Float64() * 60,
		})
	}

	log.WithFields(log.Fields{
		"api":   apiURL,
		"buses": len(buses),
		"tick":  tickSeconds,
	}).Info("Simulator started")

	ticker := time.NewTicker(time.Duration(tickSeconds) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for _, b := range buses {
			b.tick()
			err := postUpdate(apiURL, locationUpdate{
				BusID:     b.id,
				Lat:       b.lat,
				Lng:       b.lng,
				Speed:     math.Round(b.speed*10) / 10,
				Occupancy: math.Round(b.occupancy),
			})
			if err != nil {
				log.WithError(err).WithField("bus_id", b.id).Warn("Update failed")
				continue
			}
			log.WithFields(log.Fields{
				"bus_id":    b.id,
				"speed":     math.Round(b.speed*10) / 10,
				"occupancy": math.Round(b.occupancy),
			}).Debug("Update sent")
		}
	}
}
