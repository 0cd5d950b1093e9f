// Package scenario generates randomized waypoint flight scenarios, drives the
// external co-simulation engine over a prepared SSP, and distills the
// recorded results into metrics and requirement verdicts.
package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
)

// Overrides tune the analytic fuel model per scenario.
type Overrides struct {
	CruiseSpeedMPS   float64 `json:"cruise_speed_mps,omitempty"`
	FuelCapacityKG   float64 `json:"fuel_capacity_kg,omitempty"`
	FuelBurnRateKGPS float64 `json:"fuel_burn_rate_kgps,omitempty"`
}

// Scenario is a flight plan of geodetic waypoints.
type Scenario struct {
	Name            string    `json:"name,omitempty"`
	Points          []geo.LLA `json:"points"`
	TotalDistanceKM float64   `json:"total_distance_km"`
	Overrides       Overrides `json:"simulation_overrides,omitempty"`
}

// GenerateOptions bound the random scenario generator.
type GenerateOptions struct {
	// Points is the waypoint count, 3 to 10. Zero picks randomly.
	Points        int
	MinDistanceKM float64
	MaxDistanceKM float64
	MinAltitudeM  float64
	MaxAltitudeM  float64
}

// Generate builds a random scenario: the total distance is drawn from the
// configured range and split into random positive segments, each leg heads
// off on a random bearing, and every waypoint except the endpoints gets a
// random cruise altitude. Takeoff and landing sit at sea level.
func Generate(rng *rand.Rand, opts GenerateOptions) (*Scenario, error) {
	numPoints := opts.Points
	if numPoints == 0 {
		numPoints = 3 + rng.Intn(8)
	}
	if numPoints < 3 || numPoints > 10 {
		return nil, fmt.Errorf("point count must be between 3 and 10, got %d", numPoints)
	}

	totalDistance := opts.MinDistanceKM + rng.Float64()*(opts.MaxDistanceKM-opts.MinDistanceKM)
	segments := randomSegments(rng, numPoints-1, totalDistance)

	start := geo.LLA{
		LatitudeDeg:  -45.0 + rng.Float64()*90.0,
		LongitudeDeg: -120.0 + rng.Float64()*240.0,
	}
	points := []geo.LLA{start}
	current := start
	for i, distance := range segments {
		bearing := rng.Float64() * 2 * math.Pi
		next := geo.DestinationPoint(current, distance, bearing)
		if i < len(segments)-1 {
			next.AltitudeM = opts.MinAltitudeM + rng.Float64()*(opts.MaxAltitudeM-opts.MinAltitudeM)
		}
		points = append(points, next)
		current = next
	}

	for i := range points {
		points[i].LatitudeDeg = roundTo(points[i].LatitudeDeg, 6)
		points[i].LongitudeDeg = roundTo(points[i].LongitudeDeg, 6)
		points[i].AltitudeM = roundTo(points[i].AltitudeM, 2)
	}
	return &Scenario{
		Points:          points,
		TotalDistanceKM: roundTo(geo.PathDistanceKM(points), 2),
	}, nil
}

// randomSegments splits total into count positive shares. The +0.1 floor on
// each weight keeps degenerate zero-length legs out.
func randomSegments(rng *rand.Rand, count int, total float64) []float64 {
	weights := make([]float64, count)
	sum := 0.0
	for i := range weights {
		weights[i] = rng.Float64() + 0.1
		sum += weights[i]
	}
	segments := make([]float64, count)
	for i, w := range weights {
		segments[i] = total * w / sum
	}
	return segments
}

// Validate rejects waypoints outside plausible geodetic bounds.
func (s *Scenario) Validate() error {
	if len(s.Points) == 0 {
		return fmt.Errorf("scenario has no points")
	}
	for i, p := range s.Points {
		if p.LatitudeDeg < -90 || p.LatitudeDeg > 90 || p.LongitudeDeg < -180 || p.LongitudeDeg > 180 {
			return fmt.Errorf("point %d has implausible lat/lon: %g, %g", i, p.LatitudeDeg, p.LongitudeDeg)
		}
		if p.AltitudeM < -500 || p.AltitudeM > 25000 {
			return fmt.Errorf("point %d has implausible altitude: %g", i, p.AltitudeM)
		}
	}
	return nil
}

// Load reads a scenario JSON file and validates its waypoints.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if len(s.Points) == 0 {
		return nil, fmt.Errorf("scenario file %s must contain a 'points' list", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the scenario as indented JSON.
func (s *Scenario) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := fsutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing scenario %s: %w", path, err)
	}
	return nil
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
