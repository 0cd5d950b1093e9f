package scenario

import (
	"encoding/csv"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
)

// resultTable is a column-indexed view of a recorded result CSV.
type resultTable struct {
	columns map[string][]string
}

// readResultTable loads a result CSV keyed by header name. Rows shorter than
// the header are tolerated; the recorder truncates the last line when a run
// is cut short.
func readResultTable(path string) (*resultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading results %s: %w", path, err)
	}
	if len(records) == 0 {
		return &resultTable{columns: map[string][]string{}}, nil
	}

	header := records[0]
	columns := make(map[string][]string, len(header))
	for col, name := range header {
		values := make([]string, 0, len(records)-1)
		for _, row := range records[1:] {
			if col < len(row) {
				values = append(values, row[col])
			} else {
				values = append(values, "")
			}
		}
		columns[strings.TrimSpace(name)] = values
	}
	return &resultTable{columns: columns}, nil
}

// series returns the parseable float values of a column, skipping blanks and
// unparseable cells. Thousands separators are stripped on a second attempt.
func (t *resultTable) series(name string) []float64 {
	var values []float64
	for _, raw := range t.columns[name] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v, err = strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				continue
			}
		}
		values = append(values, v)
	}
	return values
}

// firstSeries returns the first named column that yields any values.
func (t *resultTable) firstSeries(names ...string) []float64 {
	for _, name := range names {
		if values := t.series(name); len(values) > 0 {
			return values
		}
	}
	return nil
}

func span(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

func maxOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Metrics condenses one simulation run into the figures the requirement
// predicates and reports consume.
type Metrics struct {
	DurationS                  float64 `json:"duration_s"`
	MaxMach                    float64 `json:"max_mach"`
	MaxLoadFactorG             float64 `json:"max_load_factor_g"`
	MinStructuralMargin        float64 `json:"min_structural_margin"`
	FuelInitialKG              float64 `json:"fuel_initial_kg"`
	FuelFinalKG                float64 `json:"fuel_final_kg"`
	FuelUsedKG                 float64 `json:"fuel_used_kg"`
	FuelLevelNormMin           float64 `json:"fuel_level_norm_min"`
	FuelStarvedEvents          int     `json:"fuel_starved_events"`
	StoresAvailable            int     `json:"stores_available"`
	AutopilotLimitMax          int     `json:"autopilot_limit_max"`
	EnergyStateMin             float64 `json:"energy_state_min"`
	ThrustKNMax                float64 `json:"thrust_kn_max"`
	MassFlowKGPSMax            float64 `json:"mass_flow_kgps_max"`
	ControlSurfaceExcursionDeg float64 `json:"control_surface_excursion_deg"`

	Tracking TrackingMetrics `json:"tracking"`

	TotalDistanceKM float64 `json:"total_distance_km"`
	StopTimeS       float64 `json:"stop_time_s"`
}

// SummarizeResults reads a recorded CSV and reduces every monitored channel
// to its scalar metric. Alternate column names cover older recordings where
// signals lived on different buses.
func SummarizeResults(resultFile string, waypoints []geo.XYZ, hitThresholdKM float64) (*Metrics, error) {
	table, err := readResultTable(resultFile)
	if err != nil {
		return nil, err
	}

	timeSeries := table.series("time")
	machSeries := table.firstSeries(
		"StructuralLoadsAndPerformanceMonitor.performanceStatus.mach_estimate",
		"AirDataAndInertialSuite.airDataOut.mach_number",
	)
	gSeries := table.series("StructuralLoadsAndPerformanceMonitor.performanceStatus.load_factor_g")
	structuralMargin := table.series("StructuralLoadsAndPerformanceMonitor.performanceStatus.structural_margin_norm")
	fuelRemaining := table.series("TurbofanPropulsion.fuelStatus.fuel_remaining_kg")
	fuelLevelNorm := table.series("TurbofanPropulsion.fuelStatus.fuel_level_norm")
	fuelStarved := table.series("TurbofanPropulsion.fuelStatus.fuel_starved")
	storesMasks := table.series("StoresManagementSystem.storesTelemetry.store_present_mask")
	autopilotLimits := table.firstSeries(
		"StructuralLoadsAndPerformanceMonitor.performanceStatus.autopilot_limit_code",
		"AutopilotModule.performanceStatus.autopilot_limit_code",
	)
	energyState := table.series("AutopilotModule.feedbackBus.energy_state_norm")
	thrustKN := table.series("TurbofanPropulsion.thrustOut.thrust_kn")
	massFlow := table.firstSeries(
		"TurbofanPropulsion.thrustOut.mass_flow_kgps",
		"TurbofanPropulsion.fuelFlow.mass_flow_kgps",
	)
	excursions := []float64{
		span(table.series("AdaptiveWingSystem.controlSurfaces.elevator_deg")),
		span(table.series("AdaptiveWingSystem.controlSurfaces.flaperon_deg")),
		span(table.series("FlyByWireController.commandBus.elevator_deg")),
	}

	storesAvailable := 0
	for _, mask := range storesMasks {
		if n := bits.OnesCount64(uint64(int64(mask))); n > storesAvailable {
			storesAvailable = n
		}
	}

	starvedEvents := 0
	for _, v := range fuelStarved {
		if v > 0.5 {
			starvedEvents++
		}
	}

	fuelInitial := 0.0
	for _, v := range fuelRemaining {
		if v > 0 {
			fuelInitial = v
			break
		}
	}
	if fuelInitial == 0 && len(fuelRemaining) > 0 {
		fuelInitial = fuelRemaining[0]
	}
	fuelFinal := 0.0
	for i := len(fuelRemaining) - 1; i >= 0; i-- {
		if fuelRemaining[i] >= 0 {
			fuelFinal = fuelRemaining[i]
			break
		}
	}

	m := &Metrics{
		MaxMach:                    maxOr(machSeries, 0),
		MaxLoadFactorG:             maxOr(gSeries, 0),
		MinStructuralMargin:        minOr(structuralMargin, 1.0),
		FuelInitialKG:              fuelInitial,
		FuelFinalKG:                fuelFinal,
		FuelLevelNormMin:           minOr(fuelLevelNorm, 0),
		FuelStarvedEvents:          starvedEvents,
		StoresAvailable:            storesAvailable,
		AutopilotLimitMax:          int(maxOr(autopilotLimits, 0)),
		EnergyStateMin:             minOr(energyState, 0),
		ThrustKNMax:                maxOr(thrustKN, 0),
		MassFlowKGPSMax:            maxOr(massFlow, 0),
		ControlSurfaceExcursionDeg: maxOr(excursions, 0),
	}
	if len(timeSeries) > 0 {
		m.DurationS = timeSeries[len(timeSeries)-1]
	}
	if used := m.FuelInitialKG - m.FuelFinalKG; used > 0 {
		m.FuelUsedKG = used
	}

	track := extractTrackPoints(table)
	m.Tracking = TrackWaypoints(waypoints, track, hitThresholdKM)
	return m, nil
}

// extractTrackPoints recovers the flown path in the local frame, preferring
// the environment's position channels, then the mission computer's, then a
// projection of legacy geodetic recordings.
func extractTrackPoints(table *resultTable) []geo.XYZ {
	xs := table.firstSeries("Environment.location.x_km", "MissionComputer.locationXYZ.x_km")
	ys := table.firstSeries("Environment.location.y_km", "MissionComputer.locationXYZ.y_km")
	zs := table.firstSeries("Environment.location.z_km", "MissionComputer.locationXYZ.z_km")

	if len(xs) == 0 || len(ys) == 0 {
		lats := table.series("MissionComputer.locationLLA.latitude_deg")
		lons := table.series("MissionComputer.locationLLA.longitude_deg")
		alts := table.series("MissionComputer.locationLLA.altitude_m")
		if len(lats) > 0 && len(lons) > 0 {
			n := len(lats)
			if len(lons) < n {
				n = len(lons)
			}
			points := make([]geo.LLA, n)
			for i := 0; i < n; i++ {
				points[i] = geo.LLA{LatitudeDeg: lats[i], LongitudeDeg: lons[i]}
				if i < len(alts) {
					points[i].AltitudeM = alts[i]
				}
			}
			return geo.ProjectLocalKM(points)
		}
	}

	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if len(zs) < n {
		n = len(zs)
	}
	track := make([]geo.XYZ, n)
	for i := 0; i < n; i++ {
		track[i] = geo.XYZ{XKM: xs[i], YKM: ys[i], ZKM: zs[i]}
	}
	return track
}
