package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/jkCXf9X4/ssp-airplane/internal/config"
	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
)

// WaypointComponent receives the waypoint table in the injected parameter
// set.
const WaypointComponent = "AutopilotModule"

// Result is the full outcome of one simulated scenario.
type Result struct {
	ScenarioPath       string
	TotalDistanceKM    float64
	EstimatedDurationS float64
	FuelCapacityKG     float64
	FuelBurnRateKGPS   float64
	FuelRequiredKG     float64
	FuelExhausted      bool
	MeetsRange         bool
	Simulated          bool
	ResultFile         string
	Metrics            *Metrics
	Requirements       []RequirementEvaluation
	ScenarioString     string
	ParameterSetPath   string
	PreparedSSPPath    string
	SummaryPath        string
}

// Options select the scenario and the simulation behavior.
type Options struct {
	ScenarioPath string
	SSPPath      string
	ResultsDir   string
	// ReuseResults skips the engine when the scenario's result CSV already
	// exists.
	ReuseResults bool
	// DryRun skips the engine entirely and falls back to analytic fuel
	// estimates.
	DryRun bool
	// StopTime overrides the computed engine stop time, seconds.
	StopTime float64
}

// WaypointString flattens local waypoints into the comma-separated x,y,z
// string handed to models that take the route as one parameter.
func WaypointString(points []geo.XYZ) string {
	values := make([]string, 0, len(points)*3)
	for _, p := range points {
		values = append(values,
			fmt.Sprintf("%.3f", p.XKM),
			fmt.Sprintf("%.3f", p.YKM),
			fmt.Sprintf("%.3f", p.ZKM))
	}
	return strings.Join(values, ",")
}

// BuildWaypointParameterSet emits the Waypoints parameter set: the first
// point initializes the environment position, the remaining points fill the
// autopilot's waypoint table, and waypointCount tells it how many entries are
// live.
func BuildWaypointParameterSet(points []geo.XYZ, component string) *ssp.ParameterSet {
	if component == "" {
		component = WaypointComponent
	}
	set := ssp.NewParameterSet("Waypoints", "")
	if len(points) > 0 {
		first := points[0]
		set.AddReal("Environment.initX_km", fmt.Sprintf("%.3f", first.XKM))
		set.AddReal("Environment.initY_km", fmt.Sprintf("%.3f", first.YKM))
		set.AddReal("Environment.initZ_km", fmt.Sprintf("%.3f", first.ZKM))
		for idx, p := range points[1:] {
			set.AddReal(fmt.Sprintf("%s.waypointX_km[%d]", component, idx+1), fmt.Sprintf("%.3f", p.XKM))
			set.AddReal(fmt.Sprintf("%s.waypointY_km[%d]", component, idx+1), fmt.Sprintf("%.3f", p.YKM))
			set.AddReal(fmt.Sprintf("%s.waypointZ_km[%d]", component, idx+1), fmt.Sprintf("%.3f", p.ZKM))
		}
	}
	set.AddInteger(component+".waypointCount", len(points)-1)
	return set
}

// EstimateDurationS is the analytic flight-time floor used when no recording
// exists: distance over cruise speed, never less than a minute.
func EstimateDurationS(distanceKM, cruiseSpeedMPS float64) float64 {
	speed := cruiseSpeedMPS
	if speed < 1.0 {
		speed = 1.0
	}
	duration := distanceKM * 1000.0 / speed
	if duration < 60.0 {
		return 60.0
	}
	return duration
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Simulate runs one scenario end to end: waypoint projection, parameter
// injection into the SSP, engine invocation, metric extraction, and
// requirement evaluation. The summary JSON lands next to the result CSV.
func Simulate(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	scn, err := Load(opts.ScenarioPath)
	if err != nil {
		return nil, err
	}
	localPoints := geo.ProjectLocalKM(scn.Points)
	scenarioString := WaypointString(localPoints)
	stem := stemOf(opts.ScenarioPath)

	if _, err := fsutil.EnsureDir(opts.ResultsDir); err != nil {
		return nil, err
	}
	resultFile := filepath.Join(opts.ResultsDir, stem+"_results.csv")
	waypointsFile := filepath.Join(opts.ResultsDir, stem+"_waypoints.txt")
	if err := os.WriteFile(waypointsFile, []byte(scenarioString), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", waypointsFile, err)
	}

	parameterSetPath := filepath.Join(opts.ResultsDir, stem+"_waypoints.ssv")
	ssvData, err := ssp.MarshalDocument(BuildWaypointParameterSet(localPoints, WaypointComponent))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(parameterSetPath, ssvData, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", parameterSetPath, err)
	}

	preparedSSP, err := ssp.PrepareWithParameters(ctx, opts.SSPPath, parameterSetPath, stem, opts.ResultsDir)
	if err != nil {
		return nil, err
	}

	totalDistance := scn.TotalDistanceKM
	if totalDistance == 0 {
		totalDistance = geo.LocalPathKM(localPoints)
	}
	if totalDistance == 0 {
		totalDistance = geo.PathDistanceKM(scn.Points)
	}

	cruiseSpeed := cfg.Fuel.CruiseSpeedMPS
	if scn.Overrides.CruiseSpeedMPS != 0 {
		cruiseSpeed = scn.Overrides.CruiseSpeedMPS
	}
	stopTime := opts.StopTime
	if stopTime == 0 {
		stopTime = EstimateDurationS(totalDistance, cruiseSpeed) * 1.1
		if stopTime < 120.0 {
			stopTime = 120.0
		}
	}

	haveResults := fileExists(resultFile)
	if !opts.ReuseResults || !haveResults {
		switch {
		case opts.DryRun:
			logger.Info("dry run, skipping simulator", "scenario", stem)
		default:
			if !fileExists(preparedSSP) {
				return nil, fmt.Errorf("prepared SSP file not found: %s", preparedSSP)
			}
			if err := RunSimulator(ctx, cfg.Simulator, preparedSSP, resultFile, stopTime); err != nil {
				return nil, err
			}
			haveResults = fileExists(resultFile)
		}
	}

	var metrics *Metrics
	if haveResults {
		metrics, err = SummarizeResults(resultFile, localPoints, cfg.Scenario.HitThresholdKM)
		if err != nil {
			return nil, err
		}
	} else {
		metrics = &Metrics{
			MinStructuralMargin: 1.0,
			Tracking:            TrackWaypoints(localPoints, nil, cfg.Scenario.HitThresholdKM),
		}
	}
	metrics.TotalDistanceKM = totalDistance
	metrics.StopTimeS = stopTime

	fuelCapacity := cfg.Fuel.CapacityKG
	if metrics.FuelInitialKG > 0 {
		fuelCapacity = metrics.FuelInitialKG
	}
	if scn.Overrides.FuelCapacityKG != 0 {
		fuelCapacity = scn.Overrides.FuelCapacityKG
	}
	burnRate := cfg.Fuel.BurnRateKGPS
	if metrics.DurationS > 0 {
		burnRate = metrics.FuelUsedKG / metrics.DurationS
	}
	if scn.Overrides.FuelBurnRateKGPS != 0 {
		burnRate = scn.Overrides.FuelBurnRateKGPS
	}
	estimatedDuration := metrics.DurationS
	if estimatedDuration == 0 {
		estimatedDuration = EstimateDurationS(totalDistance, cruiseSpeed)
	}
	fuelRequired := metrics.FuelUsedKG
	if fuelRequired == 0 {
		fuelRequired = estimatedDuration * burnRate
	}

	reserve := fuelCapacity * cfg.Fuel.ReserveFraction
	fuelFinal := metrics.FuelFinalKG
	if !haveResults {
		fuelFinal = fuelCapacity - fuelRequired
	}
	fuelExhausted := fuelFinal <= 0 || fuelFinal < reserve
	usable := fuelCapacity - reserve
	if usable < 0 {
		usable = 0
	}
	meetsRange := fuelRequired <= usable && !fuelExhausted

	requirements := EvaluateRequirements(metrics, fuelCapacity, cfg.Fuel.ReserveFraction)

	result := &Result{
		ScenarioPath:       opts.ScenarioPath,
		TotalDistanceKM:    totalDistance,
		EstimatedDurationS: estimatedDuration,
		FuelCapacityKG:     fuelCapacity,
		FuelBurnRateKGPS:   burnRate,
		FuelRequiredKG:     fuelRequired,
		FuelExhausted:      fuelExhausted,
		MeetsRange:         meetsRange,
		Simulated:          haveResults,
		ResultFile:         resultFile,
		Metrics:            metrics,
		Requirements:       requirements,
		ScenarioString:     scenarioString,
		ParameterSetPath:   parameterSetPath,
		PreparedSSPPath:    preparedSSP,
	}

	summaryName := scn.Name
	if summaryName == "" {
		summaryName = stem
	}
	summaryPath := filepath.Join(opts.ResultsDir, stem+"_summary.json")
	if err := writeSummary(summaryPath, summaryName, result); err != nil {
		return nil, err
	}
	result.SummaryPath = summaryPath
	return result, nil
}

// writeSummary emits the per-scenario JSON summary with stable key order so
// reruns diff cleanly.
func writeSummary(path, name string, r *Result) error {
	summary := orderedmap.New()
	summary.Set("scenario", name)
	summary.Set("distance_km", r.TotalDistanceKM)
	summary.Set("duration_s", r.EstimatedDurationS)
	summary.Set("fuel_capacity_kg", r.FuelCapacityKG)
	summary.Set("fuel_required_kg", r.FuelRequiredKG)
	summary.Set("scenario_string", r.ScenarioString)

	reqs := make([]any, 0, len(r.Requirements))
	for _, eval := range r.Requirements {
		entry := orderedmap.New()
		entry.Set("id", eval.Identifier)
		entry.Set("passed", eval.Passed)
		entry.Set("evidence", eval.Evidence)
		reqs = append(reqs, entry)
	}
	summary.Set("requirements", reqs)

	metrics := orderedmap.New()
	metrics.Set("max_mach", r.Metrics.MaxMach)
	metrics.Set("max_load_factor_g", r.Metrics.MaxLoadFactorG)
	metrics.Set("fuel_initial_kg", r.Metrics.FuelInitialKG)
	metrics.Set("fuel_final_kg", r.Metrics.FuelFinalKG)
	metrics.Set("fuel_used_kg", r.Metrics.FuelUsedKG)
	metrics.Set("stores_available", r.Metrics.StoresAvailable)
	metrics.Set("autopilot_limit_max", r.Metrics.AutopilotLimitMax)
	metrics.Set("thrust_kn_max", r.Metrics.ThrustKNMax)
	metrics.Set("mass_flow_kgps_max", r.Metrics.MassFlowKGPSMax)
	metrics.Set("control_surface_excursion_deg", r.Metrics.ControlSurfaceExcursionDeg)
	metrics.Set("waypoint_miss_max_km", jsonSafe(r.Metrics.Tracking.MissMaxKM))
	metrics.Set("waypoint_miss_avg_km", jsonSafe(r.Metrics.Tracking.MissAvgKM))
	metrics.Set("waypoint_hits", r.Metrics.Tracking.Hits)
	metrics.Set("waypoint_total", r.Metrics.Tracking.Total)
	metrics.Set("waypoint_within_threshold_fraction", r.Metrics.Tracking.WithinThresholdFraction)
	metrics.Set("waypoints_followed", r.Metrics.Tracking.Followed)
	summary.Set("metrics", metrics)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing summary %s: %w", path, err)
	}
	return nil
}

// jsonSafe maps NaN onto null; encoding/json refuses NaN floats.
func jsonSafe(v float64) any {
	if v != v {
		return nil
	}
	return v
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
