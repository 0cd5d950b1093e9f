// Package config loads the pipeline configuration. Every knob that used to be
// a hardcoded constant in the original tooling (repository paths, default
// experiment window, fuel model, scenario bounds, simulator executor settings,
// component-to-Modelica-class overrides) lives in one HCL file and is passed
// explicitly into the generators.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Paths locates the repository layout the pipeline reads from and writes to.
type Paths struct {
	ArchitectureDir string `hcl:"architecture_dir,optional"`
	GeneratedDir    string `hcl:"generated_dir,optional"`
	BuildDir        string `hcl:"build_dir,optional"`
	ModelsDir       string `hcl:"models_dir,optional"`
}

// Experiment is the SSD default experiment window in seconds.
type Experiment struct {
	StartTime float64 `hcl:"start_time,optional"`
	StopTime  float64 `hcl:"stop_time,optional"`
}

// Fuel is the analytic fuel model used for dry-run estimates and requirement
// evaluation.
type Fuel struct {
	CapacityKG      float64 `hcl:"capacity_kg,optional"`
	ReserveFraction float64 `hcl:"reserve_fraction,optional"`
	BurnRateKGPS    float64 `hcl:"burn_rate_kgps,optional"`
	CruiseSpeedMPS  float64 `hcl:"cruise_speed_mps,optional"`
}

// Scenario bounds the random flight-path generator.
type Scenario struct {
	MinDistanceKM  float64 `hcl:"min_distance_km,optional"`
	MaxDistanceKM  float64 `hcl:"max_distance_km,optional"`
	MinAltitudeM   float64 `hcl:"min_altitude_m,optional"`
	MaxAltitudeM   float64 `hcl:"max_altitude_m,optional"`
	HitThresholdKM float64 `hcl:"hit_threshold_km,optional"`
}

// Simulator configures the external co-simulation engine and the omc
// compiler. The worker-pool size is passed opaquely to the engine's internal
// solver; this repository never schedules anything itself.
type Simulator struct {
	Executable         string  `hcl:"executable,optional"`
	OMCPath            string  `hcl:"omc_path,optional"`
	Method             string  `hcl:"method,optional"`
	ThreadPoolWorkers  int     `hcl:"thread_pool_workers,optional"`
	Timestep           float64 `hcl:"timestep,optional"`
	Tolerance          float64 `hcl:"tolerance,optional"`
	RecordingInterval  float64 `hcl:"recording_interval,optional"`
	ForwardDerivatives bool    `hcl:"forward_derivatives,optional"`
	LogFMU             bool    `hcl:"log_fmu,optional"`
}

// Config is the resolved pipeline configuration.
type Config struct {
	Paths      Paths
	Experiment Experiment
	Fuel       Fuel
	Scenario   Scenario
	Simulator  Simulator

	// PackageOverride replaces the architecture's package name when building
	// the component-to-Modelica-class map. Empty keeps the parsed name.
	PackageOverride string

	// ClassOverrides maps component names to fully qualified Modelica
	// classes, overriding the <Package>.<Part> convention.
	ClassOverrides map[string]string
}

type fileSchema struct {
	Paths           *Paths         `hcl:"paths,block"`
	Experiment      *Experiment    `hcl:"experiment,block"`
	Fuel            *Fuel          `hcl:"fuel,block"`
	Scenario        *Scenario      `hcl:"scenario,block"`
	Simulator       *Simulator     `hcl:"simulator,block"`
	PackageOverride string         `hcl:"package,optional"`
	ModelClasses    hcl.Expression `hcl:"model_classes,optional"`
}

// Default returns the configuration used when no config file is provided.
func Default() *Config {
	return &Config{
		Paths: Paths{
			ArchitectureDir: "architecture",
			GeneratedDir:    "generated",
			BuildDir:        "build",
			ModelsDir:       "models",
		},
		Experiment: Experiment{StartTime: 0, StopTime: 3600},
		Fuel: Fuel{
			CapacityKG:      3100.0,
			ReserveFraction: 0.08,
			CruiseSpeedMPS:  250.0,
		},
		Scenario: Scenario{
			MinDistanceKM:  100.0,
			MaxDistanceKM:  1000.0,
			MinAltitudeM:   100.0,
			MaxAltitudeM:   10000.0,
			HitThresholdKM: 10.0,
		},
		Simulator: Simulator{
			Executable:         "ssp4sim",
			OMCPath:            "omc",
			Method:             "jacobi",
			ThreadPoolWorkers:  5,
			Timestep:           1.0,
			Tolerance:          1e-4,
			RecordingInterval:  0.25,
			ForwardDerivatives: true,
		},
		ClassOverrides: map[string]string{},
	}
}

// Load reads an HCL config file and overlays it on the defaults. An empty
// path returns the defaults unchanged; a missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", path, diags.Error())
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %s", path, diags.Error())
	}

	if schema.Paths != nil {
		overlayPaths(&cfg.Paths, schema.Paths)
	}
	if schema.Experiment != nil {
		if schema.Experiment.StopTime != 0 {
			cfg.Experiment.StopTime = schema.Experiment.StopTime
		}
		cfg.Experiment.StartTime = schema.Experiment.StartTime
	}
	if schema.Fuel != nil {
		overlayFuel(&cfg.Fuel, schema.Fuel)
	}
	if schema.Scenario != nil {
		overlayScenario(&cfg.Scenario, schema.Scenario)
	}
	if schema.Simulator != nil {
		overlaySimulator(&cfg.Simulator, schema.Simulator)
	}
	if schema.PackageOverride != "" {
		cfg.PackageOverride = schema.PackageOverride
	}

	classes, err := decodeClassMap(schema.ModelClasses)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	for component, class := range classes {
		cfg.ClassOverrides[component] = class
	}

	return cfg, nil
}

// decodeClassMap evaluates the model_classes attribute into a plain string
// map. The attribute is an HCL object expression, e.g.
// model_classes = { MissionComputer = "Aircraft.MissionComputer" }.
func decodeClassMap(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("model_classes: %s", diags.Error())
	}
	if value.IsNull() {
		return nil, nil
	}
	if !value.Type().IsObjectType() && !value.Type().IsMapType() {
		return nil, fmt.Errorf("model_classes must be an object of component = class pairs")
	}
	out := map[string]string{}
	for component, class := range value.AsValueMap() {
		if class.Type() != cty.String || class.IsNull() {
			return nil, fmt.Errorf("model_classes.%s must be a string", component)
		}
		out[component] = class.AsString()
	}
	return out, nil
}

func overlayPaths(dst, src *Paths) {
	if src.ArchitectureDir != "" {
		dst.ArchitectureDir = src.ArchitectureDir
	}
	if src.GeneratedDir != "" {
		dst.GeneratedDir = src.GeneratedDir
	}
	if src.BuildDir != "" {
		dst.BuildDir = src.BuildDir
	}
	if src.ModelsDir != "" {
		dst.ModelsDir = src.ModelsDir
	}
}

func overlayFuel(dst, src *Fuel) {
	if src.CapacityKG != 0 {
		dst.CapacityKG = src.CapacityKG
	}
	if src.ReserveFraction != 0 {
		dst.ReserveFraction = src.ReserveFraction
	}
	if src.BurnRateKGPS != 0 {
		dst.BurnRateKGPS = src.BurnRateKGPS
	}
	if src.CruiseSpeedMPS != 0 {
		dst.CruiseSpeedMPS = src.CruiseSpeedMPS
	}
}

func overlayScenario(dst, src *Scenario) {
	if src.MinDistanceKM != 0 {
		dst.MinDistanceKM = src.MinDistanceKM
	}
	if src.MaxDistanceKM != 0 {
		dst.MaxDistanceKM = src.MaxDistanceKM
	}
	if src.MinAltitudeM != 0 {
		dst.MinAltitudeM = src.MinAltitudeM
	}
	if src.MaxAltitudeM != 0 {
		dst.MaxAltitudeM = src.MaxAltitudeM
	}
	if src.HitThresholdKM != 0 {
		dst.HitThresholdKM = src.HitThresholdKM
	}
}

func overlaySimulator(dst, src *Simulator) {
	if src.Executable != "" {
		dst.Executable = src.Executable
	}
	if src.OMCPath != "" {
		dst.OMCPath = src.OMCPath
	}
	if src.Method != "" {
		dst.Method = src.Method
	}
	if src.ThreadPoolWorkers != 0 {
		dst.ThreadPoolWorkers = src.ThreadPoolWorkers
	}
	if src.Timestep != 0 {
		dst.Timestep = src.Timestep
	}
	if src.Tolerance != 0 {
		dst.Tolerance = src.Tolerance
	}
	if src.RecordingInterval != 0 {
		dst.RecordingInterval = src.RecordingInterval
	}
	if src.ForwardDerivatives {
		dst.ForwardDerivatives = true
	}
	if src.LogFMU {
		dst.LogFMU = true
	}
}
