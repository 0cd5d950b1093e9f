package scenario_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/config"
	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
	"github.com/jkCXf9X4/ssp-airplane/internal/scenario"
	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

func TestWaypointString(t *testing.T) {
	t.Parallel()

	points := []geo.XYZ{
		{XKM: 0, YKM: 0, ZKM: 0},
		{XKM: 1.2345, YKM: -2.5, ZKM: 8.1},
	}

	require.Equal(t, "0.000,0.000,0.000,1.234,-2.500,8.100", scenario.WaypointString(points))
	require.Empty(t, scenario.WaypointString(nil))
}

func TestBuildWaypointParameterSet(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	points := []geo.XYZ{
		{XKM: 0, YKM: 0, ZKM: 0},
		{XKM: 10, YKM: 5, ZKM: 8},
		{XKM: 20, YKM: 0, ZKM: 0},
	}

	// --- Act ---
	set := scenario.BuildWaypointParameterSet(points, "")

	// --- Assert ---
	require.Equal(t, "Waypoints", set.Name)
	require.Empty(t, set.Version)

	names := make([]string, 0, len(set.Parameters))
	for _, p := range set.Parameters {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{
		"Environment.initX_km",
		"Environment.initY_km",
		"Environment.initZ_km",
		"AutopilotModule.waypointX_km[1]",
		"AutopilotModule.waypointY_km[1]",
		"AutopilotModule.waypointZ_km[1]",
		"AutopilotModule.waypointX_km[2]",
		"AutopilotModule.waypointY_km[2]",
		"AutopilotModule.waypointZ_km[2]",
		"AutopilotModule.waypointCount",
	}, names)

	require.Equal(t, "10.000", set.Parameters[3].Value.Value)
	last := set.Parameters[len(set.Parameters)-1]
	require.Equal(t, "ssv:Integer", last.Value.XMLName.Local)
	require.Equal(t, "2", last.Value.Value)
}

func TestEstimateDurationS(t *testing.T) {
	t.Parallel()

	require.Equal(t, 4000.0, scenario.EstimateDurationS(1000, 250))
	require.Equal(t, 60.0, scenario.EstimateDurationS(1, 250), "short hops floor at a minute")
	require.Equal(t, 5000.0, scenario.EstimateDurationS(5, 0), "zero speed clamps to 1 m/s")
}

// simulateFixture writes a scenario file and a minimal base SSP for an
// end-to-end dry run.
func simulateFixture(t *testing.T) (scenarioPath, sspPath string) {
	t.Helper()
	dir := t.TempDir()

	scn := &scenario.Scenario{
		Points: []geo.LLA{
			{LatitudeDeg: 45, LongitudeDeg: 10},
			{LatitudeDeg: 45.5, LongitudeDeg: 10.2, AltitudeM: 8000},
			{LatitudeDeg: 46, LongitudeDeg: 10.5},
		},
		TotalDistanceKM: 120.0,
	}
	scenarioPath = filepath.Join(dir, "mission1.json")
	require.NoError(t, scn.Save(scenarioPath))

	attrs := sysml.NewAttributeSet()
	part := &sysml.PartDefinition{Name: "AutopilotModule", Attributes: attrs}
	arch := &sysml.Architecture{
		Package: "Aircraft",
		Parts:   map[string]*sysml.PartDefinition{"AutopilotModule": part},
	}
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{StopTime: 60})
	require.NoError(t, err)
	data, err := ssp.MarshalDocument(doc)
	require.NoError(t, err)
	ssdPath := filepath.Join(dir, "SystemStructure.ssd")
	require.NoError(t, os.WriteFile(ssdPath, data, 0o644))

	fmuDir := filepath.Join(dir, "fmus")
	require.NoError(t, os.MkdirAll(fmuDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fmuDir, "Aircraft_AutopilotModule.fmu"), []byte("fmu"), 0o644))

	sspPath = filepath.Join(dir, "aircraft.ssp")
	require.NoError(t, ssp.Package(context.Background(), ssp.PackageOptions{
		SSDPath:    ssdPath,
		FMUDir:     fmuDir,
		OutputPath: sspPath,
	}))
	return scenarioPath, sspPath
}

func TestSimulate_DryRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	scenarioPath, sspPath := simulateFixture(t)
	resultsDir := t.TempDir()
	cfg := config.Default()
	cfg.Fuel.BurnRateKGPS = 0.5

	// --- Act ---
	result, err := scenario.Simulate(context.Background(), cfg, scenario.Options{
		ScenarioPath: scenarioPath,
		SSPPath:      sspPath,
		ResultsDir:   resultsDir,
		DryRun:       true,
	})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, result.Simulated)
	require.Equal(t, 120.0, result.TotalDistanceKM)
	require.Equal(t, 3100.0, result.FuelCapacityKG)
	require.Greater(t, result.FuelRequiredKG, 0.0)
	require.False(t, result.FuelExhausted)
	require.True(t, result.MeetsRange)
	require.Len(t, result.Requirements, 5)
	require.Equal(t, 1.0, result.Metrics.MinStructuralMargin, "analytic fallback assumes an intact airframe")
	require.GreaterOrEqual(t, result.Metrics.StopTimeS, 120.0)

	// Artifacts land in the results directory.
	require.FileExists(t, filepath.Join(resultsDir, "mission1_waypoints.txt"))
	require.FileExists(t, filepath.Join(resultsDir, "mission1_waypoints.ssv"))
	require.FileExists(t, result.PreparedSSPPath)
	require.FileExists(t, result.SummaryPath)

	data, err := os.ReadFile(result.SummaryPath)
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Equal(t, "mission1", summary["scenario"])
	require.Equal(t, 120.0, summary["distance_km"])
	require.Contains(t, summary, "requirements")
	metrics, ok := summary["metrics"].(map[string]any)
	require.True(t, ok)
	require.Nil(t, metrics["waypoint_miss_max_km"], "no flown track yields a null miss")
}

func TestSimulate_MissingScenario(t *testing.T) {
	t.Parallel()

	_, err := scenario.Simulate(context.Background(), config.Default(), scenario.Options{
		ScenarioPath: filepath.Join(t.TempDir(), "absent.json"),
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "reading scenario")
}
