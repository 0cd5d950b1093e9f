package report_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jkCXf9X4/ssp-airplane/internal/report"
	"github.com/jkCXf9X4/ssp-airplane/internal/scenario"
)

func sampleResult(scenarioPath string) *scenario.Result {
	return &scenario.Result{
		ScenarioPath:       scenarioPath,
		TotalDistanceKM:    420.5,
		EstimatedDurationS: 1682.0,
		Metrics: &scenario.Metrics{
			MaxMach:                    2.1,
			MaxLoadFactorG:             9.4,
			MinStructuralMargin:        0.3,
			FuelInitialKG:              3100,
			FuelFinalKG:                2400,
			FuelUsedKG:                 700,
			StoresAvailable:            10,
			ThrustKNMax:                120,
			MassFlowKGPSMax:            2.4,
			ControlSurfaceExcursionDeg: 5,
			Tracking: scenario.TrackingMetrics{
				MissMaxKM: math.NaN(),
				MissAvgKM: math.NaN(),
				Total:     3,
			},
		},
		Requirements: []scenario.RequirementEvaluation{
			{Identifier: "REQ_Performance", Passed: true, Evidence: "mach=2.10, g-load=9.40"},
			{Identifier: "REQ_Fuel", Passed: false, Evidence: "final fuel=2400.0 kg, reserve=248.0 kg"},
		},
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "reports", "flight_report.xlsx")
	results := []*scenario.Result{sampleResult("scenarios/mission1.json")}

	// --- Act ---
	require.NoError(t, report.Write(path, results))

	// --- Assert ---
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Metrics", "Requirements"}, f.GetSheetList())

	rows, err := f.GetRows("Metrics")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Scenario", rows[0][0])
	require.Equal(t, "mission1", rows[1][0])
	require.Equal(t, "420.5", rows[1][1])
	require.Equal(t, "2.1", rows[1][3])
	require.Empty(t, rows[1][15], "NaN misses render as empty cells")

	reqRows, err := f.GetRows("Requirements")
	require.NoError(t, err)
	require.Len(t, reqRows, 3)
	require.Equal(t, []string{"mission1", "REQ_Performance", "TRUE", "mach=2.10, g-load=9.40"}, reqRows[1])
	require.Equal(t, "REQ_Fuel", reqRows[2][1])
	require.Equal(t, "FALSE", reqRows[2][2])
}

func TestWrite_MultipleScenarios(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "flight_report.xlsx")
	results := []*scenario.Result{
		sampleResult("mission1.json"),
		sampleResult("mission2.json"),
	}

	// --- Act ---
	require.NoError(t, report.Write(path, results))

	// --- Assert ---
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Metrics")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "mission1", rows[1][0])
	require.Equal(t, "mission2", rows[2][0])
}
