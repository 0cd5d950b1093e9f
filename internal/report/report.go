// Package report renders scenario results into an Excel workbook for review
// outside the pipeline.
package report

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/scenario"
)

const (
	metricsSheet      = "Metrics"
	requirementsSheet = "Requirements"
)

// Write produces a workbook with one metrics row and one requirements row
// per scenario result.
func Write(path string, results []*scenario.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(metricsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(requirementsSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	metricsHeader := []any{
		"Scenario", "Distance (km)", "Duration (s)", "Max Mach", "Max load factor (g)",
		"Min structural margin", "Fuel initial (kg)", "Fuel final (kg)", "Fuel used (kg)",
		"Fuel starved events", "Stores available", "Autopilot limit max",
		"Thrust max (kN)", "Mass flow max (kg/s)", "Control excursion (deg)",
		"Waypoint miss max (km)", "Waypoint miss avg (km)", "Waypoint hits",
		"Waypoint total", "Waypoints followed",
	}
	if err := f.SetSheetRow(metricsSheet, "A1", &metricsHeader); err != nil {
		return err
	}
	requirementsHeader := []any{"Scenario", "Requirement", "Passed", "Evidence"}
	if err := f.SetSheetRow(requirementsSheet, "A1", &requirementsHeader); err != nil {
		return err
	}

	metricsRow := 2
	requirementsRow := 2
	for _, result := range results {
		name := stem(result.ScenarioPath)
		m := result.Metrics
		row := []any{
			name, result.TotalDistanceKM, result.EstimatedDurationS, m.MaxMach, m.MaxLoadFactorG,
			m.MinStructuralMargin, m.FuelInitialKG, m.FuelFinalKG, m.FuelUsedKG,
			m.FuelStarvedEvents, m.StoresAvailable, m.AutopilotLimitMax,
			m.ThrustKNMax, m.MassFlowKGPSMax, m.ControlSurfaceExcursionDeg,
			cellSafe(m.Tracking.MissMaxKM), cellSafe(m.Tracking.MissAvgKM), m.Tracking.Hits,
			m.Tracking.Total, m.Tracking.Followed,
		}
		if err := f.SetSheetRow(metricsSheet, "A"+strconv.Itoa(metricsRow), &row); err != nil {
			return err
		}
		metricsRow++

		for _, eval := range result.Requirements {
			reqRow := []any{name, eval.Identifier, eval.Passed, eval.Evidence}
			if err := f.SetSheetRow(requirementsSheet, "A"+strconv.Itoa(requirementsRow), &reqRow); err != nil {
				return err
			}
			requirementsRow++
		}
	}

	if err := fsutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// cellSafe keeps NaN out of the workbook; excelize refuses it.
func cellSafe(v float64) any {
	if v != v {
		return ""
	}
	return v
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
