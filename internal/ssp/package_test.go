package ssp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/archive"
	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
)

// buildTestSSP packages a minimal valid .ssp with one FMU and returns its
// path.
func buildTestSSP(t *testing.T) string {
	t.Helper()

	arch := twoPartArchitecture(t)
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{StopTime: 60})
	require.NoError(t, err)
	data, err := ssp.MarshalDocument(doc)
	require.NoError(t, err)

	dir := t.TempDir()
	ssdPath := filepath.Join(dir, "SystemStructure.ssd")
	require.NoError(t, os.WriteFile(ssdPath, data, 0o644))

	fmuDir := filepath.Join(dir, "fmus")
	require.NoError(t, os.MkdirAll(fmuDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fmuDir, "Aircraft_MissionComputer.fmu"), []byte("fmu"), 0o644))

	out := filepath.Join(dir, "aircraft.ssp")
	require.NoError(t, ssp.Package(context.Background(), ssp.PackageOptions{
		SSDPath:    ssdPath,
		FMUDir:     fmuDir,
		OutputPath: out,
	}))
	return out
}

func TestPackage(t *testing.T) {
	t.Parallel()

	// --- Act ---
	sspPath := buildTestSSP(t)

	// --- Assert ---
	extracted := t.TempDir()
	require.NoError(t, archive.Unzip(sspPath, extracted))

	manifest, err := os.ReadFile(filepath.Join(extracted, "manifest.xml"))
	require.NoError(t, err)
	require.Contains(t, string(manifest), `<ssc:Description text="Aircraft digital twin SSP"/>`)

	_, err = os.Stat(filepath.Join(extracted, "SystemStructure.ssd"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(extracted, "resources", "Aircraft_MissionComputer.fmu"))
	require.NoError(t, err)
}

func TestPackage_RejectsMissingInputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	ssdPath := filepath.Join(dir, "SystemStructure.ssd")
	require.NoError(t, os.WriteFile(ssdPath, []byte("<ssd/>"), 0o644))
	emptyFMUDir := filepath.Join(dir, "fmus")
	require.NoError(t, os.MkdirAll(emptyFMUDir, 0o755))

	// --- Act / Assert ---
	err := ssp.Package(context.Background(), ssp.PackageOptions{
		SSDPath:    filepath.Join(dir, "absent.ssd"),
		FMUDir:     emptyFMUDir,
		OutputPath: filepath.Join(dir, "out.ssp"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "SSD file not found")

	err = ssp.Package(context.Background(), ssp.PackageOptions{
		SSDPath:    ssdPath,
		FMUDir:     emptyFMUDir,
		OutputPath: filepath.Join(dir, "out.ssp"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no FMUs found")
}

func TestPrepareWithParameters(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sspPath := buildTestSSP(t)
	resultsDir := t.TempDir()

	set := ssp.NewParameterSet("Waypoints", "")
	set.AddReal("Environment.initX_km", "0.000")
	ssvData, err := ssp.MarshalDocument(set)
	require.NoError(t, err)
	ssvPath := filepath.Join(resultsDir, "mission1_waypoints.ssv")
	require.NoError(t, os.WriteFile(ssvPath, ssvData, 0o644))

	// --- Act ---
	prepared, err := ssp.PrepareWithParameters(context.Background(), sspPath, ssvPath, "mission1", resultsDir)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, filepath.Join(resultsDir, "mission1_run", "mission1.ssp"), prepared)

	extracted := t.TempDir()
	require.NoError(t, archive.Unzip(prepared, extracted))

	_, err = os.Stat(filepath.Join(extracted, "resources", "mission1_waypoints.ssv"))
	require.NoError(t, err)

	ssdData, err := os.ReadFile(filepath.Join(extracted, "SystemStructure.ssd"))
	require.NoError(t, err)
	doc, err := ssp.ParseDocument(ssdData)
	require.NoError(t, err)
	require.Equal(t, []ssp.ParameterBinding{{Source: "resources/mission1_waypoints.ssv"}},
		doc.System.ParameterBindings)
	require.Len(t, doc.System.Components, 2, "existing structure survives the rewrite")

	// Preparing again replaces the binding instead of stacking a duplicate.
	prepared, err = ssp.PrepareWithParameters(context.Background(), prepared, ssvPath, "mission1b", resultsDir)
	require.NoError(t, err)
	extracted = t.TempDir()
	require.NoError(t, archive.Unzip(prepared, extracted))
	ssdData, err = os.ReadFile(filepath.Join(extracted, "SystemStructure.ssd"))
	require.NoError(t, err)
	doc, err = ssp.ParseDocument(ssdData)
	require.NoError(t, err)
	require.Len(t, doc.System.ParameterBindings, 1)
}
