package scenario_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
	"github.com/jkCXf9X4/ssp-airplane/internal/scenario"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	opts := scenario.GenerateOptions{
		MinDistanceKM: 100,
		MaxDistanceKM: 1000,
		MinAltitudeM:  100,
		MaxAltitudeM:  10000,
	}

	// --- Act ---
	scn, err := scenario.Generate(rand.New(rand.NewSource(42)), opts)

	// --- Assert ---
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(scn.Points), 3)
	require.LessOrEqual(t, len(scn.Points), 10)
	require.NoError(t, scn.Validate())

	require.Zero(t, scn.Points[0].AltitudeM, "takeoff at sea level")
	require.Zero(t, scn.Points[len(scn.Points)-1].AltitudeM, "landing at sea level")
	for _, p := range scn.Points[1 : len(scn.Points)-1] {
		require.GreaterOrEqual(t, p.AltitudeM, opts.MinAltitudeM)
		require.LessOrEqual(t, p.AltitudeM, opts.MaxAltitudeM)
	}

	require.Greater(t, scn.TotalDistanceKM, 0.0)
	require.InDelta(t, geo.PathDistanceKM(scn.Points), scn.TotalDistanceKM, 0.01,
		"total distance is recomputed over the rounded points")
}

func TestGenerate_IsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	opts := scenario.GenerateOptions{Points: 5, MinDistanceKM: 200, MaxDistanceKM: 300, MinAltitudeM: 500, MaxAltitudeM: 8000}

	// --- Act ---
	first, err := scenario.Generate(rand.New(rand.NewSource(7)), opts)
	require.NoError(t, err)
	second, err := scenario.Generate(rand.New(rand.NewSource(7)), opts)
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, first, second)
}

func TestGenerate_RejectsPointCountOutOfRange(t *testing.T) {
	t.Parallel()

	for _, points := range []int{1, 2, 11} {
		_, err := scenario.Generate(rand.New(rand.NewSource(1)), scenario.GenerateOptions{
			Points: points, MinDistanceKM: 100, MaxDistanceKM: 200,
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "point count must be between 3 and 10")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		points  []geo.LLA
		wantErr string
	}{
		{name: "no points", wantErr: "scenario has no points"},
		{
			name:    "latitude out of range",
			points:  []geo.LLA{{LatitudeDeg: 91}},
			wantErr: "implausible lat/lon",
		},
		{
			name:    "altitude out of range",
			points:  []geo.LLA{{AltitudeM: 26000}},
			wantErr: "implausible altitude",
		},
		{
			name:   "valid",
			points: []geo.LLA{{LatitudeDeg: 45, LongitudeDeg: 10, AltitudeM: 8000}},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := (&scenario.Scenario{Points: tc.points}).Validate()

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	scn := &scenario.Scenario{
		Name: "mission1",
		Points: []geo.LLA{
			{LatitudeDeg: 45, LongitudeDeg: 10},
			{LatitudeDeg: 45.5, LongitudeDeg: 10.2, AltitudeM: 8000},
			{LatitudeDeg: 46, LongitudeDeg: 10.5},
		},
		TotalDistanceKM: 120.5,
		Overrides:       scenario.Overrides{CruiseSpeedMPS: 300},
	}
	path := filepath.Join(t.TempDir(), "scenarios", "mission1.json")

	// --- Act ---
	require.NoError(t, scn.Save(path))
	loaded, err := scenario.Load(path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, scn, loaded)
}

func TestLoad_RejectsMissingPoints(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "x"}`), 0o644))

	_, err := scenario.Load(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "must contain a 'points' list")
}

func TestLoad_RejectsInvalidWaypoints(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"points": [{"latitude_deg": 120, "longitude_deg": 0, "altitude_m": 0}]}`), 0o644))

	_, err := scenario.Load(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "implausible lat/lon")
}
