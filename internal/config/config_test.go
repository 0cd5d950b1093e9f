package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	// --- Act ---
	cfg, err := config.Load("")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
	require.Equal(t, "architecture", cfg.Paths.ArchitectureDir)
	require.Equal(t, 3100.0, cfg.Fuel.CapacityKG)
	require.Equal(t, "jacobi", cfg.Simulator.Method)
	require.Equal(t, 5, cfg.Simulator.ThreadPoolWorkers)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.hcl"))

	require.Error(t, err)
	require.Contains(t, err.Error(), "config file not found")
}

func TestLoad_OverlaysOnDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeConfig(t, `
paths {
  architecture_dir = "arch"
}

fuel {
  capacity_kg = 4200
}

simulator {
  executable = "/opt/ssp4sim/bin/ssp4sim"
  method     = "seidel"
}
`)

	// --- Act ---
	cfg, err := config.Load(path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "arch", cfg.Paths.ArchitectureDir)
	require.Equal(t, "generated", cfg.Paths.GeneratedDir, "untouched keys keep their defaults")
	require.Equal(t, 4200.0, cfg.Fuel.CapacityKG)
	require.Equal(t, 0.08, cfg.Fuel.ReserveFraction)
	require.Equal(t, "/opt/ssp4sim/bin/ssp4sim", cfg.Simulator.Executable)
	require.Equal(t, "seidel", cfg.Simulator.Method)
	require.Equal(t, 1.0, cfg.Simulator.Timestep)
}

func TestLoad_ModelClasses(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeConfig(t, `
package = "FighterJet"

model_classes = {
  MissionComputer = "FighterJet.Avionics.MissionComputer"
}
`)

	// --- Act ---
	cfg, err := config.Load(path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "FighterJet", cfg.PackageOverride)
	require.Equal(t, map[string]string{
		"MissionComputer": "FighterJet.Avionics.MissionComputer",
	}, cfg.ClassOverrides)
}

func TestLoad_RejectsNonStringModelClass(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `model_classes = { MissionComputer = 12 }`)

	_, err := config.Load(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a string")
}

func TestLoad_RejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `paths {`)

	_, err := config.Load(path)

	require.Error(t, err)
}
