package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/config"
	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

// simulatorConfig mirrors the ssp4sim engine's JSON configuration file.
type simulatorConfig struct {
	Simulation simulationSection `json:"simulation"`
}

type simulationSection struct {
	SSP       string           `json:"ssp"`
	SSD       string           `json:"ssd"`
	StartTime float64          `json:"start_time"`
	StopTime  float64          `json:"stop_time"`
	Timestep  float64          `json:"timestep"`
	Tolerance float64          `json:"tolerance"`
	Executor  executorSection  `json:"executor"`
	Recording recordingSection `json:"recording"`
	Log       logSection       `json:"log"`
}

type executorSection struct {
	Method             string        `json:"method"`
	ThreadPoolWorkers  int           `json:"thread_pool_workers"`
	ForwardDerivatives bool          `json:"forward_derivatives"`
	Jacobi             jacobiSection `json:"jacobi"`
	Seidel             seidelSection `json:"seidel"`
}

type jacobiSection struct {
	Parallel bool `json:"parallel"`
	Method   int  `json:"method"`
}

type seidelSection struct {
	Parallel bool `json:"parallel"`
}

type recordingSection struct {
	Enable     bool    `json:"enable"`
	WaitFor    bool    `json:"wait_for"`
	Interval   float64 `json:"interval"`
	ResultFile string  `json:"result_file"`
}

type logSection struct {
	File string `json:"file"`
	FMU  bool   `json:"fmu"`
}

// WriteSimulatorConfig renders the engine configuration next to the result
// file and returns its path.
func WriteSimulatorConfig(sim config.Simulator, sspPath, resultFile string, stopTime float64) (string, error) {
	cfg := simulatorConfig{
		Simulation: simulationSection{
			SSP:       filepath.ToSlash(sspPath),
			SSD:       "SystemStructure.ssd",
			StartTime: 0.0,
			StopTime:  stopTime,
			Timestep:  sim.Timestep,
			Tolerance: sim.Tolerance,
			Executor: executorSection{
				Method:             sim.Method,
				ThreadPoolWorkers:  sim.ThreadPoolWorkers,
				ForwardDerivatives: sim.ForwardDerivatives,
				Jacobi:             jacobiSection{Parallel: true, Method: 1},
				Seidel:             seidelSection{Parallel: false},
			},
			Recording: recordingSection{
				Enable:     true,
				WaitFor:    true,
				Interval:   sim.RecordingInterval,
				ResultFile: filepath.ToSlash(resultFile),
			},
			Log: logSection{
				File: filepath.ToSlash(filepath.Join(filepath.Dir(resultFile), "sim.log")),
				FMU:  sim.LogFMU,
			},
		},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	configPath := filepath.Join(filepath.Dir(resultFile), "config.json")
	if err := fsutil.EnsureParentDir(configPath); err != nil {
		return "", err
	}
	if err := os.WriteFile(configPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing simulator config %s: %w", configPath, err)
	}
	return configPath, nil
}

// RunSimulator invokes the external co-simulation engine on a prepared SSP.
// A missing executable is fatal: without the engine there is nothing to
// record.
func RunSimulator(ctx context.Context, sim config.Simulator, sspPath, resultFile string, stopTime float64) error {
	logger := ctxlog.FromContext(ctx)

	configPath, err := WriteSimulatorConfig(sim, sspPath, resultFile, stopTime)
	if err != nil {
		return err
	}

	executable := sim.Executable
	if executable == "" {
		executable = "ssp4sim"
	}
	logger.Info("running simulator", "executable", executable, "config", configPath, "stop_time_s", stopTime)

	cmd := exec.CommandContext(ctx, executable, configPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("simulator failed: %s", strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("simulator executable not found at %q: %w", executable, err)
	}
	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		logger.Debug("simulator output", "output", trimmed)
	}
	return nil
}
