// Package app wires the pipeline together: it owns the logger, the resolved
// configuration, and the dispatch from CLI subcommands to the generator,
// build, and simulation packages.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jkCXf9X4/ssp-airplane/internal/cli"
	"github.com/jkCXf9X4/ssp-airplane/internal/config"
	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *config.Config
}

// NewApp constructs the application: it builds the logger from the CLI
// options and loads the pipeline configuration.
func NewApp(outW io.Writer, opts *cli.Options) (*App, error) {
	logger := newLogger(opts.LogLevel, opts.LogFormat, outW, opts.LogFile)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	logger.Debug("configuration resolved", "config_path", opts.ConfigPath)

	return &App{outW: outW, logger: logger, cfg: cfg}, nil
}

// Run dispatches the selected subcommand.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	switch command {
	case "save-arch":
		return a.runSaveArch(ctx, args)
	case "gen-interfaces":
		return a.runGenInterfaces(ctx, args)
	case "gen-modeldesc":
		return a.runGenModelDesc(ctx, args)
	case "gen-ssd":
		return a.runGenSSD(ctx, args)
	case "gen-ssv":
		return a.runGenSSV(ctx, args)
	case "gen-terminals":
		return a.runGenTerminals(ctx, args)
	case "build-fmus":
		return a.runBuildFMUs(ctx, args)
	case "package-ssp":
		return a.runPackageSSP(ctx, args)
	case "gen-scenario":
		return a.runGenScenario(ctx, args)
	case "simulate":
		return a.runSimulate(ctx, args)
	case "verify":
		return a.runVerify(ctx, args)
	case "report":
		return a.runReport(ctx, args)
	default:
		return &cli.ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q, run without arguments for usage", command)}
	}
}

// loadArchitecture parses the configured (or overridden) architecture source.
func (a *App) loadArchitecture(path string) (*sysml.Architecture, error) {
	if path == "" {
		path = a.cfg.Paths.ArchitectureDir
	}
	arch, err := sysml.LoadArchitecture(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("architecture parsed",
		"package", arch.Package,
		"parts", len(arch.Parts),
		"port_definitions", len(arch.PortDefinitions),
		"connections", len(arch.Connections))
	return arch, nil
}

// classMap resolves component names to Modelica classes using the
// architecture plus configured overrides.
func (a *App) classMap(arch *sysml.Architecture) map[string]string {
	return fmi.ClassMap(arch, a.cfg.PackageOverride, a.cfg.ClassOverrides)
}
