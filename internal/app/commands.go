package app

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jkCXf9X4/ssp-airplane/internal/cli"
	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/modelica"
	"github.com/jkCXf9X4/ssp-airplane/internal/report"
	"github.com/jkCXf9X4/ssp-airplane/internal/scenario"
	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
	"github.com/jkCXf9X4/ssp-airplane/internal/verify"
)

// newFlagSet builds a subcommand flag set writing usage to the app's output.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.outW)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	return nil
}

// splitList parses a comma-separated flag value into trimmed names.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func writeDoc(path string, data []byte) error {
	if err := fsutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (a *App) generatedPath(name string) string {
	return filepath.Join(a.cfg.Paths.GeneratedDir, name)
}

func (a *App) buildPath(elem ...string) string {
	return filepath.Join(append([]string{a.cfg.Paths.BuildDir}, elem...)...)
}

func (a *App) runSaveArch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("save-arch")
	source := fs.String("source", "", "Architecture directory or a file inside it.")
	output := fs.String("output", a.generatedPath("arch_def.json"), "Destination JSON file.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	snapshot, err := sysml.Snapshot(arch)
	if err != nil {
		return err
	}
	if err := writeDoc(*output, snapshot); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Architecture saved to %s\n", *output)
	return nil
}

func (a *App) runGenInterfaces(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-interfaces")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	output := fs.String("output", a.generatedPath("GeneratedInterfaces.mo"), "Destination .mo file.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	pkg := a.cfg.PackageOverride
	if pkg == "" {
		pkg = arch.Package
	}
	if err := modelica.WriteInterfaces(arch, pkg, *output); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote Modelica interfaces to %s\n", *output)
	return nil
}

func (a *App) runGenModelDesc(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-modeldesc")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	outputDir := fs.String("output-dir", a.generatedPath("model_descriptions"), "Directory for per-component modelDescription.xml files.")
	fmuDir := fs.String("stub-fmu-dir", "", "Also zip each description into a stub FMU under this directory.")
	components := fs.String("components", "", "Comma-separated subset of components.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	written, err := fmi.GenerateAll(arch, *outputDir, *fmuDir, splitList(*components))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %d model descriptions under %s\n", len(written), *outputDir)
	return nil
}

func (a *App) runGenSSD(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-ssd")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	output := fs.String("output", a.generatedPath("SystemStructure.ssd"), "Destination .ssd file.")
	terminals := fs.Bool("terminals", false, "Emit the compact terminal-connector variant instead.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	opts := ssp.BuildOptions{
		ClassMap:  a.classMap(arch),
		StartTime: a.cfg.Experiment.StartTime,
		StopTime:  a.cfg.Experiment.StopTime,
	}

	var doc *ssp.Document
	if *terminals {
		doc, err = ssp.BuildTerminalSSD(arch, opts.ClassMap, opts)
	} else {
		doc, err = ssp.BuildSSD(ctx, arch, opts)
	}
	if err != nil {
		return err
	}
	data, err := ssp.MarshalDocument(doc)
	if err != nil {
		return err
	}
	if err := writeDoc(*output, data); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %s\n", *output)
	return nil
}

func (a *App) runGenSSV(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-ssv")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	output := fs.String("output", a.generatedPath("parameters.ssv"), "Destination .ssv file.")
	components := fs.String("components", "", "Comma-separated subset of components.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	data, err := ssp.MarshalDocument(ssp.BuildParameterSet(arch, splitList(*components)))
	if err != nil {
		return err
	}
	if err := writeDoc(*output, data); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %s\n", *output)
	return nil
}

func (a *App) runGenTerminals(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-terminals")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	output := fs.String("output", a.generatedPath("terminalsAndIcons.xml"), "Destination XML file.")
	components := fs.String("components", "", "Comma-separated subset of components.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}
	data, err := ssp.MarshalDocument(ssp.BuildTerminals(arch, splitList(*components)))
	if err != nil {
		return err
	}
	if err := writeDoc(*output, data); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %s\n", *output)
	return nil
}

func (a *App) runBuildFMUs(ctx context.Context, args []string) error {
	fs := a.newFlagSet("build-fmus")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	models := fs.String("models", "", "Comma-separated fully qualified Modelica classes. Defaults to the architecture's class map.")
	output := fs.String("output", a.buildPath("fmus"), "Destination directory for FMUs.")
	dryRun := fs.Bool("dry-run", false, "Print omc scripts without executing them.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	targetModels := splitList(*models)
	pkg := a.cfg.PackageOverride
	if len(targetModels) == 0 || pkg == "" {
		arch, err := a.loadArchitecture(*source)
		if err != nil {
			return err
		}
		if pkg == "" {
			pkg = arch.Package
		}
		if len(targetModels) == 0 {
			for _, class := range a.classMap(arch) {
				targetModels = append(targetModels, class)
			}
			sort.Strings(targetModels)
		}
	}

	built, err := modelica.BuildFMUs(ctx, modelica.BuildOptions{
		OMCPath:     a.cfg.Simulator.OMCPath,
		PackageFile: filepath.Join(a.cfg.Paths.ModelsDir, pkg, "package.mo"),
		WorkDir:     ".",
		OutputDir:   *output,
		Models:      targetModels,
		DryRun:      *dryRun,
	})
	if err != nil {
		return err
	}
	if !*dryRun {
		fmt.Fprintf(a.outW, "Exported %d FMUs to %s\n", len(built), *output)
	}
	return nil
}

func (a *App) runPackageSSP(ctx context.Context, args []string) error {
	fs := a.newFlagSet("package-ssp")
	ssdPath := fs.String("ssd", a.generatedPath("SystemStructure.ssd"), "Path to the SSD file.")
	fmuDir := fs.String("fmu-dir", a.buildPath("fmus"), "Directory containing the FMUs.")
	output := fs.String("output", a.buildPath("ssp", "ssp_airplane.ssp"), "Destination .ssp archive.")
	description := fs.String("description", "", "Manifest description text.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := ssp.Package(ctx, ssp.PackageOptions{
		SSDPath:     *ssdPath,
		FMUDir:      *fmuDir,
		OutputPath:  *output,
		Description: *description,
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Packaged SSP written to %s\n", *output)
	return nil
}

func (a *App) runGenScenario(ctx context.Context, args []string) error {
	fs := a.newFlagSet("gen-scenario")
	output := fs.String("output", "", "Destination scenario JSON file (required).")
	points := fs.Int("points", 0, "Number of waypoints, 3-10. 0 picks randomly.")
	seed := fs.Int64("seed", 0, "RNG seed. 0 uses the current time.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *output == "" {
		return &cli.ExitError{Code: 2, Message: "gen-scenario requires --output"}
	}

	seedValue := *seed
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seedValue))

	scn, err := scenario.Generate(rng, scenario.GenerateOptions{
		Points:        *points,
		MinDistanceKM: a.cfg.Scenario.MinDistanceKM,
		MaxDistanceKM: a.cfg.Scenario.MaxDistanceKM,
		MinAltitudeM:  a.cfg.Scenario.MinAltitudeM,
		MaxAltitudeM:  a.cfg.Scenario.MaxAltitudeM,
	})
	if err != nil {
		return err
	}
	if err := scn.Save(*output); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote scenario with %d points to %s\n", len(scn.Points), *output)
	return nil
}

func (a *App) runSimulate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("simulate")
	scenarioPath := fs.String("scenario", "", "Path to the scenario JSON file (required).")
	sspPath := fs.String("ssp", a.buildPath("ssp", "ssp_airplane.ssp"), "Path to the packaged SSP archive.")
	resultsDir := fs.String("results-dir", a.buildPath("results"), "Directory for results and summaries.")
	reuse := fs.Bool("reuse-results", false, "Skip the engine when the scenario's result CSV exists.")
	stopTime := fs.Float64("stop-time", 0, "Override the engine stop time in seconds.")
	dryRun := fs.Bool("dry-run", false, "Skip the engine and use analytic estimates.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *scenarioPath == "" {
		return &cli.ExitError{Code: 2, Message: "simulate requires --scenario"}
	}

	result, err := scenario.Simulate(ctx, a.cfg, scenario.Options{
		ScenarioPath: *scenarioPath,
		SSPPath:      *sspPath,
		ResultsDir:   *resultsDir,
		ReuseResults: *reuse,
		DryRun:       *dryRun,
		StopTime:     *stopTime,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "Scenario %s: %.1f km, est %.0f s, fuel required %.1f kg\n",
		filepath.Base(result.ScenarioPath), result.TotalDistanceKM, result.EstimatedDurationS, result.FuelRequiredKG)
	for _, eval := range result.Requirements {
		status := "FAIL"
		if eval.Passed {
			status = "PASS"
		}
		fmt.Fprintf(a.outW, "  [%s] %s (%s)\n", status, eval.Identifier, eval.Evidence)
	}
	fmt.Fprintf(a.outW, "Summary written to %s\n", result.SummaryPath)
	return nil
}

func (a *App) runVerify(ctx context.Context, args []string) error {
	fs := a.newFlagSet("verify")
	source := fs.String("architecture", "", "Architecture directory or a file inside it.")
	checks := fs.String("checks", "connections,interfaces", "Comma-separated checks: connections, interfaces, modelica, fmu.")
	fmuDir := fs.String("fmu-dir", a.buildPath("fmus"), "Directory containing the exported FMUs (fmu check).")
	modelsDir := fs.String("models-dir", "", "Directory containing Modelica models (modelica check). Defaults to <models_dir>/<package>.")
	parts := fs.String("parts", "", "Comma-separated subset of parts for the fmu check.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	arch, err := a.loadArchitecture(*source)
	if err != nil {
		return err
	}

	var issues []string
	for _, check := range splitList(*checks) {
		switch check {
		case "connections":
			issues = append(issues, verify.Connections(arch)...)
		case "interfaces":
			issues = append(issues, verify.Interfaces(arch)...)
		case "modelica":
			dir := *modelsDir
			if dir == "" {
				pkg := a.cfg.PackageOverride
				if pkg == "" {
					pkg = arch.Package
				}
				dir = filepath.Join(a.cfg.Paths.ModelsDir, pkg)
			}
			found, err := verify.ModelicaInterfaces(arch, dir)
			if err != nil {
				return err
			}
			issues = append(issues, found...)
		case "fmu":
			found, checked, err := verify.FMUInterfaces(arch, verify.FMUOptions{
				FMUDir:   *fmuDir,
				ClassMap: a.classMap(arch),
				Parts:    splitList(*parts),
			})
			if err != nil {
				return err
			}
			issues = append(issues, found...)
			a.logger.Debug("fmu check complete", "variables_checked", checked)
		default:
			return &cli.ExitError{Code: 2, Message: fmt.Sprintf("unknown check %q", check)}
		}
	}

	if len(issues) > 0 {
		var b strings.Builder
		b.WriteString("Verification failed:")
		for _, issue := range issues {
			b.WriteString("\n - ")
			b.WriteString(issue)
		}
		return &cli.ExitError{Code: 2, Message: b.String()}
	}
	fmt.Fprintln(a.outW, "All verification checks passed.")
	return nil
}

func (a *App) runReport(ctx context.Context, args []string) error {
	fs := a.newFlagSet("report")
	sspPath := fs.String("ssp", a.buildPath("ssp", "ssp_airplane.ssp"), "Path to the packaged SSP archive.")
	resultsDir := fs.String("results-dir", a.buildPath("results"), "Directory with existing results.")
	output := fs.String("output", a.buildPath("results", "report.xlsx"), "Destination workbook.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	scenarios := fs.Args()
	if len(scenarios) == 0 {
		return &cli.ExitError{Code: 2, Message: "report requires at least one scenario JSON argument"}
	}

	var results []*scenario.Result
	for _, path := range scenarios {
		result, err := scenario.Simulate(ctx, a.cfg, scenario.Options{
			ScenarioPath: path,
			SSPPath:      *sspPath,
			ResultsDir:   *resultsDir,
			ReuseResults: true,
			DryRun:       true,
		})
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if err := report.Write(*output, results); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Report written to %s\n", *output)
	return nil
}
