package modelica

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

var fmuPathRE = regexp.MustCompile(`"([^"]+\.fmu)"`)

// BuildOptions drive FMU export through the OpenModelica compiler.
type BuildOptions struct {
	// OMCPath is the omc executable, "omc" when empty.
	OMCPath string
	// PackageFile is the Modelica package.mo to load before building.
	PackageFile string
	// WorkDir is where omc runs; compiler scratch output lands in
	// WorkDir/build/tmp.
	WorkDir string
	// OutputDir receives the exported <Pkg>_<Class>.fmu files.
	OutputDir string
	// Models are the fully qualified Modelica classes to export.
	Models []string
	// DryRun prints the generated scripts without invoking omc.
	DryRun bool
}

// mosScript renders the omc batch script that exports one model as a
// co-simulation FMU with statically linked runtime dependencies.
func mosScript(packageFile, model string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "loadFile(%q);\n", filepath.ToSlash(packageFile))
	b.WriteString("cd(\"./build/tmp/\");\n")
	b.WriteString("setCommandLineOptions(\"--fmiFlags=s:cvode\");\n")
	b.WriteString("setCommandLineOptions(\"--fmuRuntimeDepends=all\");\n")
	fmt.Fprintf(&b, "filename := OpenModelica.Scripting.buildModelFMU(%s, version=\"2.0\", fmuType=\"cs\", platforms={\"static\"});\n", model)
	b.WriteString("filename;\n")
	b.WriteString("getErrorString();\n")
	return b.String()
}

// extractFMUPath pulls the exported FMU path out of omc's output; omc echoes
// the path quoted, the last match wins.
func extractFMUPath(output string) string {
	matches := fmuPathRE.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// runOMC executes one .mos script and returns omc's stdout.
func runOMC(ctx context.Context, omcPath, workDir, script string) (string, error) {
	mosFile, err := os.CreateTemp("", "export-*.mos")
	if err != nil {
		return "", err
	}
	defer os.Remove(mosFile.Name())
	if _, err := mosFile.WriteString(script); err != nil {
		mosFile.Close()
		return "", err
	}
	if err := mosFile.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, omcPath, mosFile.Name())
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("omc failed: %s", strings.TrimSpace(string(out)))
		}
		return "", fmt.Errorf("omc executable not found at %q: %w", omcPath, err)
	}
	return string(out), nil
}

// BuildFMUs exports each requested model as an FMU and collects the results
// under opts.OutputDir, named after the class with dots replaced by
// underscores. The output directory is recreated from scratch so stale FMUs
// never leak into a package.
func BuildFMUs(ctx context.Context, opts BuildOptions) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	omcPath := opts.OMCPath
	if omcPath == "" {
		omcPath = "omc"
	}
	if len(opts.Models) == 0 {
		return nil, fmt.Errorf("no models to export")
	}

	if !opts.DryRun {
		if err := os.RemoveAll(opts.OutputDir); err != nil {
			return nil, err
		}
		if _, err := fsutil.EnsureDir(opts.OutputDir); err != nil {
			return nil, err
		}
		if _, err := fsutil.EnsureDir(filepath.Join(opts.WorkDir, "build", "tmp")); err != nil {
			return nil, err
		}
	}

	var built []string
	for _, model := range opts.Models {
		script := mosScript(opts.PackageFile, model)
		if opts.DryRun {
			fmt.Printf("[dry-run] omc script for %s:\n%s", model, script)
			continue
		}
		logger.Info("exporting FMU", "model", model)
		stdout, err := runOMC(ctx, omcPath, opts.WorkDir, script)
		if err != nil {
			return nil, err
		}
		sourcePath := extractFMUPath(stdout)
		if sourcePath == "" {
			return nil, fmt.Errorf("could not locate FMU emitted for %s in omc output: %s", model, strings.TrimSpace(stdout))
		}
		if !filepath.IsAbs(sourcePath) {
			sourcePath = filepath.Join(opts.WorkDir, "build", "tmp", sourcePath)
		}
		target := filepath.Join(opts.OutputDir, strings.ReplaceAll(model, ".", "_")+".fmu")
		if err := moveFile(sourcePath, target); err != nil {
			return nil, fmt.Errorf("collecting FMU for %s: %w", model, err)
		}
		built = append(built, target)
		logger.Info("exported FMU", "model", model, "path", target)
	}
	return built, nil
}

// moveFile renames src to dst, falling back to copy+remove across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
