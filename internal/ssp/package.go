package ssp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jkCXf9X4/ssp-airplane/internal/archive"
	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

const manifestTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<ssc:Manifest xmlns:ssc="http://www.fmi-standard.org/SSP1/SystemStructureCommon">
  <ssc:Description text="%s"/>
</ssc:Manifest>
`

// PackageOptions configure SSP archive assembly.
type PackageOptions struct {
	SSDPath     string
	FMUDir      string
	OutputPath  string
	Description string
}

// Package bundles the SSD and every FMU under FMUDir into a single .ssp
// archive at OutputPath. FMUs land under resources/ so the paths the SSD
// references resolve inside the container. An empty FMU directory is an
// error: an SSP without models simulates nothing.
func Package(ctx context.Context, opts PackageOptions) error {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(opts.SSDPath); err != nil {
		return fmt.Errorf("SSD file not found: %s", opts.SSDPath)
	}
	fmus, err := filepath.Glob(filepath.Join(opts.FMUDir, "*.fmu"))
	if err != nil {
		return err
	}
	sort.Strings(fmus)
	if len(fmus) == 0 {
		return fmt.Errorf("no FMUs found under %s", opts.FMUDir)
	}

	if err := fsutil.EnsureParentDir(opts.OutputPath); err != nil {
		return err
	}
	zw, f, err := archive.Create(opts.OutputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	description := opts.Description
	if description == "" {
		description = "Aircraft digital twin SSP"
	}
	if err := archive.AddBytes(zw, "manifest.xml", []byte(fmt.Sprintf(manifestTemplate, description))); err != nil {
		zw.Close()
		return err
	}
	if err := archive.AddFile(zw, "SystemStructure.ssd", opts.SSDPath); err != nil {
		zw.Close()
		return err
	}
	for _, fmu := range fmus {
		arcname := "resources/" + filepath.Base(fmu)
		if err := archive.AddFile(zw, arcname, fmu); err != nil {
			zw.Close()
			return err
		}
		logger.Info("added FMU to package", "entry", arcname)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package %s: %w", opts.OutputPath, err)
	}
	logger.Info("packaged SSP written", "path", opts.OutputPath)
	return nil
}
