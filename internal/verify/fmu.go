package verify

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// loadScalarVariables reads modelDescription.xml out of an FMU and returns
// variable name to causality.
func loadScalarVariables(fmuPath string) (map[string]string, error) {
	reader, err := zip.OpenReader(fmuPath)
	if err != nil {
		return nil, fmt.Errorf("FMU file is not a valid zip archive: %s", fmuPath)
	}
	defer reader.Close()

	var entry *zip.File
	for _, f := range reader.File {
		if f.Name == "modelDescription.xml" {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%s does not contain modelDescription.xml", fmuPath)
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var doc fmi.ModelDescription
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing modelDescription.xml in %s: %w", fmuPath, err)
	}
	variables := make(map[string]string, len(doc.ModelVariables))
	for _, v := range doc.ModelVariables {
		variables[v.Name] = v.Causality
	}
	return variables, nil
}

// FMUOptions select the FMUs to check against the architecture.
type FMUOptions struct {
	FMUDir   string
	ClassMap map[string]string
	// Parts restricts the check to the named parts; empty checks all.
	Parts []string
}

// FMUInterfaces confirms every architecture port attribute surfaces as a
// model variable with matching causality in the exported FMUs. Parts whose
// ports expand to nothing are skipped; a missing FMU for a checked part is an
// issue.
func FMUInterfaces(arch *sysml.Architecture, opts FMUOptions) ([]string, int, error) {
	var issues []string
	checked := 0

	targets := arch.SelectParts(opts.Parts)
	if len(opts.Parts) > 0 && len(targets) != len(opts.Parts) {
		known := map[string]bool{}
		for _, part := range targets {
			known[part.Name] = true
		}
		for _, name := range opts.Parts {
			if !known[name] {
				return nil, 0, fmt.Errorf("unknown part requested: %s", name)
			}
		}
	}

	for _, part := range targets {
		type expectation struct {
			variable  string
			direction sysml.Direction
			port      string
		}
		var expected []expectation
		for _, port := range part.Ports {
			if port.PayloadDef == nil {
				if port.Payload != "" {
					if _, primitive := sysml.LookupPrimitive(port.Payload); !primitive {
						issues = append(issues, fmt.Sprintf("%s.%s references unknown payload %q", part.Name, port.Name, port.Payload))
					}
				}
				continue
			}
			for _, attrName := range port.PayloadDef.Attributes.SortedNames() {
				expected = append(expected, expectation{
					variable:  port.Name + "." + attrName,
					direction: port.Direction,
					port:      port.Name,
				})
			}
		}
		if len(expected) == 0 {
			continue
		}

		class, ok := opts.ClassMap[part.Name]
		if !ok {
			issues = append(issues, fmt.Sprintf("No Modelica class map defined for part %s", part.Name))
			continue
		}
		fmuPath := filepath.Join(opts.FMUDir, fmi.FMUFileName(class))
		variables, err := loadScalarVariables(fmuPath)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Missing or unreadable FMU for part %s: %v", part.Name, err))
			continue
		}

		for _, exp := range expected {
			checked++
			if exp.direction != sysml.DirectionIn && exp.direction != sysml.DirectionOut {
				issues = append(issues, fmt.Sprintf("Unknown direction %q on %s.%s", exp.direction, part.Name, exp.port))
				continue
			}
			causality, found := variables[exp.variable]
			if !found {
				issues = append(issues, fmt.Sprintf("%s: missing variable %q in %s", part.Name, exp.variable, filepath.Base(fmuPath)))
				continue
			}
			if exp.direction == sysml.DirectionIn && causality != "input" {
				issues = append(issues, fmt.Sprintf("%s: variable %q causality %q is not marked as FMI input", part.Name, exp.variable, causality))
			}
			if exp.direction == sysml.DirectionOut && causality != "output" {
				issues = append(issues, fmt.Sprintf("%s: variable %q causality %q is not marked as FMI output", part.Name, exp.variable, causality))
			}
		}
	}
	return issues, checked, nil
}

// ModelDescriptions checks a set of generated model description documents for
// duplicate value references; the FMI spec requires them unique per type, the
// generators keep them unique outright.
func ModelDescriptions(docs map[string]*fmi.ModelDescription) []string {
	var issues []string
	for name, doc := range docs {
		seen := map[int]string{}
		for _, v := range doc.ModelVariables {
			if prev, dup := seen[v.ValueReference]; dup {
				issues = append(issues, fmt.Sprintf("%s: variables %q and %q share value reference %d", name, prev, v.Name, v.ValueReference))
				continue
			}
			seen[v.ValueReference] = v.Name
		}
	}
	return issues
}
