package verify

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

var (
	modelNameRE = regexp.MustCompile(`\bmodel\s+(\w+)`)
	connectorRE = regexp.MustCompile(`\bInterfaces\.(RealInput|RealOutput)\s+(\w+)`)
)

// parseModelicaConnectors scans the .mo files under dir and returns model
// name to connector-name-to-direction.
func parseModelicaConnectors(dir string) (map[string]map[string]sysml.Direction, error) {
	files, err := fsutil.FindFilesByExtension(dir, ".mo")
	if err != nil {
		return nil, fmt.Errorf("scanning Modelica models: %w", err)
	}
	models := map[string]map[string]sysml.Direction{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text := string(data)
		nameMatch := modelNameRE.FindStringSubmatch(text)
		if nameMatch == nil {
			continue
		}
		connectors := map[string]sysml.Direction{}
		for _, m := range connectorRE.FindAllStringSubmatch(text, -1) {
			direction := sysml.DirectionOut
			if m[1] == "RealInput" {
				direction = sysml.DirectionIn
			}
			connectors[m[2]] = direction
		}
		models[nameMatch[1]] = connectors
	}
	return models, nil
}

// ModelicaInterfaces compares the architecture's part ports against the
// connectors declared by the Modelica models of the same name. Ports missing
// from a model, extra connectors, and direction mismatches are all issues;
// models with no matching part are reported but do not fail the check.
func ModelicaInterfaces(arch *sysml.Architecture, modelsDir string) ([]string, error) {
	models, err := parseModelicaConnectors(modelsDir)
	if err != nil {
		return nil, err
	}

	var common []string
	for name := range models {
		if _, ok := arch.Parts[name]; ok {
			common = append(common, name)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("no overlapping part/model names found")
	}
	sort.Strings(common)

	var issues []string
	for _, name := range common {
		part := arch.Parts[name]
		archPorts := map[string]sysml.Direction{}
		for _, port := range part.Ports {
			if port.Direction == sysml.DirectionIn || port.Direction == sysml.DirectionOut {
				archPorts[port.Name] = port.Direction
			}
		}
		modelPorts := models[name]

		var missing, extra, mismatched []string
		for portName, direction := range archPorts {
			modelDir, ok := modelPorts[portName]
			if !ok {
				missing = append(missing, fmt.Sprintf("%s(%s)", portName, direction))
				continue
			}
			if modelDir != direction {
				mismatched = append(mismatched, fmt.Sprintf("%s arch=%s model=%s", portName, direction, modelDir))
			}
		}
		for portName, direction := range modelPorts {
			if _, ok := archPorts[portName]; !ok {
				extra = append(extra, fmt.Sprintf("%s(%s)", portName, direction))
			}
		}
		sort.Strings(missing)
		sort.Strings(extra)
		sort.Strings(mismatched)

		if len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("%s: missing in Modelica: %s", name, strings.Join(missing, ", ")))
		}
		if len(mismatched) > 0 {
			issues = append(issues, fmt.Sprintf("%s: direction mismatch: %s", name, strings.Join(mismatched, ", ")))
		}
		if len(extra) > 0 {
			issues = append(issues, fmt.Sprintf("%s: extra connectors in Modelica: %s", name, strings.Join(extra, ", ")))
		}
	}
	return issues, nil
}
