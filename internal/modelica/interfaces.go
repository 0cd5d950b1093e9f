// Package modelica emits Modelica source for the architecture's interface
// records and drives the OpenModelica compiler to export FMUs.
package modelica

import (
	"fmt"
	"os"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// GenerateInterfaces renders every port definition of the architecture as a
// Modelica record inside a GeneratedInterfaces package. Records are sorted by
// name; fields keep their declaration order.
func GenerateInterfaces(arch *sysml.Architecture, packageName string) (string, error) {
	if len(arch.PortDefinitions) == 0 {
		return "", fmt.Errorf("no port definitions found; nothing to generate")
	}
	if packageName == "" {
		packageName = arch.Package
	}

	var b strings.Builder
	fmt.Fprintf(&b, "within %s;\n", packageName)
	b.WriteString("package GeneratedInterfaces\n")

	for _, name := range arch.PortDefinitionNames() {
		def := arch.PortDefinitions[name]
		fmt.Fprintf(&b, "  record %s\n", name)
		if def.Attributes.Len() == 0 {
			fmt.Fprintf(&b, "  end %s;\n", name)
			continue
		}
		for _, attrName := range def.Attributes.Names() {
			attr, _ := def.Attributes.Get(attrName)
			fieldType := attr.Type
			if fieldType == "" {
				fieldType = "Real"
			}
			fmt.Fprintf(&b, "    %s %s;\n", sysml.ModelicaConnectorType(fieldType), attr.Name)
		}
		fmt.Fprintf(&b, "  end %s;\n\n", name)
	}
	b.WriteString("end GeneratedInterfaces;\n")
	return b.String(), nil
}

// WriteInterfaces renders the interface package and writes it to path.
func WriteInterfaces(arch *sysml.Architecture, packageName, path string) error {
	content, err := GenerateInterfaces(arch, packageName)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
