package fmi

import (
	"fmt"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// FMUFileName returns the FMU filename for a fully qualified Modelica class.
func FMUFileName(modelicaClass string) string {
	return strings.ReplaceAll(modelicaClass, ".", "_") + ".fmu"
}

// ResourcePath returns the SSP resources-relative path for an FMU.
func ResourcePath(modelicaClass string) string {
	return "resources/" + FMUFileName(modelicaClass)
}

// ClassMap builds the component-to-Modelica-class mapping for an
// architecture. Components default to <Package>.<Part>; overrides win, and a
// non-empty packageOverride replaces the architecture package name.
func ClassMap(arch *sysml.Architecture, packageOverride string, overrides map[string]string) map[string]string {
	pkg := arch.Package
	if packageOverride != "" {
		pkg = packageOverride
	}
	if pkg == "" {
		pkg = "System"
	}
	mapping := map[string]string{}
	for name := range arch.Parts {
		if name == pkg {
			continue
		}
		mapping[name] = pkg + "." + name
	}
	for name, class := range overrides {
		mapping[name] = class
	}
	return mapping
}

// ComponentSource resolves the FMU resource path for a component. A missing
// class mapping is an explicit error rather than a silent default.
func ComponentSource(component string, classMap map[string]string) (string, error) {
	class, ok := classMap[component]
	if !ok {
		return "", fmt.Errorf("no Modelica class map defined for component %q", component)
	}
	return ResourcePath(class), nil
}
