// Package fmi generates FMI 2.0 model description documents and stub FMU
// archives from the parsed architecture.
package fmi

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jkCXf9X4/ssp-airplane/internal/archive"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// TypeTag is the typed child element of a ScalarVariable, optionally carrying
// a start value.
type TypeTag struct {
	Start string `xml:"start,attr,omitempty"`
}

// ScalarVariable is one entry of ModelVariables. Exactly one of the type
// pointers is set.
type ScalarVariable struct {
	Name           string   `xml:"name,attr"`
	ValueReference int      `xml:"valueReference,attr"`
	Causality      string   `xml:"causality,attr,omitempty"`
	Variability    string   `xml:"variability,attr,omitempty"`
	Description    string   `xml:"description,attr,omitempty"`
	Real           *TypeTag `xml:"Real"`
	Integer        *TypeTag `xml:"Integer"`
	Boolean        *TypeTag `xml:"Boolean"`
	String         *TypeTag `xml:"String"`
}

// Unknown references a variable index inside ModelStructure.
type Unknown struct {
	Index int `xml:"index,attr"`
}

// CoSimulation declares the co-simulation interface of the FMU.
type CoSimulation struct {
	ModelIdentifier string `xml:"modelIdentifier,attr"`
}

// ModelStructure lists the model's outputs and initial unknowns.
type ModelStructure struct {
	Outputs         *UnknownList `xml:"Outputs"`
	InitialUnknowns *UnknownList `xml:"InitialUnknowns"`
}

// UnknownList wraps a sequence of Unknown elements.
type UnknownList struct {
	Unknowns []Unknown `xml:"Unknown"`
}

// ModelDescription is the root of an FMI 2.0 modelDescription.xml document.
type ModelDescription struct {
	XMLName                  xml.Name         `xml:"fmiModelDescription"`
	FMIVersion               string           `xml:"fmiVersion,attr"`
	ModelName                string           `xml:"modelName,attr"`
	GUID                     string           `xml:"guid,attr"`
	Description              string           `xml:"description,attr"`
	Version                  string           `xml:"version,attr"`
	GenerationTool           string           `xml:"generationTool,attr"`
	GenerationDateAndTime    string           `xml:"generationDateAndTime,attr"`
	VariableNamingConvention string           `xml:"variableNamingConvention,attr"`
	NumberOfEventIndicators  string           `xml:"numberOfEventIndicators,attr"`
	CoSimulation             CoSimulation     `xml:"CoSimulation"`
	ModelVariables           []ScalarVariable `xml:"ModelVariables>ScalarVariable"`
	ModelStructure           ModelStructure   `xml:"ModelStructure"`
}

func typedVariable(v ScalarVariable, primitive, start string) ScalarVariable {
	tag := &TypeTag{Start: start}
	switch primitive {
	case "Integer":
		v.Integer = tag
	case "Boolean":
		v.Boolean = tag
	case "String":
		v.String = tag
	default:
		v.Real = tag
	}
	return v
}

// portVariables expands every port of the part into scalar variables with
// sequential value references starting at startRef. Ports are visited in
// lexical order, leaf fields within a port in lexical suffix order. The
// returned indexes identify output variables.
func portVariables(part *sysml.PartDefinition, arch *sysml.Architecture, startRef int) (vars []ScalarVariable, nextRef int, outputs []int) {
	ports := make([]*sysml.PortEndpoint, len(part.Ports))
	copy(ports, part.Ports)
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })

	ref := startRef
	for _, port := range ports {
		leaves := sysml.ExpandPayload(port.PayloadDef, arch.PortDefinitions)
		sort.Slice(leaves, func(i, j int) bool { return leaves[i].Suffix < leaves[j].Suffix })

		causality := "input"
		if port.Direction == sysml.DirectionOut {
			causality = "output"
		}
		for _, leaf := range leaves {
			name := port.Name
			if leaf.Suffix != "" {
				name = port.Name + "." + leaf.Suffix
			}
			description := leaf.Doc
			if description == "" {
				description = port.Doc
			}
			if description == "" && port.PayloadDef != nil {
				description = port.PayloadDef.Doc
			}
			vars = append(vars, typedVariable(ScalarVariable{
				Name:           name,
				ValueReference: ref,
				Causality:      causality,
				Description:    description,
			}, leaf.Primitive, ""))
			if port.Direction == sysml.DirectionOut {
				outputs = append(outputs, ref)
			}
			ref++
		}
	}
	return vars, ref, outputs
}

// parameterVariables turns the part's attributes into fixed parameters.
// List literals expand into indexed entries typed after their first element.
func parameterVariables(part *sysml.PartDefinition, startRef int) (vars []ScalarVariable, nextRef int) {
	ref := startRef
	for _, name := range part.Attributes.SortedNames() {
		attr, _ := part.Attributes.Get(name)
		value, hasValue := attr.Value()

		if hasValue && value.Kind == sysml.KindList {
			primitive := listPrimitive(attr.Type, value)
			for idx, item := range value.List {
				vars = append(vars, typedVariable(ScalarVariable{
					Name:           fmt.Sprintf("%s[%d]", attr.Name, idx+1),
					ValueReference: ref,
					Causality:      "parameter",
					Variability:    "fixed",
					Description:    attr.Doc,
				}, primitive, item.Format(primitive)))
				ref++
			}
			if len(value.List) > 0 {
				continue
			}
		}

		var sample *sysml.Value
		if hasValue {
			sample = &value
		}
		primitive := sysml.InferPrimitive(attr.Type, sample)
		start := ""
		if hasValue {
			start = value.Format(primitive)
		}
		vars = append(vars, typedVariable(ScalarVariable{
			Name:           attr.Name,
			ValueReference: ref,
			Causality:      "parameter",
			Variability:    "fixed",
			Description:    attr.Doc,
		}, primitive, start))
		ref++
	}
	return vars, ref
}

// listPrimitive infers the element type of a list literal from its first
// non-list element, honoring an explicit declared type first.
func listPrimitive(declared string, list sysml.Value) string {
	if primitive, ok := sysml.LookupPrimitive(declared); ok {
		return primitive
	}
	for _, item := range list.List {
		if primitive, ok := sysml.PrimitiveFromValue(item); ok {
			return primitive
		}
	}
	return "Real"
}

// Build assembles the model description document for one component.
func Build(part *sysml.PartDefinition, arch *sysml.Architecture, generatedAt time.Time) *ModelDescription {
	portVars, nextRef, outputs := portVariables(part, arch, 1)
	paramVars, _ := parameterVariables(part, nextRef)

	doc := &ModelDescription{
		FMIVersion:               "2.0",
		ModelName:                arch.Package + "." + part.Name,
		GUID:                     "{" + modelGUID(arch.Package, part.Name) + "}",
		Description:              part.Doc,
		Version:                  "1.0",
		GenerationTool:           "ssp-airplane tooling",
		GenerationDateAndTime:    generatedAt.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z"),
		VariableNamingConvention: "structured",
		NumberOfEventIndicators:  "0",
		CoSimulation:             CoSimulation{ModelIdentifier: part.Name},
		ModelVariables:           append(portVars, paramVars...),
	}
	if len(outputs) > 0 {
		unknowns := make([]Unknown, len(outputs))
		for i, idx := range outputs {
			unknowns[i] = Unknown{Index: idx}
		}
		doc.ModelStructure.Outputs = &UnknownList{Unknowns: unknowns}
		initial := make([]Unknown, len(unknowns))
		copy(initial, unknowns)
		doc.ModelStructure.InitialUnknowns = &UnknownList{Unknowns: initial}
	}
	return doc
}

// Marshal serializes a model description with an XML declaration and
// two-space indentation.
func Marshal(doc *ModelDescription) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling model description: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// GenerateAll writes one modelDescription.xml per selected component under
// outputDir/<Part>/ and zips each into a stub FMU under fmuDir. It returns
// the written XML paths.
func GenerateAll(arch *sysml.Architecture, outputDir, fmuDir string, components []string) ([]string, error) {
	targets := arch.SelectParts(components)
	var written []string
	now := time.Now()
	for _, part := range targets {
		doc := Build(part, arch, now)
		data, err := Marshal(doc)
		if err != nil {
			return nil, err
		}
		componentDir, err := fsutil.EnsureDir(filepath.Join(outputDir, part.Name))
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(componentDir, "modelDescription.xml")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		written = append(written, outPath)

		if fmuDir != "" {
			if _, err := fsutil.EnsureDir(fmuDir); err != nil {
				return nil, err
			}
			stub := filepath.Join(fmuDir, part.Name+".fmu")
			if err := archive.WriteSingleFile(stub, "modelDescription.xml", outPath); err != nil {
				return nil, err
			}
		}
	}
	return written, nil
}
