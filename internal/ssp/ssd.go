// Package ssp builds SSP (System Structure and Parameterization) documents
// and archives: the system structure description, parameter sets, FMI
// terminal definitions, and the packaged .ssp container.
package ssp

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// SSP 1.0 namespace URIs.
const (
	NamespaceSSD = "http://ssp-standard.org/SSP1/SystemStructureDescription"
	NamespaceSSC = "http://ssp-standard.org/SSP1/SystemStructureCommon"
	NamespaceSSV = "http://ssp-standard.org/SSP1/ParameterValues"
)

// TypeElement is a connector or parameter type tag in the ssc namespace,
// e.g. <ssc:Real/>. Name selects the element; Terminal connectors use the
// dedicated Terminal marker instead.
type TypeElement struct {
	XMLName xml.Name
	Value   string `xml:"value,attr,omitempty"`
}

func sscType(primitive string) TypeElement {
	return TypeElement{XMLName: xml.Name{Local: "ssc:" + primitive}}
}

// Connector is a typed port or parameter endpoint on a component.
type Connector struct {
	Name string      `xml:"name,attr"`
	Kind string      `xml:"kind,attr"`
	Type TypeElement `xml:",any"`
}

// Component references an FMU and exposes its connectors.
type Component struct {
	Name       string      `xml:"name,attr"`
	Type       string      `xml:"type,attr"`
	Source     string      `xml:"source,attr"`
	Connectors []Connector `xml:"ssd:Connectors>ssd:Connector"`
}

// Connection wires two component connectors together.
type Connection struct {
	StartElement   string `xml:"startElement,attr"`
	StartConnector string `xml:"startConnector,attr"`
	EndElement     string `xml:"endElement,attr"`
	EndConnector   string `xml:"endConnector,attr"`
}

// ParameterBinding references a parameter-value resource inside the archive.
type ParameterBinding struct {
	Source string `xml:"source,attr"`
}

// System is the single root system of the description.
type System struct {
	Name              string             `xml:"name,attr"`
	Components        []Component        `xml:"ssd:Elements>ssd:Component"`
	Connections       []Connection       `xml:"ssd:Connections>ssd:Connection"`
	ParameterBindings []ParameterBinding `xml:"ssd:ParameterBindings>ssd:ParameterBinding,omitempty"`
}

// DefaultExperiment is the simulation window hint.
type DefaultExperiment struct {
	StartTime string `xml:"startTime,attr"`
	StopTime  string `xml:"stopTime,attr"`
}

// Document is the root SystemStructureDescription element.
type Document struct {
	XMLName           xml.Name          `xml:"ssd:SystemStructureDescription"`
	XMLNSSSD          string            `xml:"xmlns:ssd,attr"`
	XMLNSSSC          string            `xml:"xmlns:ssc,attr"`
	Name              string            `xml:"name,attr"`
	Version           string            `xml:"version,attr"`
	System            System            `xml:"ssd:System"`
	DefaultExperiment DefaultExperiment `xml:"ssd:DefaultExperiment"`
}

// BuildOptions parameterize SSD generation.
type BuildOptions struct {
	// ClassMap resolves component names to Modelica classes for FMU sources.
	ClassMap map[string]string
	// Experiment start and stop times in seconds.
	StartTime float64
	StopTime  float64
}

// sanitizeComponentName maps a part name onto a display name containing only
// alphanumerics and underscores, de-duplicating collisions with a numeric
// suffix.
func sanitizeComponentName(name string, used map[string]string) string {
	var b strings.Builder
	for _, ch := range name {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "Component"
	}
	taken := map[string]bool{}
	for _, existing := range used {
		taken[existing] = true
	}
	candidate := base
	for suffix := 2; taken[candidate]; suffix++ {
		candidate = base + strconv.Itoa(suffix)
	}
	return candidate
}

// portConnectors expands one endpoint into its connector entries and records
// the suffix-to-connector mapping used for connection matching.
func portConnectors(port *sysml.PortEndpoint, arch *sysml.Architecture) ([]Connector, map[string]string) {
	var kind string
	switch port.Direction {
	case sysml.DirectionIn:
		kind = "input"
	case sysml.DirectionOut:
		kind = "output"
	default:
		return nil, nil
	}
	leaves := sysml.ExpandPayload(port.PayloadDef, arch.PortDefinitions)
	connectors := make([]Connector, 0, len(leaves))
	bySuffix := make(map[string]string, len(leaves))
	for _, leaf := range leaves {
		name := port.Name
		if leaf.Suffix != "" {
			name = port.Name + "." + leaf.Suffix
		}
		connectors = append(connectors, Connector{Name: name, Kind: kind, Type: sscType(leaf.Primitive)})
		bySuffix[leaf.Suffix] = name
	}
	return connectors, bySuffix
}

// parameterConnectors exposes part attributes as parameter connectors. List
// literals expand into indexed entries typed after their first element.
func parameterConnectors(attrs *sysml.AttributeSet) []Connector {
	var connectors []Connector
	for _, name := range attrs.SortedNames() {
		attr, _ := attrs.Get(name)
		value, hasValue := attr.Value()

		if hasValue && value.Kind == sysml.KindList && len(value.List) > 0 {
			primitive := listElementPrimitive(attr.Type, value)
			for idx := range value.List {
				connectors = append(connectors, Connector{
					Name: fmt.Sprintf("%s[%d]", attr.Name, idx+1),
					Kind: "parameter",
					Type: sscType(primitive),
				})
			}
			continue
		}

		var sample *sysml.Value
		if hasValue && value.Kind != sysml.KindList {
			sample = &value
		}
		connectors = append(connectors, Connector{
			Name: attr.Name,
			Kind: "parameter",
			Type: sscType(sysml.InferPrimitive(attr.Type, sample)),
		})
	}
	return connectors
}

func listElementPrimitive(declared string, list sysml.Value) string {
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

// BuildSSD assembles the system structure description for the architecture.
// Connections whose endpoints cannot be expanded to matching connector shapes
// are dropped, but never silently: each drop is logged with both endpoints so
// authoring mistakes surface in the pipeline output.
func BuildSSD(ctx context.Context, arch *sysml.Architecture, opts BuildOptions) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	classMap := opts.ClassMap
	if classMap == nil {
		classMap = fmi.ClassMap(arch, "", nil)
	}

	systemName := arch.Package
	displayNames := map[string]string{}
	connectorLookup := map[string]map[string]map[string]string{}

	var components []Component
	for _, partName := range arch.PartNames() {
		if partName == systemName {
			continue
		}
		part := arch.Parts[partName]
		displayNames[partName] = sanitizeComponentName(partName, displayNames)

		source, err := fmi.ComponentSource(partName, classMap)
		if err != nil {
			return nil, err
		}

		component := Component{
			Name:   displayNames[partName],
			Type:   "application/x-fmu-sharedlibrary",
			Source: source,
		}

		portMap := map[string]map[string]string{}
		for _, port := range part.Ports {
			connectors, bySuffix := portConnectors(port, arch)
			if len(connectors) == 0 {
				continue
			}
			portMap[port.Name] = bySuffix
			component.Connectors = append(component.Connectors, connectors...)
		}
		component.Connectors = append(component.Connectors, parameterConnectors(part.Attributes)...)
		connectorLookup[partName] = portMap
		components = append(components, component)
	}

	var connections []Connection
	for _, conn := range arch.Connections {
		startElement := displayNames[conn.SrcComponent]
		endElement := displayNames[conn.DstComponent]
		if startElement == "" || endElement == "" {
			logger.Warn("dropping connection with unknown component",
				"from", conn.SrcComponent+"."+conn.SrcPort,
				"to", conn.DstComponent+"."+conn.DstPort)
			continue
		}
		startVariants := connectorLookup[conn.SrcComponent][conn.SrcPort]
		endVariants := connectorLookup[conn.DstComponent][conn.DstPort]
		if len(startVariants) == 0 || len(endVariants) == 0 {
			logger.Warn("dropping connection with unexpandable port",
				"from", conn.SrcComponent+"."+conn.SrcPort,
				"to", conn.DstComponent+"."+conn.DstPort)
			continue
		}

		suffixes := make([]string, 0, len(startVariants))
		for suffix := range startVariants {
			suffixes = append(suffixes, suffix)
		}
		sort.Strings(suffixes)
		for _, suffix := range suffixes {
			endConnector, ok := endVariants[suffix]
			if !ok {
				logger.Warn("dropping connection variant with mismatched payload field",
					"from", conn.SrcComponent+"."+startVariants[suffix],
					"to", conn.DstComponent+"."+conn.DstPort,
					"field", suffix)
				continue
			}
			connections = append(connections, Connection{
				StartElement:   startElement,
				StartConnector: startVariants[suffix],
				EndElement:     endElement,
				EndConnector:   endConnector,
			})
		}
	}

	return &Document{
		XMLNSSSD: NamespaceSSD,
		XMLNSSSC: NamespaceSSC,
		Name:     systemName,
		Version:  "1.0",
		System: System{
			Name:        systemName,
			Components:  components,
			Connections: connections,
		},
		DefaultExperiment: DefaultExperiment{
			StartTime: formatSeconds(opts.StartTime),
			StopTime:  formatSeconds(opts.StopTime),
		},
	}, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MarshalDocument serializes an SSD document with the XML declaration.
func MarshalDocument(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling SSP document: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
