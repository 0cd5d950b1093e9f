package ssp

import (
	"encoding/xml"
	"strconv"

	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// TerminalMemberVariable maps one signal of a terminal onto a model variable.
type TerminalMemberVariable struct {
	VariableKind string `xml:"variableKind,attr"`
	VariableName string `xml:"variableName,attr"`
	MemberName   string `xml:"memberName,attr"`
	Description  string `xml:"description,attr,omitempty"`
}

// Terminal groups the member variables of one structured port.
type Terminal struct {
	Name         string                   `xml:"name,attr"`
	MatchingRule string                   `xml:"matchingRule,attr"`
	TerminalKind string                   `xml:"terminalKind,attr"`
	Description  string                   `xml:"description,attr,omitempty"`
	Members      []TerminalMemberVariable `xml:"TerminalMemberVariable"`
}

// TerminalsAndIcons is the root of an fmiTerminalsAndIcons document.
type TerminalsAndIcons struct {
	XMLName    xml.Name   `xml:"fmiTerminalsAndIcons"`
	FMIVersion string     `xml:"fmiVersion,attr"`
	Terminals  []Terminal `xml:"Terminals>Terminal"`
}

// terminalMembers lists the (member, variable, description) triples of one
// port: one entry per payload attribute, or a single self-named entry for
// primitive payloads.
func terminalMembers(port *sysml.PortEndpoint) []TerminalMemberVariable {
	if port.PayloadDef == nil || port.PayloadDef.Attributes.Len() == 0 {
		return []TerminalMemberVariable{{
			VariableKind: "signal",
			VariableName: port.Name,
			MemberName:   port.Name,
			Description:  port.Doc,
		}}
	}
	var members []TerminalMemberVariable
	for _, attrName := range port.PayloadDef.Attributes.SortedNames() {
		attr, _ := port.PayloadDef.Attributes.Get(attrName)
		members = append(members, TerminalMemberVariable{
			VariableKind: "signal",
			VariableName: port.Name + "." + attr.Name,
			MemberName:   attr.Name,
			Description:  attr.Doc,
		})
	}
	return members
}

// BuildTerminals creates one terminal per typed port of the selected
// components, named <Part>_<port>_<n> so repeated port names stay unique.
// Ports without a payload type carry no terminal.
func BuildTerminals(arch *sysml.Architecture, components []string) *TerminalsAndIcons {
	doc := &TerminalsAndIcons{FMIVersion: "3.0"}
	for _, part := range arch.SelectParts(components) {
		counters := map[string]int{}
		for _, port := range part.Ports {
			if port.Payload == "" {
				continue
			}
			counters[port.Name]++
			doc.Terminals = append(doc.Terminals, Terminal{
				Name:         part.Name + "_" + port.Name + "_" + strconv.Itoa(counters[port.Name]),
				MatchingRule: "plug",
				TerminalKind: port.Payload,
				Description:  port.Doc,
				Members:      terminalMembers(port),
			})
		}
	}
	return doc
}

// BuildTerminalSSD assembles the compact SSD variant that leaves connector
// structure to FMI terminals: each port becomes a single Terminal-typed
// connector and connections carry the raw port names.
func BuildTerminalSSD(arch *sysml.Architecture, classMap map[string]string, opts BuildOptions) (*Document, error) {
	systemName := arch.Package
	displayNames := map[string]string{}

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
		for _, port := range part.Ports {
			var kind string
			switch port.Direction {
			case sysml.DirectionIn:
				kind = "input"
			case sysml.DirectionOut:
				kind = "output"
			default:
				continue
			}
			component.Connectors = append(component.Connectors, Connector{
				Name: port.Name,
				Kind: kind,
				Type: TypeElement{XMLName: xml.Name{Local: "ssc:Terminal"}},
			})
		}
		components = append(components, component)
	}

	var connections []Connection
	for _, conn := range arch.Connections {
		startElement := displayNames[conn.SrcComponent]
		endElement := displayNames[conn.DstComponent]
		if startElement == "" || endElement == "" {
			continue
		}
		connections = append(connections, Connection{
			StartElement:   startElement,
			StartConnector: conn.SrcPort,
			EndElement:     endElement,
			EndConnector:   conn.DstPort,
		})
	}

	return &Document{
		XMLNSSSD: NamespaceSSD,
		XMLNSSSC: NamespaceSSC,
		Name:     systemName,
		Version:  "1.0",
		System: System{
			Name:        "root",
			Components:  components,
			Connections: connections,
		},
		DefaultExperiment: DefaultExperiment{
			StartTime: formatSeconds(opts.StartTime),
			StopTime:  formatSeconds(opts.StopTime),
		},
	}, nil
}
