package ssp

import (
	"encoding/xml"
	"fmt"

	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// Parameter is one named entry of a parameter set. The typed value element
// carries the formatted literal, or no value attribute when the attribute has
// no literal.
type Parameter struct {
	Name  string      `xml:"name,attr"`
	Value TypeElement `xml:",any"`
}

func ssvType(primitive, value string) TypeElement {
	return TypeElement{XMLName: xml.Name{Local: "ssv:" + primitive}, Value: value}
}

// ParameterSet is the root of a .ssv document.
type ParameterSet struct {
	XMLName    xml.Name    `xml:"ssv:ParameterSet"`
	XMLNSSSV   string      `xml:"xmlns:ssv,attr"`
	Name       string      `xml:"name,attr"`
	Version    string      `xml:"version,attr,omitempty"`
	Parameters []Parameter `xml:"ssv:Parameters>ssv:Parameter"`
}

// NewParameterSet returns an empty named parameter set in the SSV namespace.
func NewParameterSet(name, version string) *ParameterSet {
	return &ParameterSet{XMLNSSSV: NamespaceSSV, Name: name, Version: version}
}

// AddReal appends a Real parameter with a pre-formatted value.
func (s *ParameterSet) AddReal(name, value string) {
	s.Parameters = append(s.Parameters, Parameter{Name: name, Value: ssvType("Real", value)})
}

// AddInteger appends an Integer parameter.
func (s *ParameterSet) AddInteger(name string, value int) {
	s.Parameters = append(s.Parameters, Parameter{Name: name, Value: ssvType("Integer", fmt.Sprintf("%d", value))})
}

// BuildParameterSet collects the attributes of the selected components into
// the ArchitecturalDefaults parameter set. Entries are named
// <Part>.<attribute>, parts in the given order (or all parts sorted),
// attributes sorted within each part. List literals expand into indexed
// entries so vector defaults survive the flat parameter namespace.
func BuildParameterSet(arch *sysml.Architecture, components []string) *ParameterSet {
	set := NewParameterSet("ArchitecturalDefaults", "1.0")
	for _, part := range arch.SelectParts(components) {
		for _, attrName := range part.Attributes.SortedNames() {
			attr, _ := part.Attributes.Get(attrName)
			fullName := part.Name + "." + attr.Name
			value, hasValue := attr.Value()

			if hasValue && value.Kind == sysml.KindList && len(value.List) > 0 {
				primitive := listElementPrimitive(attr.Type, value)
				for idx, item := range value.List {
					set.Parameters = append(set.Parameters, Parameter{
						Name:  fmt.Sprintf("%s[%d]", fullName, idx+1),
						Value: ssvType(primitive, item.Format(primitive)),
					})
				}
				continue
			}

			var sample *sysml.Value
			if hasValue && value.Kind != sysml.KindList {
				sample = &value
			}
			primitive := sysml.InferPrimitive(attr.Type, sample)
			formatted := ""
			if sample != nil {
				formatted = sample.Format(primitive)
			}
			set.Parameters = append(set.Parameters, Parameter{
				Name:  fullName,
				Value: ssvType(primitive, formatted),
			})
		}
	}
	return set
}
