package sysml

import (
	"sort"
	"strings"
)

// Direction classifies a port endpoint as consuming or producing its payload.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Attribute is a single named field inside a part or port definition. The
// literal value, when present, is kept as raw text; use Value to decode it.
type Attribute struct {
	Name string
	Type string // declared type name, "" when omitted
	Raw  string // literal text after '=', "" when omitted
	Doc  string
}

// Value decodes the attribute's raw literal. The boolean is false when the
// attribute carries no literal at all.
func (a *Attribute) Value() (Value, bool) {
	return ParseLiteral(a.Raw)
}

// AttributeSet stores attributes in declaration order while allowing lookup
// by name. Generators that need stable output sort the names themselves.
type AttributeSet struct {
	order  []string
	byName map[string]*Attribute
}

// NewAttributeSet returns an empty attribute collection.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{byName: map[string]*Attribute{}}
}

// Add inserts or replaces an attribute. A replaced attribute keeps its
// original position, mirroring map assignment in the source language of the
// architecture files.
func (s *AttributeSet) Add(attr *Attribute) {
	if _, exists := s.byName[attr.Name]; !exists {
		s.order = append(s.order, attr.Name)
	}
	s.byName[attr.Name] = attr
}

// Get returns the attribute with the given name.
func (s *AttributeSet) Get(name string) (*Attribute, bool) {
	attr, ok := s.byName[name]
	return attr, ok
}

// Has reports whether an attribute with the given name exists.
func (s *AttributeSet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of attributes.
func (s *AttributeSet) Len() int { return len(s.order) }

// Names returns attribute names in declaration order.
func (s *AttributeSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SortedNames returns attribute names in lexical order.
func (s *AttributeSet) SortedNames() []string {
	out := s.Names()
	sort.Strings(out)
	return out
}

// All returns the attributes in declaration order.
func (s *AttributeSet) All() []*Attribute {
	out := make([]*Attribute, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// PortDefinition is the payload schema of a port: the named fields carried by
// every endpoint typed with it.
type PortDefinition struct {
	Name       string
	Doc        string
	Attributes *AttributeSet
}

// PortEndpoint is a port instance declared on a part. PayloadDef is resolved
// in a post-pass once every port definition is known and stays nil when the
// payload name is unknown.
type PortEndpoint struct {
	Name       string
	Direction  Direction
	Payload    string
	Doc        string
	PayloadDef *PortDefinition
}

// PartReference is a nested sub-part declaration inside a part definition.
type PartReference struct {
	Name   string
	Target string
	Doc    string
}

// PartDefinition describes one component of the architecture.
type PartDefinition struct {
	Name       string
	Doc        string
	Attributes *AttributeSet
	Ports      []*PortEndpoint
	Parts      []*PartReference
}

// Port returns the endpoint with the given name declared on this part.
func (p *PartDefinition) Port(name string) (*PortEndpoint, bool) {
	for _, port := range p.Ports {
		if port.Name == name {
			return port, true
		}
	}
	return nil, false
}

// Requirement is an informational requirement extracted from a comment block.
type Requirement struct {
	Identifier string
	Text       string
}

// Connection is a directed edge between two component ports.
type Connection struct {
	SrcComponent string
	SrcPort      string
	DstComponent string
	DstPort      string
}

// Architecture is the merged, read-only view of every .sysml file in a
// folder. It is built once per parse and never mutated afterwards.
type Architecture struct {
	Package         string
	Parts           map[string]*PartDefinition
	PortDefinitions map[string]*PortDefinition
	Requirements    []Requirement
	Connections     []Connection
}

// Part returns the part definition with the given name.
func (a *Architecture) Part(name string) (*PartDefinition, bool) {
	part, ok := a.Parts[name]
	return part, ok
}

// PortDefinition returns the payload schema with the given name.
func (a *Architecture) PortDefinition(name string) (*PortDefinition, bool) {
	def, ok := a.PortDefinitions[name]
	return def, ok
}

// PartNames returns the part definition names in lexical order.
func (a *Architecture) PartNames() []string {
	names := make([]string, 0, len(a.Parts))
	for name := range a.Parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PortDefinitionNames returns the payload schema names in lexical order.
func (a *Architecture) PortDefinitionNames() []string {
	names := make([]string, 0, len(a.PortDefinitions))
	for name := range a.PortDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectParts resolves an optional subset of part names. An empty subset
// selects every part in lexical order; unknown or repeated names are skipped.
func (a *Architecture) SelectParts(names []string) []*PartDefinition {
	if len(names) == 0 {
		parts := make([]*PartDefinition, 0, len(a.Parts))
		for _, name := range a.PartNames() {
			parts = append(parts, a.Parts[name])
		}
		return parts
	}
	seen := map[string]bool{}
	var parts []*PartDefinition
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		part, ok := a.Parts[name]
		if !ok {
			continue
		}
		parts = append(parts, part)
		seen[name] = true
	}
	return parts
}
