package sysml

import (
	"encoding/json"

	"github.com/iancoleman/orderedmap"
)

// Snapshot renders the merged architecture as indented JSON with every key
// in lexical order, so two parses of the same folder are byte-identical.
// Absent docs, types, and literals serialize as null.
func Snapshot(arch *Architecture) ([]byte, error) {
	root := orderedmap.New()

	connections := make([]any, 0, len(arch.Connections))
	for _, conn := range arch.Connections {
		entry := orderedmap.New()
		entry.Set("dst_component", conn.DstComponent)
		entry.Set("dst_port", conn.DstPort)
		entry.Set("src_component", conn.SrcComponent)
		entry.Set("src_port", conn.SrcPort)
		connections = append(connections, entry)
	}
	root.Set("connections", connections)
	root.Set("package", arch.Package)

	parts := orderedmap.New()
	for _, name := range arch.PartNames() {
		parts.Set(name, partSnapshot(arch.Parts[name]))
	}
	root.Set("parts", parts)

	portDefs := orderedmap.New()
	for _, name := range arch.PortDefinitionNames() {
		portDefs.Set(name, portDefinitionSnapshot(arch.PortDefinitions[name]))
	}
	root.Set("port_definitions", portDefs)

	requirements := make([]any, 0, len(arch.Requirements))
	for _, req := range arch.Requirements {
		entry := orderedmap.New()
		entry.Set("identifier", req.Identifier)
		entry.Set("text", req.Text)
		requirements = append(requirements, entry)
	}
	root.Set("requirements", requirements)

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func partSnapshot(part *PartDefinition) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("attributes", attributesSnapshot(part.Attributes))
	m.Set("doc", nullable(part.Doc))
	m.Set("name", part.Name)

	refs := make([]any, 0, len(part.Parts))
	for _, ref := range part.Parts {
		entry := orderedmap.New()
		entry.Set("doc", nullable(ref.Doc))
		entry.Set("name", ref.Name)
		entry.Set("target", ref.Target)
		refs = append(refs, entry)
	}
	m.Set("parts", refs)

	ports := make([]any, 0, len(part.Ports))
	for _, port := range part.Ports {
		entry := orderedmap.New()
		entry.Set("direction", string(port.Direction))
		entry.Set("doc", nullable(port.Doc))
		entry.Set("name", port.Name)
		entry.Set("payload", port.Payload)
		if port.PayloadDef != nil {
			entry.Set("payload_def", portDefinitionSnapshot(port.PayloadDef))
		} else {
			entry.Set("payload_def", nil)
		}
		ports = append(ports, entry)
	}
	m.Set("ports", ports)
	return m
}

func portDefinitionSnapshot(def *PortDefinition) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("attributes", attributesSnapshot(def.Attributes))
	m.Set("doc", nullable(def.Doc))
	m.Set("name", def.Name)
	return m
}

func attributesSnapshot(attrs *AttributeSet) *orderedmap.OrderedMap {
	m := orderedmap.New()
	for _, name := range attrs.SortedNames() {
		attr, _ := attrs.Get(name)
		entry := orderedmap.New()
		entry.Set("doc", nullable(attr.Doc))
		entry.Set("name", attr.Name)
		entry.Set("type", nullable(attr.Type))
		entry.Set("value", nullable(attr.Raw))
		m.Set(name, entry)
	}
	return m
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
