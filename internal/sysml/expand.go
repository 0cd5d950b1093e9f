package sysml

// LeafField is one flattened field of an expanded payload: the dotted path
// below the port name (empty for a bare scalar) and its primitive type.
type LeafField struct {
	Suffix    string
	Primitive string
	Doc       string
}

// ExpandPayload flattens a payload schema into its leaf fields. Attributes
// whose declared type names another payload definition expand recursively
// with dotted-path suffixes. A nil or empty payload, or a payload already on
// the expansion path (a definition cycle), collapses to a single Real scalar.
func ExpandPayload(def *PortDefinition, defs map[string]*PortDefinition) []LeafField {
	return expandPayload(def, defs, nil)
}

func expandPayload(def *PortDefinition, defs map[string]*PortDefinition, visited []string) []LeafField {
	if def == nil {
		return []LeafField{{Suffix: "", Primitive: "Real"}}
	}
	for _, name := range visited {
		if name == def.Name {
			return []LeafField{{Suffix: "", Primitive: "Real"}}
		}
	}

	var leaves []LeafField
	for _, attr := range def.Attributes.All() {
		if nested, ok := defs[attr.Type]; ok {
			for _, leaf := range expandPayload(nested, defs, append(visited, def.Name)) {
				suffix := attr.Name
				if leaf.Suffix != "" {
					suffix = attr.Name + "." + leaf.Suffix
				}
				leaves = append(leaves, LeafField{Suffix: suffix, Primitive: leaf.Primitive, Doc: leaf.Doc})
			}
			continue
		}
		leaves = append(leaves, LeafField{
			Suffix:    attr.Name,
			Primitive: NormalizePrimitive(attr.Type),
			Doc:       attr.Doc,
		})
	}
	if len(leaves) == 0 {
		return []LeafField{{Suffix: "", Primitive: "Real"}}
	}
	return leaves
}
