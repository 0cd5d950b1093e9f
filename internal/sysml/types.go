package sysml

import "strings"

// primitiveMap maps lower-cased SysML type names to FMI/Modelica primitives.
var primitiveMap = map[string]string{
	"real":    "Real",
	"float":   "Real",
	"float32": "Real",
	"float64": "Real",
	"double":  "Real",
	"integer": "Integer",
	"int":     "Integer",
	"int8":    "Integer",
	"int32":   "Integer",
	"uint8":   "Integer",
	"uint32":  "Integer",
	"boolean": "Boolean",
	"bool":    "Boolean",
	"string":  "String",
}

// NormalizePrimitive returns the canonical primitive for a SysML type name,
// falling back to Real for unknown or empty names.
func NormalizePrimitive(typeName string) string {
	if primitive, ok := LookupPrimitive(typeName); ok {
		return primitive
	}
	return "Real"
}

// LookupPrimitive returns the canonical primitive for a SysML type name. The
// boolean is false for empty or unrecognized names.
func LookupPrimitive(typeName string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(typeName))
	if key == "" {
		return "", false
	}
	primitive, ok := primitiveMap[key]
	return primitive, ok
}

// ModelicaConnectorType maps a SysML type to a Modelica type, preserving
// custom record names that have no primitive equivalent.
func ModelicaConnectorType(typeName string) string {
	if typeName == "" {
		return "Real"
	}
	if primitive, ok := LookupPrimitive(typeName); ok {
		return primitive
	}
	return typeName
}

// PrimitiveFromValue infers a primitive name from a decoded literal. The
// boolean is false for list values, whose element type must be inspected
// instead.
func PrimitiveFromValue(value Value) (string, bool) {
	switch value.Kind {
	case KindBoolean:
		return "Boolean", true
	case KindInteger:
		return "Integer", true
	case KindReal:
		return "Real", true
	case KindString:
		return "String", true
	}
	return "", false
}

// InferPrimitive resolves a primitive from an explicit type hint first and a
// sample literal second, defaulting to Real.
func InferPrimitive(typeName string, sample *Value) string {
	if primitive, ok := LookupPrimitive(typeName); ok {
		return primitive
	}
	if sample != nil {
		if primitive, ok := PrimitiveFromValue(*sample); ok {
			return primitive
		}
	}
	return "Real"
}
