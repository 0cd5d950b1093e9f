package sysml

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a decoded literal Value.
type Kind int

const (
	KindReal Kind = iota
	KindInteger
	KindBoolean
	KindString
	KindList
)

// String returns the canonical primitive name for the kind.
func (k Kind) String() string {
	switch k {
	case KindReal:
		return "Real"
	case KindInteger:
		return "Integer"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindList:
		return "List"
	}
	return "Unknown"
}

// Value is a decoded attribute literal. Exactly the field selected by Kind is
// meaningful.
type Value struct {
	Kind    Kind
	Real    float64
	Integer int64
	Boolean bool
	Str     string
	List    []Value
}

// RealValue builds a Real variant.
func RealValue(v float64) Value { return Value{Kind: KindReal, Real: v} }

// IntegerValue builds an Integer variant.
func IntegerValue(v int64) Value { return Value{Kind: KindInteger, Integer: v} }

// BooleanValue builds a Boolean variant.
func BooleanValue(v bool) Value { return Value{Kind: KindBoolean, Boolean: v} }

// StringValue builds a String variant.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// ListValue builds a List variant.
func ListValue(items ...Value) Value { return Value{Kind: KindList, List: items} }

// AsFloat converts numeric and boolean variants to a float64.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindReal:
		return v.Real
	case KindInteger:
		return float64(v.Integer)
	case KindBoolean:
		if v.Boolean {
			return 1
		}
		return 0
	}
	return 0
}

// Format renders the value the way the given FMI primitive expects it:
// Real with the shortest round-trip representation, Integer base-10, Boolean
// lowercase, String verbatim.
func (v Value) Format(primitive string) string {
	switch primitive {
	case "Real":
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case "Integer":
		switch v.Kind {
		case KindInteger:
			return strconv.FormatInt(v.Integer, 10)
		case KindBoolean:
			if v.Boolean {
				return "1"
			}
			return "0"
		default:
			return strconv.FormatInt(int64(v.AsFloat()), 10)
		}
	case "Boolean":
		truthy := v.Kind == KindBoolean && v.Boolean ||
			v.Kind != KindBoolean && v.AsFloat() != 0 ||
			v.Kind == KindString && v.Str != ""
		return strconv.FormatBool(truthy)
	case "String":
		if v.Kind == KindString {
			return v.Str
		}
		return v.text()
	}
	return ""
}

func (v Value) text() string {
	switch v.Kind {
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindInteger:
		return strconv.FormatInt(v.Integer, 10)
	case KindBoolean:
		return strconv.FormatBool(v.Boolean)
	case KindString:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string { return fmt.Sprintf("%s(%s)", v.Kind, v.text()) }

// ParseLiteral decodes a SysML attribute literal through an ordered set of
// typed attempts: quoted string, boolean, bracketed list, integer, real.
// Anything that survives every attempt is returned verbatim as a String. The
// boolean result is false only for empty input.
func ParseLiteral(text string) (Value, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Value{}, false
	}

	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		return StringValue(trimmed[1 : len(trimmed)-1]), true
	}
	if len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'' {
		return StringValue(trimmed[1 : len(trimmed)-1]), true
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return BooleanValue(true), true
	case "false":
		return BooleanValue(false), true
	}

	if isBracketed(trimmed) {
		if list, ok := parseListLiteral(trimmed); ok {
			return list, true
		}
	}

	if !strings.ContainsAny(trimmed, ".eE") {
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return IntegerValue(i), true
		}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return RealValue(f), true
	}

	return StringValue(trimmed), true
}

func isBracketed(text string) bool {
	if len(text) < 2 {
		return false
	}
	first, last := text[0], text[len(text)-1]
	return first == '[' && last == ']' || first == '(' && last == ')'
}

func parseListLiteral(text string) (Value, bool) {
	inner := strings.TrimSpace(text[1 : len(text)-1])
	if inner == "" {
		return ListValue(), true
	}
	items, ok := splitTopLevel(inner)
	if !ok {
		return Value{}, false
	}
	values := make([]Value, 0, len(items))
	for _, item := range items {
		value, ok := ParseLiteral(item)
		if !ok {
			return Value{}, false
		}
		values = append(values, value)
	}
	return ListValue(values...), true
}

// splitTopLevel splits on commas that are not nested inside brackets or
// quotes. Unbalanced input is rejected so it can fall back to a raw string.
func splitTopLevel(text string) ([]string, bool) {
	var items []string
	depth := 0
	inQuote := byte(0)
	start := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inQuote != 0 {
			if ch == inQuote {
				inQuote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			inQuote = ch
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 || inQuote != 0 {
		return nil, false
	}
	items = append(items, strings.TrimSpace(text[start:]))
	return items, true
}
