package sysml_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

func portDef(name string, attrs ...*sysml.Attribute) *sysml.PortDefinition {
	set := sysml.NewAttributeSet()
	for _, attr := range attrs {
		set.Add(attr)
	}
	return &sysml.PortDefinition{Name: name, Attributes: set}
}

func TestExpandPayload_FlatSchema(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	def := portDef("NavData",
		&sysml.Attribute{Name: "latitude_deg", Type: "Real", Doc: "Latitude."},
		&sysml.Attribute{Name: "valid", Type: "bool"},
	)

	// --- Act ---
	leaves := sysml.ExpandPayload(def, nil)

	// --- Assert ---
	require.Equal(t, []sysml.LeafField{
		{Suffix: "latitude_deg", Primitive: "Real", Doc: "Latitude."},
		{Suffix: "valid", Primitive: "Boolean"},
	}, leaves)
}

func TestExpandPayload_NestedSchema(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	inner := portDef("Position",
		&sysml.Attribute{Name: "x_km", Type: "Real"},
		&sysml.Attribute{Name: "y_km", Type: "Real"},
	)
	outer := portDef("Track",
		&sysml.Attribute{Name: "position", Type: "Position"},
		&sysml.Attribute{Name: "speed_mps", Type: "Real"},
	)
	defs := map[string]*sysml.PortDefinition{"Position": inner, "Track": outer}

	// --- Act ---
	leaves := sysml.ExpandPayload(outer, defs)

	// --- Assert ---
	require.Equal(t, []sysml.LeafField{
		{Suffix: "position.x_km", Primitive: "Real"},
		{Suffix: "position.y_km", Primitive: "Real"},
		{Suffix: "speed_mps", Primitive: "Real"},
	}, leaves)
}

func TestExpandPayload_EmptyAndNilCollapseToScalar(t *testing.T) {
	t.Parallel()

	scalar := []sysml.LeafField{{Suffix: "", Primitive: "Real"}}

	require.Equal(t, scalar, sysml.ExpandPayload(nil, nil))
	require.Equal(t, scalar, sysml.ExpandPayload(portDef("Empty"), nil))
}

func TestExpandPayload_CycleCollapsesToScalar(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	looped := portDef("Loop", &sysml.Attribute{Name: "next", Type: "Loop"})
	defs := map[string]*sysml.PortDefinition{"Loop": looped}

	// --- Act ---
	leaves := sysml.ExpandPayload(looped, defs)

	// --- Assert ---
	require.Equal(t, []sysml.LeafField{{Suffix: "next", Primitive: "Real"}}, leaves)
}
