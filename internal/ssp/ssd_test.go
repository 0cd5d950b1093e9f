package ssp_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// twoPartArchitecture wires MissionComputer.navOut into AutopilotModule.navIn
// over a two-field payload.
func twoPartArchitecture(t *testing.T) *sysml.Architecture {
	t.Helper()

	nav := sysml.NewAttributeSet()
	nav.Add(&sysml.Attribute{Name: "latitude_deg", Type: "Real"})
	nav.Add(&sysml.Attribute{Name: "valid", Type: "bool"})
	navDef := &sysml.PortDefinition{Name: "NavData", Attributes: nav}

	mcAttrs := sysml.NewAttributeSet()
	mcAttrs.Add(&sysml.Attribute{Name: "cruiseSpeed", Type: "Real", Raw: "250.0"})
	mcAttrs.Add(&sysml.Attribute{Name: "waypointX_km", Raw: "[0.0, 10.5]"})

	mc := &sysml.PartDefinition{
		Name:       "MissionComputer",
		Attributes: mcAttrs,
		Ports: []*sysml.PortEndpoint{
			{Name: "navOut", Direction: sysml.DirectionOut, Payload: "NavData", PayloadDef: navDef},
		},
	}
	ap := &sysml.PartDefinition{
		Name:       "AutopilotModule",
		Attributes: sysml.NewAttributeSet(),
		Ports: []*sysml.PortEndpoint{
			{Name: "navIn", Direction: sysml.DirectionIn, Payload: "NavData", PayloadDef: navDef},
		},
	}

	return &sysml.Architecture{
		Package: "Aircraft",
		Parts: map[string]*sysml.PartDefinition{
			"MissionComputer": mc,
			"AutopilotModule": ap,
		},
		PortDefinitions: map[string]*sysml.PortDefinition{"NavData": navDef},
		Connections: []sysml.Connection{
			{SrcComponent: "MissionComputer", SrcPort: "navOut", DstComponent: "AutopilotModule", DstPort: "navIn"},
		},
	}
}

func TestBuildSSD(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)

	// --- Act ---
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{StartTime: 0, StopTime: 3600})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "Aircraft", doc.Name)
	require.Equal(t, "Aircraft", doc.System.Name)
	require.Equal(t, "0", doc.DefaultExperiment.StartTime)
	require.Equal(t, "3600", doc.DefaultExperiment.StopTime)

	require.Len(t, doc.System.Components, 2)
	ap := doc.System.Components[0]
	mc := doc.System.Components[1]
	require.Equal(t, "AutopilotModule", ap.Name)
	require.Equal(t, "application/x-fmu-sharedlibrary", ap.Type)
	require.Equal(t, "resources/Aircraft_AutopilotModule.fmu", ap.Source)

	// Payload expansion yields one connector per leaf field plus parameter
	// connectors for the attributes.
	mcNames := make([]string, 0, len(mc.Connectors))
	for _, c := range mc.Connectors {
		mcNames = append(mcNames, c.Name)
	}
	require.Equal(t, []string{
		"navOut.latitude_deg",
		"navOut.valid",
		"cruiseSpeed",
		"waypointX_km[1]",
		"waypointX_km[2]",
	}, mcNames)
	require.Equal(t, "output", mc.Connectors[0].Kind)
	require.Equal(t, "ssc:Real", mc.Connectors[0].Type.XMLName.Local)
	require.Equal(t, "ssc:Boolean", mc.Connectors[1].Type.XMLName.Local)
	require.Equal(t, "parameter", mc.Connectors[2].Kind)

	require.Equal(t, []ssp.Connection{
		{
			StartElement:   "MissionComputer",
			StartConnector: "navOut.latitude_deg",
			EndElement:     "AutopilotModule",
			EndConnector:   "navIn.latitude_deg",
		},
		{
			StartElement:   "MissionComputer",
			StartConnector: "navOut.valid",
			EndElement:     "AutopilotModule",
			EndConnector:   "navIn.valid",
		},
	}, doc.System.Connections)
}

func TestBuildSSD_DropsUnmatchableConnections(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	arch.Connections = append(arch.Connections,
		sysml.Connection{SrcComponent: "Ghost", SrcPort: "out", DstComponent: "AutopilotModule", DstPort: "navIn"},
		sysml.Connection{SrcComponent: "MissionComputer", SrcPort: "missing", DstComponent: "AutopilotModule", DstPort: "navIn"},
	)

	// --- Act ---
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, doc.System.Connections, 2, "only the valid connection's two field variants survive")
}

func TestBuildSSD_SkipsPartNamedAfterPackage(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	arch.Parts["Aircraft"] = &sysml.PartDefinition{Name: "Aircraft", Attributes: sysml.NewAttributeSet()}

	// --- Act ---
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, doc.System.Components, 2)
	for _, comp := range doc.System.Components {
		require.NotEqual(t, "Aircraft", comp.Name)
	}
}

func TestMarshalDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	doc, err := ssp.BuildSSD(context.Background(), arch, ssp.BuildOptions{StopTime: 120})
	require.NoError(t, err)

	// --- Act ---
	data, err := ssp.MarshalDocument(doc)
	require.NoError(t, err)
	parsed, err := ssp.ParseDocument(data)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, string(data), `xmlns:ssd="http://ssp-standard.org/SSP1/SystemStructureDescription"`)
	require.Equal(t, doc.Name, parsed.Name)
	require.Equal(t, doc.System.Connections, parsed.System.Connections)
	require.Len(t, parsed.System.Components, len(doc.System.Components))
	require.Equal(t, doc.System.Components[0].Connectors, parsed.System.Components[0].Connectors)
}

func TestAddParameterBinding_Deduplicates(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := &ssp.Document{}
	doc.AddParameterBinding("resources/defaults.ssv")
	doc.AddParameterBinding("resources/waypoints.ssv")

	// --- Act ---
	doc.AddParameterBinding("resources/defaults.ssv")

	// --- Assert ---
	require.Equal(t, []ssp.ParameterBinding{
		{Source: "resources/waypoints.ssv"},
		{Source: "resources/defaults.ssv"},
	}, doc.System.ParameterBindings)
}
