package ssp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/fmi"
	"github.com/jkCXf9X4/ssp-airplane/internal/ssp"
	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

func TestBuildTerminals(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	mc := arch.Parts["MissionComputer"]
	mc.Ports = append(mc.Ports, &sysml.PortEndpoint{
		Name: "rawOut", Direction: sysml.DirectionOut, Payload: "Real",
	})
	mc.Ports = append(mc.Ports, &sysml.PortEndpoint{
		Name: "untyped", Direction: sysml.DirectionIn,
	})

	// --- Act ---
	doc := ssp.BuildTerminals(arch, []string{"MissionComputer"})

	// --- Assert ---
	require.Equal(t, "3.0", doc.FMIVersion)
	require.Len(t, doc.Terminals, 2, "untyped ports carry no terminal")

	nav := doc.Terminals[0]
	require.Equal(t, "MissionComputer_navOut_1", nav.Name)
	require.Equal(t, "plug", nav.MatchingRule)
	require.Equal(t, "NavData", nav.TerminalKind)
	require.Equal(t, []ssp.TerminalMemberVariable{
		{VariableKind: "signal", VariableName: "navOut.latitude_deg", MemberName: "latitude_deg"},
		{VariableKind: "signal", VariableName: "navOut.valid", MemberName: "valid"},
	}, nav.Members)

	raw := doc.Terminals[1]
	require.Equal(t, "MissionComputer_rawOut_1", raw.Name)
	require.Equal(t, []ssp.TerminalMemberVariable{
		{VariableKind: "signal", VariableName: "rawOut", MemberName: "rawOut"},
	}, raw.Members, "primitive payloads map onto a self-named member")
}

func TestBuildTerminalSSD(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	classMap := fmi.ClassMap(arch, "", nil)

	// --- Act ---
	doc, err := ssp.BuildTerminalSSD(arch, classMap, ssp.BuildOptions{StopTime: 60})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "Aircraft", doc.Name)
	require.Equal(t, "root", doc.System.Name)

	require.Len(t, doc.System.Components, 2)
	mc := doc.System.Components[1]
	require.Equal(t, "MissionComputer", mc.Name)
	require.Len(t, mc.Connectors, 1, "one Terminal connector per port, no payload expansion")
	require.Equal(t, "navOut", mc.Connectors[0].Name)
	require.Equal(t, "ssc:Terminal", mc.Connectors[0].Type.XMLName.Local)

	require.Equal(t, []ssp.Connection{
		{
			StartElement:   "MissionComputer",
			StartConnector: "navOut",
			EndElement:     "AutopilotModule",
			EndConnector:   "navIn",
		},
	}, doc.System.Connections)
}

func TestBuildTerminalSSD_MissingClassMapEntry(t *testing.T) {
	t.Parallel()

	arch := twoPartArchitecture(t)

	_, err := ssp.BuildTerminalSSD(arch, map[string]string{}, ssp.BuildOptions{})

	require.Error(t, err)
	require.Contains(t, err.Error(), "no Modelica class map defined")
}

func TestTerminalsMarshal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := twoPartArchitecture(t)
	doc := ssp.BuildTerminals(arch, nil)

	// --- Act ---
	data, err := ssp.MarshalDocument(doc)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, string(data), `<fmiTerminalsAndIcons fmiVersion="3.0">`)
	require.Contains(t, string(data), `matchingRule="plug"`)
}
