// Package verify cross-checks the parsed architecture against itself, the
// Modelica models, and the exported FMUs. Each check returns the list of
// issues found; an empty list means the check passed.
package verify

import (
	"fmt"

	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

// Connections validates every connection endpoint: both components must
// exist, both ports must exist on them, and the directions must form an
// out-to-in pair.
func Connections(arch *sysml.Architecture) []string {
	var issues []string
	for _, conn := range arch.Connections {
		src := conn.SrcComponent + "." + conn.SrcPort
		dst := conn.DstComponent + "." + conn.DstPort

		srcPart, ok := arch.Part(conn.SrcComponent)
		if !ok {
			issues = append(issues, fmt.Sprintf("Unknown component in 'from': %s", src))
			continue
		}
		dstPart, ok := arch.Part(conn.DstComponent)
		if !ok {
			issues = append(issues, fmt.Sprintf("Unknown component in 'to': %s", dst))
			continue
		}

		srcPort, ok := srcPart.Port(conn.SrcPort)
		if !ok {
			issues = append(issues, fmt.Sprintf("Port %s missing on component %s", conn.SrcPort, conn.SrcComponent))
			continue
		}
		dstPort, ok := dstPart.Port(conn.DstPort)
		if !ok {
			issues = append(issues, fmt.Sprintf("Port %s missing on component %s", conn.DstPort, conn.DstComponent))
			continue
		}

		if srcPort.Direction == sysml.DirectionIn && dstPort.Direction == sysml.DirectionIn {
			issues = append(issues, fmt.Sprintf("In-to-in connection detected: %s -> %s", src, dst))
		}
		if srcPort.Direction == sysml.DirectionOut && dstPort.Direction == sysml.DirectionOut {
			issues = append(issues, fmt.Sprintf("Out-to-out connection detected: %s -> %s", src, dst))
		}
	}
	return issues
}

// Interfaces validates the architecture's payload wiring: every typed port
// must resolve to a known payload definition, and no part may declare the
// same port name twice.
func Interfaces(arch *sysml.Architecture) []string {
	var issues []string
	for _, partName := range arch.PartNames() {
		part := arch.Parts[partName]
		seen := map[string]bool{}
		for _, port := range part.Ports {
			if seen[port.Name] {
				issues = append(issues, fmt.Sprintf("%s declares port %q more than once", partName, port.Name))
			}
			seen[port.Name] = true
			if port.Payload != "" && port.PayloadDef == nil {
				if _, primitive := sysml.LookupPrimitive(port.Payload); !primitive {
					issues = append(issues, fmt.Sprintf("%s.%s references unknown payload %q", partName, port.Name, port.Payload))
				}
			}
			if port.Direction != sysml.DirectionIn && port.Direction != sysml.DirectionOut {
				issues = append(issues, fmt.Sprintf("%s.%s has unknown direction %q", partName, port.Name, port.Direction))
			}
		}
	}
	return issues
}
