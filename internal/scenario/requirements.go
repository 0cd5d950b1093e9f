package scenario

import "fmt"

// RequirementEvaluation is one requirement verdict with the numbers behind
// it.
type RequirementEvaluation struct {
	Identifier string `json:"id"`
	Passed     bool   `json:"passed"`
	Evidence   string `json:"evidence"`
}

// EvaluateRequirements applies the airframe's top-level requirement
// predicates to the run metrics. The reserve is a fraction of capacity;
// landing below it fails REQ_Fuel even with fuel still in the tanks.
func EvaluateRequirements(m *Metrics, fuelCapacityKG, reserveFraction float64) []RequirementEvaluation {
	reserve := fuelCapacityKG * reserveFraction
	return []RequirementEvaluation{
		{
			Identifier: "REQ_Performance",
			Passed:     m.MaxMach >= 2.0 && m.MaxLoadFactorG >= 9.0,
			Evidence:   fmt.Sprintf("mach=%.2f, g-load=%.2f", m.MaxMach, m.MaxLoadFactorG),
		},
		{
			Identifier: "REQ_Fuel",
			Passed:     m.FuelFinalKG >= reserve && m.FuelStarvedEvents == 0,
			Evidence:   fmt.Sprintf("final fuel=%.1f kg, reserve=%.1f kg", m.FuelFinalKG, reserve),
		},
		{
			Identifier: "REQ_Control",
			Passed:     m.AutopilotLimitMax == 0 && m.ControlSurfaceExcursionDeg > 0.0,
			Evidence:   fmt.Sprintf("autopilot_limit=%d, control_excursion=%.2f deg", m.AutopilotLimitMax, m.ControlSurfaceExcursionDeg),
		},
		{
			Identifier: "REQ_Mission",
			Passed:     m.StoresAvailable >= 9,
			Evidence:   fmt.Sprintf("stores_available=%d", m.StoresAvailable),
		},
		{
			Identifier: "REQ_Propulsion",
			Passed:     m.ThrustKNMax > 0.0 && m.MassFlowKGPSMax > 0.0,
			Evidence:   fmt.Sprintf("thrust=%.1f kN, mass_flow=%.2f kg/s", m.ThrustKNMax, m.MassFlowKGPSMax),
		},
	}
}
