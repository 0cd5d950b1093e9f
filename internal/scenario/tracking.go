package scenario

import (
	"math"

	"github.com/jkCXf9X4/ssp-airplane/internal/geo"
)

// TrackingMetrics grade how closely the flown track followed the plan.
// Distances are planar 2D in the local frame; altitude misses are the
// autopilot's vertical loop's problem, not the router's.
type TrackingMetrics struct {
	MissMaxKM               float64 `json:"waypoint_miss_max_km"`
	MissAvgKM               float64 `json:"waypoint_miss_avg_km"`
	Hits                    int     `json:"waypoint_hits"`
	Total                   int     `json:"waypoint_total"`
	WithinThresholdFraction float64 `json:"waypoint_within_threshold_fraction"`
	Followed                bool    `json:"waypoints_followed"`
}

// TrackWaypoints computes, for each planned waypoint, the closest approach of
// the flown track. A waypoint within thresholdKM counts as hit; the plan was
// followed only when every waypoint was hit. An empty plan or track yields
// NaN misses and no hits.
func TrackWaypoints(waypoints, track []geo.XYZ, thresholdKM float64) TrackingMetrics {
	if len(waypoints) == 0 || len(track) == 0 {
		return TrackingMetrics{
			MissMaxKM: math.NaN(),
			MissAvgKM: math.NaN(),
			Total:     len(waypoints),
		}
	}

	maxMiss := 0.0
	sumMiss := 0.0
	hits := 0
	for _, wp := range waypoints {
		best := math.Inf(1)
		for _, t := range track {
			if d := geo.PlanarDistanceKM(wp, t); d < best {
				best = d
			}
		}
		sumMiss += best
		if best > maxMiss {
			maxMiss = best
		}
		if best <= thresholdKM {
			hits++
		}
	}

	total := len(waypoints)
	return TrackingMetrics{
		MissMaxKM:               maxMiss,
		MissAvgKM:               sumMiss / float64(total),
		Hits:                    hits,
		Total:                   total,
		WithinThresholdFraction: float64(hits) / float64(total),
		Followed:                hits == total,
	}
}
