// Package geo holds the great-circle and local tangent-plane math used for
// waypoint generation and flight-track evaluation. All computations assume a
// spherical Earth.
package geo

import "math"

// EarthRadiusKM is the spherical Earth radius used throughout the pipeline.
const EarthRadiusKM = 6371.0

// LLA is a geodetic point: latitude/longitude in degrees, altitude in meters.
type LLA struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeM    float64 `json:"altitude_m"`
}

// XYZ is a point in the local tangent-plane frame, in kilometers.
type XYZ struct {
	XKM float64 `json:"x_km"`
	YKM float64 `json:"y_km"`
	ZKM float64 `json:"z_km"`
}

// HaversineKM returns the surface distance between two points in kilometers.
func HaversineKM(a, b LLA) float64 {
	lat1 := radians(a.LatitudeDeg)
	lon1 := radians(a.LongitudeDeg)
	lat2 := radians(b.LatitudeDeg)
	lon2 := radians(b.LongitudeDeg)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * EarthRadiusKM * math.Asin(math.Min(1.0, math.Sqrt(h)))
}

// PathDistanceKM returns the cumulative surface distance over consecutive
// points.
func PathDistanceKM(points []LLA) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += HaversineKM(points[i], points[i+1])
	}
	return total
}

// DestinationPoint computes the geodetic point reached from start after
// travelling distanceKM along the given bearing. Longitude is normalized to
// the ±180 degree range; altitude of the result is zero.
func DestinationPoint(start LLA, distanceKM, bearingRad float64) LLA {
	lat1 := radians(start.LatitudeDeg)
	lon1 := radians(start.LongitudeDeg)
	angDist := distanceKM / EarthRadiusKM
	sinLat2 := math.Sin(lat1)*math.Cos(angDist) +
		math.Cos(lat1)*math.Sin(angDist)*math.Cos(bearingRad)
	lat2 := math.Asin(clamp(sinLat2, -1, 1))
	y := math.Sin(bearingRad) * math.Sin(angDist) * math.Cos(lat1)
	x := math.Cos(angDist) - math.Sin(lat1)*math.Sin(lat2)
	lon2 := lon1 + math.Atan2(y, x)
	lon2 = math.Mod(lon2+math.Pi, 2*math.Pi)
	if lon2 < 0 {
		lon2 += 2 * math.Pi
	}
	lon2 -= math.Pi
	return LLA{LatitudeDeg: degrees(lat2), LongitudeDeg: degrees(lon2)}
}

// ProjectLocalKM converts geodetic points to a local equirectangular X/Y/Z
// frame in kilometers relative to the first point.
func ProjectLocalKM(points []LLA) []XYZ {
	if len(points) == 0 {
		return nil
	}
	origin := points[0]
	lat0Rad := radians(origin.LatitudeDeg)
	projected := make([]XYZ, 0, len(points))
	for _, point := range points {
		projected = append(projected, XYZ{
			XKM: 111.0 * (point.LatitudeDeg - origin.LatitudeDeg),
			YKM: 111.0 * math.Cos(lat0Rad) * (point.LongitudeDeg - origin.LongitudeDeg),
			ZKM: point.AltitudeM / 1000.0,
		})
	}
	return projected
}

// LocalPathKM returns the cumulative straight-line distance between local
// frame points.
func LocalPathKM(points []XYZ) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		dx := points[i+1].XKM - points[i].XKM
		dy := points[i+1].YKM - points[i].YKM
		dz := points[i+1].ZKM - points[i].ZKM
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// PlanarDistanceKM returns the 2D distance between two local-frame points,
// ignoring altitude.
func PlanarDistanceKM(a, b XYZ) float64 {
	dx := a.XKM - b.XKM
	dy := a.YKM - b.YKM
	return math.Sqrt(dx*dx + dy*dy)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
