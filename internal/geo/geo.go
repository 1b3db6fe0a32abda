// Package geo provides coordinate types and great-circle distance math
// shared by the search pipeline.
package geo

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair.
// No range enforcement happens here: malformed values propagate as NaN
// distances and are filtered by callers rather than raised as errors.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is a rectangular lat/lon envelope used for broad-area
// queries where a radius search would be semantically wrong.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Broad reports whether the box spans more than roughly half a degree in
// either axis, the threshold at which callers prefer bounding-box search
// over radius search.
func (b BoundingBox) Broad() bool {
	return b.North-b.South > 0.5 || b.East-b.West > 0.5
}

// Distance returns the haversine great-circle distance in meters between
// two coordinates. Pure and total for finite inputs; NaN in means NaN out.
func Distance(a, b Coordinate) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dPhi := toRad(b.Lat - a.Lat)
	dLambda := toRad(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
