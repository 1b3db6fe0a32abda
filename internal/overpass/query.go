// Package overpass builds Overpass QL queries and fetches them across an
// ordered list of mirror endpoints with sequential failover.
package overpass

import (
	"fmt"
	"strings"

	"smartlocations_backend/internal/geo"
)

// serverTimeoutSec is the query timeout requested from the Overpass server
// itself, slightly below the client-side limit so the server can answer
// with a proper error before the socket is torn down.
const serverTimeoutSec = 45

// BuildRadiusQuery produces an Overpass QL query selecting, for each
// "key=value" token, all nodes, ways and relations of that category within
// radiusMeters of origin. Extended geometries report a representative
// center point via "out center".
func BuildRadiusQuery(tokens []string, radiusMeters int, origin geo.Coordinate) string {
	shape := fmt.Sprintf("around:%d,%f,%f", radiusMeters, origin.Lat, origin.Lon)
	return buildQuery(tokens, shape)
}

// BuildBoundingBoxQuery is the broad-area variant used when the search
// area is an administrative region rather than a point: filters apply to a
// rectangular lat/lon envelope instead of a distance from a point.
func BuildBoundingBoxQuery(tokens []string, box geo.BoundingBox) string {
	shape := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	return buildQuery(tokens, shape)
}

func buildQuery(tokens []string, shape string) string {
	var filters strings.Builder
	for _, token := range tokens {
		selector := tagSelector(token)
		filters.WriteString(fmt.Sprintf("node%s(%s);way%s(%s);relation%s(%s);\n",
			selector, shape, selector, shape, selector, shape))
	}

	return fmt.Sprintf("[out:json][timeout:%d];\n(\n%s);\nout center;", serverTimeoutSec, filters.String())
}

// tagSelector turns a "key=value" token into an Overpass tag filter. A
// token without "=" is passed through best-effort as a key-presence filter
// rather than rejected; this permissive behavior is deliberate.
func tagSelector(token string) string {
	key, value, found := strings.Cut(token, "=")
	if !found {
		return fmt.Sprintf("[%q]", key)
	}
	return fmt.Sprintf("[%q=%q]", key, value)
}
