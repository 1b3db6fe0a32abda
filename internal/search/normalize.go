package search

import (
	"math"
	"sort"
	"strconv"

	"smartlocations_backend/internal/geo"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
)

// normalizeElements converts raw tag-query entities into Places: resolve a
// point (direct coordinates, else the center of an extended geometry, else
// drop the record), compute the distance from the origin, sort and truncate.
// Dropped records are expected for some malformed upstream data, not an
// error condition.
func normalizeElements(elements []overpass.Element, origin geo.Coordinate, limit int) []Place {
	places := make([]Place, 0, len(elements))

	for _, el := range elements {
		point, ok := resolvePoint(el)
		if !ok {
			continue
		}

		distance := geo.Distance(origin, point)
		if math.IsNaN(distance) {
			continue
		}

		tags := el.Tags
		if tags == nil {
			tags = map[string]string{}
		}

		places = append(places, Place{
			ID:        el.ID,
			Kind:      el.Type,
			Lat:       point.Lat,
			Lon:       point.Lon,
			Tags:      tags,
			DistanceM: distance,
		})
	}

	return rankAndTruncate(places, limit)
}

// normalizeGeocoderHits converts free-text search hits into the same Place
// shape, flattening each nested address object into addr:* attribute keys
// so downstream consumers see one uniform shape regardless of provider.
func normalizeGeocoderHits(hits []nominatim.SearchResult, origin geo.Coordinate, keyword string, limit int) []Place {
	places := make([]Place, 0, len(hits))

	for _, hit := range hits {
		lat, latErr := strconv.ParseFloat(hit.Lat, 64)
		lon, lonErr := strconv.ParseFloat(hit.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		distance := geo.Distance(origin, geo.Coordinate{Lat: lat, Lon: lon})
		if math.IsNaN(distance) {
			continue
		}

		tags := make(map[string]string, len(hit.ExtraTags)+2)
		for key, value := range hit.ExtraTags {
			tags[key] = value
		}
		if tags["name"] == "" {
			if hit.DisplayName != "" {
				tags["name"] = hit.DisplayName
			} else {
				tags["name"] = keyword
			}
		}
		nominatim.MergeAddress(tags, hit.Address)

		kind := hit.OSMType
		if kind == "" {
			kind = "node"
		}

		places = append(places, Place{
			ID:        hit.OSMID,
			Kind:      kind,
			Lat:       lat,
			Lon:       lon,
			Tags:      tags,
			DistanceM: distance,
		})
	}

	return rankAndTruncate(places, limit)
}

// rankAndTruncate sorts ascending by distance, breaking ties by provider id
// so ordering stays deterministic across runs, truncates to limit, and
// rounds distances to whole meters for display.
func rankAndTruncate(places []Place, limit int) []Place {
	sort.Slice(places, func(i, j int) bool {
		if places[i].DistanceM != places[j].DistanceM {
			return places[i].DistanceM < places[j].DistanceM
		}
		return places[i].ID < places[j].ID
	})

	if limit > 0 && len(places) > limit {
		places = places[:limit]
	}

	for i := range places {
		places[i].DistanceM = math.Round(places[i].DistanceM)
	}

	return places
}

func resolvePoint(el overpass.Element) (geo.Coordinate, bool) {
	if el.Lat != nil && el.Lon != nil {
		return geo.Coordinate{Lat: *el.Lat, Lon: *el.Lon}, true
	}
	if el.Center != nil {
		return geo.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}, true
	}
	return geo.Coordinate{}, false
}

// markNew returns a copy of places with the New flag set on every place
// whose (id, kind) pair was absent from the previous poll. The flag does
// not affect sort order or caching.
func markNew(previous []PlaceRef, places []Place) []Place {
	if len(previous) == 0 {
		return places
	}

	seen := make(map[PlaceRef]struct{}, len(previous))
	for _, ref := range previous {
		seen[ref] = struct{}{}
	}

	flagged := make([]Place, len(places))
	copy(flagged, places)
	for i := range flagged {
		if _, ok := seen[PlaceRef{ID: flagged[i].ID, Kind: flagged[i].Kind}]; !ok {
			flagged[i].New = true
		}
	}

	return flagged
}
