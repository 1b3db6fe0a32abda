package search

import (
	"math"
	"testing"

	"smartlocations_backend/internal/geo"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
)

func f(v float64) *float64 { return &v }

var testOrigin = geo.Coordinate{Lat: 52.370, Lon: 4.890}

func TestNormalizeElements_PointResolution(t *testing.T) {
	elements := []overpass.Element{
		{ID: 1, Type: "node", Lat: f(52.371), Lon: f(4.891)},
		{ID: 2, Type: "way", Center: &overpass.LatLon{Lat: 52.372, Lon: 4.892}},
		{ID: 3, Type: "relation"}, // no coordinates at all
	}

	places := normalizeElements(elements, testOrigin, 10)
	if len(places) != 2 {
		t.Fatalf("expected the pointless record dropped, got %d places", len(places))
	}

	for _, p := range places {
		if p.ID == 3 {
			t.Fatal("record without coordinates must not appear in results")
		}
	}
	if places[0].Lat != 52.371 || places[0].Lon != 4.891 {
		t.Fatalf("direct coordinates not used: %+v", places[0])
	}
	if places[1].Lat != 52.372 || places[1].Lon != 4.892 {
		t.Fatalf("geometry center not used: %+v", places[1])
	}
}

func TestNormalizeElements_SortedByDistance(t *testing.T) {
	// Offsets chosen so the input order [500m-ish, 10m-ish, 9999m-ish, 1m-ish]
	// is thoroughly shuffled relative to the expected output.
	elements := []overpass.Element{
		{ID: 500, Type: "node", Lat: f(testOrigin.Lat + 0.0045), Lon: f(testOrigin.Lon)},
		{ID: 10, Type: "node", Lat: f(testOrigin.Lat + 0.00009), Lon: f(testOrigin.Lon)},
		{ID: 9999, Type: "node", Lat: f(testOrigin.Lat + 0.09), Lon: f(testOrigin.Lon)},
		{ID: 1, Type: "node", Lat: f(testOrigin.Lat + 0.000009), Lon: f(testOrigin.Lon)},
	}

	places := normalizeElements(elements, testOrigin, 10)
	if len(places) != 4 {
		t.Fatalf("expected 4 places, got %d", len(places))
	}

	wantOrder := []int64{1, 10, 500, 9999}
	for i, want := range wantOrder {
		if places[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d (distances %v)", i, places[i].ID, want,
				[]float64{places[0].DistanceM, places[1].DistanceM, places[2].DistanceM, places[3].DistanceM})
		}
	}

	for i := 1; i < len(places); i++ {
		if places[i].DistanceM < places[i-1].DistanceM {
			t.Fatalf("distances not ascending at %d: %v then %v", i, places[i-1].DistanceM, places[i].DistanceM)
		}
	}
}

func TestNormalizeElements_TiesBrokenByID(t *testing.T) {
	lat, lon := testOrigin.Lat+0.001, testOrigin.Lon
	elements := []overpass.Element{
		{ID: 42, Type: "node", Lat: f(lat), Lon: f(lon)},
		{ID: 7, Type: "node", Lat: f(lat), Lon: f(lon)},
	}

	places := normalizeElements(elements, testOrigin, 10)
	if places[0].ID != 7 || places[1].ID != 42 {
		t.Fatalf("equidistant places must order by id: got [%d, %d]", places[0].ID, places[1].ID)
	}
}

func TestNormalizeElements_TruncatesToNearest(t *testing.T) {
	elements := make([]overpass.Element, 50)
	for i := range elements {
		// Farther away as the id grows.
		elements[i] = overpass.Element{
			ID:   int64(i + 1),
			Type: "node",
			Lat:  f(testOrigin.Lat + float64(i+1)*0.0005),
			Lon:  f(testOrigin.Lon),
		}
	}

	places := normalizeElements(elements, testOrigin, 20)
	if len(places) != 20 {
		t.Fatalf("expected 20 places, got %d", len(places))
	}
	for i, p := range places {
		if p.ID != int64(i+1) {
			t.Fatalf("expected the 20 nearest, position %d has id %d", i, p.ID)
		}
	}
}

func TestNormalizeElements_DistanceRoundedToWholeMeters(t *testing.T) {
	elements := []overpass.Element{
		{ID: 1, Type: "node", Lat: f(testOrigin.Lat + 0.001), Lon: f(testOrigin.Lon)},
	}

	places := normalizeElements(elements, testOrigin, 10)
	if d := places[0].DistanceM; d != math.Trunc(d) {
		t.Fatalf("expected whole-meter distance, got %v", d)
	}
}

func TestNormalizeElements_NilTagsBecomeEmptyMap(t *testing.T) {
	elements := []overpass.Element{
		{ID: 1, Type: "node", Lat: f(testOrigin.Lat), Lon: f(testOrigin.Lon)},
	}

	places := normalizeElements(elements, testOrigin, 10)
	if places[0].Tags == nil {
		t.Fatal("tags must never be nil on a normalized place")
	}
}

func TestNormalizeGeocoderHits(t *testing.T) {
	hits := []nominatim.SearchResult{
		{
			OSMID:       77,
			OSMType:     "way",
			Lat:         "52.3702",
			Lon:         "4.8912",
			DisplayName: "Café de Prins, Amsterdam",
			ExtraTags:   map[string]string{"cuisine": "dutch"},
			Address: nominatim.Address{
				Road:        "Prinsengracht",
				HouseNumber: "124",
				Postcode:    "1015 EC",
				City:        "Amsterdam",
				Country:     "Nederland",
			},
		},
		{OSMID: 78, Lat: "not-a-number", Lon: "4.9"},
	}

	places := normalizeGeocoderHits(hits, testOrigin, "cafe", 10)
	if len(places) != 1 {
		t.Fatalf("expected the unparseable hit dropped, got %d places", len(places))
	}

	p := places[0]
	if p.ID != 77 || p.Kind != "way" {
		t.Fatalf("identity not preserved: %+v", p)
	}
	if p.Tags["cuisine"] != "dutch" {
		t.Fatal("extratags must carry over")
	}
	if p.Tags["name"] != "Café de Prins, Amsterdam" {
		t.Fatalf("display name should become the name tag, got %q", p.Tags["name"])
	}
	if p.Tags["addr:street"] != "Prinsengracht" || p.Tags["addr:housenumber"] != "124" ||
		p.Tags["addr:city"] != "Amsterdam" || p.Tags["addr:postcode"] != "1015 EC" {
		t.Fatalf("address not flattened into addr:* keys: %v", p.Tags)
	}
}

func TestNormalizeGeocoderHits_NameFallsBackToKeyword(t *testing.T) {
	hits := []nominatim.SearchResult{
		{OSMID: 1, Lat: "52.37", Lon: "4.89"},
	}

	places := normalizeGeocoderHits(hits, testOrigin, "bakery", 10)
	if places[0].Tags["name"] != "bakery" {
		t.Fatalf("expected keyword fallback name, got %q", places[0].Tags["name"])
	}
	if places[0].Kind != "node" {
		t.Fatalf("expected default kind node, got %q", places[0].Kind)
	}
}

func TestMarkNew(t *testing.T) {
	previous := []PlaceRef{
		{ID: 1, Kind: "node"},
		{ID: 2, Kind: "way"},
	}
	places := []Place{
		{ID: 1, Kind: "node"},
		{ID: 2, Kind: "node"}, // same id, different kind: still new
		{ID: 3, Kind: "node"},
	}

	flagged := markNew(previous, places)
	if flagged[0].New {
		t.Fatal("known place must not be flagged")
	}
	if !flagged[1].New {
		t.Fatal("kind participates in identity; a kind change makes the place new")
	}
	if !flagged[2].New {
		t.Fatal("unseen place must be flagged")
	}

	// The input slice stays untouched.
	if places[2].New {
		t.Fatal("markNew must not mutate its input")
	}
}

func TestMarkNew_NoPreviousIsNoOp(t *testing.T) {
	places := []Place{{ID: 1, Kind: "node"}}
	flagged := markNew(nil, places)
	if flagged[0].New {
		t.Fatal("first poll must not flag anything")
	}
}
