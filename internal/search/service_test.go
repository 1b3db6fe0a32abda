package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smartlocations_backend/internal/cache"
	"smartlocations_backend/internal/geo"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
	"smartlocations_backend/platform/apperr"
)

type fakeQuerier struct {
	elements      []overpass.Element
	err           error
	calls         int
	trackingCalls int
	lastQuery     string
}

func (q *fakeQuerier) Query(_ context.Context, query string) ([]overpass.Element, error) {
	q.calls++
	q.lastQuery = query
	return q.elements, q.err
}

func (q *fakeQuerier) QueryTracking(_ context.Context, query string) ([]overpass.Element, error) {
	q.trackingCalls++
	q.lastQuery = query
	return q.elements, q.err
}

type fakeGeocoder struct {
	hits  []nominatim.SearchResult
	err   error
	calls int
}

func (g *fakeGeocoder) Search(context.Context, string, geo.Coordinate, float64, int) ([]nominatim.SearchResult, error) {
	g.calls++
	return g.hits, g.err
}

// countingStore wraps the in-memory store and counts traffic so tests can
// assert on cache interaction without reaching into its internals.
type countingStore struct {
	inner cache.Store
	gets  int
	puts  int
}

func (c *countingStore) Get(key string) ([]byte, bool) {
	c.gets++
	return c.inner.Get(key)
}

func (c *countingStore) Put(key string, payload []byte, ttl time.Duration) {
	c.puts++
	c.inner.Put(key, payload, ttl)
}

func (c *countingStore) Sweep() { c.inner.Sweep() }

func newTestService(querier *fakeQuerier, geocoder *fakeGeocoder) (*Service, *countingStore) {
	store := &countingStore{inner: cache.NewMemory(nil)}
	svc := NewService(querier, geocoder, store, time.Minute, nil)
	return svc, store
}

func tagRequest(tags ...string) Request {
	return Request{
		Origin:   geo.Coordinate{Lat: 52.370, Lon: 4.890},
		RadiusKm: 5,
		Limit:    20,
		Tags:     tags,
	}
}

func someElements() []overpass.Element {
	return []overpass.Element{
		{ID: 1, Type: "node", Lat: f(52.371), Lon: f(4.891), Tags: map[string]string{"amenity": "cafe"}},
		{ID: 2, Type: "node", Lat: f(52.373), Lon: f(4.893)},
	}
}

func TestSearch_NeitherModeReturnsEmpty(t *testing.T) {
	querier := &fakeQuerier{}
	geocoder := &fakeGeocoder{}
	svc, _ := newTestService(querier, geocoder)

	places, err := svc.Search(context.Background(), tagRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if places == nil || len(places) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", places)
	}
	if querier.calls != 0 || geocoder.calls != 0 {
		t.Fatal("no provider may be contacted without tags or keyword")
	}
}

func TestSearch_TagMode_SecondRequestServedFromCache(t *testing.T) {
	querier := &fakeQuerier{elements: someElements()}
	svc, store := newTestService(querier, &fakeGeocoder{})

	first, err := svc.Search(context.Background(), tagRequest("amenity=cafe"))
	if err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	second, err := svc.Search(context.Background(), tagRequest("amenity=cafe"))
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if querier.calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", querier.calls)
	}
	if store.puts != 1 {
		t.Fatalf("expected a single cache write, got %d", store.puts)
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d places", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].DistanceM != second[i].DistanceM {
			t.Fatalf("cached result differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSearch_TagOrderDoesNotChangeCacheKey(t *testing.T) {
	querier := &fakeQuerier{elements: someElements()}
	svc, _ := newTestService(querier, &fakeGeocoder{})

	if _, err := svc.Search(context.Background(), tagRequest("amenity=cafe", "tourism=museum")); err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	if _, err := svc.Search(context.Background(), tagRequest("tourism=museum", "amenity=cafe")); err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if querier.calls != 1 {
		t.Fatalf("reordered tags must hit the same cache entry, got %d fetches", querier.calls)
	}
}

func TestSearch_BoundingBoxBypassesCache(t *testing.T) {
	querier := &fakeQuerier{elements: someElements()}
	svc, store := newTestService(querier, &fakeGeocoder{})

	req := tagRequest("amenity=cafe")
	req.BBox = &geo.BoundingBox{South: 52.2, West: 4.7, North: 52.5, East: 5.1}

	for i := 0; i < 2; i++ {
		if _, err := svc.Search(context.Background(), req); err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
	}

	if querier.calls != 2 {
		t.Fatalf("broad-area requests must always fetch, got %d fetches", querier.calls)
	}
	if store.gets != 0 || store.puts != 0 {
		t.Fatalf("broad-area requests must not touch the cache: %d gets, %d puts", store.gets, store.puts)
	}
	if !strings.Contains(querier.lastQuery, "52.2") {
		t.Fatalf("expected a bounding-box query, got %q", querier.lastQuery)
	}
}

func TestSearch_TagMode_TotalFailureSurfaces502(t *testing.T) {
	querier := &fakeQuerier{err: errors.New("every mirror down")}
	svc, store := newTestService(querier, &fakeGeocoder{})

	_, err := svc.Search(context.Background(), tagRequest("amenity=cafe"))
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("failures must not be cached")
	}
}

func TestSearch_TrackingUsesTrackingFetch(t *testing.T) {
	querier := &fakeQuerier{elements: someElements()}
	svc, _ := newTestService(querier, &fakeGeocoder{})

	req := tagRequest("amenity=cafe")
	req.Tracking = true
	req.Previous = []PlaceRef{{ID: 1, Kind: "node"}}

	places, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if querier.trackingCalls != 1 || querier.calls != 0 {
		t.Fatalf("expected the tracking fetch path, got %d/%d calls", querier.calls, querier.trackingCalls)
	}

	for _, p := range places {
		wantNew := p.ID != 1
		if p.New != wantNew {
			t.Fatalf("place %d: new=%v, want %v", p.ID, p.New, wantNew)
		}
	}
}

func TestSearch_NewFlagNeverCached(t *testing.T) {
	querier := &fakeQuerier{elements: someElements()}
	svc, _ := newTestService(querier, &fakeGeocoder{})

	req := tagRequest("amenity=cafe")
	req.Previous = []PlaceRef{{ID: 999, Kind: "node"}} // everything comes back new

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("first search failed: %v", err)
	}

	// Same key, no previous list: the cached entry must come back unflagged.
	places, err := svc.Search(context.Background(), tagRequest("amenity=cafe"))
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	for _, p := range places {
		if p.New {
			t.Fatalf("new flag leaked into the cache on place %d", p.ID)
		}
	}
}

func TestSearch_KeywordMode(t *testing.T) {
	geocoder := &fakeGeocoder{hits: []nominatim.SearchResult{
		{OSMID: 5, OSMType: "node", Lat: "52.371", Lon: "4.891", DisplayName: "Bakkerij"},
	}}
	querier := &fakeQuerier{}
	svc, _ := newTestService(querier, geocoder)

	req := tagRequest("amenity=cafe")
	req.Keyword = "bakery"

	places, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(places) != 1 || places[0].ID != 5 {
		t.Fatalf("unexpected places: %v", places)
	}
	if querier.calls != 0 {
		t.Fatal("keyword must take precedence over tags")
	}
}

func TestSearch_KeywordFailureReturnsEmptyList(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("geocoder down")}
	svc, store := newTestService(&fakeQuerier{}, geocoder)

	req := tagRequest()
	req.Keyword = "bakery"

	places, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("keyword failures must not surface as errors, got %v", err)
	}
	if places == nil || len(places) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", places)
	}
	if store.puts != 0 {
		t.Fatal("failures must not be cached")
	}
}

func TestSearch_KeywordResultsCached(t *testing.T) {
	geocoder := &fakeGeocoder{hits: []nominatim.SearchResult{
		{OSMID: 5, OSMType: "node", Lat: "52.371", Lon: "4.891"},
	}}
	svc, _ := newTestService(&fakeQuerier{}, geocoder)

	req := tagRequest()
	req.Keyword = "bakery"

	for i := 0; i < 2; i++ {
		if _, err := svc.Search(context.Background(), req); err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
	}

	if geocoder.calls != 1 {
		t.Fatalf("expected a single geocoder call, got %d", geocoder.calls)
	}
}
