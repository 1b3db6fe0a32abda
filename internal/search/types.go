package search

import "smartlocations_backend/internal/geo"

// Place is the unit of output: one point of interest, normalized from
// whichever provider produced it and annotated with the distance from the
// query origin. Constructed fresh per request and never mutated afterwards,
// except for the transient New flag attached during live tracking.
type Place struct {
	ID        int64             `json:"id"`
	Kind      string            `json:"kind"`
	Lat       float64           `json:"lat"`
	Lon       float64           `json:"lon"`
	Tags      map[string]string `json:"tags"`
	DistanceM float64           `json:"distance_m"`
	// New marks a place that was absent from the previous poll of a
	// live-tracking session. Advisory, display-only.
	New bool `json:"new,omitempty"`
}

// PlaceRef identifies a previously seen place during live-tracking
// reconciliation. Identity is the (id, kind) pair: provider ids are only
// unique within one entity kind.
type PlaceRef struct {
	ID   int64  `json:"id"`
	Kind string `json:"kind"`
}

// Request is a resolved search request. Exactly one of Tags or Keyword is
// active; when both are supplied the keyword wins, and when neither is
// present the search returns an empty list without an upstream call.
type Request struct {
	Origin   geo.Coordinate
	RadiusKm float64
	Limit    int
	Tags     []string
	Keyword  string
	// BBox switches tag search to the broad-area envelope shape and
	// bypasses the cache entirely.
	BBox *geo.BoundingBox
	// Tracking requests use the shorter upstream timeout and reconcile
	// against Previous.
	Tracking bool
	Previous []PlaceRef
}

// mode is the explicit discriminant for the three search pipelines,
// resolved once at the orchestrator's entry so downstream code never
// re-checks field presence.
type mode int

const (
	modeNone mode = iota
	modeTags
	modeKeyword
)

func resolveMode(req Request) mode {
	if req.Keyword != "" {
		return modeKeyword
	}
	if len(req.Tags) > 0 {
		return modeTags
	}
	return modeNone
}
