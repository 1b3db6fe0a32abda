// Package search contains the result aggregation core: the orchestrator
// that fans a search out to the geodata providers, the normalizer that
// folds their heterogeneous records into one ranked Place list, and the
// HTTP surface exposing both.
package search

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"smartlocations_backend/internal/cache"
	"smartlocations_backend/internal/geo"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
	"smartlocations_backend/platform/apperr"
	"smartlocations_backend/platform/logger"
)

// tagQuerier is the tag-query provider: an ordered chain of equivalent
// mirrors behind a single fetch call.
type tagQuerier interface {
	Query(ctx context.Context, query string) ([]overpass.Element, error)
	QueryTracking(ctx context.Context, query string) ([]overpass.Element, error)
}

// geocoder is the free-text provider. Single endpoint, no failover chain.
type geocoder interface {
	Search(ctx context.Context, keyword string, origin geo.Coordinate, radiusKm float64, limit int) ([]nominatim.SearchResult, error)
}

// Service is the search orchestrator: it decides the pipeline mode,
// consults the cache, runs the provider fetch, normalizes, and writes the
// result back to the cache.
type Service struct {
	tags     tagQuerier
	geocoder geocoder
	cache    cache.Store
	ttl      time.Duration
	group    singleflight.Group
	log      *logger.Logger
}

// NewService wires the orchestrator. The cache is injected rather than
// held as package state so tests can use a fresh instance per test.
func NewService(tags tagQuerier, geo geocoder, store cache.Store, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		tags:     tags,
		geocoder: geo,
		cache:    store,
		ttl:      ttl,
		log:      log,
	}
}

// Search runs one search request through the pipeline. Keyword-mode
// provider failures come back as an empty list, never an error: the UI
// treats "zero results" and "provider unreachable" identically there.
// Tag-mode total failure (every mirror exhausted) is the one condition
// surfaced as an explicit error.
func (s *Service) Search(ctx context.Context, req Request) ([]Place, error) {
	switch resolveMode(req) {
	case modeKeyword:
		return s.searchKeyword(ctx, req), nil
	case modeTags:
		return s.searchTags(ctx, req)
	default:
		return []Place{}, nil
	}
}

func (s *Service) searchKeyword(ctx context.Context, req Request) []Place {
	cacheable := req.BBox == nil
	key := cache.Key(req.Origin, []string{"keyword:" + req.Keyword}, req.RadiusKm, req.Limit)

	if cacheable {
		if places, ok := s.cached(key); ok {
			return places
		}
	}

	hits, err := s.geocoder.Search(ctx, req.Keyword, req.Origin, req.RadiusKm, req.Limit)
	if err != nil {
		// Keyword mode degrades to "no matches" on provider failure.
		return []Place{}
	}

	places := normalizeGeocoderHits(hits, req.Origin, req.Keyword, req.Limit)
	if cacheable {
		s.store(key, places)
	}
	return places
}

func (s *Service) searchTags(ctx context.Context, req Request) ([]Place, error) {
	if req.BBox != nil {
		// Broad-area queries bypass the cache entirely: a deliberate
		// simplification, their keys would almost never repeat.
		query := overpass.BuildBoundingBoxQuery(req.Tags, *req.BBox)
		places, err := s.fetchTags(ctx, req, query)
		if err != nil {
			return nil, err
		}
		return markNew(req.Previous, places), nil
	}

	key := cache.Key(req.Origin, req.Tags, req.RadiusKm, req.Limit)
	if places, ok := s.cached(key); ok {
		return markNew(req.Previous, places), nil
	}

	// Concurrent identical requests collapse into one upstream fetch.
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		radiusMeters := int(req.RadiusKm * 1000)
		query := overpass.BuildRadiusQuery(req.Tags, radiusMeters, req.Origin)

		places, err := s.fetchTags(ctx, req, query)
		if err != nil {
			return nil, err
		}

		s.store(key, places)
		return places, nil
	})
	if err != nil {
		return nil, err
	}

	return markNew(req.Previous, result.([]Place)), nil
}

func (s *Service) fetchTags(ctx context.Context, req Request, query string) ([]Place, error) {
	var (
		elements []overpass.Element
		err      error
	)
	if req.Tracking {
		elements, err = s.tags.QueryTracking(ctx, query)
	} else {
		elements, err = s.tags.Query(ctx, query)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "all tag-query endpoints unavailable", err)
	}

	return normalizeElements(elements, req.Origin, req.Limit), nil
}

// cached reads and decodes a cached result list. Any fault in the cache
// layer degrades to a miss.
func (s *Service) cached(key string) ([]Place, bool) {
	payload, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}

	var places []Place
	if err := json.Unmarshal(payload, &places); err != nil {
		if s.log != nil {
			s.log.CacheFault("decode", err)
		}
		return nil, false
	}

	return places, true
}

func (s *Service) store(key string, places []Place) {
	payload, err := json.Marshal(places)
	if err != nil {
		if s.log != nil {
			s.log.CacheFault("encode", err)
		}
		return
	}

	s.cache.Put(key, payload, s.ttl)
}
