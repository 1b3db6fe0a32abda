package search

import (
	"time"

	"smartlocations_backend/internal/cache"
	apphttp "smartlocations_backend/internal/http"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
	"smartlocations_backend/platform/logger"
	"smartlocations_backend/platform/validator"
)

// Module wires the search and geocoding HTTP routes.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule builds the search pipeline from its collaborators.
func NewModule(overpassClient *overpass.Client, geocoderClient *nominatim.Client, store cache.Store, ttl time.Duration, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(overpassClient, geocoderClient, store, ttl, log)
	h := NewHandler(svc, geocoderClient, val)
	return &Module{service: svc, handler: h}
}

// Service exposes the orchestrator for composition in main.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/search", m.handler.Search)

	geocode := ctx.Protected.Group("/geocode")
	geocode.GET("/reverse", m.handler.ReverseGeocode)
	geocode.GET("/address-lookup", m.handler.LookupAddress)
}

var _ apphttp.Module = (*Module)(nil)
