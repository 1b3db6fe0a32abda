package search

import (
	"net/http"
	"strings"

	"smartlocations_backend/internal/geo"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/platform/httpkit"
	"smartlocations_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit    = 20
	defaultRadiusKm = 5
)

// searchRequest is the JSON body of POST /search.
type searchRequest struct {
	Lat      *float64         `json:"lat" binding:"required"`
	Lon      *float64         `json:"lon" binding:"required"`
	Tags     []string         `json:"tags"`
	Keyword  string           `json:"keyword"`
	Limit    int              `json:"limit" binding:"omitempty,gt=0"`
	RadiusKm float64          `json:"radiusKm" binding:"omitempty,gt=0"`
	BBox     *geo.BoundingBox `json:"bbox"`
	Tracking bool             `json:"tracking"`
	Previous []PlaceRef       `json:"previous"`
}

type searchResponse struct {
	Places []Place `json:"places"`
}

type reverseQuery struct {
	Lat float64 `form:"lat" binding:"required"`
	Lon float64 `form:"lon" binding:"required"`
}

type lookupQuery struct {
	Query string `form:"q" binding:"required,min=3"`
}

// Handler exposes the search and geocoding endpoints.
type Handler struct {
	svc      *Service
	geocoder *nominatim.Client
	validate *validator.Validator
}

func NewHandler(svc *Service, geocoder *nominatim.Client, val *validator.Validator) *Handler {
	return &Handler{svc: svc, geocoder: geocoder, validate: val}
}

// checkCoordinate rejects out-of-range latitude or longitude.
func (h *Handler) checkCoordinate(lat, lon float64) error {
	if err := h.validate.Var(lat, "gte=-90,lte=90"); err != nil {
		return err
	}
	return h.validate.Var(lon, "gte=-180,lte=180")
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(c *gin.Context) {
	var body searchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon required", nil)
		return
	}
	if err := h.checkCoordinate(*body.Lat, *body.Lon); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "coordinates out of range", nil)
		return
	}
	if body.BBox != nil && (body.BBox.South >= body.BBox.North || body.BBox.West >= body.BBox.East) {
		httpkit.Error(c, http.StatusBadRequest, "invalid bounding box", nil)
		return
	}

	req := Request{
		Origin:   geo.Coordinate{Lat: *body.Lat, Lon: *body.Lon},
		RadiusKm: body.RadiusKm,
		Limit:    body.Limit,
		Tags:     body.Tags,
		Keyword:  strings.TrimSpace(body.Keyword),
		BBox:     body.BBox,
		Tracking: body.Tracking,
		Previous: body.Previous,
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	if req.RadiusKm == 0 {
		req.RadiusKm = defaultRadiusKm
	}

	places, err := h.svc.Search(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, searchResponse{Places: places})
}

// ReverseGeocode handles GET /api/v1/geocode/reverse?lat=..&lon=..
func (h *Handler) ReverseGeocode(c *gin.Context) {
	var query reverseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon required", nil)
		return
	}
	if err := h.checkCoordinate(query.Lat, query.Lon); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "coordinates out of range", nil)
		return
	}

	result, err := h.geocoder.Reverse(c.Request.Context(), geo.Coordinate{Lat: query.Lat, Lon: query.Lon})
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "geocoding failed", nil)
		return
	}

	httpkit.OK(c, result)
}

// LookupAddress handles GET /api/v1/geocode/address-lookup?q=...
func (h *Handler) LookupAddress(c *gin.Context) {
	var query lookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	results, err := h.geocoder.Lookup(c.Request.Context(), query.Query)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup service unavailable", nil)
		return
	}

	httpkit.OK(c, results)
}
