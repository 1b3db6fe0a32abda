package prefs

import (
	"net/http"
	"strings"

	"smartlocations_backend/platform/httpkit"
	"smartlocations_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type updateRequest struct {
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

type prefsResponse struct {
	Tags       []string `json:"tags"`
	Categories []string `json:"categories,omitempty"`
}

// Handler exposes the attraction-preference endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: val}
}

// Get handles GET /api/v1/preferences/attractions.
func (h *Handler) Get(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	doc := h.svc.Get(c.Request.Context(), id.UserID())
	httpkit.OK(c, prefsResponse{Tags: doc.Tags, Categories: doc.Categories})
}

// Put handles PUT /api/v1/preferences/attractions. An empty tag list resets
// the user to the defaults.
func (h *Handler) Put(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var body updateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid preference payload", nil)
		return
	}

	tags := make([]string, 0, len(body.Tags))
	for _, t := range body.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if err := h.validate.Var(t, TagRule); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid tag: "+t, nil)
			return
		}
		tags = append(tags, t)
	}

	doc, err := h.svc.Set(c.Request.Context(), id.UserID(), tags, body.Categories)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, prefsResponse{Tags: doc.Tags, Categories: doc.Categories})
}
