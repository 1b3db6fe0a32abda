package narrative

import (
	"net/http"

	"smartlocations_backend/internal/search"
	"smartlocations_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	Places []search.Place `json:"places" binding:"required,min=1"`
}

type askRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type textResponse struct {
	Response string `json:"response"`
}

// Handler exposes the AI report and Q&A endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GenerateReport handles POST /api/v1/report.
func (h *Handler) GenerateReport(c *gin.Context) {
	var body reportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "places array is required", nil)
		return
	}

	report, err := h.svc.GenerateReport(c.Request.Context(), body.Places)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, textResponse{Response: report})
}

// Ask handles POST /api/v1/ask.
func (h *Handler) Ask(c *gin.Context) {
	var body askRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "prompt is required", nil)
		return
	}

	answer, err := h.svc.Ask(c.Request.Context(), body.Prompt)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, textResponse{Response: answer})
}
