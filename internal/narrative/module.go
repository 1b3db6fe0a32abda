package narrative

import (
	"net/http"

	apphttp "smartlocations_backend/internal/http"

	"github.com/gin-gonic/gin"
)

// Module wires the AI narrative HTTP routes. When no API key is configured
// the module still registers its routes but answers 503, so the rest of
// the application keeps working without the collaborator.
type Module struct {
	handler *Handler
}

// NewModule wires routes over an initialized service, or a disabled stub
// when svc is nil.
func NewModule(svc *Service) *Module {
	if svc == nil {
		return &Module{}
	}
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "narrative"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.handler == nil {
		disabled := func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "text-generation service not configured"})
		}
		ctx.Protected.POST("/report", disabled)
		ctx.Protected.POST("/ask", disabled)
		return
	}

	ctx.Protected.POST("/report", m.handler.GenerateReport)
	ctx.Protected.POST("/ask", m.handler.Ask)
}

var _ apphttp.Module = (*Module)(nil)
