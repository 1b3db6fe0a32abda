package prefs

import (
	apphttp "smartlocations_backend/internal/http"
	"smartlocations_backend/platform/logger"
	"smartlocations_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module wires the preference routes.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule builds the preference store. client may be nil, in which case
// reads serve the built-in defaults and writes report unavailable.
func NewModule(client *redis.Client, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := RegisterTagRule(val); err != nil {
		return nil, err
	}
	svc := NewService(client, log)
	return &Module{service: svc, handler: NewHandler(svc, val)}, nil
}

func (m *Module) Name() string {
	return "prefs"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	attractions := ctx.Protected.Group("/preferences/attractions")
	attractions.GET("", m.handler.Get)
	attractions.PUT("", m.handler.Put)
}

var _ apphttp.Module = (*Module)(nil)
