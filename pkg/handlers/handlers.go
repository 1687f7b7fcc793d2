package handlers

import (
	"github.com/ASHISH26940/manim-asset-gateway/pkg/config"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/gateway"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/generation"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/upstream"
)

// Handlers holds the request-scoped dependencies of the HTTP layer.
type Handlers struct {
	Config     *config.Config
	Gateway    *gateway.Gateway
	Upstream   *upstream.Client
	Generation *generation.Client
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(cfg *config.Config, gw *gateway.Gateway, up *upstream.Client, gen *generation.Client) *Handlers {
	return &Handlers{
		Config:     cfg,
		Gateway:    gw,
		Upstream:   up,
		Generation: gen,
	}
}
