package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/muhammadowais87/client2-sub000/config"
	v1 "github.com/muhammadowais87/client2-sub000/internal/adapters/http/api/v1"
	internalhttp "github.com/muhammadowais87/client2-sub000/internal/adapters/http/internal"
)

type Router struct {
	cfg       *config.Config
	apiRouter *v1.Router
}

func NewRouter(cfg *config.Config, apiRouter *v1.Router) *Router {
	return &Router{cfg: cfg, apiRouter: apiRouter}
}

func (r *Router) Setup(e *echo.Echo) {
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	// Mini-App requests arrive from Telegram's webview origin; the handshake
	// endpoint is public, so the policy is permissive. OPTIONS preflights
	// are answered by the middleware without reaching a handler.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			"apikey",
			"x-client-info",
		},
	}))

	internalhttp.Register(e.Group(""))
	apiGroup := e.Group(r.cfg.HTTPBasePath)
	r.apiRouter.Register(apiGroup)
}
