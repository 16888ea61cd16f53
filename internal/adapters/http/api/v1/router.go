package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/muhammadowais87/client2-sub000/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	handlers *handlers.AuthHandler
	authMW   echo.MiddlewareFunc
}

func NewRouter(h *handlers.AuthHandler, authMW echo.MiddlewareFunc) *Router {
	return &Router{handlers: h, authMW: authMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/telegram", r.handlers.TelegramAuth)

	protected := auth.Group("", r.authMW)
	protected.GET("/me", r.handlers.Me)
}
