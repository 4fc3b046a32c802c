package server

import (
	"toko/internal/config"
	"toko/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, authH *handler.AuthHandler, orderH *handler.OrderHandler) {
	authH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
}
