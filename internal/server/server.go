package server

import (
	"toko/internal/config"
	"toko/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func Start(cfg config.Config, authH *handler.AuthHandler, orderH *handler.OrderHandler) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	RegisterRoutes(e, cfg, authH, orderH)

	return e.Start(":" + cfg.Port)
}
