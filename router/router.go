package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"cancelflow/pkg/jsonx"
	"cancelflow/pkg/middleware"
)

type Options struct {
	DevLogin   bool
	HeaderAuth bool
}

func New(
	e *echo.Echo,
	opts Options,
	cancelCtrl interface {
		GetDownsellVariant(echo.Context) error
		PutState(echo.Context) error
	},
	reportCtrl interface{ Export(echo.Context) error },
	authCtrl interface {
		DevLogin(echo.Context) error
		WhoAmI(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.HideBanner = true
	e.JSONSerializer = jsonx.Serializer{}
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())

	e.GET("/health", healthCtrl.Health)

	api := e.Group("")
	if opts.DevLogin {
		api.Use(middleware.DevLogin())
		api.GET("/devlogin", authCtrl.DevLogin)
	}
	api.Use(middleware.HeaderAuth(opts.HeaderAuth))
	api.GET("/whoami", authCtrl.WhoAmI)

	api.GET("/api/cancellation-flow-downsell-variant", cancelCtrl.GetDownsellVariant)
	api.PUT("/api/cancellation-flow-state", cancelCtrl.PutState)
	api.GET("/api/cancellations/export", reportCtrl.Export)
	return e
}
