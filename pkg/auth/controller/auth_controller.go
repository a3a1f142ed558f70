package controller

import "github.com/labstack/echo/v4"

// AuthController exposes the request identity used by local tooling.
type AuthController interface {
	// DevLogin sets the dev identity cookie; mounted only when dev login is on.
	DevLogin(c echo.Context) error
	// WhoAmI reports the identity of the request and whether it was verified.
	WhoAmI(c echo.Context) error
}
