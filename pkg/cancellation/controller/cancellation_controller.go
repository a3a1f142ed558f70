package controller

import "github.com/labstack/echo/v4"

type CancellationController interface {
	GetDownsellVariant(c echo.Context) error
	PutState(c echo.Context) error
}
