package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cancelflow/pkg/auth/controller"
	"cancelflow/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin switches the dev identity cookie to ?uid=.
func (h *authCtrl) DevLogin(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = middleware.DefaultUID
	}
	c.SetCookie(&http.Cookie{Name: middleware.CookieName, Value: uid, Path: "/", HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"uid": uid})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	_, verified := middleware.VerifiedUID(c)
	return c.JSON(http.StatusOK, echo.Map{"uid": middleware.UID(c), "verified": verified})
}
