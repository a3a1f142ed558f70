package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "CF_UID"
	DefaultUID = "dev-user"

	uidKey      = "uid"
	verifiedKey = "uid_verified"
)

// DevLogin gives every request an identity for local use: the CF_UID cookie,
// else ?uid= (remembered in the cookie), else DefaultUID. The identity is not
// verified and never restricts the cancellation endpoints.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				uid = ck.Value
			}
			if uid == "" {
				uid = c.QueryParam("uid")
				if uid == "" {
					uid = DefaultUID
				}
				c.SetCookie(&http.Cookie{Name: CookieName, Value: uid, Path: "/", HttpOnly: true})
			}
			c.Set(uidKey, uid)
			return next(c)
		}
	}
}

// UID is the identity set by DevLogin or HeaderAuth, if any.
func UID(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}

// VerifiedUID is the identity set by HeaderAuth.
func VerifiedUID(c echo.Context) (string, bool) {
	if ok, _ := c.Get(verifiedKey).(bool); !ok {
		return "", false
	}
	return UID(c), true
}
