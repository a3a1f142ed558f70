package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"cancelflow/pkg/cancellation/controller"
	"cancelflow/pkg/cancellation/service"
	"cancelflow/pkg/jsonx"
	"cancelflow/pkg/middleware"
)

const (
	fallbackError = "Failed to update cancellation flow state"
	errOtherUser  = "User ID does not match the signed-in user"
)

type cancellationCtrl struct{ svc service.CancellationService }

func New(svc service.CancellationService) controller.CancellationController {
	return &cancellationCtrl{svc}
}

func (h *cancellationCtrl) GetDownsellVariant(c echo.Context) error {
	if !c.QueryParams().Has("userId") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrInvalidUserID.Error()})
	}
	userID := c.QueryParam("userId")
	if otherUser(c, userID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": errOtherUser})
	}
	res, err := h.svc.DownsellVariant(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, userID, err)
	}
	return c.JSON(http.StatusOK, res)
}

// userId and state stay raw so their JSON types can be checked.
type putStateReq struct {
	UserID jsonx.RawMessage `json:"userId"`
	State  jsonx.RawMessage `json:"state"`
}

func (h *cancellationCtrl) PutState(c echo.Context) error {
	var req putStateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	var userID string
	if len(req.UserID) == 0 || req.UserID[0] != '"' || jsonx.Unmarshal(req.UserID, &userID) != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrInvalidUserID.Error()})
	}
	if otherUser(c, userID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": errOtherUser})
	}
	if err := h.svc.SaveState(c.Request().Context(), userID, req.State); err != nil {
		return h.fail(c, userID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Cancellation flow state updated"})
}

// otherUser reports whether a verified caller asks about someone else.
func otherUser(c echo.Context, userID string) bool {
	uid, ok := middleware.VerifiedUID(c)
	return ok && userID != "" && uid != userID
}

func (h *cancellationCtrl) fail(c echo.Context, userID string, err error) error {
	var storeErr *service.StoreError
	switch {
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSubscriptionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &storeErr):
		log.Error().Err(storeErr.Err).Str("user_id", userID).Str("op", storeErr.Op).Msg("cancellation store failure")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": storeErr.Public()})
	}
	log.Error().Err(err).Str("user_id", userID).Msg("cancellation request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallbackError})
}
