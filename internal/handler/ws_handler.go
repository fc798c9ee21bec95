package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/denhaven/breeder-backend/internal/middleware"
	"github.com/denhaven/breeder-backend/internal/notify"
)

type WSHandler struct {
	hub *notify.Hub
}

func NewWSHandler(hub *notify.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades the authenticated caller onto the realtime hub.
func (h *WSHandler) Connect(c echo.Context) error {
	uid, _ := c.Get(appmw.ContextKeyUID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	return h.hub.ServeWS(c.Response(), c.Request(), uid)
}
