package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/denhaven/breeder-backend/internal/model"
	"github.com/denhaven/breeder-backend/internal/service"
)

type BlockHandler struct {
	svc service.BlockService
}

func NewBlockHandler(svc service.BlockService) *BlockHandler {
	return &BlockHandler{svc: svc}
}

type BlockClientRequest struct {
	ClientID string `json:"clientId"`
	Reason   string `json:"reason"`
}

type UnblockClientRequest struct {
	ClientID string `json:"clientId"`
}

type BlockedClientResponse struct {
	ClientID  string `json:"clientId"`
	Level     string `json:"level"`
	Reason    string `json:"reason"`
	BlockedAt string `json:"blockedAt"`
}

func toBlockedClientResponse(rec model.BlockRecord) BlockedClientResponse {
	return BlockedClientResponse{
		ClientID:  rec.UserUID,
		Level:     rec.Level,
		Reason:    rec.Reason,
		BlockedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}

func (h *BlockHandler) BlockClient(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	var req BlockClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "clientId is required"))
	}
	if err := h.svc.BlockClient(c.Request().Context(), pc, req.ClientID, req.Reason); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BlockHandler) UnblockClient(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	var req UnblockClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "clientId is required"))
	}
	if err := h.svc.UnblockClient(c.Request().Context(), pc, req.ClientID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BlockHandler) ListBlocked(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	list, err := h.svc.ListBlocked(c.Request().Context(), pc)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]BlockedClientResponse, 0, len(list))
	for _, rec := range list {
		resp = append(resp, toBlockedClientResponse(rec))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"blockedClients": resp})
}
