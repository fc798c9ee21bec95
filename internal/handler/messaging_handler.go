package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appmw "github.com/denhaven/breeder-backend/internal/middleware"
	"github.com/denhaven/breeder-backend/internal/service"
)

type MessagingHandler struct {
	svc service.InboxService
}

func NewMessagingHandler(svc service.InboxService) *MessagingHandler {
	return &MessagingHandler{svc: svc}
}

func providerCtx(c echo.Context) (service.ProviderContext, bool) {
	pc, ok := c.Get(appmw.ContextKeyProvider).(service.ProviderContext)
	return pc, ok
}

type SendMessageRequest struct {
	MessageText string `json:"messageText"`
}

type CreateInquiryRequest struct {
	ProviderID  uint64  `json:"providerId"`
	ListingID   *uint64 `json:"listingId"`
	Subject     string  `json:"subject"`
	MessageText string  `json:"messageText"`
}

func (h *MessagingHandler) ListThreads(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	f := service.ThreadFilters{
		Status:   c.QueryParam("status"),
		Type:     c.QueryParam("type"),
		Archived: c.QueryParam("archived"),
		Source:   c.QueryParam("source"),
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	page, err := h.svc.ListThreads(c.Request().Context(), pc, f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *MessagingHandler) GetThread(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	ref, err := service.ParseThreadRef(c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	thread, msgs, err := h.svc.GetThread(c.Request().Context(), pc, ref)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"thread":   thread,
		"messages": msgs,
	})
}

func (h *MessagingHandler) SendMessage(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	ref, err := service.ParseThreadRef(c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.SendMessage(c.Request().Context(), pc, ref, req.MessageText)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessagingHandler) CreateInquiry(c echo.Context) error {
	uid, _ := c.Get(appmw.ContextKeyUID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateInquiryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ProviderID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "providerId is required"))
	}
	msg, err := h.svc.CreateInquiry(c.Request().Context(), uid, req.ProviderID, req.ListingID, req.Subject, req.MessageText)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessagingHandler) MarkRead(c echo.Context) error {
	return h.threadOp(c, h.svc.MarkRead)
}

func (h *MessagingHandler) Archive(c echo.Context) error {
	return h.threadOp(c, h.svc.Archive)
}

func (h *MessagingHandler) Unarchive(c echo.Context) error {
	return h.threadOp(c, h.svc.Unarchive)
}

func (h *MessagingHandler) DeleteThread(c echo.Context) error {
	return h.threadOp(c, h.svc.DeleteThread)
}

func (h *MessagingHandler) DeleteMessage(c echo.Context) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	ref, err := service.ParseThreadRef(c.Param("threadId"))
	if err != nil {
		return writeServiceError(c, err)
	}
	msgID, err := strconv.ParseUint(c.Param("messageId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	if err := h.svc.DeleteMessage(c.Request().Context(), pc, ref, msgID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *MessagingHandler) threadOp(c echo.Context, op func(ctx context.Context, pc service.ProviderContext, ref service.ThreadRef) error) error {
	pc, ok := providerCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing provider identity"))
	}
	ref, err := service.ParseThreadRef(c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := op(c.Request().Context(), pc, ref); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
