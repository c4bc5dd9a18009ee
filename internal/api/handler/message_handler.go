package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /messages without sending twice.
// A retry that arrives while the first send is still running gets 409.
const HeaderIdempotencyKey = "Idempotency-Key"

type MessageHandler struct {
	svc ports.MessageService
}

func NewMessageHandler(svc ports.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Get returns a message with both participants resolved.
// Only the sender or the recipient may read it.
//
// @Summary      Get a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  messageDetailEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /messages/{id} [get]
func (h *MessageHandler) Get(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	detail, err := h.svc.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageDetailEnvelope{Message: toMessageDetailResponse(detail)})
}

// Create sends a message from the caller. A repeated Idempotency-Key
// returns the original message with 200 instead of 201.
//
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client retry key"
// @Param        body             body      sendMessageRequest  true   "Message"
// @Success      201  {object}  sentMessageEnvelope
// @Success      200  {object}  sentMessageEnvelope
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /messages [post]
func (h *MessageHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.svc.Send(c.Request().Context(), ports.SendInput{
		Caller:         caller,
		From:           caller,
		To:             req.ToUsername,
		Body:           req.Body,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, sentMessageEnvelope{Message: toSentMessageResponse(res.Message)})
}

// MarkRead stamps the read time. Only the recipient may call it.
//
// @Summary      Mark a message as read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  readReceiptEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	m, err := h.svc.MarkRead(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, readReceiptEnvelope{
		Message: readReceiptResponse{ID: m.ID, ReadAt: m.ReadAt},
	})
}
