package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/core/ports"
)

type UserHandler struct {
	directory ports.Directory
	messages  ports.MessageService
}

func NewUserHandler(directory ports.Directory, messages ports.MessageService) *UserHandler {
	return &UserHandler{directory: directory, messages: messages}
}

// List returns every account's public summary.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      401  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.directory.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUsersResponse(users))
}

// Get returns the caller's own full profile.
//
// @Summary      Get a user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userEnvelope
// @Failure      401       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	u, err := h.directory.Profile(c.Request().Context(), caller, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(u)})
}

// Received lists messages addressed to the user.
//
// @Summary      Messages received by a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  inboxEnvelope
// @Failure      401       {object}  errorResponse
// @Router       /users/{username}/to [get]
func (h *UserHandler) Received(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	msgs, err := h.messages.Received(c.Request().Context(), caller, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInboxResponse(msgs))
}

// Sent lists messages the user has sent.
//
// @Summary      Messages sent by a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  outboxEnvelope
// @Failure      401       {object}  errorResponse
// @Router       /users/{username}/from [get]
func (h *UserHandler) Sent(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	msgs, err := h.messages.Sent(c.Request().Context(), caller, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOutboxResponse(msgs))
}
