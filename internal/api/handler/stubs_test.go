package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/api/middleware"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return s.loginFn(ctx, username, password)
}

type stubMessageService struct {
	sendFn     func(ctx context.Context, in ports.SendInput) (*ports.SendResult, error)
	getFn      func(ctx context.Context, caller, id string) (*domain.MessageDetail, error)
	markReadFn func(ctx context.Context, caller, id string) (*domain.Message, error)
	sentFn     func(ctx context.Context, caller, username string) ([]domain.SentMessage, error)
	receivedFn func(ctx context.Context, caller, username string) ([]domain.ReceivedMessage, error)
}

func (s *stubMessageService) Send(ctx context.Context, in ports.SendInput) (*ports.SendResult, error) {
	return s.sendFn(ctx, in)
}

func (s *stubMessageService) Get(ctx context.Context, caller, id string) (*domain.MessageDetail, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubMessageService) MarkRead(ctx context.Context, caller, id string) (*domain.Message, error) {
	return s.markReadFn(ctx, caller, id)
}

func (s *stubMessageService) Sent(ctx context.Context, caller, username string) ([]domain.SentMessage, error) {
	return s.sentFn(ctx, caller, username)
}

func (s *stubMessageService) Received(ctx context.Context, caller, username string) ([]domain.ReceivedMessage, error) {
	return s.receivedFn(ctx, caller, username)
}

type stubDirectory struct {
	listFn    func(ctx context.Context) ([]domain.UserSummary, error)
	profileFn func(ctx context.Context, caller, username string) (*domain.User, error)
}

func (s *stubDirectory) List(ctx context.Context) ([]domain.UserSummary, error) {
	return s.listFn(ctx)
}

func (s *stubDirectory) Profile(ctx context.Context, caller, username string) (*domain.User, error) {
	return s.profileFn(ctx, caller, username)
}

// newContext builds an echo context with the validator installed and, when
// caller is non-empty, the username the Auth middleware would have set.
func newContext(method, target, body, caller string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != "" {
		c.Set(middleware.UsernameKey, caller)
	}
	return c, rec
}
