package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			if in.Username != "alice" || in.FirstName != "Alice" || in.Phone != "+15550100" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "tok-alice", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/register",
		`{"username":"alice","password":"secret","firstName":"Alice","lastName":"Liddell","phone":"+15550100"}`, "")

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok-alice" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			return "", domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/register", `{"username":"bob","password":"pw"}`, "")

	if err := handler.Register(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	called := false
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			called = true
			return "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/register", `{"username":"bob"}`, "")

	err := handler.Register(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("service must not be called on invalid input")
	}
}

func TestAuthHandler_Register_PasswordLimitCountsBytes(t *testing.T) {
	registered := 0
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			registered++
			return "tok", nil
		},
	}
	handler := NewAuthHandler(stub)

	// 40 runes, 80 bytes.
	long := strings.Repeat("é", 40)
	c, _ := newContext(http.MethodPost, "/register", `{"username":"bob","password":"`+long+`"}`, "")
	err := handler.Register(c)
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "72 bytes") {
		t.Fatalf("expected byte-length validation error, got %v", err)
	}

	// 36 runes, 72 bytes.
	exact := strings.Repeat("é", 36)
	c, _ = newContext(http.MethodPost, "/register", `{"username":"bob","password":"`+exact+`"}`, "")
	if err := handler.Register(c); err != nil {
		t.Fatalf("72-byte password must be accepted: %v", err)
	}
	if registered != 1 {
		t.Fatalf("expected one registration, got %d", registered)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected credentials: %s/%s", username, password)
			}
			return "jwt-token", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/login", `{"username":"alice","password":"secret"}`, "")

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`, "")

	if err := handler.Login(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/login", `{"username":`, "")

	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
