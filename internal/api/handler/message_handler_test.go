package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

var sentAt = time.Date(2024, 2, 3, 4, 5, 6, 7_000_000, time.UTC)

func TestMessageHandler_Get(t *testing.T) {
	stub := &stubMessageService{
		getFn: func(ctx context.Context, caller, id string) (*domain.MessageDetail, error) {
			if caller != "bob" || id != "m-1" {
				t.Fatalf("unexpected args: %s %s", caller, id)
			}
			return &domain.MessageDetail{
				Message:  domain.Message{ID: "m-1", FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: sentAt},
				FromUser: domain.Participant{Username: "alice", FirstName: "Alice", Phone: "+1"},
				ToUser:   domain.Participant{Username: "bob", FirstName: "Bob"},
			}, nil
		},
	}
	handler := NewMessageHandler(stub)

	c, rec := newContext(http.MethodGet, "/messages/m-1", "", "bob")
	c.SetParamNames("id")
	c.SetParamValues("m-1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message map[string]any `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message["readAt"] != nil {
		t.Fatalf("expected readAt null, got %v", resp.Message["readAt"])
	}
	from, _ := resp.Message["fromUser"].(map[string]any)
	if from["username"] != "alice" || from["phone"] != "+1" {
		t.Fatalf("unexpected fromUser: %v", from)
	}
	if resp.Message["sentAt"] != "2024-02-03T04:05:06.007Z" {
		t.Fatalf("unexpected sentAt: %v", resp.Message["sentAt"])
	}
}

func TestMessageHandler_Get_MissingCaller(t *testing.T) {
	handler := NewMessageHandler(&stubMessageService{})

	c, _ := newContext(http.MethodGet, "/messages/m-1", "", "")

	if err := handler.Get(c); err == nil {
		t.Fatal("expected error without caller")
	}
}

func TestMessageHandler_Create(t *testing.T) {
	stub := &stubMessageService{
		sendFn: func(ctx context.Context, in ports.SendInput) (*ports.SendResult, error) {
			if in.Caller != "alice" || in.From != "alice" || in.To != "bob" || in.IdempotencyKey != "k-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.SendResult{Message: domain.Message{ID: "m-9", FromUsername: "alice", ToUsername: "bob", Body: in.Body, SentAt: sentAt}}, nil
		},
	}
	handler := NewMessageHandler(stub)

	c, rec := newContext(http.MethodPost, "/messages", `{"toUsername":"bob","body":"hello"}`, "alice")
	c.Request().Header.Set(HeaderIdempotencyKey, "k-1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp sentMessageEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message.ID != "m-9" || resp.Message.FromUsername != "alice" || resp.Message.Body != "hello" {
		t.Fatalf("unexpected payload: %+v", resp.Message)
	}
}

func TestMessageHandler_Create_Replay(t *testing.T) {
	stub := &stubMessageService{
		sendFn: func(ctx context.Context, in ports.SendInput) (*ports.SendResult, error) {
			return &ports.SendResult{Message: domain.Message{ID: "m-9"}, Replayed: true}, nil
		},
	}
	handler := NewMessageHandler(stub)

	c, rec := newContext(http.MethodPost, "/messages", `{"toUsername":"bob","body":"hello"}`, "alice")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestMessageHandler_Create_MissingBody(t *testing.T) {
	handler := NewMessageHandler(&stubMessageService{})

	c, _ := newContext(http.MethodPost, "/messages", `{"toUsername":"bob"}`, "alice")

	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMessageHandler_MarkRead(t *testing.T) {
	readAt := sentAt.Add(time.Minute)
	stub := &stubMessageService{
		markReadFn: func(ctx context.Context, caller, id string) (*domain.Message, error) {
			return &domain.Message{ID: id, ReadAt: &readAt}, nil
		},
	}
	handler := NewMessageHandler(stub)

	c, rec := newContext(http.MethodPost, "/messages/m-1/read", "", "bob")
	c.SetParamNames("id")
	c.SetParamValues("m-1")

	if err := handler.MarkRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp readReceiptEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message.ID != "m-1" || resp.Message.ReadAt == nil || !resp.Message.ReadAt.Equal(readAt) {
		t.Fatalf("unexpected payload: %+v", resp.Message)
	}
}

func TestMessageHandler_MarkRead_Denied(t *testing.T) {
	stub := &stubMessageService{
		markReadFn: func(ctx context.Context, caller, id string) (*domain.Message, error) {
			return nil, domain.ErrNotRecipient
		},
	}
	handler := NewMessageHandler(stub)

	c, _ := newContext(http.MethodPost, "/messages/m-1/read", "", "alice")

	if err := handler.MarkRead(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
