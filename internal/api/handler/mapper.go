package handler

import (
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
}

// --- Service result → HTTP response ---

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}

func toMessageDetailResponse(d *domain.MessageDetail) messageDetailResponse {
	return messageDetailResponse{
		ID:       d.ID,
		Body:     d.Body,
		SentAt:   d.SentAt.UTC(),
		ReadAt:   d.ReadAt,
		FromUser: toParticipantResponse(d.FromUser),
		ToUser:   toParticipantResponse(d.ToUser),
	}
}

func toSentMessageResponse(m domain.Message) sentMessageResponse {
	return sentMessageResponse{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       m.SentAt.UTC(),
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinedAt:    u.JoinedAt.UTC(),
		LastLoginAt: u.LastLoginAt.UTC(),
	}
}

func toUsersResponse(users []domain.UserSummary) usersResponse {
	out := make([]userSummaryResponse, len(users))
	for i, u := range users {
		out[i] = userSummaryResponse{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
	}
	return usersResponse{Users: out}
}

func toInboxResponse(msgs []domain.ReceivedMessage) inboxEnvelope {
	out := make([]inboxItemResponse, len(msgs))
	for i, m := range msgs {
		out[i] = inboxItemResponse{
			ID:       m.ID,
			FromUser: toParticipantResponse(m.FromUser),
			Body:     m.Body,
			SentAt:   m.SentAt.UTC(),
			ReadAt:   m.ReadAt,
		}
	}
	return inboxEnvelope{Messages: out}
}

func toOutboxResponse(msgs []domain.SentMessage) outboxEnvelope {
	out := make([]outboxItemResponse, len(msgs))
	for i, m := range msgs {
		out[i] = outboxItemResponse{
			ID:     m.ID,
			ToUser: toParticipantResponse(m.ToUser),
			Body:   m.Body,
			SentAt: m.SentAt.UTC(),
			ReadAt: m.ReadAt,
		}
	}
	return outboxEnvelope{Messages: out}
}
