package domain

import "time"

// Message is a direct message between two registered users.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"fromUsername"`
	ToUsername   string     `json:"toUsername"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sentAt"`
	ReadAt       *time.Time `json:"readAt"`
}

// IsRead reports whether the recipient has marked the message read.
func (m Message) IsRead() bool {
	return m.ReadAt != nil
}

// MessageDetail is a message with both participants resolved.
type MessageDetail struct {
	Message
	FromUser Participant
	ToUser   Participant
}

// SentMessage is a message as seen from the sender's outbox.
type SentMessage struct {
	ID     string
	ToUser Participant
	Body   string
	SentAt time.Time
	ReadAt *time.Time
}

// ReceivedMessage is a message as seen from the recipient's inbox.
type ReceivedMessage struct {
	ID       string
	FromUser Participant
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
}
