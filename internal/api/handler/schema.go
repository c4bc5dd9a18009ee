package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type registerRequest struct {
	Username  string `json:"username"  validate:"required,max=64,excludesall=/?#% "`
	Password  string `json:"password"  validate:"required,maxbytes=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	Phone     string `json:"phone"     validate:"max=32"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// --- Messages ---

type sendMessageRequest struct {
	ToUsername string `json:"toUsername" validate:"required,max=64"`
	Body       string `json:"body"       validate:"required"`
}

type participantResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type messageDetailResponse struct {
	ID       string              `json:"id"`
	Body     string              `json:"body"`
	SentAt   time.Time           `json:"sentAt"`
	ReadAt   *time.Time          `json:"readAt"`
	FromUser participantResponse `json:"fromUser"`
	ToUser   participantResponse `json:"toUser"`
}

type sentMessageResponse struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"fromUsername"`
	ToUsername   string    `json:"toUsername"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sentAt"`
}

type readReceiptResponse struct {
	ID     string     `json:"id"`
	ReadAt *time.Time `json:"readAt"`
}

type messageDetailEnvelope struct {
	Message messageDetailResponse `json:"message"`
}

type sentMessageEnvelope struct {
	Message sentMessageResponse `json:"message"`
}

type readReceiptEnvelope struct {
	Message readReceiptResponse `json:"message"`
}

// --- Users ---

type userSummaryResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type userResponse struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Phone       string    `json:"phone"`
	JoinedAt    time.Time `json:"joinedAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

type usersResponse struct {
	Users []userSummaryResponse `json:"users"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type inboxItemResponse struct {
	ID       string              `json:"id"`
	FromUser participantResponse `json:"fromUser"`
	Body     string              `json:"body"`
	SentAt   time.Time           `json:"sentAt"`
	ReadAt   *time.Time          `json:"readAt"`
}

type outboxItemResponse struct {
	ID     string              `json:"id"`
	ToUser participantResponse `json:"toUser"`
	Body   string              `json:"body"`
	SentAt time.Time           `json:"sentAt"`
	ReadAt *time.Time          `json:"readAt"`
}

type inboxEnvelope struct {
	Messages []inboxItemResponse `json:"messages"`
}

type outboxEnvelope struct {
	Messages []outboxItemResponse `json:"messages"`
}
