package domain

import "time"

// User models a registered account. The password hash never leaves the
// persistence layer and is therefore not part of this type.
type User struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Phone       string    `json:"phone"`
	JoinedAt    time.Time `json:"joinedAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// UserSummary is the directory view of a user.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Participant is one resolved side of a message.
type Participant struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (u User) Summary() UserSummary {
	return UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func (u User) Participant() Participant {
	return Participant{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Now returns the current instant in UTC at millisecond precision, which is
// the resolution every store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
