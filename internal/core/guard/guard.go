// Package guard holds the pure authorization predicates that bind an
// authenticated caller to the message operations it may perform.
//
// None of the predicates touch storage or return errors; callers translate a
// false result into the matching domain error. An empty caller is never
// authorized.
package guard

import "github.com/messagely/messagely-api/internal/core/domain"

// CanView reports whether caller is the sender or the recipient of m.
func CanView(caller string, m domain.Message) bool {
	if caller == "" {
		return false
	}
	return caller == m.FromUsername || caller == m.ToUsername
}

// CanMarkRead reports whether caller is the recipient of m. The sender may
// view a message but never mark it read.
func CanMarkRead(caller string, m domain.Message) bool {
	if caller == "" {
		return false
	}
	return caller == m.ToUsername
}

// CanSend reports whether caller may send a message as from.
func CanSend(caller, from string) bool {
	return caller != "" && caller == from
}

// CanAccessAccount reports whether caller may read the private views of
// username's account (profile, inbox, outbox).
func CanAccessAccount(caller, username string) bool {
	return caller != "" && caller == username
}
