// Package models defines the client-side data shapes exchanged with the
// identity service and handed to the CLI views.
package models

import (
	"strings"
	"time"
)

// User is the authenticated principal as reported by the identity service.
// The client never mutates a User; it is replaced wholesale after a
// successful auth operation.
type User struct {
	// ID is the server-assigned identity string.
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`

	// Role is reported verbatim; the set of roles is not constrained client-side.
	Role string `json:"role"`

	IsEmailVerified bool `json:"isEmailVerified"`

	// LastLogin is nil when the service has no previous login on record.
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	// LastLoginIP is the network origin of the previous login, if known.
	LastLoginIP string `json:"lastLoginIP,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
