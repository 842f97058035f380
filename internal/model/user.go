package model

import "strings"

// User is the authenticated identity held by a session.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender,omitempty"`
	Image     string `json:"image,omitempty"`
	Token     string `json:"token"`
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// MockUser is an account registered locally, with no remote counterpart.
// Passwords are stored as entered; this is a demo client.
type MockUser struct {
	User
	Password string `json:"password"`
}

// RegisterData carries the fields collected by the registration form.
type RegisterData struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}
