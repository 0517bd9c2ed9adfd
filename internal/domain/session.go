package domain

import "time"

type Role string

const (
	RoleSuperAdmin Role = "Super Admin"
	RoleAdmin      Role = "Admin"
)

// User is the operator profile returned by the login endpoint.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Contact string `json:"contact"`
}

// IsSuperAdmin unlocks the Branches and Users screens.
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// Session is the authenticated state of one console client. User is set
// iff Token is non-empty.
type Session struct {
	Token     string     `json:"token"`
	User      *User      `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the login payload with the token split from the user fields.
type LoginResult struct {
	Token string
	User  User
}
