package models

import "time"

// Session is the authenticated caller, resolved per request and passed
// explicitly to every operation that needs an identity.
type Session struct {
	SessionID string    `json:"-"`
	UserID    string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Profile returns the buyer fields of the session as a profile.
func (s *Session) Profile() UserProfile {
	return UserProfile{ID: s.UserID, Email: s.Email, Name: s.Name, Phone: s.Phone, Role: s.Role}
}
