package models

import "time"

type AdminUser struct {
	ID           string
	Email        string
	PasswordHash string
}

// Session is an authenticated admin session. Token is the cookie value.
type Session struct {
	Token     string    `json:"-"`
	AdminID   string    `json:"admin_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
