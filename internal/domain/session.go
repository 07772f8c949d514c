package domain

import "time"

// Session is the live authenticated-user state produced by the auth
// collaborator. A nil *Session means "signed out".
type Session struct {
	UID          string    `json:"uid" yaml:"uid"`
	Email        string    `json:"email" yaml:"email"`
	IDToken      string    `json:"-" yaml:"id_token"`
	RefreshToken string    `json:"-" yaml:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" yaml:"expires_at"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Expired reports whether the ID token needs a refresh before use.
func (s *Session) Expired() bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
