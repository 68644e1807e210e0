package domain

import "time"

// Session is the persisted proof of authentication.
type Session struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// AuthState is derived from the controller's session, never persisted.
type AuthState struct {
	IsAuthenticated bool `json:"is_authenticated"`
	IsLoading       bool `json:"is_loading"`
}
