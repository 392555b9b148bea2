package models

import "time"

// RefreshToken is a server-stored opaque token exchanged for new access tokens.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
