package models

import "time"

// UserDocument is an identity document owned by a user. Number is plaintext
// here; it is stored encrypted together with a blind index.
type UserDocument struct {
	ID              int64
	UserID          string
	DocumentTypeID  int64
	Number          string
	PlaceExpedition string
	DateExpedition  *time.Time
	CreatedAt       time.Time
}
