package models

import "time"

// ContactInfo holds a user's contact details. Every field except City and
// the country reference is encrypted at rest.
type ContactInfo struct {
	ID             int64
	UserID         string
	CountryID      int64
	City           string
	Address        string
	Phone          string
	CelPhone       string
	EmergencyName  string
	EmergencyPhone string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
