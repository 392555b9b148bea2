package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/singularity/internal/common"
)

var (
	addressPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-N*]+$`)
	phonePattern   = regexp.MustCompile(`^\d+$`)
)

const (
	msgAddressFormat = "address may only contain letters, digits, spaces and the characters - N *"
	msgPhoneFormat   = "phone number must contain digits only"
)

// ContactFields are the user-editable contact attributes.
type ContactFields struct {
	CountryID      int64
	Address        string
	City           string
	Phone          string
	CelPhone       string
	EmergencyName  string
	EmergencyPhone string
}

// validateContact checks the address, then each phone field, and stops at
// the first violation.
func validateContact(c ContactFields) error {
	if !addressPattern.MatchString(c.Address) {
		return common.NewValidationError("address", msgAddressFormat)
	}
	phones := []struct{ field, value string }{
		{"phone", c.Phone},
		{"cel_phone", c.CelPhone},
		{"emergency_phone", c.EmergencyPhone},
	}
	for _, p := range phones {
		if !phonePattern.MatchString(p.value) {
			return common.NewValidationError(p.field, msgPhoneFormat)
		}
	}
	return nil
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return common.NewValidationError(f[0], f[0]+" is required")
		}
	}
	return nil
}

// NormalizeEmail lowercases and trims an address; lookups and inserts both
// go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
