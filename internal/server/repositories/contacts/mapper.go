package contacts

import (
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

// contactRow holds the ciphertext columns of contact_infos.
type contactRow struct {
	models.ContactInfo
	addressEnc        string
	phoneEnc          string
	celPhoneEnc       string
	emergencyNameEnc  string
	emergencyPhoneEnc string
}

// fields pairs each plaintext attribute with its backing column.
func (r *contactRow) fields(ci *models.ContactInfo) []struct {
	name  string
	plain *string
	enc   *string
} {
	return []struct {
		name  string
		plain *string
		enc   *string
	}{
		{"address", &ci.Address, &r.addressEnc},
		{"phone", &ci.Phone, &r.phoneEnc},
		{"cel_phone", &ci.CelPhone, &r.celPhoneEnc},
		{"emergency_name", &ci.EmergencyName, &r.emergencyNameEnc},
		{"emergency_phone", &ci.EmergencyPhone, &r.emergencyPhoneEnc},
	}
}

func encodeContact(c cryptox.FieldCipher, ci *models.ContactInfo) (*contactRow, error) {
	r := &contactRow{ContactInfo: *ci}
	for _, f := range r.fields(&r.ContactInfo) {
		enc, err := c.Encrypt(*f.plain)
		if err != nil {
			return nil, fmt.Errorf("encrypt %s: %w", f.name, err)
		}
		*f.enc = enc
		*f.plain = ""
	}
	return r, nil
}

func decodeContact(c cryptox.FieldCipher, r *contactRow) (*models.ContactInfo, error) {
	ci := r.ContactInfo
	for _, f := range r.fields(&ci) {
		plain, err := c.Decrypt(*f.enc)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", f.name, err)
		}
		*f.plain = plain
	}
	return &ci, nil
}
