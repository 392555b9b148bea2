package documents

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type documentRow struct {
	models.UserDocument
	numberEnc  string
	numberHash string
	issuedOn   sql.NullTime
}

func encodeDocument(c cryptox.FieldCipher, d *models.UserDocument) (*documentRow, error) {
	enc, err := c.Encrypt(d.Number)
	if err != nil {
		return nil, fmt.Errorf("encrypt document: %w", err)
	}
	hash, err := c.BlindIndex(d.Number)
	if err != nil {
		return nil, fmt.Errorf("index document: %w", err)
	}

	r := &documentRow{UserDocument: *d, numberEnc: enc, numberHash: hash}
	if d.DateExpedition != nil {
		r.issuedOn = sql.NullTime{Time: *d.DateExpedition, Valid: true}
	}
	return r, nil
}

func decodeDocument(c cryptox.FieldCipher, r *documentRow) (*models.UserDocument, error) {
	number, err := c.Decrypt(r.numberEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt document: %w", err)
	}

	d := r.UserDocument
	d.Number = number
	if r.issuedOn.Valid {
		t := r.issuedOn.Time
		d.DateExpedition = &t
	}
	return &d, nil
}
